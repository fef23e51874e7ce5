package service

import (
	"context"
	"time"

	"SnapTalk/module/follow/model"
	usermodel "SnapTalk/module/user/model"
	userservice "SnapTalk/module/user/service"
	"SnapTalk/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func followColl() *mongo.Collection { return (&model.Follow{}).Collection() }

// Follow makes followerID follow the user behind username. Re-following is
// a no-op; self-follow is rejected.
func Follow(ctx context.Context, followerID, username string) error {
	target, err := userservice.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	follower, err := primitive.ObjectIDFromHex(followerID)
	if err != nil {
		return errs.ErrArgs.WrapMsg("bad follower id")
	}
	if follower == target.ID {
		return errs.ErrArgs.WrapMsg("cannot follow yourself")
	}
	filter := bson.M{"follower": follower, "following": target.ID}
	n, err := followColl().CountDocuments(ctx, filter)
	if err != nil {
		return errs.WrapMsg(err, "check follow")
	}
	if n > 0 {
		return nil
	}
	_, err = followColl().InsertOne(ctx, &model.Follow{
		Follower:  follower,
		Following: target.ID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return errs.WrapMsg(err, "insert follow")
	}
	return nil
}

// Unfollow removes the edge; absent edges are a no-op.
func Unfollow(ctx context.Context, followerID, username string) error {
	target, err := userservice.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	follower, err := primitive.ObjectIDFromHex(followerID)
	if err != nil {
		return errs.ErrArgs.WrapMsg("bad follower id")
	}
	_, err = followColl().DeleteOne(ctx, bson.M{"follower": follower, "following": target.ID})
	if err != nil {
		return errs.WrapMsg(err, "delete follow")
	}
	return nil
}

// Followers lists users following username.
func Followers(ctx context.Context, username string) ([]usermodel.User, error) {
	target, err := userservice.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return edgeUsers(ctx, bson.M{"following": target.ID}, func(f model.Follow) primitive.ObjectID {
		return f.Follower
	})
}

// Following lists users that username follows.
func Following(ctx context.Context, username string) ([]usermodel.User, error) {
	target, err := userservice.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return edgeUsers(ctx, bson.M{"follower": target.ID}, func(f model.Follow) primitive.ObjectID {
		return f.Following
	})
}

func edgeUsers(ctx context.Context, filter bson.M, pick func(model.Follow) primitive.ObjectID) ([]usermodel.User, error) {
	cur, err := followColl().Find(ctx, filter)
	if err != nil {
		return nil, errs.WrapMsg(err, "list follows")
	}
	defer cur.Close(ctx)
	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var f model.Follow
		if err := cur.Decode(&f); err != nil {
			return nil, errs.WrapMsg(err, "decode follow")
		}
		ids = append(ids, pick(f))
	}
	if len(ids) == 0 {
		return []usermodel.User{}, nil
	}
	ucur, err := (&usermodel.User{}).Collection().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errs.WrapMsg(err, "load users")
	}
	defer ucur.Close(ctx)
	out := make([]usermodel.User, 0, len(ids))
	if err := ucur.All(ctx, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode users")
	}
	return out, nil
}
