package service

import (
	"context"
	"regexp"
	"time"

	followmodel "SnapTalk/module/follow/model"
	postmodel "SnapTalk/module/post/model"
	"SnapTalk/module/user/model"
	"SnapTalk/tools/errs"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var userColl = func() *mongo.Collection { return (&model.User{}).Collection() }

func mongoFindOneAndUpdateAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// FindByID loads a user by its object ID.
func FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrUserNotFound.WrapMsg("bad user id", "id", id)
	}
	var u model.User
	err = userColl().FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "find user by id", "id", id)
	}
	return &u, nil
}

// FindByUsername resolves a display handle to a user. The match is
// case-insensitive exact.
func FindByUsername(ctx context.Context, username string) (*model.User, error) {
	filter := bson.M{"username": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(username) + "$",
		Options: "i",
	}}
	var u model.User
	err := userColl().FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "find user by username", "username", username)
	}
	return &u, nil
}

func FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := userColl().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "find user by email")
	}
	return &u, nil
}

// Insert stores a new user and backfills its generated ID.
func Insert(ctx context.Context, u *model.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := userColl().InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.ErrDuplicate.WrapMsg("email or username taken")
		}
		return errs.WrapMsg(err, "insert user")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

// UpdateProfile applies the given profile fields and returns the fresh doc.
func UpdateProfile(ctx context.Context, id string, fields bson.M) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrUserNotFound
	}
	fields["updated_at"] = time.Now()
	res := userColl().FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": fields},
		mongoFindOneAndUpdateAfter(),
	)
	var u model.User
	if err := res.Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrUserNotFound
		}
		return nil, errs.WrapMsg(err, "update profile", "id", id)
	}
	return &u, nil
}

// SaveTokens persists the current access/refresh pair on the user document.
// Empty strings clear the pair (logout).
func SaveTokens(ctx context.Context, id, access, refresh string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errs.ErrUserNotFound
	}
	_, err = userColl().UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"access_token":  access,
		"refresh_token": refresh,
		"updated_at":    time.Now(),
	}})
	if err != nil {
		return errs.WrapMsg(err, "save tokens", "id", id)
	}
	return nil
}

// GetStats aggregates the profile counters.
func GetStats(ctx context.Context, userID primitive.ObjectID) (model.Stats, error) {
	var s model.Stats
	var err error

	postColl := (&postmodel.Post{}).Collection()
	likeColl := (&postmodel.Like{}).Collection()
	followColl := (&followmodel.Follow{}).Collection()

	if s.PostsCount, err = postColl.CountDocuments(ctx, bson.M{"author": userID}); err != nil {
		return s, errs.WrapMsg(err, "count posts")
	}
	if s.FollowersCount, err = followColl.CountDocuments(ctx, bson.M{"following": userID}); err != nil {
		return s, errs.WrapMsg(err, "count followers")
	}
	if s.FollowingCount, err = followColl.CountDocuments(ctx, bson.M{"follower": userID}); err != nil {
		return s, errs.WrapMsg(err, "count following")
	}

	// likes across all of the user's posts
	cur, err := postColl.Find(ctx, bson.M{"author": userID})
	if err != nil {
		return s, errs.WrapMsg(err, "list post ids")
	}
	defer cur.Close(ctx)
	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var p postmodel.Post
		if err := cur.Decode(&p); err != nil {
			return s, errs.WrapMsg(err, "decode post")
		}
		ids = append(ids, p.ID)
	}
	if len(ids) > 0 {
		if s.TotalLikesCount, err = likeColl.CountDocuments(ctx, bson.M{"post": bson.M{"$in": ids}}); err != nil {
			return s, errs.WrapMsg(err, "count likes")
		}
	}
	return s, nil
}

// ProfileByUsername builds the public profile view.
func ProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	u, err := FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return buildProfile(ctx, u)
}

// ProfileByID builds the public profile view for the given user ID.
func ProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	u, err := FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildProfile(ctx, u)
}

func buildProfile(ctx context.Context, u *model.User) (*model.Profile, error) {
	stats, err := GetStats(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &model.Profile{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Username:  u.Username,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Verify:    u.Verify,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Stats:     stats,
	}, nil
}
