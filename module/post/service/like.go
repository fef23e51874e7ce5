package service

import (
	"context"
	"time"

	"SnapTalk/module/post/model"
	"SnapTalk/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func likeColl() *mongo.Collection { return (&model.Like{}).Collection() }

// LikePost records a like; duplicate likes by the same user are a no-op.
func LikePost(ctx context.Context, postID, userID string) error {
	p, err := GetPost(ctx, postID)
	if err != nil {
		return err
	}
	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errs.ErrArgs.WrapMsg("bad user id")
	}
	filter := bson.M{"post": p.ID, "user": user}
	n, err := likeColl().CountDocuments(ctx, filter)
	if err != nil {
		return errs.WrapMsg(err, "check like")
	}
	if n > 0 {
		return nil
	}
	_, err = likeColl().InsertOne(ctx, &model.Like{
		Post:      p.ID,
		User:      user,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return errs.WrapMsg(err, "insert like")
	}
	return nil
}

// UnlikePost removes the user's like; absent likes are a no-op.
func UnlikePost(ctx context.Context, postID, userID string) error {
	post, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return errs.ErrRecordNotFound
	}
	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errs.ErrArgs.WrapMsg("bad user id")
	}
	_, err = likeColl().DeleteOne(ctx, bson.M{"post": post, "user": user})
	if err != nil {
		return errs.WrapMsg(err, "delete like")
	}
	return nil
}

// CountLikes returns the like total for a post.
func CountLikes(ctx context.Context, postID string) (int64, error) {
	post, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return 0, errs.ErrRecordNotFound
	}
	n, err := likeColl().CountDocuments(ctx, bson.M{"post": post})
	if err != nil {
		return 0, errs.WrapMsg(err, "count likes")
	}
	return n, nil
}
