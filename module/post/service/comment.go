package service

import (
	"context"
	"strings"
	"time"

	"SnapTalk/module/post/model"
	"SnapTalk/tools/errs"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func commentColl() *mongo.Collection { return (&model.Comment{}).Collection() }

// AddComment attaches a comment to a post.
func AddComment(ctx context.Context, postID, authorID, text string) (*model.Comment, error) {
	p, err := GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("bad author id")
	}
	text = strings.TrimSpace(text)
	if text == "" || len(text) > 500 {
		return nil, errs.ErrArgs.WrapMsg("comment must be 1-500 chars")
	}
	now := time.Now()
	cm := &model.Comment{
		Post:      p.ID,
		Author:    author,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := commentColl().InsertOne(ctx, cm)
	if err != nil {
		return nil, errs.WrapMsg(err, "insert comment")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		cm.ID = oid
	}
	return cm, nil
}

// ListComments returns a post's comments, oldest first.
func ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	post, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, errs.ErrRecordNotFound
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := commentColl().Find(ctx, bson.M{"post": post}, opts)
	if err != nil {
		return nil, errs.WrapMsg(err, "list comments")
	}
	defer cur.Close(ctx)
	out := make([]model.Comment, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode comments")
	}
	return out, nil
}

// DeleteComment removes a comment owned by requesterID.
func DeleteComment(ctx context.Context, id, requesterID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errs.ErrRecordNotFound
	}
	var cm model.Comment
	err = commentColl().FindOne(ctx, bson.M{"_id": oid}).Decode(&cm)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrRecordNotFound
	}
	if err != nil {
		return errs.WrapMsg(err, "find comment", "id", id)
	}
	if cm.Author.Hex() != requesterID {
		return errs.ErrForbidden.WrapMsg("not the author")
	}
	if _, err := commentColl().DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return errs.WrapMsg(err, "delete comment", "id", id)
	}
	return nil
}
