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

func postColl() *mongo.Collection { return (&model.Post{}).Collection() }

// CreatePost stores a new post for the author.
func CreatePost(ctx context.Context, authorID, text, imageURL string) (*model.Post, error) {
	author, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("bad author id")
	}
	text = strings.TrimSpace(text)
	if text == "" && imageURL == "" {
		return nil, errs.ErrArgs.WrapMsg("post needs text or an image")
	}
	if len(text) > 2000 {
		return nil, errs.ErrArgs.WrapMsg("text too long")
	}
	now := time.Now()
	p := &model.Post{
		Author:    author,
		Text:      text,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := postColl().InsertOne(ctx, p)
	if err != nil {
		return nil, errs.WrapMsg(err, "insert post")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return p, nil
}

// GetPost loads one post by ID.
func GetPost(ctx context.Context, id string) (*model.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrRecordNotFound
	}
	var p model.Post
	err = postColl().FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrRecordNotFound
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "find post", "id", id)
	}
	return &p, nil
}

// ListByAuthor returns the author's posts, newest first.
func ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	author, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("bad author id")
	}
	return listPosts(ctx, bson.M{"author": author})
}

// ListAll returns all posts, newest first.
func ListAll(ctx context.Context) ([]model.Post, error) {
	return listPosts(ctx, bson.M{})
}

func listPosts(ctx context.Context, filter bson.M) ([]model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := postColl().Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.WrapMsg(err, "list posts")
	}
	defer cur.Close(ctx)
	out := make([]model.Post, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode posts")
	}
	return out, nil
}

// DeletePost removes a post owned by requesterID, with its likes and
// comments.
func DeletePost(ctx context.Context, id, requesterID string) error {
	p, err := GetPost(ctx, id)
	if err != nil {
		return err
	}
	if p.Author.Hex() != requesterID {
		return errs.ErrForbidden.WrapMsg("not the author")
	}
	if _, err := postColl().DeleteOne(ctx, bson.M{"_id": p.ID}); err != nil {
		return errs.WrapMsg(err, "delete post", "id", id)
	}
	// best-effort cascade
	_, _ = (&model.Like{}).Collection().DeleteMany(ctx, bson.M{"post": p.ID})
	_, _ = (&model.Comment{}).Collection().DeleteMany(ctx, bson.M{"post": p.ID})
	return nil
}
