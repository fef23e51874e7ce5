package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"SnapTalk/module/user/model"
	"SnapTalk/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const searchLimit = 20

var recentColl = func() *mongo.Collection { return (&model.RecentSearch{}).Collection() }

// searchFilter matches usernames containing q, case-insensitively. Regex
// metacharacters in q are taken literally.
func searchFilter(q string) bson.M {
	return bson.M{"username": primitive.Regex{
		Pattern: regexp.QuoteMeta(q),
		Options: "i",
	}}
}

func toSearchResult(u *model.User) model.SearchResult {
	return model.SearchResult{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// SearchUsers returns up to searchLimit users whose username contains q.
func SearchUsers(ctx context.Context, q string) ([]model.SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errs.ErrArgs.WithDetail("search query is required")
	}
	opts := options.Find().
		SetLimit(searchLimit).
		SetSort(bson.D{{Key: "username", Value: 1}})
	cur, err := userColl().Find(ctx, searchFilter(q), opts)
	if err != nil {
		return nil, errs.WrapMsg(err, "search users", "q", q)
	}
	defer cur.Close(ctx)

	results := make([]model.SearchResult, 0)
	for cur.Next(ctx) {
		var u model.User
		if err := cur.Decode(&u); err != nil {
			return nil, errs.WrapMsg(err, "decode search row")
		}
		results = append(results, toSearchResult(&u))
	}
	return results, nil
}

// AddRecentSearch upserts the (user, searched) pair, bumping updated_at on
// repeats so the list reorders by recency.
func AddRecentSearch(ctx context.Context, userID string, searched primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errs.ErrUserNotFound
	}
	if oid == searched {
		return errs.ErrArgs.WithDetail("cannot search yourself")
	}
	now := time.Now()
	_, err = recentColl().UpdateOne(ctx,
		bson.M{"user": oid, "searched_user": searched},
		bson.M{
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"user": oid, "searched_user": searched, "created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errs.WrapMsg(err, "add recent search", "user", userID)
	}
	return nil
}

// RecentSearches lists the caller's searches, most recent first, joined to
// the searched user documents. Rows whose user has since been deleted are
// dropped from the result.
func RecentSearches(ctx context.Context, userID string) ([]model.SearchResult, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errs.ErrUserNotFound
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": oid}}},
		{{Key: "$sort", Value: bson.M{"updated_at": -1}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         (&model.User{}).GetTableName(),
			"localField":   "searched_user",
			"foreignField": "_id",
			"as":           "searched_doc",
		}}},
	}
	cur, err := recentColl().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errs.WrapMsg(err, "list recent searches", "user", userID)
	}
	defer cur.Close(ctx)

	type joinedSearch struct {
		model.RecentSearch `bson:",inline"`
		SearchedDoc        []model.User `bson:"searched_doc"`
	}
	results := make([]model.SearchResult, 0)
	for cur.Next(ctx) {
		var j joinedSearch
		if err := cur.Decode(&j); err != nil {
			return nil, errs.WrapMsg(err, "decode recent search row")
		}
		if len(j.SearchedDoc) == 0 {
			continue
		}
		results = append(results, toSearchResult(&j.SearchedDoc[0]))
	}
	return results, nil
}

// ClearRecentSearches drops all of the caller's rows.
func ClearRecentSearches(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errs.ErrUserNotFound
	}
	if _, err := recentColl().DeleteMany(ctx, bson.M{"user": oid}); err != nil {
		return errs.WrapMsg(err, "clear recent searches", "user", userID)
	}
	return nil
}
