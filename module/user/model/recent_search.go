package model

import (
	"time"

	mgo "SnapTalk/service/mgo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RecentSearch records one profile lookup made from the search box. At most
// one row per (user, searched_user) pair; a repeat lookup bumps updated_at
// instead of inserting a duplicate. Self-lookups are never stored.
type RecentSearch struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User         primitive.ObjectID `bson:"user" json:"userId"`
	SearchedUser primitive.ObjectID `bson:"searched_user" json:"searchedUserId"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

func (r *RecentSearch) GetTableName() string {
	return "recent_searches"
}

func (r *RecentSearch) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(r.GetTableName())
}

// SearchResult is the trimmed user row returned by search and by the
// recent-searches list.
type SearchResult struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	FullName string             `json:"fullName"`
	Avatar   string             `json:"avatar,omitempty"`
}
