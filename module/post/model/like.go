package model

import (
	"time"

	mgo "SnapTalk/service/mgo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Like is unique per (post, user); enforced by the service before insert.
type Like struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Post primitive.ObjectID `bson:"post" json:"postId"`
	User primitive.ObjectID `bson:"user" json:"userId"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

func (l *Like) GetTableName() string {
	return "likes"
}

func (l *Like) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(l.GetTableName())
}
