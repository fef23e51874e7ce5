package model

import (
	"time"

	mgo "SnapTalk/service/mgo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Follow records "follower follows following". One document per edge.
type Follow struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Follower  primitive.ObjectID `bson:"follower" json:"followerId"`
	Following primitive.ObjectID `bson:"following" json:"followingId"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

func (f *Follow) GetTableName() string {
	return "follows"
}

func (f *Follow) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(f.GetTableName())
}
