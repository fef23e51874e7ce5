package model

import (
	"time"

	mgo "SnapTalk/service/mgo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Comment struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Post   primitive.ObjectID `bson:"post" json:"postId"`
	Author primitive.ObjectID `bson:"author" json:"authorId"`
	Text   string             `bson:"text" json:"text"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

func (c *Comment) GetTableName() string {
	return "comments"
}

func (c *Comment) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(c.GetTableName())
}
