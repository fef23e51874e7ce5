package model

import (
	"time"

	mgo "SnapTalk/service/mgo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Post struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Author   primitive.ObjectID `bson:"author" json:"authorId"`
	Text     string             `bson:"text,omitempty" json:"text"`
	ImageURL string             `bson:"image_url,omitempty" json:"imageUrl"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

func (p *Post) GetTableName() string {
	return "posts"
}

func (p *Post) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(p.GetTableName())
}
