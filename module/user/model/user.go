package model

import (
	"time"

	mgo "SnapTalk/service/mgo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// User is the account master record. Tokens live on the document like the
// rest of the profile; password and tokens never serialize to JSON.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	FullName string             `bson:"full_name" json:"fullName"`
	Username string             `bson:"username" json:"username"`
	Password string             `bson:"password" json:"-"`
	Avatar   string             `bson:"avatar,omitempty" json:"avatar"`
	Bio      string             `bson:"bio,omitempty" json:"bio"`
	Verify   bool               `bson:"verify" json:"verify"`

	AccessToken  string `bson:"access_token,omitempty" json:"-"`
	RefreshToken string `bson:"refresh_token,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

func (u *User) GetTableName() string {
	return "users"
}

func (u *User) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(u.GetTableName())
}

// Stats is the denormalized counters block attached to profile reads.
type Stats struct {
	PostsCount      int64 `json:"postsCount"`
	FollowersCount  int64 `json:"followersCount"`
	FollowingCount  int64 `json:"followingCount"`
	TotalLikesCount int64 `json:"totalLikesCount"`
}

// Profile is the public view of a user plus stats.
type Profile struct {
	ID        primitive.ObjectID `json:"id"`
	Email     string             `json:"email"`
	FullName  string             `json:"fullName"`
	Username  string             `json:"username"`
	Avatar    string             `json:"avatar,omitempty"`
	Bio       string             `json:"bio,omitempty"`
	Verify    bool               `json:"verify"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Stats
}
