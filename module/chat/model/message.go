package model

import (
	"time"

	mgo "SnapTalk/service/mgo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Message is a persisted direct message. Immutable once created; this
// subsystem has no edit or delete operation.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Sender    primitive.ObjectID `bson:"sender"`
	Recipient primitive.ObjectID `bson:"recipient"`
	Text      string             `bson:"text"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (m *Message) GetTableName() string {
	return "messages"
}

func (m *Message) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(m.GetTableName())
}

// MessageView is the read model: sender/recipient display handle and avatar
// are attached at read time by joining the users collection.
type MessageView struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	FromID     string    `json:"fromId"`
	FromAvatar string    `json:"fromAvatar,omitempty"`
	To         string    `json:"to"`
	ToID       string    `json:"toId"`
	ToAvatar   string    `json:"toAvatar,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ChatSummary is one row of the chat list: the counterpart plus the most
// recent message exchanged with them.
type ChatSummary struct {
	UserID          string    `json:"userId"`
	Username        string    `json:"username"`
	Avatar          string    `json:"avatar,omitempty"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
}
