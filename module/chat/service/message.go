package service

import (
	"context"
	"strings"
	"time"

	"SnapTalk/module/chat/model"
	usermodel "SnapTalk/module/user/model"
	"SnapTalk/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxTextLen = 1000

// joinedMessage is the aggregation shape: message plus the joined
// sender/recipient user documents.
type joinedMessage struct {
	model.Message `bson:",inline"`
	SenderDoc     []usermodel.User `bson:"sender_doc"`
	RecipientDoc  []usermodel.User `bson:"recipient_doc"`
}

func msgColl() *mongo.Collection { return (&model.Message{}).Collection() }

// Create persists a message and returns its read view. The view's display
// handles come from the users collection at read time.
func Create(ctx context.Context, senderID, recipientID, text string) (*model.MessageView, error) {
	sender, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("bad sender id")
	}
	recipient, err := primitive.ObjectIDFromHex(recipientID)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("bad recipient id")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errs.ErrArgs.WrapMsg("empty text")
	}
	if len(text) > maxTextLen {
		return nil, errs.ErrArgs.WrapMsg("text too long")
	}

	now := time.Now()
	m := &model.Message{
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := msgColl().InsertOne(ctx, m)
	if err != nil {
		return nil, errs.WrapMsg(err, "insert message")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}

	views, err := joinViews(ctx, bson.M{"_id": m.ID}, 1)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, errs.New("message vanished after insert")
	}
	return &views[0], nil
}

// FindConversation returns every message between the two users, ascending by
// creation time.
func FindConversation(ctx context.Context, userIDA, userIDB string) ([]model.MessageView, error) {
	a, err := primitive.ObjectIDFromHex(userIDA)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("bad user id")
	}
	b, err := primitive.ObjectIDFromHex(userIDB)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("bad user id")
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": a, "recipient": b},
		bson.M{"sender": b, "recipient": a},
	}}
	return joinViews(ctx, filter, 1)
}

// ListChats returns, for each counterpart the user has messaged with, the
// latest exchanged message; ordered by last activity descending.
func ListChats(ctx context.Context, userID string) ([]model.ChatSummary, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("bad user id")
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": uid},
		bson.M{"recipient": uid},
	}}
	views, err := joinViews(ctx, filter, -1)
	if err != nil {
		return nil, err
	}

	// messages arrive newest first; keep the first one per counterpart
	seen := make(map[string]bool)
	out := make([]model.ChatSummary, 0)
	for _, v := range views {
		otherID, otherName, otherAvatar := v.ToID, v.To, v.ToAvatar
		if v.FromID != userID {
			otherID, otherName, otherAvatar = v.FromID, v.From, v.FromAvatar
		}
		if seen[otherID] {
			continue
		}
		seen[otherID] = true
		out = append(out, model.ChatSummary{
			UserID:          otherID,
			Username:        otherName,
			Avatar:          otherAvatar,
			LastMessage:     v.Text,
			LastMessageTime: v.CreatedAt,
		})
	}
	return out, nil
}

// joinViews runs the match + sort + user-join pipeline and maps the result
// into read views. sortDir is 1 (ascending) or -1 (descending) by created_at.
func joinViews(ctx context.Context, match bson.M, sortDir int) ([]model.MessageView, error) {
	userTable := (&usermodel.User{}).GetTableName()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: sortDir}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         userTable,
			"localField":   "sender",
			"foreignField": "_id",
			"as":           "sender_doc",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         userTable,
			"localField":   "recipient",
			"foreignField": "_id",
			"as":           "recipient_doc",
		}}},
	}
	cur, err := msgColl().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errs.WrapMsg(err, "aggregate messages")
	}
	defer cur.Close(ctx)

	var out []model.MessageView
	for cur.Next(ctx) {
		var jm joinedMessage
		if err := cur.Decode(&jm); err != nil {
			return nil, errs.WrapMsg(err, "decode message")
		}
		v := model.MessageView{
			ID:        jm.Message.ID.Hex(),
			FromID:    jm.Message.Sender.Hex(),
			ToID:      jm.Message.Recipient.Hex(),
			Text:      jm.Message.Text,
			CreatedAt: jm.Message.CreatedAt,
		}
		if len(jm.SenderDoc) > 0 {
			v.From = jm.SenderDoc[0].Username
			v.FromAvatar = jm.SenderDoc[0].Avatar
		}
		if len(jm.RecipientDoc) > 0 {
			v.To = jm.RecipientDoc[0].Username
			v.ToAvatar = jm.RecipientDoc[0].Avatar
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.WrapMsg(err, "iterate messages")
	}
	return out, nil
}
