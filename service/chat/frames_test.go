package chat

import (
	"encoding/json"
	"testing"
	"time"

	chatmodel "SnapTalk/module/chat/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInboundLoad(t *testing.T) {
	op, err := ParseInbound([]byte(`{"type":"load","with":"bob"}`))
	require.NoError(t, err)
	load, ok := op.(*LoadFrame)
	require.True(t, ok)
	assert.Equal(t, "bob", load.With)
}

func TestParseInboundMessage(t *testing.T) {
	op, err := ParseInbound([]byte(`{"type":"message","to":"bob","text":"hi"}`))
	require.NoError(t, err)
	send, ok := op.(*SendFrame)
	require.True(t, ok)
	assert.Equal(t, "bob", send.To)
	assert.Equal(t, "hi", send.Text)
}

func TestParseInboundRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `this is not json`, ErrMalformedFrame},
		{"empty object", `{}`, ErrUnknownFrame},
		{"unknown type", `{"type":"subscribe","with":"bob"}`, ErrUnknownFrame},
		{"load without with", `{"type":"load"}`, ErrMalformedFrame},
		{"message without to", `{"type":"message","text":"hi"}`, ErrMalformedFrame},
		{"message without text", `{"type":"message","to":"bob"}`, ErrMalformedFrame},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op, err := ParseInbound([]byte(tc.raw))
			assert.Nil(t, op)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseInboundIgnoresExtraFields(t *testing.T) {
	// forward compatibility: unknown fields on a known frame are fine
	op, err := ParseInbound([]byte(`{"type":"load","with":"bob","v":2,"trace":"x"}`))
	require.NoError(t, err)
	assert.IsType(t, &LoadFrame{}, op)
}

func TestBuildHistoryEmpty(t *testing.T) {
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(BuildHistory(nil), &decoded))
	assert.Equal(t, "history", decoded["type"])
	msgs, ok := decoded["messages"].([]any)
	require.True(t, ok, "messages must encode as an array, not null")
	assert.Empty(t, msgs)
}

func TestBuildMessageShape(t *testing.T) {
	v := &chatmodel.MessageView{
		ID:        "m1",
		From:      "alice",
		FromID:    "u1",
		To:        "bob",
		ToID:      "u2",
		Text:      "hi",
		CreatedAt: time.Now(),
	}
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(BuildMessage(v), &decoded))
	assert.Equal(t, "message", decoded["type"])
	assert.Equal(t, "alice", decoded["from"])
	assert.Equal(t, "bob", decoded["to"])
	assert.Equal(t, "hi", decoded["text"])
	assert.Contains(t, decoded, "createdAt")
}

func TestBuildErrorShape(t *testing.T) {
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(BuildError("message", "recipient_not_found"), &decoded))
	assert.Equal(t, "error", decoded["type"])
	assert.Equal(t, "message", decoded["op"])
	assert.Equal(t, "recipient_not_found", decoded["reason"])
}
