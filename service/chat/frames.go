package chat

import (
	"encoding/json"
	"fmt"

	chatmodel "SnapTalk/module/chat/model"
)

// Frame discriminators on the wire.
const (
	frameLoad    = "load"
	frameMessage = "message"
	frameHistory = "history"
	frameError   = "error"
)

// Parse failures. The router ignores both kinds: not valid structured data,
// or a discriminator we do not recognize ("ignore unknown" policy for
// forward compatibility).
var (
	ErrMalformedFrame = fmt.Errorf("malformed frame")
	ErrUnknownFrame   = fmt.Errorf("unknown frame type")
)

// LoadFrame asks for the conversation history with another user.
type LoadFrame struct {
	With string
}

// SendFrame carries a direct message to another user.
type SendFrame struct {
	To   string
	Text string
}

// Inbound is the closed set of client frames: *LoadFrame or *SendFrame.
type Inbound interface {
	isInbound()
}

func (*LoadFrame) isInbound() {}
func (*SendFrame) isInbound() {}

type inboundEnvelope struct {
	Type string `json:"type"`
	With string `json:"with"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// ParseInbound validates a raw frame at the protocol boundary and returns
// the typed operation.
func ParseInbound(raw []byte) (Inbound, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, ErrMalformedFrame
	}
	switch env.Type {
	case frameLoad:
		if env.With == "" {
			return nil, ErrMalformedFrame
		}
		return &LoadFrame{With: env.With}, nil
	case frameMessage:
		if env.To == "" || env.Text == "" {
			return nil, ErrMalformedFrame
		}
		return &SendFrame{To: env.To, Text: env.Text}, nil
	default:
		return nil, ErrUnknownFrame
	}
}

type historyFrame struct {
	Type     string                  `json:"type"`
	Messages []chatmodel.MessageView `json:"messages"`
}

type messageFrame struct {
	Type string `json:"type"`
	chatmodel.MessageView
}

type errorFrame struct {
	Type   string `json:"type"`
	Op     string `json:"op"`
	Reason string `json:"reason"`
}

// BuildHistory encodes the ordered conversation for the requesting
// connection only.
func BuildHistory(msgs []chatmodel.MessageView) []byte {
	if msgs == nil {
		msgs = []chatmodel.MessageView{}
	}
	b, _ := json.Marshal(historyFrame{Type: frameHistory, Messages: msgs})
	return b
}

// BuildMessage encodes one delivered message. Built once per message and
// shared by the sender echo and the recipient push.
func BuildMessage(v *chatmodel.MessageView) []byte {
	b, _ := json.Marshal(messageFrame{Type: frameMessage, MessageView: *v})
	return b
}

// BuildError encodes an explicit failure frame for an operation that could
// not complete. Additive to the original protocol; clients that do not know
// it fall under the same ignore-unknown rule.
func BuildError(op, reason string) []byte {
	b, _ := json.Marshal(errorFrame{Type: frameError, Op: op, Reason: reason})
	return b
}
