package chat

import (
	"context"

	chatmodel "SnapTalk/module/chat/model"
)

// Identity is the decoded output of credential verification, bound to a
// connection at handshake time. Never persisted by the gateway.
type Identity struct {
	UserID   string
	Username string
}

// DirectoryUser is the directory's view of an account.
type DirectoryUser struct {
	ID       string
	Username string
	Avatar   string
}

// UserDirectory resolves display handles. Absent users come back as
// errs.ErrUserNotFound.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*DirectoryUser, error)
}

// MessageStore persists direct messages. FindConversation returns messages
// ascending by creation time.
type MessageStore interface {
	Create(ctx context.Context, senderID, recipientID, text string) (*chatmodel.MessageView, error)
	FindConversation(ctx context.Context, userIDA, userIDB string) ([]chatmodel.MessageView, error)
}

// CredentialVerifier validates a bearer credential and extracts the identity
// claims. All failures refuse the connection the same way.
type CredentialVerifier interface {
	Verify(token string) (Identity, error)
}

// Presence mirrors reachability to an external store for the REST layer.
// Advisory only: delivery decisions never consult it.
type Presence interface {
	Online(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string) error
}
