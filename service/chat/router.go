package chat

import (
	"context"

	"SnapTalk/logger"
	"SnapTalk/tools/errs"

	"github.com/pkg/errors"
)

// Router interprets inbound frames as protocol operations and dispatches
// them. Frames are processed strictly in arrival order per connection; no
// reordering, no batching.
type Router struct {
	users  UserDirectory
	store  MessageStore
	fanout *Fanout
}

func NewRouter(users UserDirectory, store MessageStore, fanout *Fanout) *Router {
	return &Router{users: users, store: store, fanout: fanout}
}

// Handle processes one raw frame from c. Failures are local to the frame;
// they never tear down the connection.
func (r *Router) Handle(ctx context.Context, c *Client, raw []byte) {
	op, err := ParseInbound(raw)
	if err != nil {
		// ignore-unknown policy: no crash, no reply
		logger.Debugf("[chat] ignoring frame user=%s conn=%s err=%v",
			c.Identity.UserID, c.ConnID, err)
		return
	}
	switch f := op.(type) {
	case *LoadFrame:
		r.handleLoad(ctx, c, f)
	case *SendFrame:
		r.handleSend(ctx, c, f)
	}
}

func (r *Router) handleLoad(ctx context.Context, c *Client, f *LoadFrame) {
	other, err := r.users.FindByUsername(ctx, f.With)
	if errors.Is(err, errs.ErrUserNotFound) {
		// silent no-op; the protocol defines no error frame for load
		return
	}
	if err != nil {
		logger.Errorf("[chat] load: resolve %q failed: %v", f.With, err)
		return
	}
	msgs, err := r.store.FindConversation(ctx, c.Identity.UserID, other.ID)
	if err != nil {
		logger.Errorf("[chat] load: history %s<->%s failed: %v",
			c.Identity.UserID, other.ID, err)
		return
	}
	c.TrySend(BuildHistory(msgs))
}

func (r *Router) handleSend(ctx context.Context, c *Client, f *SendFrame) {
	recipient, err := r.users.FindByUsername(ctx, f.To)
	if errors.Is(err, errs.ErrUserNotFound) {
		logger.Warnf("[chat] send: unknown recipient %q from user=%s", f.To, c.Identity.UserID)
		c.TrySend(BuildError(frameMessage, "recipient_not_found"))
		return
	}
	if err != nil {
		logger.Errorf("[chat] send: resolve %q failed: %v", f.To, err)
		c.TrySend(BuildError(frameMessage, "not_delivered"))
		return
	}

	view, err := r.store.Create(ctx, c.Identity.UserID, recipient.ID, f.Text)
	if err != nil {
		// the connection stays open; only this frame failed
		logger.Errorf("[chat] send: persist %s->%s failed: %v",
			c.Identity.UserID, recipient.ID, err)
		c.TrySend(BuildError(frameMessage, "not_delivered"))
		return
	}

	r.fanout.Deliver(c.Identity.UserID, recipient.ID, view)
}
