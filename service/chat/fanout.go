package chat

import (
	chatmodel "SnapTalk/module/chat/model"
)

// Fanout delivers one persisted message to up to two parties: the sender
// (echo) and the recipient. Handles are re-resolved from the registry at
// delivery time, not at the time the send was queued; anything between the
// persistence write and this point may have changed the registry.
type Fanout struct {
	reg *Registry
}

func NewFanout(reg *Registry) *Fanout {
	return &Fanout{reg: reg}
}

// Deliver pushes the message to the live handles. Must be called only after
// the persistence write has completed. No queueing, no retry: a recipient
// without an open registered handle is silently skipped.
func (f *Fanout) Deliver(senderID, recipientID string, v *chatmodel.MessageView) {
	payload := BuildMessage(v)

	if c, ok := f.reg.Lookup(senderID); ok {
		c.TrySend(payload)
	}
	if recipientID == senderID {
		return
	}
	if c, ok := f.reg.Lookup(recipientID); ok && c.Open() {
		c.TrySend(payload)
	}
}
