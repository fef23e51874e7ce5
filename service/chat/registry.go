package chat

import (
	"sync"
)

// Registry is the single source of truth for "is user X currently reachable,
// and through which handle". At most one handle per user: a later handshake
// silently supersedes the entry of an earlier one.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]*Client // user id -> live handle
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]*Client),
	}
}

// Register unconditionally overwrites any existing entry for userID and
// returns the previous handle, if any. The caller decides what to do with
// the superseded handle; the registry never closes it.
func (r *Registry) Register(userID string, c *Client) (prev *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.byUser[userID]
	r.byUser[userID] = c
	return prev
}

// Unregister removes the entry for userID only if the registered handle is
// referentially the same as c; otherwise it is a no-op. A stale close event
// from a superseded connection must not evict the newer session.
func (r *Registry) Unregister(userID string, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byUser[userID] != c {
		return false
	}
	delete(r.byUser, userID)
	return true
}

// Lookup returns the live handle for userID, if one is registered.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	return c, ok
}

// Len reports the number of registered users (debug/metrics only).
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
