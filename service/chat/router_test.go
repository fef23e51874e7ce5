package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	chatmodel "SnapTalk/module/chat/model"
	"SnapTalk/tools/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	users []*DirectoryUser
}

func (d *fakeDirectory) FindByUsername(_ context.Context, username string) (*DirectoryUser, error) {
	for _, u := range d.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, errs.ErrUserNotFound
}

func (d *fakeDirectory) nameOf(id string) string {
	for _, u := range d.users {
		if u.ID == id {
			return u.Username
		}
	}
	return ""
}

type fakeStore struct {
	mu         sync.Mutex
	dir        *fakeDirectory
	msgs       []chatmodel.MessageView
	seq        int
	base       time.Time
	failCreate bool
}

func newFakeStore(dir *fakeDirectory) *fakeStore {
	return &fakeStore{dir: dir, base: time.Now()}
}

func (s *fakeStore) Create(_ context.Context, senderID, recipientID, text string) (*chatmodel.MessageView, error) {
	if s.failCreate {
		return nil, fmt.Errorf("store unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	v := chatmodel.MessageView{
		ID:        fmt.Sprintf("m%d", s.seq),
		From:      s.dir.nameOf(senderID),
		FromID:    senderID,
		To:        s.dir.nameOf(recipientID),
		ToID:      recipientID,
		Text:      text,
		CreatedAt: s.base.Add(time.Duration(s.seq) * time.Millisecond),
	}
	s.msgs = append(s.msgs, v)
	return &v, nil
}

func (s *fakeStore) FindConversation(_ context.Context, a, b string) ([]chatmodel.MessageView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []chatmodel.MessageView
	for _, m := range s.msgs {
		if (m.FromID == a && m.ToID == b) || (m.FromID == b && m.ToID == a) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// seed inserts a message directly, bypassing Create; used to test read-side
// ordering independent of insertion order.
func (s *fakeStore) seed(v chatmodel.MessageView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, v)
}

func newTestRig() (*fakeDirectory, *fakeStore, *Registry, *Router) {
	dir := &fakeDirectory{users: []*DirectoryUser{
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bob"},
	}}
	store := newFakeStore(dir)
	reg := NewRegistry()
	router := NewRouter(dir, store, NewFanout(reg))
	return dir, store, reg, router
}

func recvFrame(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case b := <-c.Send:
		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		return m
	case <-time.After(time.Second):
		t.Fatal("expected a frame, got none")
		return nil
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b := <-c.Send:
		t.Fatalf("expected no frame, got %s", b)
	default:
	}
}

func TestRouterSendFansOutToBothParties(t *testing.T) {
	_, store, reg, router := newTestRig()
	alice := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	bob := NewClient("c2", Identity{UserID: "u2", Username: "bob"}, nil, 8)
	reg.Register("u1", alice)
	reg.Register("u2", bob)

	router.Handle(context.Background(), alice, []byte(`{"type":"message","to":"bob","text":"hi"}`))

	echo := recvFrame(t, alice)
	push := recvFrame(t, bob)
	for _, frame := range []map[string]any{echo, push} {
		assert.Equal(t, "message", frame["type"])
		assert.Equal(t, "alice", frame["from"])
		assert.Equal(t, "bob", frame["to"])
		assert.Equal(t, "hi", frame["text"])
	}
	assertNoFrame(t, alice)
	assertNoFrame(t, bob)
	assert.Len(t, store.msgs, 1)
}

func TestRouterSendRecipientOffline(t *testing.T) {
	_, store, reg, router := newTestRig()
	alice := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	reg.Register("u1", alice)

	router.Handle(context.Background(), alice, []byte(`{"type":"message","to":"bob","text":"hi"}`))

	// persisted, echoed to sender only
	echo := recvFrame(t, alice)
	assert.Equal(t, "message", echo["type"])
	assertNoFrame(t, alice)
	assert.Len(t, store.msgs, 1)
}

func TestRouterRoundTrip(t *testing.T) {
	_, _, reg, router := newTestRig()
	alice := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	reg.Register("u1", alice)

	ctx := context.Background()
	router.Handle(ctx, alice, []byte(`{"type":"message","to":"bob","text":"hi"}`))
	_ = recvFrame(t, alice) // echo

	router.Handle(ctx, alice, []byte(`{"type":"load","with":"bob"}`))
	hist := recvFrame(t, alice)
	require.Equal(t, "history", hist["type"])
	msgs := hist["messages"].([]any)
	require.Len(t, msgs, 1)
	last := msgs[len(msgs)-1].(map[string]any)
	assert.Equal(t, "alice", last["from"])
	assert.Equal(t, "bob", last["to"])
	assert.Equal(t, "hi", last["text"])
}

func TestRouterHistoryOrdering(t *testing.T) {
	_, store, reg, router := newTestRig()
	alice := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	reg.Register("u1", alice)

	base := time.Now()
	// seeded out of order on purpose
	store.seed(chatmodel.MessageView{ID: "m3", FromID: "u1", ToID: "u2", Text: "third", CreatedAt: base.Add(3 * time.Second)})
	store.seed(chatmodel.MessageView{ID: "m1", FromID: "u2", ToID: "u1", Text: "first", CreatedAt: base.Add(1 * time.Second)})
	store.seed(chatmodel.MessageView{ID: "m2", FromID: "u1", ToID: "u2", Text: "second", CreatedAt: base.Add(2 * time.Second)})

	router.Handle(context.Background(), alice, []byte(`{"type":"load","with":"bob"}`))
	hist := recvFrame(t, alice)
	msgs := hist["messages"].([]any)
	require.Len(t, msgs, 3)
	var texts []string
	for _, m := range msgs {
		texts = append(texts, m.(map[string]any)["text"].(string))
	}
	assert.Equal(t, []string{"first", "second", "third"}, texts)
}

func TestRouterLoadUnknownUserIsSilent(t *testing.T) {
	_, _, reg, router := newTestRig()
	alice := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	reg.Register("u1", alice)

	router.Handle(context.Background(), alice, []byte(`{"type":"load","with":"nobody"}`))
	assertNoFrame(t, alice)
}

func TestRouterSendUnknownRecipient(t *testing.T) {
	_, store, reg, router := newTestRig()
	alice := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	reg.Register("u1", alice)

	router.Handle(context.Background(), alice, []byte(`{"type":"message","to":"nobody","text":"hi"}`))

	frame := recvFrame(t, alice)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "recipient_not_found", frame["reason"])
	assert.Empty(t, store.msgs, "nothing may be persisted for an unknown recipient")
}

func TestRouterSendPersistFailure(t *testing.T) {
	_, store, reg, router := newTestRig()
	store.failCreate = true
	alice := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	bob := NewClient("c2", Identity{UserID: "u2", Username: "bob"}, nil, 8)
	reg.Register("u1", alice)
	reg.Register("u2", bob)

	router.Handle(context.Background(), alice, []byte(`{"type":"message","to":"bob","text":"hi"}`))

	frame := recvFrame(t, alice)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "not_delivered", frame["reason"])
	assertNoFrame(t, bob)
}

func TestRouterMalformedFramesIgnored(t *testing.T) {
	_, store, reg, router := newTestRig()
	alice := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	reg.Register("u1", alice)

	ctx := context.Background()
	router.Handle(ctx, alice, []byte(`not json at all`))
	router.Handle(ctx, alice, []byte(`{"type":"dance"}`))
	assertNoFrame(t, alice)
	assert.Empty(t, store.msgs)

	// the connection keeps working afterwards
	router.Handle(ctx, alice, []byte(`{"type":"message","to":"bob","text":"still here"}`))
	frame := recvFrame(t, alice)
	assert.Equal(t, "message", frame["type"])
}

func TestRouterResolvesRecipientCaseInsensitively(t *testing.T) {
	_, store, reg, router := newTestRig()
	alice := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	reg.Register("u1", alice)

	router.Handle(context.Background(), alice, []byte(`{"type":"message","to":"BoB","text":"hi"}`))
	frame := recvFrame(t, alice)
	assert.Equal(t, "message", frame["type"])
	assert.Len(t, store.msgs, 1)
	assert.Equal(t, "u2", store.msgs[0].ToID)
}

func TestFanoutReResolvesHandlesAtDeliveryTime(t *testing.T) {
	_, _, reg, router := newTestRig()
	old := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	reg.Register("u1", old)
	newer := NewClient("c2", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	reg.Register("u1", newer)

	// the frame arrives on the superseded connection; the echo must go to
	// whichever handle is registered when delivery happens
	router.Handle(context.Background(), old, []byte(`{"type":"message","to":"bob","text":"hi"}`))

	frame := recvFrame(t, newer)
	assert.Equal(t, "message", frame["type"])
	assertNoFrame(t, old)
}

func TestFanoutSkipsClosedRecipient(t *testing.T) {
	dir := &fakeDirectory{users: []*DirectoryUser{
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bob"},
	}}
	store := newFakeStore(dir)
	reg := NewRegistry()
	fan := NewFanout(reg)

	alice := NewClient("c1", Identity{UserID: "u1", Username: "alice"}, nil, 8)
	bob := NewClient("c2", Identity{UserID: "u2", Username: "bob"}, nil, 8)
	reg.Register("u1", alice)
	reg.Register("u2", bob)
	bob.Close() // channel reports itself closed at delivery time

	v, err := store.Create(context.Background(), "u1", "u2", "hi")
	require.NoError(t, err)
	fan.Deliver("u1", "u2", v)

	_ = recvFrame(t, alice)
	assertNoFrame(t, bob)
}
