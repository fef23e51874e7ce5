package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"SnapTalk/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	tokens map[string]Identity
}

func (v *stubVerifier) Verify(token string) (Identity, error) {
	if ident, ok := v.tokens[token]; ok {
		return ident, nil
	}
	return Identity{}, &security.VerifyError{
		Kind: security.FailureBadSignature,
		Err:  fmt.Errorf("unknown token"),
	}
}

type gatewayRig struct {
	srv   *httptest.Server
	chat  *Server
	store *fakeStore
}

func newGatewayRig(t *testing.T) *gatewayRig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := &fakeDirectory{users: []*DirectoryUser{
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bob"},
	}}
	store := newFakeStore(dir)
	reg := NewRegistry()
	router := NewRouter(dir, store, NewFanout(reg))
	verifier := &stubVerifier{tokens: map[string]Identity{
		"tok-alice": {UserID: "u1", Username: "alice"},
		"tok-bob":   {UserID: "u2", Username: "bob"},
	}}
	chatSrv := NewServer(Config{}, verifier, router, reg, nil)

	r := gin.New()
	r.GET("/ws", chatSrv.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &gatewayRig{srv: srv, chat: chatSrv, store: store}
}

func (g *gatewayRig) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(g.srv.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// connect dials and waits until the server side has registered the session.
func (g *gatewayRig) connect(t *testing.T, token string, wantLen int) *websocket.Conn {
	t.Helper()
	ws := g.dial(t, token)
	require.Eventually(t, func() bool {
		return g.chat.Registry().Len() == wantLen
	}, time.Second, 5*time.Millisecond)
	return ws
}

func readWire(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func expectPolicyClose(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := ws.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation),
		"expected policy-violation close, got %v", err)
}

func TestServerRefusesHandshakeWithoutToken(t *testing.T) {
	rig := newGatewayRig(t)
	ws := rig.dial(t, "")
	expectPolicyClose(t, ws)
	assert.Equal(t, 0, rig.chat.Registry().Len())
}

func TestServerRefusesHandshakeWithBadToken(t *testing.T) {
	rig := newGatewayRig(t)
	ws := rig.dial(t, "tok-forged")
	expectPolicyClose(t, ws)
	assert.Equal(t, 0, rig.chat.Registry().Len())
}

func TestServerDeliversBetweenLiveConnections(t *testing.T) {
	rig := newGatewayRig(t)
	alice := rig.connect(t, "tok-alice", 1)
	bob := rig.connect(t, "tok-bob", 2)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"message","to":"bob","text":"hi"}`)))

	for _, ws := range []*websocket.Conn{alice, bob} {
		frame := readWire(t, ws)
		assert.Equal(t, "message", frame["type"])
		assert.Equal(t, "alice", frame["from"])
		assert.Equal(t, "bob", frame["to"])
		assert.Equal(t, "hi", frame["text"])
	}
}

func TestServerReconnectLoadsHistory(t *testing.T) {
	rig := newGatewayRig(t)
	alice := rig.connect(t, "tok-alice", 1)

	// bob is offline; the send still persists and echoes
	require.NoError(t, alice.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"message","to":"bob","text":"while you were out"}`)))
	echo := readWire(t, alice)
	require.Equal(t, "message", echo["type"])

	bob := rig.connect(t, "tok-bob", 2)
	require.NoError(t, bob.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"load","with":"alice"}`)))
	hist := readWire(t, bob)
	require.Equal(t, "history", hist["type"])
	msgs := hist["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "while you were out", msgs[0].(map[string]any)["text"])
}

type recordingPresence struct {
	mu      sync.Mutex
	online  []string
	offline []string
}

func (p *recordingPresence) Online(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = append(p.online, userID)
	return nil
}

func (p *recordingPresence) Offline(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offline = append(p.offline, userID)
	return nil
}

func (p *recordingPresence) offlineCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.offline)
}

func TestMarkOfflineYieldsToNewerRegistration(t *testing.T) {
	reg := NewRegistry()
	pres := &recordingPresence{}
	srv := NewServer(Config{}, nil, nil, reg, pres)

	// the user reconnected before the old session's offline write ran
	reg.Register("u1", NewClient("c2", Identity{UserID: "u1", Username: "alice"}, nil, 8))
	srv.markOffline("u1")
	assert.Never(t, func() bool { return pres.offlineCount() > 0 },
		200*time.Millisecond, 20*time.Millisecond)

	// with no registration left, the offline write goes through
	srv.markOffline("u2")
	require.Eventually(t, func() bool { return pres.offlineCount() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestServerUnregistersOnClientClose(t *testing.T) {
	rig := newGatewayRig(t)
	alice := rig.connect(t, "tok-alice", 1)

	require.NoError(t, alice.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second)))
	_ = alice.Close()

	require.Eventually(t, func() bool {
		return rig.chat.Registry().Len() == 0
	}, time.Second, 5*time.Millisecond)
}
