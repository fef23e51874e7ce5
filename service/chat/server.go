package chat

import (
	"context"
	"net"
	"net/http"
	"time"

	"SnapTalk/logger"
	"SnapTalk/tools/ids"
	"SnapTalk/tools/safe"
	"SnapTalk/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Config struct {
	SendQueueSize int
}

// Server is the gateway coordinator: it accepts connections, runs the
// handshake, wires a connection into the registry, feeds its frames to the
// router, and tears it down on close.
//
// Per-connection states: CONNECTING (raw channel accepted) -> AUTHENTICATING
// (credential checked, no frames processed) -> ACTIVE (registered, frames
// dispatched) -> CLOSED (terminal).
type Server struct {
	conf     Config
	verifier CredentialVerifier
	router   *Router
	reg      *Registry
	presence Presence // optional
}

func NewServer(conf Config, verifier CredentialVerifier, router *Router, reg *Registry, presence Presence) *Server {
	return &Server{
		conf:     conf,
		verifier: verifier,
		router:   router,
		reg:      reg,
		presence: presence,
	}
}

func (s *Server) Registry() *Registry { return s.reg }

// HandleWS serves GET /ws?token=... . The credential travels out-of-band of
// the frame protocol, in the initiating request.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// not a websocket request / handshake failed
		logger.Infof("[chat] upgrade failed: %v", err)
		return
	}

	token := c.Query("token")
	if token == "" {
		s.refuse(ws, "missing token")
		return
	}
	ident, err := s.verifier.Verify(token)
	if err != nil {
		if ve, ok := err.(*security.VerifyError); ok {
			logger.Warnf("[chat] handshake refused (%s): %v", ve.Kind, ve.Err)
		} else {
			logger.Warnf("[chat] handshake refused: %v", err)
		}
		s.refuse(ws, "invalid token")
		return
	}

	client := NewClient(ids.GenerateString(), ident, ws, s.conf.SendQueueSize)
	if prev := s.reg.Register(ident.UserID, client); prev != nil {
		// last handshake wins; the superseded channel is left to its own
		// close event
		logger.Infof("[chat] session superseded user=%s old=%s new=%s",
			ident.UserID, prev.ConnID, client.ConnID)
	}
	s.markOnline(ident.UserID)

	go client.writePump()
	logger.Infof("[chat] connected user=%s (%s) conn=%s",
		ident.UserID, ident.Username, client.ConnID)

	s.readLoop(client)
	s.teardown(client)
}

func (s *Server) readLoop(client *Client) {
	ws := client.WS
	ctx := context.Background()
	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[chat] peer closed conn=%s err=%v", client.ConnID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[chat] read timeout conn=%s err=%v", client.ConnID, rerr)
			} else {
				logger.Infof("[chat] read error conn=%s err=%v", client.ConnID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		s.router.Handle(ctx, client, data)
	}
}

// teardown runs on socket close. Idempotent: the CAS unregister makes a
// stale close event a no-op, and Client.Close tolerates repeats.
func (s *Server) teardown(client *Client) {
	if s.reg.Unregister(client.Identity.UserID, client) {
		// only the registered connection owns the presence marker
		s.markOffline(client.Identity.UserID)
	}
	client.Close()
	logger.Infof("[chat] disconnected user=%s conn=%s", client.Identity.UserID, client.ConnID)
}

// refuse closes the channel with policy-violation semantics before any
// protocol frame is accepted. No registry entry exists at this point.
func (s *Server) refuse(ws *websocket.Conn, reason string) {
	deadline := time.Now().Add(2 * time.Second)
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = ws.WriteControl(websocket.CloseMessage, msg, deadline)
	_ = ws.Close()
}

func (s *Server) markOnline(userID string) {
	if s.presence == nil {
		return
	}
	safe.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.presence.Online(ctx, userID); err != nil {
			logger.Warnf("[chat] presence online failed user=%s: %v", userID, err)
		}
	})
}

func (s *Server) markOffline(userID string) {
	if s.presence == nil {
		return
	}
	safe.SafeGo(func() {
		if _, ok := s.reg.Lookup(userID); ok {
			// a newer session registered before this write ran; its Online
			// marker must not be clobbered by the old session's teardown
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.presence.Offline(ctx, userID); err != nil {
			logger.Warnf("[chat] presence offline failed user=%s: %v", userID, err)
		}
	})
}

// jwtVerifier adapts tools/security to the gateway's verifier contract.
type jwtVerifier struct {
	opts security.Options
}

func NewJWTVerifier(secret []byte) CredentialVerifier {
	return &jwtVerifier{opts: security.DefaultOptions(secret)}
}

func (v *jwtVerifier) Verify(token string) (Identity, error) {
	claims, err := security.Verify(v.opts, token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
