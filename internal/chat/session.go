package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/business-nexus/backend/internal/auth"
)

// TokenVerifier validates the bearer credential presented in an auth frame.
// Satisfied by *auth.Authenticator.
type TokenVerifier interface {
	VerifyToken(token string) (auth.Claims, error)
}

type sessionState int

const (
	stateUnauthenticated sessionState = iota
	stateAuthenticated
	stateClosed
)

const (
	// writeWait bounds a single outbound write.
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent before the read
	// side gives up on it.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Session is the per-connection state machine. Every connection starts
// unauthenticated; a verified auth frame registers it in the presence
// registry and unlocks chat frames. state and userID are touched only from
// the read loop, so they need no locking; the outbound queue is guarded
// because the relay pushes into it from other connections' read loops.
type Session struct {
	conn     *websocket.Conn
	verifier TokenVerifier
	registry *Registry
	relay    *Relay
	logger   *slog.Logger

	state  sessionState
	userID int64

	mu     sync.Mutex
	closed bool
	send   chan any
}

func newSession(conn *websocket.Conn, verifier TokenVerifier, registry *Registry, relay *Relay, logger *slog.Logger, sendBuffer int) *Session {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &Session{
		conn:     conn,
		verifier: verifier,
		registry: registry,
		relay:    relay,
		logger:   logger,
		send:     make(chan any, sendBuffer),
	}
}

// Push enqueues a frame for delivery. Never blocks: frames destined for a
// closed session or a full queue are dropped, matching the best-effort
// delivery contract.
func (s *Session) Push(frame any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- frame:
	default:
		s.logger.Warn("outbound queue full, dropping frame", "userId", s.userID)
	}
}

// handleFrame reacts to one inbound frame. Frames on a single session are
// handled strictly in arrival order because the read loop is the only caller.
func (s *Session) handleFrame(ctx context.Context, data []byte) {
	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.logger.Debug("dropping malformed frame", "error", err)
		return
	}

	switch {
	case frame.Type == frameAuth && s.state == stateUnauthenticated:
		s.authenticate(frame.Token)
	case frame.Type == frameChatMessage && s.state == stateAuthenticated:
		if _, err := s.relay.Relay(ctx, s.userID, s, frame.ReceiverID, frame.Content); err != nil {
			if errors.Is(err, ErrEmptyContent) {
				s.logger.Debug("dropping empty chat message", "senderId", s.userID)
			} else {
				s.logger.Error("message relay failed",
					"senderId", s.userID, "receiverId", frame.ReceiverID, "error", err)
			}
		}
	default:
		// Unknown kinds, chat frames before authentication and repeat auth
		// frames are dropped without a reply.
	}
}

// authenticate verifies the token. On success the session becomes the user's
// registered channel; on failure it stays unauthenticated and the peer may
// retry on the same connection.
func (s *Session) authenticate(token string) {
	claims, err := s.verifier.VerifyToken(token)
	if err != nil {
		s.Push(authErrorFrame{Type: frameAuthError, Message: "invalid token"})
		return
	}

	s.userID = claims.UserID
	s.state = stateAuthenticated
	s.registry.Register(s.userID, s)
	s.Push(authSuccessFrame{Type: frameAuthSuccess})
	s.logger.Info("chat channel authenticated", "userId", s.userID)
}

// teardown moves the session to its terminal state. Deregistration is
// identity-checked so a stale close cannot evict a newer session for the
// same user.
func (s *Session) teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	s.mu.Unlock()

	if s.state == stateAuthenticated {
		s.registry.Unregister(s.userID, s)
		s.logger.Info("chat channel closed", "userId", s.userID)
	}
	s.state = stateClosed
}

// readLoop consumes inbound frames until the connection dies, then tears the
// session down. Runs on the handler goroutine.
func (s *Session) readLoop(ctx context.Context, readLimit int64) {
	defer s.teardown()

	if readLimit > 0 {
		s.conn.SetReadLimit(readLimit)
	}
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleFrame(ctx, data)
	}
}

// writePump is the connection's single writer: it drains the outbound queue
// and keeps the connection alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := s.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
