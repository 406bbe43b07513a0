package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/business-nexus/backend/internal/auth"
	"github.com/business-nexus/backend/internal/chat"
	"github.com/business-nexus/backend/internal/config"
	"github.com/business-nexus/backend/internal/domain"
	"github.com/business-nexus/backend/internal/storage"
)

type wsFixture struct {
	srv   *httptest.Server
	store *storage.MemoryStore
	auth  *auth.Authenticator
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemoryStore()
	authenticator := auth.NewAuthenticator("test-secret", time.Hour)

	registry := chat.NewRegistry()
	relay := chat.NewRelay(logger, store, registry)
	chatHandler := chat.NewHandler(logger, authenticator, registry, relay, config.ChatConfig{SendBuffer: 16})

	router := NewRouter(logger, RouterDependencies{
		API:  NewAPIHandlers(logger, store, authenticator),
		Chat: chatHandler,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &wsFixture{srv: srv, store: store, auth: authenticator}
}

func (f *wsFixture) createUser(t *testing.T, first, last, email, role string) (domain.User, string) {
	t.Helper()
	user, err := f.store.CreateUser(context.Background(), domain.NewUser{
		FirstName: first, LastName: last, Email: email, PasswordHash: "x", Role: role,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	token, err := f.auth.IssueToken(user)
	if err != nil {
		t.Fatalf("issue token for %s: %v", email, err)
	}
	return user, token
}

func (f *wsFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// wireFrame mirrors the server-to-client frame shapes for decoding in tests.
// The "message" field is an object on new_message/message_sent frames but a
// string reason on auth_error frames, so it is decoded lazily in readFrame.
type wireFrame struct {
	Type    string          `json:"type"`
	Raw     json.RawMessage `json:"message"`
	Message *struct {
		ID      int64  `json:"id"`
		Content string `json:"content"`
		Sender  *struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
		} `json:"sender"`
	} `json:"-"`
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame wireFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if len(frame.Raw) > 0 && frame.Raw[0] == '{' {
		if err := json.Unmarshal(frame.Raw, &frame.Message); err != nil {
			t.Fatalf("decode message object: %v", err)
		}
	}
	return frame
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame any) {
	t.Helper()
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func authenticate(t *testing.T, conn *websocket.Conn, token string) {
	t.Helper()
	sendFrame(t, conn, map[string]any{"type": "auth", "token": token})
	if frame := readFrame(t, conn); frame.Type != "auth_success" {
		t.Fatalf("expected auth_success, got %q", frame.Type)
	}
}

func TestWebSocket_DirectMessageDelivery(t *testing.T) {
	f := newWSFixture(t)
	_, tokenA := f.createUser(t, "Alice", "Investor", "alice@example.com", domain.RoleInvestor)
	userB, tokenB := f.createUser(t, "Bob", "Founder", "bob@example.com", domain.RoleEntrepreneur)

	connA := f.dial(t)
	authenticate(t, connA, tokenA)
	connB := f.dial(t)
	authenticate(t, connB, tokenB)

	sendFrame(t, connA, map[string]any{"type": "chat_message", "receiverId": userB.ID, "content": "hi"})

	delivered := readFrame(t, connB)
	if delivered.Type != "new_message" || delivered.Message == nil {
		t.Fatalf("expected new_message at B, got %+v", delivered)
	}
	if delivered.Message.Content != "hi" {
		t.Errorf("expected content %q, got %q", "hi", delivered.Message.Content)
	}
	if delivered.Message.Sender == nil || delivered.Message.Sender.FirstName != "Alice" || delivered.Message.Sender.LastName != "Investor" {
		t.Error("expected sender name populated on the delivery")
	}

	confirmed := readFrame(t, connA)
	if confirmed.Type != "message_sent" || confirmed.Message == nil {
		t.Fatalf("expected message_sent at A, got %+v", confirmed)
	}
	if confirmed.Message.ID != delivered.Message.ID {
		t.Error("confirmation and delivery must reference the same message id")
	}
}

func TestWebSocket_AuthErrorLeavesChannelOpen(t *testing.T) {
	f := newWSFixture(t)
	_, token := f.createUser(t, "Alice", "Investor", "alice@example.com", domain.RoleInvestor)

	conn := f.dial(t)
	sendFrame(t, conn, map[string]any{"type": "auth", "token": "garbage"})
	if frame := readFrame(t, conn); frame.Type != "auth_error" {
		t.Fatalf("expected auth_error, got %q", frame.Type)
	}

	// Retry on the same connection with a valid token.
	authenticate(t, conn, token)
}

func TestWebSocket_OfflineReceiverStillConfirmed(t *testing.T) {
	f := newWSFixture(t)
	userA, tokenA := f.createUser(t, "Alice", "Investor", "alice@example.com", domain.RoleInvestor)

	conn := f.dial(t)
	authenticate(t, conn, tokenA)

	sendFrame(t, conn, map[string]any{"type": "chat_message", "receiverId": 99, "content": "anyone there?"})

	confirmed := readFrame(t, conn)
	if confirmed.Type != "message_sent" {
		t.Fatalf("expected message_sent, got %q", confirmed.Type)
	}

	history, err := f.store.ListConversation(context.Background(), userA.ID, 99)
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	if len(history) != 1 || history[0].Content != "anyone there?" {
		t.Fatal("expected the message in later history despite the offline receiver")
	}
}

func TestWebSocket_InOrderDeliveryOnOneChannel(t *testing.T) {
	f := newWSFixture(t)
	_, tokenA := f.createUser(t, "Alice", "Investor", "alice@example.com", domain.RoleInvestor)
	userB, tokenB := f.createUser(t, "Bob", "Founder", "bob@example.com", domain.RoleEntrepreneur)

	connA := f.dial(t)
	authenticate(t, connA, tokenA)
	connB := f.dial(t)
	authenticate(t, connB, tokenB)

	for _, content := range []string{"first", "second"} {
		sendFrame(t, connA, map[string]any{"type": "chat_message", "receiverId": userB.ID, "content": content})
	}

	for _, want := range []string{"first", "second"} {
		frame := readFrame(t, connB)
		if frame.Type != "new_message" || frame.Message == nil || frame.Message.Content != want {
			t.Fatalf("expected %q next, got %+v", want, frame)
		}
	}
}

func TestWebSocket_ReconnectReplacesPresence(t *testing.T) {
	f := newWSFixture(t)
	_, tokenA := f.createUser(t, "Alice", "Investor", "alice@example.com", domain.RoleInvestor)
	userB, tokenB := f.createUser(t, "Bob", "Founder", "bob@example.com", domain.RoleEntrepreneur)

	// First session for B, soon replaced.
	oldConn := f.dial(t)
	authenticate(t, oldConn, tokenB)

	newConn := f.dial(t)
	authenticate(t, newConn, tokenB)

	// Closing the stale channel must not evict the fresh one.
	oldConn.Close()
	time.Sleep(100 * time.Millisecond)

	connA := f.dial(t)
	authenticate(t, connA, tokenA)
	sendFrame(t, connA, map[string]any{"type": "chat_message", "receiverId": userB.ID, "content": "still there?"})

	frame := readFrame(t, newConn)
	if frame.Type != "new_message" || frame.Message == nil || frame.Message.Content != "still there?" {
		t.Fatalf("expected delivery on the replacement channel, got %+v", frame)
	}
}
