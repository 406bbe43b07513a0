package chat

import (
	"context"
	"testing"

	"github.com/business-nexus/backend/internal/auth"
	"github.com/business-nexus/backend/internal/storage"
)

type fakeVerifier struct {
	claims map[string]auth.Claims
}

func (f fakeVerifier) VerifyToken(token string) (auth.Claims, error) {
	if c, ok := f.claims[token]; ok {
		return c, nil
	}
	return auth.Claims{}, auth.ErrInvalidToken
}

type chatFixture struct {
	store    *storage.MemoryStore
	registry *Registry
	relay    *Relay
	verifier fakeVerifier
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	store := storage.NewMemoryStore()
	registry := NewRegistry()
	return &chatFixture{
		store:    store,
		registry: registry,
		relay:    NewRelay(testLogger(), store, registry),
		verifier: fakeVerifier{claims: map[string]auth.Claims{}},
	}
}

func (f *chatFixture) newTestSession() *Session {
	return newSession(nil, f.verifier, f.registry, f.relay, testLogger(), 16)
}

// drainFrames empties the session's outbound queue without a write pump.
func drainFrames(s *Session) []any {
	var out []any
	for {
		select {
		case frame := <-s.send:
			out = append(out, frame)
		default:
			return out
		}
	}
}

func TestSession_AuthSuccess(t *testing.T) {
	f := newChatFixture(t)
	f.verifier.claims["good"] = auth.Claims{UserID: 1}

	s := f.newTestSession()
	s.handleFrame(context.Background(), []byte(`{"type":"auth","token":"good"}`))

	if s.state != stateAuthenticated || s.userID != 1 {
		t.Fatalf("expected authenticated session for user 1, got state=%d userID=%d", s.state, s.userID)
	}
	if ch, ok := f.registry.Lookup(1); !ok || ch != Channel(s) {
		t.Fatal("expected the session registered as user 1's channel")
	}

	frames := drainFrames(s)
	if len(frames) != 1 {
		t.Fatalf("expected one frame, got %d", len(frames))
	}
	if frame, ok := frames[0].(authSuccessFrame); !ok || frame.Type != frameAuthSuccess {
		t.Fatalf("expected auth_success, got %#v", frames[0])
	}
}

func TestSession_AuthFailureKeepsChannelUsable(t *testing.T) {
	f := newChatFixture(t)
	f.verifier.claims["good"] = auth.Claims{UserID: 1}

	s := f.newTestSession()
	s.handleFrame(context.Background(), []byte(`{"type":"auth","token":"bad"}`))

	if s.state != stateUnauthenticated {
		t.Fatal("failed auth must leave the session unauthenticated")
	}
	if _, ok := f.registry.Lookup(1); ok {
		t.Fatal("failed auth must not register presence")
	}
	frames := drainFrames(s)
	if len(frames) != 1 {
		t.Fatalf("expected one frame, got %d", len(frames))
	}
	if frame, ok := frames[0].(authErrorFrame); !ok || frame.Type != frameAuthError || frame.Message == "" {
		t.Fatalf("expected auth_error with a reason, got %#v", frames[0])
	}

	// The peer may retry on the same channel.
	s.handleFrame(context.Background(), []byte(`{"type":"auth","token":"good"}`))
	if s.state != stateAuthenticated {
		t.Fatal("expected retry with a valid token to succeed")
	}
}

func TestSession_ChatBeforeAuthIsDropped(t *testing.T) {
	f := newChatFixture(t)
	alice, bob := seedUsers(t, f.store)

	s := f.newTestSession()
	s.handleFrame(context.Background(), []byte(`{"type":"chat_message","receiverId":2,"content":"sneaky"}`))

	if frames := drainFrames(s); len(frames) != 0 {
		t.Fatalf("expected no reply frames, got %d", len(frames))
	}
	history, _ := f.store.ListConversation(context.Background(), alice.ID, bob.ID)
	if len(history) != 0 {
		t.Fatal("expected nothing persisted for a pre-auth chat frame")
	}
}

func TestSession_MalformedFrameIgnored(t *testing.T) {
	f := newChatFixture(t)
	s := f.newTestSession()

	s.handleFrame(context.Background(), []byte(`{not json`))

	if s.state != stateUnauthenticated {
		t.Fatal("malformed frame must not change state")
	}
	if frames := drainFrames(s); len(frames) != 0 {
		t.Fatal("malformed frame must not produce a reply")
	}
}

func TestSession_UnknownKindIgnored(t *testing.T) {
	f := newChatFixture(t)
	f.verifier.claims["good"] = auth.Claims{UserID: 1}

	s := f.newTestSession()
	s.handleFrame(context.Background(), []byte(`{"type":"auth","token":"good"}`))
	drainFrames(s)

	s.handleFrame(context.Background(), []byte(`{"type":"typing_indicator"}`))
	if frames := drainFrames(s); len(frames) != 0 {
		t.Fatal("unknown frame kinds must be dropped silently")
	}
}

func TestSession_RepeatAuthIgnoredOnceAuthenticated(t *testing.T) {
	f := newChatFixture(t)
	f.verifier.claims["one"] = auth.Claims{UserID: 1}
	f.verifier.claims["two"] = auth.Claims{UserID: 2}

	s := f.newTestSession()
	s.handleFrame(context.Background(), []byte(`{"type":"auth","token":"one"}`))
	drainFrames(s)

	s.handleFrame(context.Background(), []byte(`{"type":"auth","token":"two"}`))
	if s.userID != 1 {
		t.Fatal("an authenticated session must not re-authenticate")
	}
	if frames := drainFrames(s); len(frames) != 0 {
		t.Fatal("repeat auth must be dropped silently")
	}
}

func TestSession_ChatMessageRelayedToReceiver(t *testing.T) {
	f := newChatFixture(t)
	alice, bob := seedUsers(t, f.store)
	f.verifier.claims["alice"] = auth.Claims{UserID: alice.ID}

	receiver := &recordingChannel{}
	f.registry.Register(bob.ID, receiver)

	s := f.newTestSession()
	s.handleFrame(context.Background(), []byte(`{"type":"auth","token":"alice"}`))
	drainFrames(s)

	s.handleFrame(context.Background(), []byte(`{"type":"chat_message","receiverId":2,"content":"hi"}`))

	recvFrames := receiver.Frames()
	if len(recvFrames) != 1 {
		t.Fatalf("expected one new_message at the receiver, got %d", len(recvFrames))
	}
	delivered := recvFrames[0].(messageFrame)
	if delivered.Type != frameNewMessage || delivered.Message.Content != "hi" {
		t.Fatalf("unexpected delivery %#v", delivered)
	}
	if delivered.Message.Sender == nil || delivered.Message.Sender.FirstName != "Alice" {
		t.Fatal("expected sender fields attached to the delivery")
	}

	frames := drainFrames(s)
	if len(frames) != 1 {
		t.Fatalf("expected one message_sent at the sender, got %d", len(frames))
	}
	confirmation := frames[0].(messageFrame)
	if confirmation.Type != frameMessageSent || confirmation.Message.ID != delivered.Message.ID {
		t.Fatal("confirmation must carry the same persisted message")
	}
}

func TestSession_TeardownDeregistersOnlyItself(t *testing.T) {
	f := newChatFixture(t)
	f.verifier.claims["good"] = auth.Claims{UserID: 1}

	old := f.newTestSession()
	old.handleFrame(context.Background(), []byte(`{"type":"auth","token":"good"}`))

	replacement := f.newTestSession()
	replacement.handleFrame(context.Background(), []byte(`{"type":"auth","token":"good"}`))

	// The replaced session closing must not evict the replacement.
	old.teardown()
	if ch, ok := f.registry.Lookup(1); !ok || ch != Channel(replacement) {
		t.Fatal("stale teardown evicted the newer session")
	}

	replacement.teardown()
	if _, ok := f.registry.Lookup(1); ok {
		t.Fatal("expected presence cleared after the live session closed")
	}

	// Frames pushed after teardown are dropped, not a panic.
	replacement.Push(authSuccessFrame{Type: frameAuthSuccess})

	if old.state != stateClosed || replacement.state != stateClosed {
		t.Fatal("expected both sessions in the terminal state")
	}
}
