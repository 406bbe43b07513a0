package chat

import "sync"

// Channel is one live client connection the chat layer can push frames to.
// Push must never block: delivery is best-effort and a slow consumer loses
// frames rather than stalling the sender.
type Channel interface {
	Push(frame any)
}

// Registry tracks which users currently hold an open, authenticated channel.
// At most one channel per user: a fresh authentication for the same user
// replaces the previous binding (last registered wins). Entries are ephemeral;
// nothing here survives a restart.
type Registry struct {
	mu       sync.RWMutex
	channels map[int64]Channel
}

// NewRegistry returns an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[int64]Channel)}
}

// Register binds userID to ch, unconditionally replacing any prior binding.
func (r *Registry) Register(userID int64, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[userID] = ch
}

// Lookup returns the channel currently bound to userID, if any.
func (r *Registry) Lookup(userID int64) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[userID]
	return ch, ok
}

// Unregister removes the binding for userID only when the stored channel is
// ch itself. A stale close racing a newer registration for the same user is
// therefore a no-op and cannot evict the newer session.
func (r *Registry) Unregister(userID int64, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.channels[userID]; ok && current == ch {
		delete(r.channels, userID)
	}
}
