package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/business-nexus/backend/internal/domain"
	"github.com/business-nexus/backend/internal/storage"
)

// ErrEmptyContent rejects messages that are empty after trimming.
var ErrEmptyContent = errors.New("message content is empty")

// Relay persists outgoing chat messages and routes them to live channels.
type Relay struct {
	store    storage.Store
	registry *Registry
	logger   *slog.Logger
}

// NewRelay wires a Relay to its store and presence registry.
func NewRelay(logger *slog.Logger, store storage.Store, registry *Registry) *Relay {
	return &Relay{store: store, registry: registry, logger: logger}
}

// Outcome reports what happened to one relayed message.
type Outcome struct {
	Message       domain.MessageWithSender
	DeliveredLive bool
}

// Relay validates and persists a message from senderID to receiverID, then
// pushes new_message to the receiver's live channel if one is registered and
// message_sent back to origin, the channel the message arrived on. The
// message_sent confirmation deliberately targets origin rather than a
// registry lookup of the sender: a newer session for the same user must not
// receive confirmations for an older channel's sends.
//
// A persistence failure aborts the whole operation: nothing is pushed and
// the error is returned. Failure to deliver to the receiver is not an error;
// the message is durable and shows up in the next history fetch.
func (r *Relay) Relay(ctx context.Context, senderID int64, origin Channel, receiverID int64, content string) (Outcome, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Outcome{}, ErrEmptyContent
	}

	msg, err := r.store.CreateMessage(ctx, senderID, receiverID, content)
	if err != nil {
		return Outcome{}, fmt.Errorf("persist message: %w", err)
	}

	entry := domain.MessageWithSender{Message: msg}
	if sender, err := r.store.GetUser(ctx, senderID); err == nil {
		entry.Sender = &sender
	} else {
		r.logger.Warn("sender lookup failed during relay", "senderId", senderID, "error", err)
	}

	out := Outcome{Message: entry}
	if ch, ok := r.registry.Lookup(receiverID); ok {
		ch.Push(messageFrame{Type: frameNewMessage, Message: entry})
		out.DeliveredLive = true
	}

	if origin != nil {
		origin.Push(messageFrame{Type: frameMessageSent, Message: entry})
	}
	return out, nil
}
