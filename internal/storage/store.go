package storage

import (
	"context"
	"errors"

	"github.com/business-nexus/backend/internal/domain"
)

// ErrNotFound is returned when a keyed lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned by CreateUser when the email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrRequestClosed is returned when a status update targets a collaboration
// request that already reached a terminal state.
var ErrRequestClosed = errors.New("collaboration request already resolved")

// Store is the persistence capability consumed by the HTTP handlers and the
// chat relay. Implementations assign ids sequentially and stamp server-side
// creation times. The in-memory implementation backs tests and local runs;
// the gorm implementation backs a Postgres deployment.
type Store interface {
	CreateUser(ctx context.Context, u domain.NewUser) (domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]domain.UserWithProfile, error)
	GetUserWithProfile(ctx context.Context, id int64) (domain.UserWithProfile, error)

	GetProfileByUser(ctx context.Context, userID int64) (domain.Profile, error)
	// UpsertProfile creates the user's profile on first write and applies a
	// shallow merge on subsequent writes.
	UpsertProfile(ctx context.Context, userID int64, patch domain.ProfilePatch) (domain.Profile, error)

	CreateRequest(ctx context.Context, senderID, receiverID int64, message string) (domain.CollaborationRequest, error)
	// ListRequestsForUser returns every request in which the user is sender
	// or receiver, with both parties attached.
	ListRequestsForUser(ctx context.Context, userID int64) ([]domain.RequestWithUsers, error)
	// UpdateRequestStatus applies pending→accepted or pending→rejected and
	// refuses any transition out of a terminal state.
	UpdateRequestStatus(ctx context.Context, id int64, status string) (domain.CollaborationRequest, error)

	CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (domain.Message, error)
	// ListConversation returns all messages between the two users, in either
	// direction, ordered by timestamp ascending with id as tiebreak.
	ListConversation(ctx context.Context, userA, userB int64) ([]domain.MessageWithSender, error)

	Ping(ctx context.Context) error
	Close() error
}
