package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/business-nexus/backend/internal/domain"
)

// MemoryStore keeps every record in process memory with auto-incrementing
// counters per entity. It implements the full Store contract and is the
// default backend when no database is configured; it also backs the unit
// tests for everything above the storage layer.
type MemoryStore struct {
	mu sync.Mutex

	users    map[int64]domain.User
	profiles map[int64]domain.Profile
	requests map[int64]domain.CollaborationRequest
	messages map[int64]domain.Message

	nextUserID    int64
	nextProfileID int64
	nextRequestID int64
	nextMessageID int64
}

// NewMemoryStore returns an empty store with all counters starting at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int64]domain.User),
		profiles:      make(map[int64]domain.Profile),
		requests:      make(map[int64]domain.CollaborationRequest),
		messages:      make(map[int64]domain.Message),
		nextUserID:    1,
		nextProfileID: 1,
		nextRequestID: 1,
		nextMessageID: 1,
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, u domain.NewUser) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.User{}, ErrDuplicateEmail
		}
	}

	user := domain.User{
		ID:           s.nextUserID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Bio:          u.Bio,
		Location:     u.Location,
		Avatar:       u.Avatar,
		CreatedAt:    time.Now().UTC(),
	}
	s.nextUserID++
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return domain.User{}, ErrNotFound
}

func (s *MemoryStore) ListUsersByRole(_ context.Context, role string) ([]domain.UserWithProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.UserWithProfile
	for _, user := range s.users {
		if user.Role != role {
			continue
		}
		out = append(out, domain.UserWithProfile{User: user, Profile: s.profileForLocked(user.ID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetUserWithProfile(_ context.Context, id int64) (domain.UserWithProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.UserWithProfile{}, ErrNotFound
	}
	return domain.UserWithProfile{User: user, Profile: s.profileForLocked(id)}, nil
}

// profileForLocked returns a copy of the user's profile, or nil. Callers hold mu.
func (s *MemoryStore) profileForLocked(userID int64) *domain.Profile {
	for _, profile := range s.profiles {
		if profile.UserID == userID {
			p := profile
			return &p
		}
	}
	return nil
}

func (s *MemoryStore) GetProfileByUser(_ context.Context, userID int64) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.profileForLocked(userID); p != nil {
		return *p, nil
	}
	return domain.Profile{}, ErrNotFound
}

func (s *MemoryStore) UpsertProfile(_ context.Context, userID int64, patch domain.ProfilePatch) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.profileForLocked(userID)
	if existing == nil {
		profile := domain.Profile{ID: s.nextProfileID, UserID: userID}
		s.nextProfileID++
		patch.Apply(&profile)
		s.profiles[profile.ID] = profile
		return profile, nil
	}

	patch.Apply(existing)
	s.profiles[existing.ID] = *existing
	return *existing, nil
}

func (s *MemoryStore) CreateRequest(_ context.Context, senderID, receiverID int64, message string) (domain.CollaborationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := domain.CollaborationRequest{
		ID:         s.nextRequestID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
		Status:     domain.RequestPending,
		CreatedAt:  time.Now().UTC(),
	}
	s.nextRequestID++
	s.requests[req.ID] = req
	return req, nil
}

func (s *MemoryStore) ListRequestsForUser(_ context.Context, userID int64) ([]domain.RequestWithUsers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.RequestWithUsers
	for _, req := range s.requests {
		if req.SenderID != userID && req.ReceiverID != userID {
			continue
		}
		out = append(out, domain.RequestWithUsers{
			CollaborationRequest: req,
			Sender:               s.users[req.SenderID],
			Receiver:             s.users[req.ReceiverID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateRequestStatus(_ context.Context, id int64, status string) (domain.CollaborationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return domain.CollaborationRequest{}, ErrNotFound
	}
	if req.Status != domain.RequestPending {
		return domain.CollaborationRequest{}, ErrRequestClosed
	}
	req.Status = status
	s.requests[id] = req
	return req, nil
}

func (s *MemoryStore) CreateMessage(_ context.Context, senderID, receiverID int64, content string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := domain.Message{
		ID:         s.nextMessageID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now().UTC(),
	}
	s.nextMessageID++
	s.messages[msg.ID] = msg
	return msg, nil
}

func (s *MemoryStore) ListConversation(_ context.Context, userA, userB int64) ([]domain.MessageWithSender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.MessageWithSender
	for _, msg := range s.messages {
		between := (msg.SenderID == userA && msg.ReceiverID == userB) ||
			(msg.SenderID == userB && msg.ReceiverID == userA)
		if !between {
			continue
		}
		m := msg
		entry := domain.MessageWithSender{Message: m}
		if sender, ok := s.users[m.SenderID]; ok {
			entry.Sender = &sender
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
