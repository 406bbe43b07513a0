package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/business-nexus/backend/internal/domain"
)

// GormStore implements Store on top of a Postgres database via gorm. The
// schema is migrated on open from the domain structs' gorm tags.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm connects to the database at dsn and migrates the schema.
func OpenGorm(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.CollaborationRequest{},
		&domain.Message{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u domain.NewUser) (domain.User, error) {
	user := domain.User{
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

	var conflict int64
	tx := s.db.WithContext(ctx)
	if err := tx.Model(&domain.User{}).Where("email = ?", u.Email).Count(&conflict).Error; err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if conflict > 0 {
		return domain.User{}, ErrDuplicateEmail
	}

	if err := tx.Create(&user).Error; err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *GormStore) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (s *GormStore) ListUsersByRole(ctx context.Context, role string) ([]domain.UserWithProfile, error) {
	var users []domain.User
	err := s.db.WithContext(ctx).Where("role = ?", role).Order("id").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}

	out := make([]domain.UserWithProfile, 0, len(users))
	for _, user := range users {
		entry := domain.UserWithProfile{User: user}
		var profile domain.Profile
		perr := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error
		if perr == nil {
			p := profile
			entry.Profile = &p
		} else if !errors.Is(perr, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load profile for user %d: %w", user.ID, perr)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *GormStore) GetUserWithProfile(ctx context.Context, id int64) (domain.UserWithProfile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.UserWithProfile{}, err
	}

	entry := domain.UserWithProfile{User: user}
	profile, err := s.GetProfileByUser(ctx, id)
	if err == nil {
		entry.Profile = &profile
	} else if !errors.Is(err, ErrNotFound) {
		return domain.UserWithProfile{}, err
	}
	return entry, nil
}

func (s *GormStore) GetProfileByUser(ctx context.Context, userID int64) (domain.Profile, error) {
	var profile domain.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Profile{}, ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile for user %d: %w", userID, err)
	}
	return profile, nil
}

func (s *GormStore) UpsertProfile(ctx context.Context, userID int64, patch domain.ProfilePatch) (domain.Profile, error) {
	var result domain.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile domain.Profile
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = domain.Profile{UserID: userID}
			patch.Apply(&profile)
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("create profile: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load profile: %w", err)
		default:
			patch.Apply(&profile)
			if err := tx.Save(&profile).Error; err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
		}
		result = profile
		return nil
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return result, nil
}

func (s *GormStore) CreateRequest(ctx context.Context, senderID, receiverID int64, message string) (domain.CollaborationRequest, error) {
	req := domain.CollaborationRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
		Status:     domain.RequestPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&req).Error; err != nil {
		return domain.CollaborationRequest{}, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (s *GormStore) ListRequestsForUser(ctx context.Context, userID int64) ([]domain.RequestWithUsers, error) {
	var requests []domain.CollaborationRequest
	err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("id").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	out := make([]domain.RequestWithUsers, 0, len(requests))
	for _, req := range requests {
		entry := domain.RequestWithUsers{CollaborationRequest: req}
		if sender, err := s.GetUser(ctx, req.SenderID); err == nil {
			entry.Sender = sender
		}
		if receiver, err := s.GetUser(ctx, req.ReceiverID); err == nil {
			entry.Receiver = receiver
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *GormStore) UpdateRequestStatus(ctx context.Context, id int64, status string) (domain.CollaborationRequest, error) {
	var result domain.CollaborationRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req domain.CollaborationRequest
		err := tx.First(&req, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load request %d: %w", id, err)
		}
		if req.Status != domain.RequestPending {
			return ErrRequestClosed
		}
		req.Status = status
		if err := tx.Save(&req).Error; err != nil {
			return fmt.Errorf("update request %d: %w", id, err)
		}
		result = req
		return nil
	})
	if err != nil {
		return domain.CollaborationRequest{}, err
	}
	return result, nil
}

func (s *GormStore) CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (domain.Message, error) {
	msg := domain.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

func (s *GormStore) ListConversation(ctx context.Context, userA, userB int64) ([]domain.MessageWithSender, error) {
	var messages []domain.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("timestamp, id").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}

	// At most two distinct senders in a two-party conversation.
	senders := make(map[int64]*domain.User, 2)
	out := make([]domain.MessageWithSender, 0, len(messages))
	for _, msg := range messages {
		entry := domain.MessageWithSender{Message: msg}
		sender, ok := senders[msg.SenderID]
		if !ok {
			if u, err := s.GetUser(ctx, msg.SenderID); err == nil {
				sender = &u
			}
			senders[msg.SenderID] = sender
		}
		entry.Sender = sender
		out = append(out, entry)
	}
	return out, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (s *GormStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
