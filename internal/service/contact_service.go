package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jurislink/jurislink/internal/domain"
	"github.com/jurislink/jurislink/internal/repository"
)

var (
	ErrCannotConnectSelf = errors.New("cannot add yourself as a contact")
	ErrContactNotFound   = errors.New("user not found")
	ErrAlreadyConnected  = errors.New("you are already connected")
)

// ContactService manages the mutual-connection graph and answers the
// eligibility question the router asks before relaying a message.
type ContactService struct {
	connRepo repository.ConnectionRepository
	userRepo repository.UserRepository
}

func NewContactService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository) *ContactService {
	return &ContactService{
		connRepo: connRepo,
		userRepo: userRepo,
	}
}

// AddContact creates a mutual connection with the target username.
func (s *ContactService) AddContact(ctx context.Context, userID uuid.UUID, targetUsername string) (*domain.Connection, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if target == nil {
		return nil, ErrContactNotFound
	}

	if userID == target.ID {
		return nil, ErrCannotConnectSelf
	}

	already, err := s.connRepo.AreConnected(ctx, userID, target.ID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyConnected
	}

	u1, u2 := userID, target.ID
	if u1.String() > u2.String() {
		u1, u2 = u2, u1
	}

	conn := &domain.Connection{
		ID:               uuid.New(),
		User1ID:          u1,
		User2ID:          u2,
		CreatedAt:        time.Now(),
		OtherUserID:      target.ID,
		OtherUsername:    target.Username,
		OtherDisplayName: target.DisplayName,
	}

	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("creating connection: %w", err)
	}

	return conn, nil
}

func (s *ContactService) ListContacts(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	conns, err := s.connRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []domain.Connection{}
	}
	return conns, nil
}

// CanMessage reports whether two users are eligible to message each other.
func (s *ContactService) CanMessage(ctx context.Context, user1ID, user2ID uuid.UUID) (bool, error) {
	if user1ID == user2ID {
		return false, nil
	}
	return s.connRepo.AreConnected(ctx, user1ID, user2ID)
}
