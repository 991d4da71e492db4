package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jurislink/jurislink/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type ConnectionRepository interface {
	Create(ctx context.Context, conn *domain.Connection) error
	AreConnected(ctx context.Context, user1ID, user2ID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error)
}

// ConversationRepository is the authoritative append-only message log.
//
// Requirements for every implementation:
//   - Append assigns a fresh message id and a server timestamp that is
//     non-decreasing within one conversation.
//   - Appends to the same conversation id are serialized; different
//     conversations may append in parallel.
//   - History returns the log ordered by created_at; an unknown conversation
//     yields an empty sequence, not an error.
type ConversationRepository interface {
	Append(ctx context.Context, conversationID string, senderID, recipientID uuid.UUID, text string) (*domain.Message, error)
	History(ctx context.Context, conversationID string) ([]domain.Message, error)
}

// PresenceStore mirrors the online set outside the process so other
// instances (or an ops dashboard) can observe it.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	SetOffline(ctx context.Context, userID uuid.UUID) error
	Online(ctx context.Context) ([]uuid.UUID, error)
}
