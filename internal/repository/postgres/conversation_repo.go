package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jurislink/jurislink/internal/domain"
)

// ConversationRepo is the durable conversation store. A transaction-scoped
// advisory lock on the conversation id serializes appends per conversation;
// appends to different conversations run in parallel.
type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func (r *ConversationRepo) Append(ctx context.Context, conversationID string, senderID, recipientID uuid.UUID, text string) (*domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, conversationID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Text:           text,
	}

	// created_at comes from the database clock, clamped so it never goes
	// backwards within one conversation.
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, recipient_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5,
			GREATEST(now(), COALESCE((SELECT max(created_at) FROM messages WHERE conversation_id = $2), now())))
		RETURNING created_at`

	var createdAt time.Time
	if err := tx.QueryRow(ctx, query,
		msg.ID, msg.ConversationID, msg.SenderID, msg.RecipientID, msg.Text,
	).Scan(&createdAt); err != nil {
		return nil, err
	}
	msg.CreatedAt = createdAt

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *ConversationRepo) History(ctx context.Context, conversationID string) ([]domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, recipient_id, text, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.RecipientID,
			&msg.Text, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
