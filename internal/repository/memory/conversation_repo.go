package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jurislink/jurislink/internal/domain"
)

// ConversationRepo is the in-memory conversation store. Each conversation
// owns its own lock, so appends to one conversation are serialized while
// different conversations append in parallel.
type ConversationRepo struct {
	mu    sync.RWMutex
	convs map[string]*conversationLog
}

type conversationLog struct {
	mu     sync.Mutex
	lastTS time.Time
	msgs   []domain.Message
}

func NewConversationRepo() *ConversationRepo {
	return &ConversationRepo{convs: make(map[string]*conversationLog)}
}

func (r *ConversationRepo) Append(ctx context.Context, conversationID string, senderID, recipientID uuid.UUID, text string) (*domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	c := r.convs[conversationID]
	if c == nil {
		c = &conversationLog{}
		r.convs[conversationID] = c
	}
	r.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Clamp to the previous timestamp so created_at never goes backwards
	// within one conversation, whatever the wall clock does.
	now := time.Now().UTC()
	if now.Before(c.lastTS) {
		now = c.lastTS
	}
	c.lastTS = now

	msg := domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Text:           text,
		CreatedAt:      now,
	}
	c.msgs = append(c.msgs, msg)

	stored := msg
	return &stored, nil
}

// History returns a snapshot of the log taken at call time. A reader racing a
// concurrent append may miss the newest message; push delivery covers that.
func (r *ConversationRepo) History(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	c := r.convs[conversationID]
	r.mu.RUnlock()

	if c == nil {
		return []domain.Message{}, nil
	}

	c.mu.Lock()
	snap := append([]domain.Message(nil), c.msgs...)
	c.mu.Unlock()
	return snap, nil
}
