package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jurislink/jurislink/internal/domain"
	"github.com/jurislink/jurislink/internal/metrics"
	"github.com/jurislink/jurislink/internal/repository"
)

// Notifier fans a confirmed message out to the live sessions of both
// participants, the sender's own sessions included.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message, nonce string)
}

// ConnectionGraph answers whether two users may message each other.
type ConnectionGraph interface {
	CanMessage(ctx context.Context, user1ID, user2ID uuid.UUID) (bool, error)
}

// RouterService validates, timestamps and persists an incoming send, then
// fans the stored message out to every live session of sender and recipient.
type RouterService struct {
	convRepo repository.ConversationRepository
	graph    ConnectionGraph
	notifier Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewRouterService(log *slog.Logger, convRepo repository.ConversationRepository, graph ConnectionGraph, m *metrics.Metrics) *RouterService {
	return &RouterService{
		convRepo: convRepo,
		graph:    graph,
		metrics:  m,
		log:      log,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *RouterService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send relays text from sender to recipient. The returned message carries
// the server-assigned id and timestamp. The nonce is echoed in the fan-out
// so the sender's sessions can reconcile their optimistic copy.
func (s *RouterService) Send(ctx context.Context, senderID, recipientID uuid.UUID, text, nonce string) (*domain.Message, error) {
	ok, err := s.graph.CanMessage(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("checking eligibility: %w", err)
	}
	if !ok {
		s.metrics.SendsRejected.WithLabelValues("not_connected").Inc()
		return nil, domain.ErrNotConnected
	}

	if strings.TrimSpace(text) == "" {
		s.metrics.SendsRejected.WithLabelValues("empty_message").Inc()
		return nil, domain.ErrEmptyMessage
	}

	conversationID := domain.ConversationIDFor(senderID, recipientID)
	msg, err := s.convRepo.Append(ctx, conversationID, senderID, recipientID, text)
	if err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg, nonce)
	}

	s.metrics.MessagesRouted.Inc()
	s.log.Debug("message routed",
		"conversation_id", msg.ConversationID,
		"message_id", msg.ID,
		"sender_id", msg.SenderID,
	)
	return msg, nil
}

// History returns the full ordered log for a conversation. An unknown
// conversation yields an empty sequence.
func (s *RouterService) History(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if _, _, err := domain.ParseConversationID(conversationID); err != nil {
		return nil, err
	}

	messages, err := s.convRepo.History(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	s.metrics.HistoryFetches.Inc()
	return messages, nil
}
