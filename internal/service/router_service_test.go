package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurislink/jurislink/internal/domain"
	"github.com/jurislink/jurislink/internal/metrics"
	"github.com/jurislink/jurislink/internal/repository/memory"
)

type fakeGraph struct {
	connected map[string]bool
}

func (g *fakeGraph) connect(a, b uuid.UUID) {
	g.connected[domain.ConversationIDFor(a, b)] = true
}

func (g *fakeGraph) CanMessage(_ context.Context, a, b uuid.UUID) (bool, error) {
	if a == b {
		return false, nil
	}
	return g.connected[domain.ConversationIDFor(a, b)], nil
}

type notification struct {
	msg   *domain.Message
	nonce string
}

type fakeNotifier struct {
	got []notification
}

func (n *fakeNotifier) NotifyNewMessage(msg *domain.Message, nonce string) {
	n.got = append(n.got, notification{msg: msg, nonce: nonce})
}

func newTestRouter(t *testing.T) (*RouterService, *fakeGraph, *fakeNotifier) {
	t.Helper()
	graph := &fakeGraph{connected: make(map[string]bool)}
	notifier := &fakeNotifier{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewRouterService(log, memory.NewConversationRepo(), graph, metrics.New(prometheus.NewRegistry()))
	svc.SetNotifier(notifier)
	return svc, graph, notifier
}

func TestRouterServiceSend(t *testing.T) {
	t.Parallel()

	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	t.Run("relays between connected users", func(t *testing.T) {
		svc, graph, notifier := newTestRouter(t)
		graph.connect(alice, bob)

		msg, err := svc.Send(context.Background(), alice, bob, "hey", "nonce-1")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, msg.ID)
		assert.False(t, msg.CreatedAt.IsZero())
		assert.Equal(t, domain.ConversationIDFor(alice, bob), msg.ConversationID)

		require.Len(t, notifier.got, 1)
		assert.Equal(t, msg.ID, notifier.got[0].msg.ID)
		assert.Equal(t, "nonce-1", notifier.got[0].nonce)
	})

	t.Run("rejects unconnected pair", func(t *testing.T) {
		svc, _, notifier := newTestRouter(t)

		_, err := svc.Send(context.Background(), alice, carol, "hey", "")
		assert.ErrorIs(t, err, domain.ErrNotConnected)
		assert.Empty(t, notifier.got)
	})

	t.Run("rejects self send", func(t *testing.T) {
		svc, _, _ := newTestRouter(t)

		_, err := svc.Send(context.Background(), alice, alice, "hey", "")
		assert.ErrorIs(t, err, domain.ErrNotConnected)
	})

	t.Run("rejects blank text from a connected pair", func(t *testing.T) {
		svc, graph, notifier := newTestRouter(t)
		graph.connect(alice, bob)

		_, err := svc.Send(context.Background(), alice, bob, "   ", "nonce-2")
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
		assert.Empty(t, notifier.got)
	})

	t.Run("eligibility is checked before text", func(t *testing.T) {
		svc, _, _ := newTestRouter(t)

		// Both gates fail; the connection gate wins.
		_, err := svc.Send(context.Background(), alice, carol, "   ", "")
		assert.ErrorIs(t, err, domain.ErrNotConnected)
	})

	t.Run("rejected send leaves no trace in history", func(t *testing.T) {
		svc, graph, _ := newTestRouter(t)
		graph.connect(alice, bob)
		convID := domain.ConversationIDFor(alice, bob)

		_, err := svc.Send(context.Background(), alice, bob, "", "")
		require.Error(t, err)

		msgs, err := svc.History(context.Background(), convID)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestRouterServiceHistory(t *testing.T) {
	t.Parallel()

	alice := uuid.New()
	bob := uuid.New()

	t.Run("returns ordered log", func(t *testing.T) {
		svc, graph, _ := newTestRouter(t)
		graph.connect(alice, bob)

		for _, text := range []string{"one", "two", "three"} {
			_, err := svc.Send(context.Background(), alice, bob, text, "")
			require.NoError(t, err)
		}

		msgs, err := svc.History(context.Background(), domain.ConversationIDFor(alice, bob))
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "one", msgs[0].Text)
		assert.Equal(t, "three", msgs[2].Text)
	})

	t.Run("empty for fresh conversation", func(t *testing.T) {
		svc, _, _ := newTestRouter(t)

		msgs, err := svc.History(context.Background(), domain.ConversationIDFor(alice, bob))
		require.NoError(t, err)
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
	})

	t.Run("rejects malformed conversation id", func(t *testing.T) {
		svc, _, _ := newTestRouter(t)

		_, err := svc.History(context.Background(), "bogus")
		assert.ErrorIs(t, err, domain.ErrInvalidConversationID)
	})
}
