package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurislink/jurislink/internal/domain"
)

func TestConversationRepoAppend(t *testing.T) {
	t.Parallel()

	sender := uuid.New()
	recipient := uuid.New()
	convID := domain.ConversationIDFor(sender, recipient)

	t.Run("assigns id and timestamp", func(t *testing.T) {
		repo := NewConversationRepo()
		msg, err := repo.Append(context.Background(), convID, sender, recipient, "hello")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, msg.ID)
		assert.False(t, msg.CreatedAt.IsZero())
		assert.Equal(t, convID, msg.ConversationID)
	})

	t.Run("rejects blank text", func(t *testing.T) {
		repo := NewConversationRepo()
		_, err := repo.Append(context.Background(), convID, sender, recipient, "   \t\n")
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	})

	t.Run("concurrent appends all land with non-decreasing timestamps", func(t *testing.T) {
		repo := NewConversationRepo()
		const n = 100

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Append(context.Background(), convID, sender, recipient, "msg")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		msgs, err := repo.History(context.Background(), convID)
		require.NoError(t, err)
		require.Len(t, msgs, n)

		seen := make(map[uuid.UUID]struct{}, n)
		for i, m := range msgs {
			seen[m.ID] = struct{}{}
			if i > 0 {
				assert.False(t, m.CreatedAt.Before(msgs[i-1].CreatedAt),
					"timestamp went backwards at index %d", i)
			}
		}
		assert.Len(t, seen, n, "every message keeps a distinct id")
	})
}

func TestConversationRepoHistory(t *testing.T) {
	t.Parallel()

	sender := uuid.New()
	recipient := uuid.New()
	convID := domain.ConversationIDFor(sender, recipient)

	t.Run("unknown conversation yields empty slice", func(t *testing.T) {
		repo := NewConversationRepo()
		msgs, err := repo.History(context.Background(), "no-such-conversation")
		require.NoError(t, err)
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
	})

	t.Run("returns a snapshot", func(t *testing.T) {
		repo := NewConversationRepo()
		_, err := repo.Append(context.Background(), convID, sender, recipient, "first")
		require.NoError(t, err)

		snap, err := repo.History(context.Background(), convID)
		require.NoError(t, err)
		require.Len(t, snap, 1)

		_, err = repo.Append(context.Background(), convID, sender, recipient, "second")
		require.NoError(t, err)

		// The earlier snapshot is unaffected by the later append.
		assert.Len(t, snap, 1)

		snap2, err := repo.History(context.Background(), convID)
		require.NoError(t, err)
		assert.Len(t, snap2, 2)
		assert.Equal(t, "first", snap2[0].Text)
		assert.Equal(t, "second", snap2[1].Text)
	})
}
