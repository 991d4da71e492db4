package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationIDFor(t *testing.T) {
	t.Parallel()

	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	t.Run("is symmetric", func(t *testing.T) {
		assert.Equal(t, ConversationIDFor(a, b), ConversationIDFor(b, a))
	})

	t.Run("sorts participants", func(t *testing.T) {
		assert.Equal(t, a.String()+":"+b.String(), ConversationIDFor(b, a))
	})

	t.Run("is deterministic", func(t *testing.T) {
		first := ConversationIDFor(a, b)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, ConversationIDFor(a, b))
		}
	})
}

func TestParseConversationID(t *testing.T) {
	t.Parallel()

	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	t.Run("round trips", func(t *testing.T) {
		p1, p2, err := ParseConversationID(ConversationIDFor(b, a))
		require.NoError(t, err)
		assert.Equal(t, a, p1)
		assert.Equal(t, b, p2)
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		cases := []string{
			"",
			"not-a-conversation",
			a.String(),
			a.String() + ":not-a-uuid",
			"not-a-uuid:" + b.String(),
			// Valid uuids in the wrong order.
			b.String() + ":" + a.String(),
		}
		for _, id := range cases {
			_, _, err := ParseConversationID(id)
			assert.ErrorIs(t, err, ErrInvalidConversationID, "id %q", id)
		}
	})
}
