package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidConversationID is returned when a conversation id is not two
// user UUIDs in canonical (sorted) order joined with ":".
var ErrInvalidConversationID = errors.New("invalid conversation id")

// ConversationIDFor returns the deterministic conversation identifier for the
// unordered pair {a, b}: both user ids sorted lexically and joined with ":".
// ConversationIDFor(a, b) == ConversationIDFor(b, a) for all a, b.
func ConversationIDFor(a, b uuid.UUID) string {
	s1, s2 := a.String(), b.String()
	if s1 > s2 {
		s1, s2 = s2, s1
	}
	return s1 + ":" + s2
}

// ParseConversationID splits a conversation id back into its two participants.
func ParseConversationID(id string) (uuid.UUID, uuid.UUID, error) {
	p1, p2, ok := strings.Cut(id, ":")
	if !ok {
		return uuid.Nil, uuid.Nil, ErrInvalidConversationID
	}
	a, err := uuid.Parse(p1)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidConversationID
	}
	b, err := uuid.Parse(p2)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidConversationID
	}
	if p1 > p2 {
		return uuid.Nil, uuid.Nil, ErrInvalidConversationID
	}
	return a, b, nil
}
