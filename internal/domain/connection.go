package domain

import (
	"time"

	"github.com/google/uuid"
)

// Connection is a mutual link between two users. User1ID < User2ID
// (canonical order), so each pair is stored exactly once.
type Connection struct {
	ID        uuid.UUID `json:"id"`
	User1ID   uuid.UUID `json:"user1_id"`
	User2ID   uuid.UUID `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
	// Joined fields
	OtherUserID      uuid.UUID `json:"other_user_id"`
	OtherUsername    string    `json:"other_username"`
	OtherDisplayName string    `json:"other_display_name"`
}
