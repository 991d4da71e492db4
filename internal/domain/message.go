package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a server-confirmed direct message. The ID and CreatedAt fields
// are assigned by the conversation store at append time, never by a client.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}
