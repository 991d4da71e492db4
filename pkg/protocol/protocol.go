// Package protocol defines the relay wire contract shared by the server and
// Go clients. Every frame is an Event envelope carrying a typed JSON payload.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jurislink/jurislink/internal/domain"
)

// Event types - client → server
const (
	EventTypeJoin         = "join"
	EventTypeHistoryFetch = "history.fetch"
	EventTypeMessageSend  = "message.send"
	EventTypePing         = "ping"
)

// Event types - server → client
const (
	EventTypeJoined         = "joined"
	EventTypeHistoryResult  = "history.result"
	EventTypeMessageNew     = "message.new"
	EventTypePresenceUpdate = "presence.update"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Error codes carried by ErrorPayload.
const (
	CodeInvalidIdentity = "INVALID_IDENTITY"
	CodeNotConnected    = "NOT_CONNECTED"
	CodeEmptyMessage    = "EMPTY_MESSAGE"
	CodeNotJoined       = "NOT_JOINED"
	CodeInvalidPayload  = "INVALID_PAYLOAD"
	CodeUnknownEvent    = "UNKNOWN_EVENT"
	CodeInternal        = "INTERNAL"
)

// Event is the base envelope for all WebSocket frames.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type JoinPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type HistoryFetchPayload struct {
	ConversationID string `json:"conversation_id"`
}

type MessageSendPayload struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Text        string    `json:"text"`
	// Nonce correlates the send with the echoed confirmation so a client can
	// replace its optimistic copy. Opaque to the server.
	Nonce string `json:"nonce,omitempty"`
}

// --- Server → Client payloads ---

type JoinedPayload struct {
	UserID uuid.UUID   `json:"user_id"`
	Online []uuid.UUID `json:"online"`
}

type HistoryResultPayload struct {
	ConversationID string           `json:"conversation_id"`
	Messages       []domain.Message `json:"messages"`
}

type MessageNewPayload struct {
	ConversationID string         `json:"conversation_id"`
	Message        domain.Message `json:"message"`
	Nonce          string         `json:"nonce,omitempty"`
}

// PresenceUpdatePayload carries the full current online set, not a delta.
type PresenceUpdatePayload struct {
	Online []uuid.UUID `json:"online"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Nonce is set when the error rejects a specific message.send, so the
	// client can roll back the matching optimistic entry.
	Nonce string `json:"nonce,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
