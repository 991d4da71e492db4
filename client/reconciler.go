// Package client implements a Go client for the relay: a thin WebSocket
// wrapper plus a Reconciler that keeps a local projection of conversations
// consistent under optimistic sends, echoes and history refetches.
package client

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jurislink/jurislink/internal/domain"
	"github.com/jurislink/jurislink/pkg/protocol"
)

// Message is the client-side view of a message. While a send is in flight it
// carries a local placeholder id and Pending=true; the echoed confirmation
// replaces it with the server-assigned id and timestamp.
type Message struct {
	ID          string    `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	Pending     bool      `json:"pending,omitempty"`
}

// Conversation is the local projection of one conversation. LastMessage and
// LastTimestamp summarize the newest entry for list previews.
type Conversation struct {
	ID            string
	Messages      []Message
	Unread        int
	LastMessage   string
	LastTimestamp time.Time

	// loaded flips once a history result has been applied.
	loaded bool
}

func (c *Conversation) updateLast() {
	if len(c.Messages) == 0 {
		c.LastMessage = ""
		c.LastTimestamp = time.Time{}
		return
	}
	last := c.Messages[len(c.Messages)-1]
	c.LastMessage = last.Text
	c.LastTimestamp = last.CreatedAt
}

// Reconciler maintains the local conversation projections for one user. It is
// not safe for concurrent use; Client serializes access to it.
type Reconciler struct {
	selfID  uuid.UUID
	current string
	convs   map[string]*Conversation
	// pending maps an in-flight nonce to its conversation id.
	pending map[string]string
	online  map[uuid.UUID]struct{}
}

func NewReconciler(selfID uuid.UUID) *Reconciler {
	return &Reconciler{
		selfID:  selfID,
		convs:   make(map[string]*Conversation),
		pending: make(map[string]string),
		online:  make(map[uuid.UUID]struct{}),
	}
}

// OpenConversation marks the conversation with otherID as the one on screen.
// Opening clears its unread counter. needHistory reports whether the caller
// should fetch history before trusting the projection.
func (r *Reconciler) OpenConversation(otherID uuid.UUID) (conversationID string, needHistory bool) {
	conversationID = domain.ConversationIDFor(r.selfID, otherID)
	conv := r.ensure(conversationID)
	r.current = conversationID
	conv.Unread = 0
	return conversationID, !conv.loaded
}

// CloseConversation clears the on-screen conversation so later incoming
// messages count as unread again.
func (r *Reconciler) CloseConversation() {
	r.current = ""
}

// ApplyHistory merges an authoritative history snapshot into the projection.
// Confirmed local entries are replaced wholesale; optimistic entries that are
// still awaiting their echo survive the merge.
func (r *Reconciler) ApplyHistory(conversationID string, msgs []domain.Message) {
	conv := r.ensure(conversationID)

	var kept []Message
	for _, m := range conv.Messages {
		if m.Pending {
			kept = append(kept, m)
		}
	}

	conv.Messages = make([]Message, 0, len(msgs)+len(kept))
	for _, m := range msgs {
		conv.Messages = append(conv.Messages, fromDomain(m))
	}
	conv.Messages = append(conv.Messages, kept...)
	sortMessages(conv.Messages)
	conv.updateLast()
	conv.loaded = true
}

// SendDraft validates and stages an optimistic send. It returns the wire
// payload to transmit, or ok=false when the draft is blank and nothing should
// be sent.
func (r *Reconciler) SendDraft(recipientID uuid.UUID, text string) (protocol.MessageSendPayload, bool) {
	if strings.TrimSpace(text) == "" {
		return protocol.MessageSendPayload{}, false
	}

	nonce := uuid.New().String()
	conversationID := domain.ConversationIDFor(r.selfID, recipientID)
	conv := r.ensure(conversationID)

	conv.Messages = append(conv.Messages, Message{
		ID:          "local-" + nonce,
		SenderID:    r.selfID,
		RecipientID: recipientID,
		Text:        text,
		CreatedAt:   time.Now(),
		Pending:     true,
	})
	conv.updateLast()
	r.pending[nonce] = conversationID

	return protocol.MessageSendPayload{
		RecipientID: recipientID,
		Text:        text,
		Nonce:       nonce,
	}, true
}

// ApplyIncoming merges a confirmed message into the projection. Delivery is
// idempotent: a message id seen before is ignored. When the nonce matches an
// in-flight send, the optimistic entry is replaced by the confirmed one.
func (r *Reconciler) ApplyIncoming(p protocol.MessageNewPayload) {
	conv := r.ensure(p.ConversationID)
	confirmed := fromDomain(p.Message)

	for _, m := range conv.Messages {
		if m.ID == confirmed.ID {
			return
		}
	}

	if p.Nonce != "" {
		if convID, ok := r.pending[p.Nonce]; ok && convID == p.ConversationID {
			delete(r.pending, p.Nonce)
			localID := "local-" + p.Nonce
			for i, m := range conv.Messages {
				if m.ID == localID {
					conv.Messages[i] = confirmed
					sortMessages(conv.Messages)
					conv.updateLast()
					return
				}
			}
		}
	}

	conv.Messages = append(conv.Messages, confirmed)
	sortMessages(conv.Messages)
	conv.updateLast()

	if confirmed.SenderID != r.selfID && p.ConversationID != r.current {
		conv.Unread++
	}
}

// ApplySendRejected rolls back the optimistic entry for a rejected send and
// returns it so the caller can surface the failed draft.
func (r *Reconciler) ApplySendRejected(nonce string) (Message, bool) {
	conversationID, ok := r.pending[nonce]
	if !ok {
		return Message{}, false
	}
	delete(r.pending, nonce)

	conv := r.ensure(conversationID)
	localID := "local-" + nonce
	for i, m := range conv.Messages {
		if m.ID == localID {
			conv.Messages = append(conv.Messages[:i], conv.Messages[i+1:]...)
			conv.updateLast()
			return m, true
		}
	}
	return Message{}, false
}

// MarkAllRead zeroes the unread counter of every conversation.
func (r *Reconciler) MarkAllRead() {
	for _, conv := range r.convs {
		conv.Unread = 0
	}
}

// MarkRead clears the unread counter of one conversation.
func (r *Reconciler) MarkRead(conversationID string) {
	if conv, ok := r.convs[conversationID]; ok {
		conv.Unread = 0
	}
}

// ApplyPresence replaces the known online set.
func (r *Reconciler) ApplyPresence(online []uuid.UUID) {
	r.online = make(map[uuid.UUID]struct{}, len(online))
	for _, id := range online {
		r.online[id] = struct{}{}
	}
}

// IsOnline reports whether a user is in the last received presence set.
func (r *Reconciler) IsOnline(userID uuid.UUID) bool {
	_, ok := r.online[userID]
	return ok
}

// Conversation returns the projection for a conversation id, or nil.
func (r *Reconciler) Conversation(conversationID string) *Conversation {
	return r.convs[conversationID]
}

func (r *Reconciler) ensure(conversationID string) *Conversation {
	conv, ok := r.convs[conversationID]
	if !ok {
		conv = &Conversation{ID: conversationID}
		r.convs[conversationID] = conv
	}
	return conv
}

func fromDomain(m domain.Message) Message {
	return Message{
		ID:          m.ID.String(),
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Text:        m.Text,
		CreatedAt:   m.CreatedAt,
	}
}

// sortMessages orders by timestamp, pending entries after confirmed ones at
// the same instant, then by id for a stable total order.
func sortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		if msgs[i].Pending != msgs[j].Pending {
			return !msgs[i].Pending
		}
		return msgs[i].ID < msgs[j].ID
	})
}
