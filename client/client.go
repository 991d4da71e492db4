package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/jurislink/jurislink/pkg/protocol"
)

// Handlers are optional callbacks invoked from the Listen goroutine after the
// reconciler has been updated.
type Handlers struct {
	OnMessage      func(conversationID string, msg Message)
	OnPresence     func(online []uuid.UUID)
	OnSendRejected func(code string, draft Message)
}

// Client connects to the relay over WebSocket and keeps a Reconciler in sync
// with the server. All exported methods are safe for concurrent use.
type Client struct {
	userID   uuid.UUID
	handlers Handlers

	conn *websocket.Conn

	mu     sync.Mutex
	rec    *Reconciler
	joined bool
}

func New(userID uuid.UUID, handlers Handlers) *Client {
	return &Client{
		userID:   userID,
		handlers: handlers,
		rec:      NewReconciler(userID),
	}
}

// Dial opens the WebSocket connection. url should include the auth token,
// e.g. wss://host/ws?token=xxx.
func (c *Client) Dial(ctx context.Context, url string) error {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dialing relay: %w", err)
	}
	c.conn = conn
	return nil
}

// Join announces the client's identity. The server answers with a joined
// event carrying the current presence set; Listen processes it.
func (c *Client) Join(ctx context.Context) error {
	evt, err := protocol.NewEvent(protocol.EventTypeJoin, protocol.JoinPayload{UserID: c.userID})
	if err != nil {
		return err
	}
	return wsjson.Write(ctx, c.conn, evt)
}

// Listen reads server events until the connection closes or ctx is done.
func (c *Client) Listen(ctx context.Context) error {
	for {
		var event protocol.Event
		if err := wsjson.Read(ctx, c.conn, &event); err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		c.dispatch(&event)
	}
}

func (c *Client) dispatch(event *protocol.Event) {
	switch event.Type {
	case protocol.EventTypeJoined:
		var p protocol.JoinedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return
		}
		c.mu.Lock()
		c.joined = true
		c.rec.ApplyPresence(p.Online)
		c.mu.Unlock()
		if c.handlers.OnPresence != nil {
			c.handlers.OnPresence(p.Online)
		}

	case protocol.EventTypeMessageNew:
		var p protocol.MessageNewPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return
		}
		c.mu.Lock()
		c.rec.ApplyIncoming(p)
		c.mu.Unlock()
		if c.handlers.OnMessage != nil {
			c.handlers.OnMessage(p.ConversationID, fromDomain(p.Message))
		}

	case protocol.EventTypeHistoryResult:
		var p protocol.HistoryResultPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return
		}
		c.mu.Lock()
		c.rec.ApplyHistory(p.ConversationID, p.Messages)
		c.mu.Unlock()

	case protocol.EventTypePresenceUpdate:
		var p protocol.PresenceUpdatePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return
		}
		c.mu.Lock()
		c.rec.ApplyPresence(p.Online)
		c.mu.Unlock()
		if c.handlers.OnPresence != nil {
			c.handlers.OnPresence(p.Online)
		}

	case protocol.EventTypeError:
		var p protocol.ErrorPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return
		}
		if p.Nonce == "" {
			return
		}
		c.mu.Lock()
		draft, ok := c.rec.ApplySendRejected(p.Nonce)
		c.mu.Unlock()
		if ok && c.handlers.OnSendRejected != nil {
			c.handlers.OnSendRejected(p.Code, draft)
		}
	}
}

// SendDraft stages an optimistic message and transmits it. A blank draft is a
// no-op.
func (c *Client) SendDraft(ctx context.Context, recipientID uuid.UUID, text string) error {
	c.mu.Lock()
	payload, ok := c.rec.SendDraft(recipientID, text)
	c.mu.Unlock()
	if !ok {
		return nil
	}

	evt, err := protocol.NewEvent(protocol.EventTypeMessageSend, payload)
	if err != nil {
		return err
	}
	return wsjson.Write(ctx, c.conn, evt)
}

// OpenConversation brings a conversation on screen, clears its unread counter
// and requests history when the projection has not been loaded yet.
func (c *Client) OpenConversation(ctx context.Context, otherID uuid.UUID) (string, error) {
	c.mu.Lock()
	conversationID, needHistory := c.rec.OpenConversation(otherID)
	c.mu.Unlock()

	if needHistory {
		evt, err := protocol.NewEvent(protocol.EventTypeHistoryFetch, protocol.HistoryFetchPayload{
			ConversationID: conversationID,
		})
		if err != nil {
			return conversationID, err
		}
		if err := wsjson.Write(ctx, c.conn, evt); err != nil {
			return conversationID, err
		}
	}
	return conversationID, nil
}

// Joined reports whether the server has acknowledged the join.
func (c *Client) Joined() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joined
}

// MarkAllRead zeroes the unread counter of every conversation.
func (c *Client) MarkAllRead() {
	c.mu.Lock()
	c.rec.MarkAllRead()
	c.mu.Unlock()
}

// MarkRead clears the unread counter of one conversation.
func (c *Client) MarkRead(conversationID string) {
	c.mu.Lock()
	c.rec.MarkRead(conversationID)
	c.mu.Unlock()
}

// Snapshot returns a copy of a conversation's messages and unread count.
func (c *Client) Snapshot(conversationID string) ([]Message, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv := c.rec.Conversation(conversationID)
	if conv == nil {
		return nil, 0
	}
	msgs := make([]Message, len(conv.Messages))
	copy(msgs, conv.Messages)
	return msgs, conv.Unread
}

// IsOnline reports whether a user was in the last presence broadcast.
func (c *Client) IsOnline(userID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec.IsOnline(userID)
}

// Close shuts the connection down.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
