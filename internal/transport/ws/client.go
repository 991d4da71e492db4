package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/jurislink/jurislink/internal/domain"
	"github.com/jurislink/jurislink/pkg/protocol"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Router relays a send and serves conversation history.
type Router interface {
	Send(ctx context.Context, senderID, recipientID uuid.UUID, text, nonce string) (*domain.Message, error)
	History(ctx context.Context, conversationID string) ([]domain.Message, error)
}

// Directory reports whether a user id belongs to a recognized party.
type Directory interface {
	IsRegistered(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Client represents a single WebSocket connection. A connection starts
// connected-but-not-joined; only an accepted join event registers it with the
// Hub and unlocks history and send traffic.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	router    Router
	directory Directory
	log       *slog.Logger

	userID uuid.UUID

	// joined is only touched from the read pump goroutine.
	joined bool

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, router Router, directory Directory, userID uuid.UUID, log *slog.Logger) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		router:    router,
		directory: directory,
		log:       log,
		userID:    userID,
		send:      make(chan []byte, sendBufSize),
		done:      make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket and dispatches them.
func (c *Client) ReadPump() {
	defer func() {
		if c.joined {
			c.hub.Unregister(c)
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event protocol.Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.log.Debug("client disconnected", "user_id", c.userID)
			} else {
				c.log.Debug("read error", "user_id", c.userID, "err", err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued frames to the WebSocket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.log.Debug("write error", "user_id", c.userID, "err", err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.log.Debug("ping error", "user_id", c.userID, "err", err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *protocol.Event) {
	ctx := context.Background()

	switch event.Type {
	case protocol.EventTypeJoin:
		c.handleJoin(ctx, event)

	case protocol.EventTypeHistoryFetch:
		if !c.joined {
			c.sendError(protocol.CodeNotJoined, "join before fetching history", "")
			return
		}
		var p protocol.HistoryFetchPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError(protocol.CodeInvalidPayload, "invalid history.fetch payload", "")
			return
		}
		messages, err := c.router.History(ctx, p.ConversationID)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidConversationID) {
				c.sendError(protocol.CodeInvalidPayload, "invalid conversation id", "")
				return
			}
			c.log.Error("history fetch failed", "user_id", c.userID, "err", err)
			c.sendError(protocol.CodeInternal, "could not load history", "")
			return
		}
		c.sendEvent(protocol.EventTypeHistoryResult, protocol.HistoryResultPayload{
			ConversationID: p.ConversationID,
			Messages:       messages,
		})

	case protocol.EventTypeMessageSend:
		if !c.joined {
			c.sendError(protocol.CodeNotJoined, "join before sending", "")
			return
		}
		var p protocol.MessageSendPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError(protocol.CodeInvalidPayload, "invalid message.send payload", "")
			return
		}
		if _, err := c.router.Send(ctx, c.userID, p.RecipientID, p.Text, p.Nonce); err != nil {
			switch {
			case errors.Is(err, domain.ErrEmptyMessage):
				c.sendError(protocol.CodeEmptyMessage, "message text is empty", p.Nonce)
			case errors.Is(err, domain.ErrNotConnected):
				c.sendError(protocol.CodeNotConnected, "you are not connected to this user", p.Nonce)
			default:
				c.log.Error("send failed", "user_id", c.userID, "err", err)
				c.sendError(protocol.CodeInternal, "could not send message", p.Nonce)
			}
			return
		}
		// The confirmed message reaches this session via the fan-out, same as
		// every other session of the sender.

	case protocol.EventTypePing:
		c.sendPong()

	default:
		c.sendError(protocol.CodeUnknownEvent, "unknown event type: "+event.Type, "")
	}
}

// handleJoin promotes the connection to joined. The claimed identity must
// match the authenticated token subject and resolve to a registered user.
func (c *Client) handleJoin(ctx context.Context, event *protocol.Event) {
	var p protocol.JoinPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		c.sendError(protocol.CodeInvalidPayload, "invalid join payload", "")
		return
	}
	if p.UserID != c.userID {
		c.sendError(protocol.CodeInvalidIdentity, "join identity does not match token", "")
		return
	}

	ok, err := c.directory.IsRegistered(ctx, p.UserID)
	if err != nil {
		c.log.Error("registration lookup failed", "user_id", p.UserID, "err", err)
		c.sendError(protocol.CodeInternal, "could not verify identity", "")
		return
	}
	if !ok {
		c.sendError(protocol.CodeInvalidIdentity, domain.ErrInvalidIdentity.Error(), "")
		return
	}

	if !c.joined {
		c.joined = true
		c.hub.Register(c)
	}
	c.sendEvent(protocol.EventTypeJoined, protocol.JoinedPayload{
		UserID: c.userID,
		Online: c.hub.Online(),
	})
}

func (c *Client) sendEvent(eventType string, payload any) {
	evt, err := protocol.NewEvent(eventType, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(protocol.Event{Type: protocol.EventTypePong, Timestamp: time.Now().Unix()})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message, nonce string) {
	c.sendEvent(protocol.EventTypeError, protocol.ErrorPayload{
		Code:    code,
		Message: message,
		Nonce:   nonce,
	})
}
