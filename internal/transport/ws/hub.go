package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jurislink/jurislink/internal/metrics"
	"github.com/jurislink/jurislink/internal/repository"
	"github.com/jurislink/jurislink/pkg/protocol"
)

const presenceRefreshInterval = 30 * time.Second

// Hub is the session registry: it maps each user id to the set of live
// WebSocket sessions for that user (multi-device) and routes deliveries.
// All maps are owned by the Run goroutine, so registry mutations are atomic
// with respect to fan-out.
type Hub struct {
	log      *slog.Logger
	metrics  *metrics.Metrics
	presence repository.PresenceStore // optional mirror, may be nil

	// sessions maps userID → live clients for that user.
	sessions map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	deliver    chan *delivery
	snapshot   chan chan []uuid.UUID
}

type delivery struct {
	userIDs []uuid.UUID
	data    []byte
}

func NewHub(log *slog.Logger, presence repository.PresenceStore, m *metrics.Metrics) *Hub {
	return &Hub{
		log:        log,
		metrics:    m,
		presence:   presence,
		sessions:   make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan *delivery, 256),
		snapshot:   make(chan chan []uuid.UUID),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(presenceRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			set := h.sessions[client.userID]
			if set == nil {
				set = make(map[*Client]struct{})
				h.sessions[client.userID] = set
				if h.presence != nil {
					if err := h.presence.SetOnline(ctx, client.userID, presenceRefreshInterval*3); err != nil {
						h.log.Warn("presence mirror set online failed", "user_id", client.userID, "err", err)
					}
				}
			}
			set[client] = struct{}{}
			h.metrics.SessionsActive.Inc()
			h.log.Info("session registered", "user_id", client.userID, "sessions", len(set))
			h.broadcastPresence()

		case client := <-h.unregister:
			if h.dropSession(ctx, client) {
				h.broadcastPresence()
			}

		case d := <-h.deliver:
			dirty := false
			for _, userID := range d.userIDs {
				for client := range h.sessions[userID] {
					select {
					case client.send <- d.data:
					default:
						// Buffer full: the session is not keeping up.
						h.metrics.DeliveriesDropped.Inc()
						if h.dropSession(ctx, client) {
							dirty = true
						}
					}
				}
			}
			if dirty {
				h.broadcastPresence()
			}

		case reply := <-h.snapshot:
			reply <- h.online()

		case <-ticker.C:
			if h.presence != nil {
				for userID := range h.sessions {
					if err := h.presence.SetOnline(ctx, userID, presenceRefreshInterval*3); err != nil {
						h.log.Warn("presence mirror refresh failed", "user_id", userID, "err", err)
					}
				}
			}
		}
	}
}

// Register binds a joined client into the registry.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client. Safe to call for clients that never joined.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// DeliverToUsers queues an event for every live session of the given users.
// Users without sessions are skipped; history fetch is their resync path.
func (h *Hub) DeliverToUsers(userIDs []uuid.UUID, event *protocol.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("marshal event failed", "type", event.Type, "err", err)
		return
	}
	h.deliver <- &delivery{userIDs: userIDs, data: data}
}

// Online returns the current presence set.
func (h *Hub) Online() []uuid.UUID {
	reply := make(chan []uuid.UUID, 1)
	h.snapshot <- reply
	return <-reply
}

// dropSession removes one client from the registry. Returns true when the
// client was actually registered (and presence may have changed).
func (h *Hub) dropSession(ctx context.Context, client *Client) bool {
	set := h.sessions[client.userID]
	if _, ok := set[client]; !ok {
		return false
	}
	delete(set, client)
	close(client.send)
	close(client.done)
	h.metrics.SessionsActive.Dec()

	if len(set) == 0 {
		delete(h.sessions, client.userID)
		if h.presence != nil {
			if err := h.presence.SetOffline(ctx, client.userID); err != nil {
				h.log.Warn("presence mirror set offline failed", "user_id", client.userID, "err", err)
			}
		}
	}
	h.log.Info("session unregistered", "user_id", client.userID, "sessions", len(set))
	return true
}

func (h *Hub) online() []uuid.UUID {
	online := make([]uuid.UUID, 0, len(h.sessions))
	for userID := range h.sessions {
		online = append(online, userID)
	}
	return online
}

// broadcastPresence sends the full online set to every live session.
func (h *Hub) broadcastPresence() {
	evt, err := protocol.NewEvent(protocol.EventTypePresenceUpdate, protocol.PresenceUpdatePayload{
		Online: h.online(),
	})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	for _, set := range h.sessions {
		for client := range set {
			select {
			case client.send <- data:
			default:
			}
		}
	}
	h.metrics.PresenceBroadcasts.Inc()
}
