package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurislink/jurislink/internal/metrics"
	"github.com/jurislink/jurislink/pkg/protocol"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(log, nil, metrics.New(prometheus.NewRegistry()))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

// testClient builds a client that only exercises the registry, no socket.
func testClient(userID uuid.UUID) *Client {
	return &Client{
		userID: userID,
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

func drainEvent(t *testing.T, c *Client) *protocol.Event {
	t.Helper()
	select {
	case data := <-c.send:
		var evt protocol.Event
		require.NoError(t, json.Unmarshal(data, &evt))
		return &evt
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return nil
	}
}

func onlineSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestHubPresence(t *testing.T) {
	t.Parallel()

	alice := uuid.New()
	bob := uuid.New()

	t.Run("user stays online while any session remains", func(t *testing.T) {
		hub := newTestHub(t)

		phone := testClient(alice)
		laptop := testClient(alice)
		hub.Register(phone)
		hub.Register(laptop)

		online := hub.Online()
		require.Len(t, online, 1)
		assert.Contains(t, onlineSet(online), alice)

		hub.Unregister(phone)
		assert.Contains(t, onlineSet(hub.Online()), alice)

		hub.Unregister(laptop)
		assert.Empty(t, hub.Online())
	})

	t.Run("registry mutations broadcast the full set", func(t *testing.T) {
		hub := newTestHub(t)

		ca := testClient(alice)
		hub.Register(ca)
		evt := drainEvent(t, ca)
		require.Equal(t, protocol.EventTypePresenceUpdate, evt.Type)

		cb := testClient(bob)
		hub.Register(cb)

		// Both sessions see the two-user set after bob joins.
		for _, c := range []*Client{ca, cb} {
			evt := drainEvent(t, c)
			require.Equal(t, protocol.EventTypePresenceUpdate, evt.Type)
			var p protocol.PresenceUpdatePayload
			require.NoError(t, json.Unmarshal(evt.Payload, &p))
			set := onlineSet(p.Online)
			assert.Contains(t, set, alice)
			assert.Contains(t, set, bob)
		}
	})

	t.Run("unregister of unknown client is a no-op", func(t *testing.T) {
		hub := newTestHub(t)
		hub.Unregister(testClient(alice))
		assert.Empty(t, hub.Online())
	})
}

func TestHubDeliverToUsers(t *testing.T) {
	t.Parallel()

	alice := uuid.New()
	bob := uuid.New()
	offline := uuid.New()

	hub := newTestHub(t)

	ca := testClient(alice)
	cb1 := testClient(bob)
	cb2 := testClient(bob)
	for _, c := range []*Client{ca, cb1, cb2} {
		hub.Register(c)
	}
	// Online is a synchronous round trip, so all registrations have landed.
	require.Len(t, hub.Online(), 2)

	// Swallow the presence frames so only the delivery remains.
	for _, c := range []*Client{ca, cb1, cb2} {
		for {
			select {
			case <-c.send:
				continue
			default:
			}
			break
		}
	}

	evt, err := protocol.NewEvent(protocol.EventTypeMessageNew, protocol.MessageNewPayload{
		ConversationID: "x:y",
	})
	require.NoError(t, err)
	hub.DeliverToUsers([]uuid.UUID{alice, bob, offline}, evt)

	// Every live session of both users gets the frame, including all of
	// bob's devices. The offline user is skipped without error.
	for _, c := range []*Client{ca, cb1, cb2} {
		got := drainEvent(t, c)
		assert.Equal(t, protocol.EventTypeMessageNew, got.Type)
	}
}
