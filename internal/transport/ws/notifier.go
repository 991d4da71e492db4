package ws

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/jurislink/jurislink/internal/domain"
	"github.com/jurislink/jurislink/pkg/protocol"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
	log *slog.Logger
}

func NewHubNotifier(hub *Hub, log *slog.Logger) *HubNotifier {
	return &HubNotifier{hub: hub, log: log}
}

// NotifyNewMessage delivers a confirmed message to every live session of the
// sender and the recipient. The nonce rides along so the sender's sessions
// can swap out their optimistic copy.
func (n *HubNotifier) NotifyNewMessage(msg *domain.Message, nonce string) {
	evt, err := protocol.NewEvent(protocol.EventTypeMessageNew, protocol.MessageNewPayload{
		ConversationID: msg.ConversationID,
		Message:        *msg,
		Nonce:          nonce,
	})
	if err != nil {
		n.log.Error("notifier marshal failed", "err", err)
		return
	}
	n.hub.DeliverToUsers([]uuid.UUID{msg.SenderID, msg.RecipientID}, evt)
}
