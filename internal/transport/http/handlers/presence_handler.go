package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jurislink/jurislink/internal/repository"
)

// PresenceHandler exposes the mirrored online set for dashboards and other
// instances that are not party to the WebSocket broadcasts.
type PresenceHandler struct {
	store repository.PresenceStore
}

func NewPresenceHandler(store repository.PresenceStore) *PresenceHandler {
	return &PresenceHandler{store: store}
}

func (h *PresenceHandler) Online(w http.ResponseWriter, r *http.Request) {
	online, err := h.store.Online(r.Context())
	if err != nil {
		slog.Error("presence lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"online": online})
}
