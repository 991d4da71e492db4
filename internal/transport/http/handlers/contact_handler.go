package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jurislink/jurislink/internal/service"
	"github.com/jurislink/jurislink/internal/transport/http/middleware"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Username == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USERNAME", "Username is required")
		return
	}

	conn, err := h.contactService.AddContact(r.Context(), userID, input.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotConnectSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_CONNECT_SELF", "Cannot add yourself as a contact")
		case errors.Is(err, service.ErrContactNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrAlreadyConnected):
			writeError(w, http.StatusConflict, "ALREADY_CONNECTED", "You are already connected")
		default:
			slog.Error("add contact failed", "err", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, conn)
}

func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conns, err := h.contactService.ListContacts(r.Context(), userID)
	if err != nil {
		slog.Error("list contacts failed", "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, conns)
}
