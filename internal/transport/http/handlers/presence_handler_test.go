package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresenceStore struct {
	online []uuid.UUID
	err    error
}

func (s *fakePresenceStore) SetOnline(context.Context, uuid.UUID, time.Duration) error {
	return nil
}

func (s *fakePresenceStore) SetOffline(context.Context, uuid.UUID) error {
	return nil
}

func (s *fakePresenceStore) Online(context.Context) ([]uuid.UUID, error) {
	return s.online, s.err
}

func TestPresenceHandlerOnline(t *testing.T) {
	t.Parallel()

	t.Run("returns the mirrored set", func(t *testing.T) {
		ids := []uuid.UUID{uuid.New(), uuid.New()}
		h := NewPresenceHandler(&fakePresenceStore{online: ids})

		rec := httptest.NewRecorder()
		h.Online(rec, httptest.NewRequest(http.MethodGet, "/api/v1/presence", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Online []uuid.UUID `json:"online"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.ElementsMatch(t, ids, body.Online)
	})

	t.Run("store errors surface as internal", func(t *testing.T) {
		h := NewPresenceHandler(&fakePresenceStore{err: errors.New("redis down")})

		rec := httptest.NewRecorder()
		h.Online(rec, httptest.NewRequest(http.MethodGet, "/api/v1/presence", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
