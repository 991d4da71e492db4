package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurislink/jurislink/internal/domain"
	"github.com/jurislink/jurislink/internal/repository/memory"
)

func seedUser(t *testing.T, repo *memory.UserRepo, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:          uuid.New(),
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: username,
		Verified:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestContactService(t *testing.T) {
	t.Parallel()

	t.Run("add and list", func(t *testing.T) {
		userRepo := memory.NewUserRepo()
		svc := NewContactService(memory.NewConnectionRepo(), userRepo)
		alice := seedUser(t, userRepo, "alice")
		bob := seedUser(t, userRepo, "bob")

		conn, err := svc.AddContact(context.Background(), alice.ID, "bob")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, conn.OtherUserID)
		assert.Equal(t, "bob", conn.OtherUsername)

		// The connection is mutual: both sides list it.
		for _, id := range []uuid.UUID{alice.ID, bob.ID} {
			conns, err := svc.ListContacts(context.Background(), id)
			require.NoError(t, err)
			assert.Len(t, conns, 1)
		}
	})

	t.Run("rejects unknown username", func(t *testing.T) {
		userRepo := memory.NewUserRepo()
		svc := NewContactService(memory.NewConnectionRepo(), userRepo)
		alice := seedUser(t, userRepo, "alice")

		_, err := svc.AddContact(context.Background(), alice.ID, "nobody")
		assert.ErrorIs(t, err, ErrContactNotFound)
	})

	t.Run("rejects self connection", func(t *testing.T) {
		userRepo := memory.NewUserRepo()
		svc := NewContactService(memory.NewConnectionRepo(), userRepo)
		alice := seedUser(t, userRepo, "alice")

		_, err := svc.AddContact(context.Background(), alice.ID, "alice")
		assert.ErrorIs(t, err, ErrCannotConnectSelf)
	})

	t.Run("rejects duplicate connection", func(t *testing.T) {
		userRepo := memory.NewUserRepo()
		svc := NewContactService(memory.NewConnectionRepo(), userRepo)
		alice := seedUser(t, userRepo, "alice")
		bob := seedUser(t, userRepo, "bob")

		_, err := svc.AddContact(context.Background(), alice.ID, "bob")
		require.NoError(t, err)

		// Same pair from the other side is still a duplicate.
		_, err = svc.AddContact(context.Background(), bob.ID, "alice")
		assert.ErrorIs(t, err, ErrAlreadyConnected)
	})

	t.Run("list is empty for a fresh user", func(t *testing.T) {
		userRepo := memory.NewUserRepo()
		svc := NewContactService(memory.NewConnectionRepo(), userRepo)
		alice := seedUser(t, userRepo, "alice")

		conns, err := svc.ListContacts(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.NotNil(t, conns)
		assert.Empty(t, conns)
	})
}

func TestContactServiceCanMessage(t *testing.T) {
	t.Parallel()

	userRepo := memory.NewUserRepo()
	svc := NewContactService(memory.NewConnectionRepo(), userRepo)
	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")
	carol := seedUser(t, userRepo, "carol")

	_, err := svc.AddContact(context.Background(), alice.ID, "bob")
	require.NoError(t, err)

	t.Run("connected pair may message either way", func(t *testing.T) {
		for _, pair := range [][2]uuid.UUID{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
			ok, err := svc.CanMessage(context.Background(), pair[0], pair[1])
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("unconnected pair may not", func(t *testing.T) {
		ok, err := svc.CanMessage(context.Background(), alice.ID, carol.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("self messaging is never allowed", func(t *testing.T) {
		ok, err := svc.CanMessage(context.Background(), alice.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
