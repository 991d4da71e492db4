package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurislink/jurislink/internal/repository/memory"
)

func TestAuthService(t *testing.T) {
	t.Parallel()

	input := RegisterInput{
		Email:       "alice@example.com",
		Username:    "alice",
		DisplayName: "Alice",
		Password:    "Sup3rSecret",
	}

	t.Run("register issues a token", func(t *testing.T) {
		svc := NewAuthService(memory.NewUserRepo(), "test-secret")

		resp, err := svc.Register(context.Background(), input)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "alice", resp.User.Username)
		assert.True(t, resp.User.Verified)
	})

	t.Run("register rejects duplicate email and username", func(t *testing.T) {
		svc := NewAuthService(memory.NewUserRepo(), "test-secret")
		_, err := svc.Register(context.Background(), input)
		require.NoError(t, err)

		dup := input
		dup.Username = "alice2"
		_, err = svc.Register(context.Background(), dup)
		assert.ErrorIs(t, err, ErrEmailTaken)

		dup = input
		dup.Email = "alice2@example.com"
		_, err = svc.Register(context.Background(), dup)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("login verifies the password", func(t *testing.T) {
		svc := NewAuthService(memory.NewUserRepo(), "test-secret")
		_, err := svc.Register(context.Background(), input)
		require.NoError(t, err)

		resp, err := svc.Login(context.Background(), LoginInput{Email: input.Email, Password: input.Password})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)

		_, err = svc.Login(context.Background(), LoginInput{Email: input.Email, Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCreds)

		_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: input.Password})
		assert.ErrorIs(t, err, ErrInvalidCreds)
	})
}
