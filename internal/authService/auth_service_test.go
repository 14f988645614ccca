package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"auctionhouse/internal/auctionerrors"
	model "auctionhouse/internal/models"
	"auctionhouse/internal/repository"
)

const testSecret = "unit-test-secret"

func newService(ttl time.Duration) (*AuthService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	return NewAuthService(store, testSecret, ttl), store
}

// Tests Register
func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Table-driven validation cases
	tests := []struct {
		name     string
		userName string
		email    string
		phone    string
		password string
	}{
		{name: "missing_name", email: "a@example.com", phone: "555-0100", password: "secret-pass"},
		{name: "missing_email", userName: "Alice", phone: "555-0100", password: "secret-pass"},
		{name: "missing_phone", userName: "Alice", email: "a@example.com", password: "secret-pass"},
		{name: "missing_password", userName: "Alice", email: "a@example.com", phone: "555-0100"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service, _ := newService(time.Hour)
			_, _, err := service.Register(ctx, tc.userName, tc.email, tc.phone, tc.password)
			require.Error(t, err)
			require.True(t, errors.Is(err, auctionerrors.ErrValidation))
		})
	}

	t.Run("valid_registration", func(t *testing.T) {
		t.Parallel()

		service, store := newService(time.Hour)
		user, token, err := service.Register(ctx, "Alice", "alice@example.com", "555-0100", "secret-pass")
		require.NoError(t, err)

		require.NotEmpty(t, user.UserID)
		_, parseErr := uuid.Parse(user.UserID)
		require.NoError(t, parseErr, "UserID should be a valid UUID")
		require.Equal(t, model.RoleUser, user.Role)

		// Password is stored hashed, never verbatim
		require.NotEqual(t, "secret-pass", user.PasswordHash)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret-pass")))

		stored, err := store.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, user.UserID, stored.UserID)

		// The returned token identifies the fresh account
		payload, err := service.VerifyToken(token)
		require.NoError(t, err)
		require.Equal(t, user.UserID, payload.UserID)
		require.Equal(t, "alice@example.com", payload.Email)
		require.Equal(t, model.RoleUser, payload.Role)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(time.Hour)
		_, _, err := service.Register(ctx, "Alice", "alice@example.com", "555-0100", "secret-pass")
		require.NoError(t, err)

		_, _, err = service.Register(ctx, "Other Alice", "alice@example.com", "555-0101", "other-pass")
		require.True(t, errors.Is(err, auctionerrors.ErrEmailTaken))
	})
}

// Tests Login
func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	service, _ := newService(time.Hour)
	registered, _, err := service.Register(ctx, "Alice", "alice@example.com", "555-0100", "secret-pass")
	require.NoError(t, err)

	tests := []struct {
		name          string
		email         string
		password      string
		expectedError error
	}{
		{name: "valid_credentials", email: "alice@example.com", password: "secret-pass", expectedError: nil},
		{name: "empty_email", email: "", password: "secret-pass", expectedError: auctionerrors.ErrInvalidCredentials},
		{name: "empty_password", email: "alice@example.com", password: "", expectedError: auctionerrors.ErrInvalidCredentials},
		// Unknown email and wrong password must be indistinguishable
		{name: "unknown_email", email: "nobody@example.com", password: "secret-pass", expectedError: auctionerrors.ErrInvalidCredentials},
		{name: "wrong_password", email: "alice@example.com", password: "wrong-pass", expectedError: auctionerrors.ErrInvalidCredentials},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			user, token, err := service.Login(ctx, tc.email, tc.password)
			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, registered.UserID, user.UserID)

				payload, err := service.VerifyToken(token)
				require.NoError(t, err)
				require.Equal(t, registered.UserID, payload.UserID)
			}
		})
	}
}

// Tests VerifyToken
func TestAuthService_VerifyToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("garbage_token", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(time.Hour)
		_, err := service.VerifyToken("not-a-token")
		require.True(t, errors.Is(err, auctionerrors.ErrUnauthorized))
	})

	t.Run("wrong_secret", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(time.Hour)
		_, token, err := service.Register(ctx, "Alice", "alice@example.com", "555-0100", "secret-pass")
		require.NoError(t, err)

		other := NewAuthService(repository.NewMemoryStore(), "different-secret", time.Hour)
		_, err = other.VerifyToken(token)
		require.True(t, errors.Is(err, auctionerrors.ErrUnauthorized))
	})

	t.Run("expired_token", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(-time.Minute)
		_, token, err := service.Register(ctx, "Alice", "alice@example.com", "555-0100", "secret-pass")
		require.NoError(t, err)

		_, err = service.VerifyToken(token)
		require.True(t, errors.Is(err, auctionerrors.ErrUnauthorized))
	})
}
