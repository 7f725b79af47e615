package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahim-jr/stripe-payment-tester-repo/internal/store"
)

func newTestService(ttl time.Duration) (*Service, *store.Memory) {
	mem := store.NewMemory()
	return NewService(mem, "test-secret", ttl), mem
}

func TestService_Register(t *testing.T) {
	s, _ := newTestService(time.Hour)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "Success", username: "alice", password: "pw1", wantErr: nil},
		{name: "EmptyUsername", username: "", password: "pw1", wantErr: ErrInvalidInput},
		{name: "EmptyPassword", username: "bob", password: "", wantErr: ErrInvalidInput},
		{name: "UsernameTooLong", username: strings.Repeat("a", 51), password: "pw1", wantErr: ErrInvalidInput},
		{name: "PasswordTooLong", username: "carol", password: strings.Repeat("p", 101), wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := s.Register(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, tt.username, user.Username)
			// Password must never be stored in the clear.
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	s, _ := newTestService(time.Hour)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = s.Register(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestService_Login(t *testing.T) {
	s, _ := newTestService(time.Hour)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	token, err := s.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestService_Login_BadCredentials(t *testing.T) {
	s, _ := newTestService(time.Hour)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = s.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_ParseToken_Expired(t *testing.T) {
	s, _ := newTestService(-time.Hour)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	token, err := s.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = s.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestService_ParseToken_WrongSecret(t *testing.T) {
	s, mem := newTestService(time.Hour)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	token, err := s.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	other := NewService(mem, "different-secret", time.Hour)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestService_ParseToken_Garbage(t *testing.T) {
	s, _ := newTestService(time.Hour)
	_, err := s.ParseToken("not-a-token")
	assert.Error(t, err)
}
