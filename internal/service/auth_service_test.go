package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"civic-backend/internal/models"
	"civic-backend/internal/utils"
)

func init() { utils.BcryptCost = bcrypt.MinCost }

func newAuth(users *memUsers, m *sentMail) *AuthService {
	return NewAuthService(users, m, AuthOptions{
		SessionSecret: "secret",
		SessionTTL:    time.Hour,
		ClientURL:     "http://localhost:5000/",
	}, zerolog.Nop())
}

func TestRegisterSendsVerificationLink(t *testing.T) {
	users, m := newMemUsers(), &sentMail{}
	a := newAuth(users, m)

	u, err := a.Register(context.Background(), " asha ", "Asha@Example.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "asha", u.Username)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, models.RoleCitizen, u.Role)
	assert.False(t, u.IsVerified)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	require.NotEmpty(t, u.VerificationToken)

	require.Len(t, m.msgs, 1)
	assert.Equal(t, "asha@example.com", m.msgs[0].To)
	assert.Contains(t, m.msgs[0].HTML, "http://localhost:5000/api/auth/verify/"+u.VerificationToken)
}

func TestRegisterRejects(t *testing.T) {
	users, m := newMemUsers(), &sentMail{}
	a := newAuth(users, m)
	_, err := a.Register(context.Background(), "asha", "asha@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name                      string
		username, email, password string
		want                      error
	}{
		{"existing email", "other", "ASHA@example.com", "secret1", ErrUserExists},
		{"existing username", "asha", "new@example.com", "secret1", ErrUserExists},
		{"short password", "bo", "bo@example.com", "12345", ErrInvalidInput},
		{"bad email", "bo", "not-an-email", "secret1", ErrInvalidInput},
		{"no username", " ", "bo@example.com", "secret1", ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(context.Background(), tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegisterKeepsAccountWhenMailFails(t *testing.T) {
	users, m := newMemUsers(), &sentMail{err: errors.New("smtp down")}
	a := newAuth(users, m)

	u, err := a.Register(context.Background(), "asha", "asha@example.com", "secret1")
	require.NoError(t, err)
	got, _ := users.GetByID(context.Background(), u.ID)
	assert.NotNil(t, got)
}

func TestVerifyThenLogin(t *testing.T) {
	users, m := newMemUsers(), &sentMail{}
	a := newAuth(users, m)
	ctx := context.Background()

	u, err := a.Register(ctx, "asha", "asha@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = a.Login(ctx, "asha@example.com", "secret1")
	assert.ErrorIs(t, err, ErrNotVerified)
	_, _, err = a.Login(ctx, "asha@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unverified state stays hidden without the password")

	assert.ErrorIs(t, a.Verify(ctx, "bogus"), ErrInvalidToken)
	require.NoError(t, a.Verify(ctx, u.VerificationToken))
	assert.ErrorIs(t, a.Verify(ctx, u.VerificationToken), ErrInvalidToken, "token is single use")

	_, _, err = a.Login(ctx, "asha@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = a.Login(ctx, "ghost@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown email looks like a wrong password")

	tok, logged, err := a.Login(ctx, " ASHA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	claims, err := utils.ParseJWT("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleCitizen, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestSetRole(t *testing.T) {
	users, m := newMemUsers(), &sentMail{}
	a := newAuth(users, m)
	ctx := context.Background()
	_, err := a.Register(ctx, "asha", "asha@example.com", "secret1")
	require.NoError(t, err)

	_, err = a.SetRole(ctx, "asha@example.com", "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = a.SetRole(ctx, "ghost@example.com", models.RoleStaff)
	assert.ErrorIs(t, err, ErrUserNotFound)

	u, err := a.SetRole(ctx, "asha@example.com", models.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, u.Role)
	assert.False(t, strings.Contains(u.Email, " "))
}
