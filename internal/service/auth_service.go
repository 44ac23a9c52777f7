package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"civic-backend/internal/mailer"
	"civic-backend/internal/models"
	"civic-backend/internal/repository"
	"civic-backend/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("username, a valid email and a password of at least 6 characters are required")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrNotVerified        = errors.New("please verify your email first")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidRole        = errors.New("role must be one of citizen, staff, admin")
)

const minPasswordLen = 6

type AuthService struct {
	users         repository.UserRepository
	mail          mailer.Mailer
	sessionSecret string
	sessionTTL    time.Duration
	clientURL     string
	log           zerolog.Logger
}

type AuthOptions struct {
	SessionSecret string
	SessionTTL    time.Duration
	ClientURL     string // base of the verification link
}

func NewAuthService(users repository.UserRepository, m mailer.Mailer, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:         users,
		mail:          m,
		sessionSecret: opts.SessionSecret,
		sessionTTL:    opts.SessionTTL,
		clientURL:     strings.TrimRight(opts.ClientURL, "/"),
		log:           log,
	}
}

func (a *AuthService) SessionTTL() time.Duration { return a.sessionTTL }

// Register creates an unverified citizen account and emails the
// verification link. A failed email is logged; the account stays.
func (a *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || len(password) < minPasswordLen {
		return nil, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidInput
	}

	existing, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		Role:              models.RoleCitizen,
		VerificationToken: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	if err := a.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	link := a.clientURL + "/api/auth/verify/" + u.VerificationToken
	if err := a.mail.Send(ctx, mailer.VerificationMessage(u.Email, link)); err != nil {
		a.log.Error().Err(err).Str("user_id", u.ID).Msg("verification email failed")
	}
	return u, nil
}

func (a *AuthService) Verify(ctx context.Context, token string) error {
	u, err := a.users.GetByVerificationToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidToken
	}
	return a.users.MarkVerified(ctx, u.ID)
}

var missingUserHash = sync.OnceValue(func() string {
	h, _ := utils.HashPassword(uuid.NewString())
	return h
})

// Login answers ErrInvalidCredentials for an unknown email and for a wrong
// password alike.
func (a *AuthService) Login(ctx context.Context, email, password string) (token string, user *models.User, err error) {
	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		// same bcrypt work as a real account so timing does not reveal it
		utils.CheckPassword(missingUserHash(), password)
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	// only someone holding the password learns the account is unverified
	if !u.IsVerified {
		return "", nil, ErrNotVerified
	}
	tok, err := utils.SignJWT(a.sessionSecret, u.ID, u.Role, a.sessionTTL)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// SetRole changes the role of the account registered under email.
func (a *AuthService) SetRole(ctx context.Context, email, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	updated, err := a.users.UpdateRole(ctx, u.ID, role)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return updated, nil
}
