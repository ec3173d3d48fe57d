package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/job-portal-manager/internal/apperr"
	"github.com/iliyamo/job-portal-manager/internal/model"
	"github.com/iliyamo/job-portal-manager/internal/queue"
	"github.com/iliyamo/job-portal-manager/internal/utils"
)

// DefaultTokenTTL is the bearer token lifetime.
const DefaultTokenTTL = 24 * time.Hour

// errInvalidCredentials is shared by the unknown-email and wrong-password
// paths so callers cannot tell them apart.
var errInvalidCredentials = apperr.Auth("Invalid credentials")

// AuthConfig configures AuthService.
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService registers and authenticates users and issues bearer tokens.
type AuthService struct {
	users  UserStore
	cfg    AuthConfig
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

// NewAuthService wires an AuthService. A zero TokenTTL means 24h.
func NewAuthService(users UserStore, cfg AuthConfig, events EventPublisher, log *slog.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if events == nil {
		events = NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{users: users, cfg: cfg, events: events, log: log, now: time.Now}
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      model.UserSummary
}

// Register creates a user and returns its id. Name and email are trimmed;
// the password is hashed as given.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (uint64, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return 0, apperr.Validation("Email, password, and name are required")
	}
	if len(password) > utils.MaxPasswordBytes {
		return 0, apperr.Validation(fmt.Sprintf("Password must be at most %d bytes", utils.MaxPasswordBytes))
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return 0, err
	}
	id, err := s.users.Create(ctx, name, email, hash, s.now())
	if err != nil {
		return 0, err
	}
	if err := flush(ctx, s.users); err != nil {
		return 0, err
	}

	publish(ctx, s.events, s.log, queue.PortalEvent{Type: queue.EventUserRegistered, UserID: id})
	s.log.Info("user registered", "user_id", id)
	return id, nil
}

// Login verifies the credentials and issues a token. Unknown email and
// wrong password yield the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, apperr.Validation("Email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			utils.VerifyPassword("", password)
			return LoginResult{}, errInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, errInvalidCredentials
	}

	tok, err := s.IssueToken(u)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: tok.Token, ExpiresAt: tok.Exp, User: u.Summary()}, nil
}

// IssueToken signs {user_id, email, name, exp = now + TTL}.
func (s *AuthService) IssueToken(u model.User) (utils.AccessToken, error) {
	return utils.NewAccessToken(s.cfg.Secret, u.ID, u.Email, u.Name, s.cfg.TokenTTL, s.now())
}

// VerifyToken returns the claims of a valid token. Every failure is an
// apperr.ErrAuth; no session lookup happens.
func (s *AuthService) VerifyToken(raw string) (*utils.TokenClaims, error) {
	claims, err := utils.ParseAccessToken(s.cfg.Secret, raw, s.now())
	if err != nil {
		return nil, apperr.Auth("Invalid or expired token")
	}
	return claims, nil
}
