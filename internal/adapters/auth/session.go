// Package auth keeps the access token used to authorize backend calls.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/resumeinsight/pkg/logger"
)

// Authenticator exchanges credentials for an access token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type loginRequest struct {
	Username string `validate:"required,max=128"`
	Password string `validate:"required,max=1024"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Session holds the current token. It is safe for concurrent use and
// satisfies the client's token source.
type Session struct {
	mu      sync.RWMutex
	store   Store
	creds   Credentials
	subject string
	expires time.Time
	now     func() time.Time
	logger  logger.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession restores the stored token. An expired token is dropped from
// the store.
func NewSession(store Store, opts ...SessionOption) (*Session, error) {
	s := &Session{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("auth")
	}

	creds, err := store.Load()
	if err != nil {
		return nil, err
	}
	if creds.Token == "" {
		return s, nil
	}

	subject, expires := claims(creds.Token)
	if !expires.IsZero() && !s.now().Before(expires) {
		s.logger.Info(context.Background(), "stored token expired",
			logger.String("username", creds.Username),
		)
		if err := store.Clear(); err != nil {
			return nil, err
		}
		return s, nil
	}

	s.creds, s.subject, s.expires = creds, subject, expires
	return s, nil
}

// Token returns the current token, or "" when signed out or expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.expires.IsZero() && !s.now().Before(s.expires) {
		return ""
	}
	return s.creds.Token
}

// Authenticated reports whether a usable token is held.
func (s *Session) Authenticated() bool { return s.Token() != "" }

// Username returns the name used to sign in.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Username
}

// Subject returns the token's subject claim, if any.
func (s *Session) Subject() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subject
}

// ExpiresAt returns the token expiry; zero when unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expires
}

// Login signs in through a and persists the token.
func (s *Session) Login(ctx context.Context, a Authenticator, username, password string) error {
	if err := validate.Struct(loginRequest{Username: username, Password: password}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	token, err := a.Login(ctx, username, password)
	if err != nil {
		return err
	}

	subject, expires := claims(token)
	if !expires.IsZero() && !s.now().Before(expires) {
		return ErrTokenExpired
	}

	creds := Credentials{Username: username, Token: token, SavedAt: s.now().UTC()}
	if err := s.store.Save(creds); err != nil {
		return err
	}

	s.mu.Lock()
	s.creds, s.subject, s.expires = creds, subject, expires
	s.mu.Unlock()

	s.logger.Info(ctx, "signed in", logger.String("username", username))
	return nil
}

// Logout forgets the token locally and in the store.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.creds, s.subject, s.expires = Credentials{}, "", time.Time{}
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return err
	}
	s.logger.Info(ctx, "signed out")
	return nil
}

// claims reads subject and expiry without verifying the signature; the
// backend remains the authority on validity. Opaque tokens yield zeros.
func claims(token string) (string, time.Time) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return "", time.Time{}
	}
	var expires time.Time
	if rc.ExpiresAt != nil {
		expires = rc.ExpiresAt.Time
	}
	return rc.Subject, expires
}
