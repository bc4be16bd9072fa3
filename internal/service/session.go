package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/glamsite/glamsite/internal/config"
	"github.com/glamsite/glamsite/internal/domain"
	"github.com/glamsite/glamsite/internal/logger"
	"github.com/glamsite/glamsite/internal/port/revocation"
)

const (
	sessionIssuer   = "glamsite"
	sessionAudience = "glamsite-admin"
	sessionSubject  = "admin"
)

// Session is an issued admin session token.
type Session struct {
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService issues and verifies admin session tokens.
type SessionService struct {
	cfg     config.Auth
	secret  []byte
	revoked revocation.List
	now     func() time.Time
}

// NewSessionService creates a session service. revoked may be nil, in which
// case logout only clears the client cookie.
func NewSessionService(cfg config.Auth, revoked revocation.List) *SessionService {
	return &SessionService{
		cfg:     cfg,
		secret:  []byte(cfg.SessionSecret),
		revoked: revoked,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = func() time.Time { return now().UTC() }
}

// Enabled reports whether sessions are enforced at all.
func (s *SessionService) Enabled() bool { return s.cfg.Enabled }

// IsAuthorized reports whether token is a valid, unexpired, unrevoked admin
// session. It never errors: anything unverifiable is simply not authorized.
func (s *SessionService) IsAuthorized(ctx context.Context, token string) bool {
	if !s.cfg.Enabled {
		return true
	}
	if token == "" {
		return false
	}

	claims, err := s.parse(token)
	if err != nil {
		logger.FromContext(ctx).Debug("session rejected", "error", err)
		return false
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Fail closed when the revocation check is unavailable.
			logger.FromContext(ctx).Error("session revocation check failed", "error", err)
			return false
		}
		if revoked {
			return false
		}
	}
	return true
}

// Login verifies the admin password and issues a session.
func (s *SessionService) Login(ctx context.Context, password string) (*Session, error) {
	if s.cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("%w: admin password not configured", domain.ErrMisconfigured)
	}
	if password == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		logger.FromContext(ctx).Warn("admin login failed")
		return nil, domain.ErrUnauthorized
	}

	issued := s.now()
	expires := issued.Add(s.cfg.SessionTTL)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    sessionIssuer,
		Subject:   sessionSubject,
		Audience:  jwt.ClaimStrings{sessionAudience},
		IssuedAt:  jwt.NewNumericDate(issued),
		NotBefore: jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	logger.FromContext(ctx).Info("admin session issued", "jti", claims.ID, "expires_at", expires)
	return &Session{Token: token, ExpiresAt: expires}, nil
}

// Logout revokes token until its expiry. Unparseable or already expired
// tokens need no revocation and are ignored.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" || s.revoked == nil {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	logger.FromContext(ctx).Info("admin session revoked", "jti", claims.ID)
	return nil
}

func (s *SessionService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("session token has no id")
	}
	return claims, nil
}
