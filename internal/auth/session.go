// Package auth implements the session lifecycle (issue, validate,
// revoke) and the authorization decisions layered on top of it. A
// session is one row in user_sessions: ACTIVE while expires_at lies in
// the future, EXPIRED the instant it passes (a pure read-time
// comparison, no transition code), DELETED once revoked or swept.
// There is no way out of DELETED.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/elegant-dining/reservation-api/internal/model"
	"github.com/elegant-dining/reservation-api/internal/repository"
	"github.com/elegant-dining/reservation-api/internal/utils"
)

// DefaultSessionTTL is the fixed session lifetime: 24 hours from
// issuance, not sliding.
const DefaultSessionTTL = 24 * time.Hour

// ErrInvalidSession is the uniform validation failure. Whether the
// token never existed, expired or belongs to a deactivated account is
// deliberately not distinguishable by the caller.
var ErrInvalidSession = errors.New("invalid or expired token")

// Manager issues, validates and revokes opaque bearer tokens backed
// by the session repository.
type Manager struct {
	Sessions *repository.SessionRepo
	TTL      time.Duration
}

// NewManager returns a Manager with the given TTL; zero or negative
// falls back to DefaultSessionTTL.
func NewManager(sessions *repository.SessionRepo, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{Sessions: sessions, TTL: ttl}
}

// Issue creates a session for an already-authenticated user and
// returns the raw bearer token with its expiry. Expired rows are
// swept first; the sweep is housekeeping only and its failure does
// not block issuance, since validation re-checks expiry anyway. A
// persistence failure here is distinct from "credentials invalid" —
// the caller reports it as a server error, never as a 401.
func (m *Manager) Issue(ctx context.Context, userID uint64, ip, userAgent string) (string, time.Time, error) {
	now := time.Now().UTC()
	_ = m.Sessions.DeleteExpired(ctx, now)

	token, err := utils.NewSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}
	exp := now.Add(m.TTL)
	err = m.Sessions.Store(ctx, model.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: exp,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Validate resolves a token to its owning user. The token validates
// iff a matching row exists, expires_at is strictly in the future and
// the owner is active; every failure collapses into
// ErrInvalidSession.
func (m *Manager) Validate(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, ErrInvalidSession
	}
	u, err := m.Sessions.GetUserByToken(ctx, token, time.Now().UTC())
	if err != nil {
		return model.User{}, ErrInvalidSession
	}
	return u, nil
}

// Revoke deletes the session matching token exactly. Idempotent:
// revoking a token that no longer exists succeeds.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	return m.Sessions.Delete(ctx, token)
}

// RevokeAllForUser terminates every session the user owns.
func (m *Manager) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return m.Sessions.DeleteAllForUser(ctx, userID)
}
