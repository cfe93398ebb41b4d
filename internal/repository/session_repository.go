package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/elegant-dining/reservation-api/internal/model"
)

// SessionRepo persists opaque bearer tokens in the 'user_sessions'
// table. Validation is a single join against users so revocation and
// account deactivation take effect on the very next request.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Store inserts a session row.
func (r *SessionRepo) Store(ctx context.Context, s model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_sessions (user_id, session_token, expires_at, ip_address, user_agent, created_at) VALUES (?,?,?,?,?,?)",
		s.UserID, s.Token, s.ExpiresAt, s.IPAddress, s.UserAgent, time.Now().UTC())
	return err
}

// GetUserByToken returns the owning user of a session whose token
// matches exactly, whose expiry is strictly in the future and whose
// owner is active. Any other outcome is sql.ErrNoRows: the three
// failure causes are indistinguishable by design.
func (r *SessionRepo) GetUserByToken(ctx context.Context, token string, now time.Time) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT u.id,u.username,u.email,u.password_hash,u.role,u.full_name,u.phone,u.is_active,u.created_at,u.last_login
		   FROM users u
		   JOIN user_sessions s ON u.id = s.user_id
		  WHERE s.session_token=? AND s.expires_at>? AND u.is_active=?
		  LIMIT 1`,
		token, now.UTC(), true)
	return scanUser(row)
}

// Delete removes the session matching token exactly. Removing a
// non-existent token affects zero rows and is not an error.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_sessions WHERE session_token=?", token)
	return err
}

// DeleteExpired sweeps rows whose expiry has passed. Housekeeping
// only: validation excludes expired rows by timestamp comparison
// whether or not the sweep ran.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_sessions WHERE expires_at<?", now.UTC())
	return err
}

// DeleteAllForUser removes every session owned by the user, logging
// them out of all devices at once.
func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_sessions WHERE user_id=?", userID)
	return err
}

// CountForUser returns the number of session rows owned by the user,
// regardless of expiry.
func (r *SessionRepo) CountForUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_sessions WHERE user_id=?", userID).Scan(&n)
	return n, err
}
