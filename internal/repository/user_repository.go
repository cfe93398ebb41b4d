package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/elegant-dining/reservation-api/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,role,full_name,phone,is_active,created_at,last_login"

// scanUser reads one user row in userColumns order.
func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u         model.User
		role      string
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role,
		&u.FullName, &u.Phone, &u.IsActive, &u.CreatedAt, &lastLogin)
	if err != nil {
		return model.User{}, err
	}
	// Unknown role values deliberately fail closed: the user loads but
	// never satisfies an authorization check.
	u.Role, _ = model.ParseRole(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}

// Create inserts a user row and returns its ID. The caller supplies an
// already-hashed password and sanitized fields. Unique-constraint
// violations on username/email map to the matching sentinel error.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role, full_name, phone, is_active, created_at) VALUES (?,?,?,?,?,?,?,?)",
		u.Username, u.Email, u.PasswordHash, string(u.Role), u.FullName, u.Phone, true, time.Now().UTC())
	if err != nil {
		if isDuplicate(err, "username") {
			return 0, ErrUsernameExists
		}
		if isDuplicate(err, "email") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByLogin fetches an active user whose username or email equals
// login. Mirrors the login query: inactive accounts never match.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE (username=? OR email=?) AND is_active=? LIMIT 1",
		login, login, true)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches an active user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND is_active=? LIMIT 1", id, true)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UsernameExists reports whether a row with the username exists.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM users WHERE username=? LIMIT 1", username).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// EmailExists reports whether a row with the email exists.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM users WHERE email=? LIMIT 1", email).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// TouchLastLogin stamps last_login after a successful password check.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=? WHERE id=?", time.Now().UTC(), id)
	return err
}

// UpdateProfile replaces the mutable profile fields of a user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, fullName, phone, email string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=?, phone=?, email=? WHERE id=?",
		fullName, phone, email, id)
	if isDuplicate(err, "email") {
		return ErrEmailExists
	}
	return err
}

// Deactivate clears is_active. Accounts are never hard-deleted; an
// inactive user cannot log in and all of their sessions stop
// validating immediately.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=? WHERE id=?", false, id)
	return err
}

// ListAll returns every user ordered by creation time, newest first.
// Admin-only; includes the is_active flag.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
