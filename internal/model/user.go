package model

import "time"

// Role is the closed set of permission classes a user can hold.
// Keeping it a dedicated type (instead of comparing raw strings at
// every decision point) means an unknown value coming out of the
// database can never satisfy an authorization check by accident.
type Role string

const (
	RoleCustomer Role = "customer" // default role for every registration
	RoleAdmin    Role = "admin"    // granted only with the admin secret
)

// ParseRole maps a stored or client-supplied string onto the closed
// role set. Anything outside the set comes back as ("", false) so
// callers are forced to handle the unknown case explicitly.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// IsAdmin reports whether the role grants administrative access.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// User represents an application user record as stored in the
// `users` table. PasswordHash never leaves the repository layer;
// handlers expose users through the Projection type instead.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique username, case-sensitive as stored.
//  Email        – unique email address, case-sensitive as stored.
//  PasswordHash – bcrypt hashed password.
//  Role         – permission class (customer or admin).
//  FullName     – display name supplied at registration.
//  Phone        – optional contact phone.
//  IsActive     – whether the account may log in or validate sessions.
//  CreatedAt    – timestamp of creation.
//  LastLogin    – timestamp of the most recent successful login (nullable).
type User struct {
	ID           uint64     // users.id
	Username     string     // users.username
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	Role         Role       // users.role
	FullName     string     // users.full_name
	Phone        string     // users.phone
	IsActive     bool       // users.is_active
	CreatedAt    time.Time  // users.created_at
	LastLogin    *time.Time // users.last_login (nullable)
}

// Projection is the caller-visible view of a user. It deliberately
// omits the password hash and the active flag; the admin user listing
// adds IsActive back through the AdminProjection type.
type Projection struct {
	ID        uint64     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	FullName  string     `json:"full_name"`
	Phone     string     `json:"phone"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// AdminProjection extends Projection with the active flag for the
// admin-only user listing.
type AdminProjection struct {
	Projection
	IsActive bool `json:"is_active"`
}

// Project returns the safe projection of the user.
func (u *User) Project() Projection {
	return Projection{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		FullName:  u.FullName,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// Session models an entry in the `user_sessions` table. The token is
// stored verbatim: it is an opaque 256-bit random value, so the row
// itself is the credential. A session validates only while ExpiresAt
// lies in the future and the owning user is active; expired rows are
// swept opportunistically before each new session is created.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session (FK into users, cascade delete).
//  Token     – unique opaque bearer token.
//  ExpiresAt – absolute expiry, fixed at issuance (not sliding).
//  IPAddress – client address captured at issuance (informational).
//  UserAgent – client user agent captured at issuance (informational).
//  CreatedAt – timestamp of creation.
type Session struct {
	ID        uint64    // user_sessions.id
	UserID    uint64    // user_sessions.user_id
	Token     string    // user_sessions.session_token
	ExpiresAt time.Time // user_sessions.expires_at
	IPAddress string    // user_sessions.ip_address
	UserAgent string    // user_sessions.user_agent
	CreatedAt time.Time // user_sessions.created_at
}
