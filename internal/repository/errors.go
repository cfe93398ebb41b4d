// Package repository implements raw-SQL persistence for users,
// sessions and reservations. Sentinel errors defined here let
// handlers map failures onto distinct HTTP responses without
// inspecting driver error strings themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrUsernameExists is returned when an insert or pre-check hits the
// unique constraint on users.username. Handlers translate it into 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when an insert or pre-check hits the
// unique constraint on users.email. Handlers translate it into 409.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("not found")

// isDuplicate reports whether err is a unique-constraint violation on
// the named column. The check-then-insert registration flow races
// under concurrent requests; the store's unique constraints are the
// authoritative conflict signal, so insert errors are mapped back to
// the same sentinels the pre-checks produce. Covers MySQL (error
// 1062) and the SQLite driver used in tests.
func isDuplicate(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") && !strings.Contains(msg, "unique constraint") {
		return false
	}
	return strings.Contains(msg, column)
}
