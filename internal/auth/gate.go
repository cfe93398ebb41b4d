package auth

import (
	"errors"

	"github.com/elegant-dining/reservation-api/internal/model"
)

// ErrBadAdminSecret is returned when a registration asks for the
// admin role with a missing or wrong secret. Distinct from a silent
// downgrade: the registration is rejected outright.
var ErrBadAdminSecret = errors.New("invalid admin secret password")

// CanAdministrate reports whether the user may perform admin-only
// operations: listing users, updating any reservation, deleting any
// reservation, viewing the all-reservations aggregate.
func CanAdministrate(u model.User) bool {
	switch u.Role {
	case model.RoleAdmin:
		return true
	case model.RoleCustomer:
		return false
	}
	// Unknown roles fail closed.
	return false
}

// CanTouchReservation reports whether the user may delete the
// reservation: admins always, otherwise only the recorded owner.
// Anonymous reservations (nil owner) are admin-only.
func CanTouchReservation(u model.User, ownerID *uint64) bool {
	if CanAdministrate(u) {
		return true
	}
	return ownerID != nil && *ownerID == u.ID
}

// ResolveRegistrationRole decides the role of a new registration.
// Requesting "admin" requires the supplied secret to exactly equal
// the configured one; a mismatch or empty secret is an error, never a
// downgrade. Any other requested value, including empty, yields
// customer unconditionally.
func ResolveRegistrationRole(requested, suppliedSecret, configuredSecret string) (model.Role, error) {
	if requested != string(model.RoleAdmin) {
		return model.RoleCustomer, nil
	}
	if configuredSecret == "" || suppliedSecret != configuredSecret {
		return "", ErrBadAdminSecret
	}
	return model.RoleAdmin, nil
}
