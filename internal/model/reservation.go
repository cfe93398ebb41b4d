package model

import "time"

// DefaultImagePath is stored when a reservation is created without an
// uploaded image.
const DefaultImagePath = "uploads/default-restaurant.jpg"

// Party size policy bounds for a single table reservation.
const (
	MinPartySize     = 1
	MaxPartySize     = 20
	DefaultPartySize = 2
)

// Reservation records a table booking. UserID is nil only for
// reservations created through the unauthenticated legacy endpoint;
// everything created through the protected endpoint carries its
// creator and the created_by_admin flag.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – guest name as given on the booking.
//  Email           – contact email for the booking.
//  Phone           – optional contact phone.
//  PartySize       – number of guests (1–20).
//  Date            – reservation date (YYYY-MM-DD), never in the past at creation.
//  Time            – optional reservation time.
//  SpecialRequests – optional free text, sanitized before storage.
//  ImagePath       – relative path of an uploaded image, or the default.
//  UserID          – owning user, nil for the legacy anonymous path.
//  CreatedByAdmin  – whether the creator held the admin role.
//  CreatedAt       – creation timestamp.
type Reservation struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	PartySize       int       `json:"party_size"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	SpecialRequests string    `json:"special_requests"`
	ImagePath       string    `json:"image_path"`
	UserID          *uint64   `json:"user_id"`
	CreatedByAdmin  bool      `json:"created_by_admin"`
	CreatedAt       time.Time `json:"created_at"`
}

// ReservationCreator is attached to rows in the admin listing so the
// dashboard can show who made each booking.
type ReservationCreator struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// AdminReservation is a reservation joined with its creator, returned
// only to admins.
type AdminReservation struct {
	Reservation
	UserInfo *ReservationCreator `json:"user_info,omitempty"`
}
