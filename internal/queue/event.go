// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// ReservationCreatedEvent is published after a reservation row is
// persisted. It carries enough for downstream consumers (booking log,
// notifications, analytics) to act without querying the database.
type ReservationCreatedEvent struct {
	ReservationID  uint64  `json:"reservation_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	PartySize      int     `json:"party_size"`
	Date           string  `json:"date"`
	Time           string  `json:"time,omitempty"`
	UserID         *uint64 `json:"user_id,omitempty"`
	CreatedByAdmin bool    `json:"created_by_admin"`
	CreatedAt      string  `json:"created_at"`
}
