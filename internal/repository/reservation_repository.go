package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/elegant-dining/reservation-api/internal/model"
)

// ReservationRepo provides CRUD operations for table reservations.
// Read access is scoped at the query level: ListAll serves the legacy
// public listing, ListAllWithCreators the admin view and ListByUser
// the customer view.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

const reservationColumns = "id,name,email,phone,party_size,date,time,special_requests,image_path,user_id,created_by_admin,created_at"

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var (
		res    model.Reservation
		userID sql.NullInt64
	)
	err := row.Scan(&res.ID, &res.Name, &res.Email, &res.Phone, &res.PartySize,
		&res.Date, &res.Time, &res.SpecialRequests, &res.ImagePath,
		&userID, &res.CreatedByAdmin, &res.CreatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	if userID.Valid {
		id := uint64(userID.Int64)
		res.UserID = &id
	}
	if res.ImagePath == "" {
		res.ImagePath = model.DefaultImagePath
	}
	return res, nil
}

// Create inserts a reservation and returns its ID. A nil UserID is
// stored as NULL (legacy anonymous path).
func (r *ReservationRepo) Create(ctx context.Context, res model.Reservation) (uint64, error) {
	var userID any
	if res.UserID != nil {
		userID = *res.UserID
	}
	out, err := r.DB.ExecContext(ctx,
		"INSERT INTO reservations (name, email, phone, party_size, date, time, special_requests, image_path, user_id, created_by_admin, created_at) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		res.Name, res.Email, res.Phone, res.PartySize, res.Date, res.Time,
		res.SpecialRequests, res.ImagePath, userID, res.CreatedByAdmin, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a single reservation.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=? LIMIT 1", id)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return model.Reservation{}, ErrNotFound
	}
	return res, err
}

// ListAll returns every reservation, newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListByUser returns only the reservations owned by userID.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListAllWithCreators returns every reservation left-joined with the
// creator's username for the admin view. Anonymous rows carry no
// creator info.
func (r *ReservationRepo) ListAllWithCreators(ctx context.Context) ([]model.AdminReservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id,r.name,r.email,r.phone,r.party_size,r.date,r.time,r.special_requests,r.image_path,r.user_id,r.created_by_admin,r.created_at,u.username
		   FROM reservations r
		   LEFT JOIN users u ON u.id = r.user_id
		  ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AdminReservation
	for rows.Next() {
		var (
			res      model.Reservation
			userID   sql.NullInt64
			username sql.NullString
		)
		err := rows.Scan(&res.ID, &res.Name, &res.Email, &res.Phone, &res.PartySize,
			&res.Date, &res.Time, &res.SpecialRequests, &res.ImagePath,
			&userID, &res.CreatedByAdmin, &res.CreatedAt, &username)
		if err != nil {
			return nil, err
		}
		item := model.AdminReservation{Reservation: res}
		if userID.Valid {
			id := uint64(userID.Int64)
			item.UserID = &id
			name := "Unknown"
			if username.Valid {
				name = username.String
			}
			item.UserInfo = &model.ReservationCreator{ID: id, Username: name}
		}
		if item.ImagePath == "" {
			item.ImagePath = model.DefaultImagePath
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Update replaces every mutable field of a reservation by id.
func (r *ReservationRepo) Update(ctx context.Context, res model.Reservation) error {
	out, err := r.DB.ExecContext(ctx,
		"UPDATE reservations SET name=?, email=?, phone=?, party_size=?, date=?, time=?, special_requests=?, image_path=? WHERE id=?",
		res.Name, res.Email, res.Phone, res.PartySize, res.Date, res.Time,
		res.SpecialRequests, res.ImagePath, res.ID)
	if err != nil {
		return err
	}
	n, err := out.RowsAffected()
	if err == nil && n == 0 {
		// Distinguish "no such row" from a clean no-op update is not
		// possible here; treat zero rows as missing like the GET path.
		if _, gerr := r.GetByID(ctx, res.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a reservation by id.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM reservations WHERE id=?", id)
	return err
}

// BelongsToUser reports whether the reservation's recorded owner is
// userID. Anonymous reservations belong to nobody.
func (r *ReservationRepo) BelongsToUser(ctx context.Context, id, userID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE id=? AND user_id=?", id, userID).Scan(&n)
	return n > 0, err
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
