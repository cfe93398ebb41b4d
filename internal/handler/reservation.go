package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/elegant-dining/reservation-api/internal/auth"
	"github.com/elegant-dining/reservation-api/internal/middleware"
	"github.com/elegant-dining/reservation-api/internal/model"
	"github.com/elegant-dining/reservation-api/internal/queue"
	"github.com/elegant-dining/reservation-api/internal/repository"
	queue_publisher "github.com/elegant-dining/reservation-api/internal/service"
	"github.com/elegant-dining/reservation-api/internal/utils"
)

// ReservationHandler serves both reservation surfaces: the legacy
// unauthenticated CRUD endpoints and the session-protected, role-gated
// ones. Publish is swappable so tests do not need a broker.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Publish      func(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

func NewReservationHandler(r *repository.ReservationRepo) *ReservationHandler {
	return &ReservationHandler{
		Reservations: r,
		Publish:      queue_publisher.PublishReservationCreated,
	}
}

// ----- DTOs -----

type reservationReq struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	PartySize       int    `json:"party_size"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	SpecialRequests string `json:"special_requests"`
	ImagePath       string `json:"image_path"`
}

type deleteReq struct {
	ID uint64 `json:"id"`
}

// toModel applies defaults and sanitization to a request body.
func (req *reservationReq) toModel() model.Reservation {
	partySize := req.PartySize
	if partySize == 0 {
		partySize = model.DefaultPartySize
	}
	imagePath := req.ImagePath
	if imagePath == "" {
		imagePath = model.DefaultImagePath
	}
	return model.Reservation{
		ID:              req.ID,
		Name:            utils.Sanitize(req.Name),
		Email:           utils.Sanitize(req.Email),
		Phone:           utils.Sanitize(req.Phone),
		PartySize:       partySize,
		Date:            req.Date,
		Time:            req.Time,
		SpecialRequests: utils.Sanitize(req.SpecialRequests),
		ImagePath:       imagePath,
	}
}

// validateReservation enforces the booking policy: required fields,
// party size bounds and, at creation time only, no past dates.
// Returns a client-facing message, or "" when valid.
func validateReservation(req *reservationReq, creating bool) string {
	if req.Name == "" || req.Email == "" || req.Date == "" {
		return "Incomplete data. Name, email and date are required."
	}
	d, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return "Invalid date format. Use YYYY-MM-DD."
	}
	if creating {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if d.Before(today) {
			return "Reservation date cannot be in the past."
		}
	}
	if size := req.PartySize; size != 0 && (size < model.MinPartySize || size > model.MaxPartySize) {
		return "Party size must be between 1 and 20."
	}
	return ""
}

// announce publishes the created event best-effort.
func (h *ReservationHandler) announce(id uint64, res model.Reservation) {
	if h.Publish == nil {
		return
	}
	ev := queue.ReservationCreatedEvent{
		ReservationID:  id,
		Name:           res.Name,
		Email:          res.Email,
		PartySize:      res.PartySize,
		Date:           res.Date,
		Time:           res.Time,
		UserID:         res.UserID,
		CreatedByAdmin: res.CreatedByAdmin,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Publish(ctx, ev)
	}()
}

// ----- Legacy unauthenticated surface -----

// ListPublic returns every reservation. Kept for compatibility with
// the pre-auth client.
func (h *ReservationHandler) ListPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	all, err := h.Reservations.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error fetching reservations."})
	}
	if all == nil {
		all = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, all)
}

// CreatePublic creates an anonymous reservation (user_id stays NULL).
func (h *ReservationHandler) CreatePublic(c echo.Context) error {
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if msg := validateReservation(&req, true); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}
	res := req.toModel()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Reservations.Create(ctx, res)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "Unable to create reservation."})
	}
	h.announce(id, res)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":        "Reservation created successfully.",
		"reservation_id": id,
	})
}

// UpdatePublic replaces a reservation's mutable fields by id.
func (h *ReservationHandler) UpdatePublic(c echo.Context) error {
	var req reservationReq
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Incomplete data."})
	}
	if msg := validateReservation(&req, false); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.Update(ctx, req.toModel()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Reservation not found."})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "Unable to update reservation."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation updated successfully."})
}

// DeletePublic removes a reservation by id.
func (h *ReservationHandler) DeletePublic(c echo.Context) error {
	var req deleteReq
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "ID is required to delete reservation."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.Delete(ctx, req.ID); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "Unable to delete reservation."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation deleted successfully."})
}

// ----- Protected surface -----

// ListMine returns the caller's reservation view: admins get every
// row joined with its creator's username, customers get only rows
// whose user_id is their own.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if auth.CanAdministrate(u) {
		all, err := h.Reservations.ListAllWithCreators(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error fetching reservations."})
		}
		if all == nil {
			all = []model.AdminReservation{}
		}
		return c.JSON(http.StatusOK, all)
	}

	own, err := h.Reservations.ListByUser(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error fetching reservations."})
	}
	if own == nil {
		own = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, own)
}

// CreateMine creates a reservation owned by the caller, stamping
// user_id and created_by_admin.
func (h *ReservationHandler) CreateMine(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if msg := validateReservation(&req, true); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}
	res := req.toModel()
	res.UserID = &u.ID
	res.CreatedByAdmin = auth.CanAdministrate(u)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Reservations.Create(ctx, res)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "Unable to create reservation."})
	}
	h.announce(id, res)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":        "Reservation created successfully.",
		"reservation_id": id,
	})
}

// UpdateMine is the admin-only full replacement of a reservation.
func (h *ReservationHandler) UpdateMine(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	if !auth.CanAdministrate(u) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Admin access required to update reservations."})
	}
	return h.UpdatePublic(c)
}

// DeleteMine removes a reservation: admins may delete any record,
// customers only their own.
func (h *ReservationHandler) DeleteMine(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	var req deleteReq
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "ID is required to delete reservation."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if !auth.CanAdministrate(u) {
		owned, err := h.Reservations.BelongsToUser(ctx, req.ID, u.ID)
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "Unable to delete reservation."})
		}
		if !owned {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "You can only delete your own reservations."})
		}
	}

	if err := h.Reservations.Delete(ctx, req.ID); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "Unable to delete reservation."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation deleted successfully."})
}
