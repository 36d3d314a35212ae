package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"mesaYaApi/internal/booking"
	"mesaYaApi/internal/model"
	"mesaYaApi/internal/repository"
	"mesaYaApi/internal/service"
)

// ReservationHandler exposes the reservation lifecycle and the read-side
// views over HTTP. Domain rejections (bad schedule, no availability, bad
// cancel state) use a success/message envelope so clients can show the
// reason directly.
type ReservationHandler struct {
	Svc *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler. Svc must be non-nil.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc}
}

// getUserID extracts the authenticated user id placed in the context by the
// JWT middleware. JSON numeric claims arrive as float64.
func getUserID(c echo.Context) (uint64, error) {
	raw := c.Get("user_id")
	switch v := raw.(type) {
	case float64:
		return uint64(v), nil
	case uint64:
		return v, nil
	default:
		return 0, fmt.Errorf("user_id missing from context")
	}
}

// fail writes the domain-rejection envelope.
func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

// validSlot reports whether date and clock parse as YYYY-MM-DD and HH:MM.
func validSlot(date, clock string) bool {
	if _, err := time.Parse(booking.DateLayout, date); err != nil {
		return false
	}
	_, err := time.Parse(booking.TimeLayout, clock)
	return err == nil
}

// Create handles POST /v1/reservations. The body carries the desired slot
// and party size; the tables and location are chosen by the service.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var body struct {
		Date      string `json:"reservation_date"`
		Time      string `json:"reservation_time"`
		PartySize uint32 `json:"party_size"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if !validSlot(body.Date, body.Time) {
		return fail(c, http.StatusBadRequest, "reservation_date must be YYYY-MM-DD and reservation_time must be HH:MM")
	}
	if body.PartySize < 1 || body.PartySize > model.MaxPartySize {
		return fail(c, http.StatusBadRequest,
			fmt.Sprintf("party_size must be between 1 and %d", model.MaxPartySize))
	}

	res, err := h.Svc.Create(c.Request().Context(), userID, body.Date, body.Time, body.PartySize)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidSchedule):
			return fail(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, booking.ErrInsufficientAdvance):
			return fail(c, http.StatusUnprocessableEntity, "reservations require at least 15 minutes advance notice")
		case errors.Is(err, booking.ErrNoAvailability):
			return fail(c, http.StatusUnprocessableEntity, "no tables available for the requested time and party size")
		default:
			return fail(c, http.StatusInternalServerError, "failed to create reservation")
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "reservation confirmed",
		"data":    res,
	})
}

// Cancel handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "invalid reservation id")
	}

	res, err := h.Svc.Cancel(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fail(c, http.StatusNotFound, "reservation not found")
		case errors.Is(err, booking.ErrAlreadyCancelled):
			return fail(c, http.StatusConflict, "reservation is already cancelled")
		case errors.Is(err, booking.ErrPastReservation):
			return fail(c, http.StatusConflict, "past reservations cannot be cancelled")
		default:
			return fail(c, http.StatusInternalServerError, "failed to cancel reservation")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "reservation cancelled",
		"data":    res,
	})
}

// Availability handles GET /v1/tables/availability?date=...&time=... and
// returns every table's live status at the queried instant.
func (h *ReservationHandler) Availability(c echo.Context) error {
	date := c.QueryParam("date")
	clock := c.QueryParam("time")
	if !validSlot(date, clock) {
		return fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD and time must be HH:MM")
	}

	report, err := h.Svc.TablesAvailability(c.Request().Context(), date, clock)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to load availability")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":            true,
		"date":               date,
		"time":               clock,
		"summary":            report.Summary,
		"tables_by_location": report.TablesByLocation,
	})
}

// ByDate handles GET /v1/reservations/by-date?date=... and returns the
// date's active reservations grouped by location.
func (h *ReservationHandler) ByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if _, err := time.Parse(booking.DateLayout, date); err != nil {
		return fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	grouped, err := h.Svc.ReservationsByDate(c.Request().Context(), date)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to load reservations")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"date":    date,
		"data":    grouped,
	})
}

// List handles GET /v1/reservations and returns every reservation,
// newest first.
func (h *ReservationHandler) List(c echo.Context) error {
	all, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to load reservations")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    all,
	})
}
