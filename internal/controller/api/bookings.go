package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// IdempotencyKeyHeader ключ повтора запроса бронирования
const IdempotencyKeyHeader = "Idempotency-Key"

type createBookingRequest struct {
	MentorID        int64  `json:"mentor_id"`
	Date            string `json:"date"`
	Start           string `json:"start"`
	End             string `json:"end"`
	Mode            string `json:"mode"`
	DurationMinutes int    `json:"duration_minutes"`
	Topic           string `json:"topic"`
}

func (a *API) createBooking(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, "invalid request body")
		return
	}
	if req.MentorID <= 0 {
		a.badRequest(w, "mentor_id is required")
		return
	}

	date, err := model.ParseDate(req.Date, a.services.Slots.Location())
	if err != nil {
		a.badRequest(w, err.Error())
		return
	}

	rng, err := model.NewTimeRange(req.Start, req.End)
	if err != nil {
		a.badRequest(w, err.Error())
		return
	}

	booking, err := a.services.Bookings.Book(r.Context(), service.BookingRequest{
		MentorID:        req.MentorID,
		CustomerID:      userID,
		Date:            date,
		Range:           rng,
		Mode:            model.SessionMode(strings.ToLower(strings.TrimSpace(req.Mode))),
		DurationMinutes: req.DurationMinutes,
		Topic:           req.Topic,
		IdempotencyKey:  strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader)),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.Response(w, http.StatusCreated, newBookingView(booking))
}

func (a *API) myBookings(w http.ResponseWriter, r *http.Request, userID int64) {
	bookings, err := a.services.Bookings.ListForCustomer(r.Context(), userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, newBookingViews(bookings))
}

func (a *API) getBooking(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		a.badRequest(w, "invalid booking ID")
		return
	}

	booking, err := a.services.Bookings.Get(r.Context(), id, userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, newBookingView(booking))
}

func (a *API) cancelBooking(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		a.badRequest(w, "invalid booking ID")
		return
	}

	booking, err := a.services.Bookings.Cancel(r.Context(), id, userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, newBookingView(booking))
}
