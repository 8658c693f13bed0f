package api

import (
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/google/uuid"
)

// Даты во внешнем интерфейсе - YYYY-MM-DD, время - HH:MM

type slotView struct {
	Date    string           `json:"date"`
	Weekday model.Weekday    `json:"weekday"`
	Start   string           `json:"start"`
	End     string           `json:"end"`
	Status  model.SlotStatus `json:"status"`
}

func newSlotView(s model.ConcreteSlot) slotView {
	return slotView{
		Date:    model.FormatDate(s.Date),
		Weekday: s.Weekday,
		Start:   model.FormatClock(s.Range.Start),
		End:     model.FormatClock(s.Range.End),
		Status:  s.Status,
	}
}

type bookingView struct {
	ID              uuid.UUID           `json:"id"`
	MentorID        int64               `json:"mentor_id"`
	CustomerID      int64               `json:"customer_id"`
	Date            string              `json:"date"`
	Start           string              `json:"start"`
	End             string              `json:"end"`
	Mode            model.SessionMode   `json:"mode"`
	DurationMinutes int                 `json:"duration_minutes"`
	Price           model.Money         `json:"price"`
	Topic           string              `json:"topic"`
	Status          model.BookingStatus `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
}

func newBookingView(b *model.Booking) bookingView {
	return bookingView{
		ID:              b.ID,
		MentorID:        b.MentorID,
		CustomerID:      b.CustomerID,
		Date:            model.FormatDate(b.Date),
		Start:           model.FormatClock(b.Range.Start),
		End:             model.FormatClock(b.Range.End),
		Mode:            b.Mode,
		DurationMinutes: b.DurationMinutes,
		Price:           b.Price,
		Topic:           b.Topic,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
		CancelledAt:     b.CancelledAt,
	}
}

func newBookingViews(bookings []*model.Booking) []bookingView {
	views := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, newBookingView(b))
	}
	return views
}
