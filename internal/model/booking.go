package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed" // Подтверждено, слот зарезервирован
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено, слот освобождён
)

type Booking struct {
	ID              uuid.UUID     `json:"id"`
	MentorID        int64         `json:"mentor_id"`
	CustomerID      int64         `json:"customer_id"`
	Date            time.Time     `json:"date"`
	Range           TimeRange     `json:"range"`
	Mode            SessionMode   `json:"mode"`
	DurationMinutes int           `json:"duration_minutes"`
	Price           Money         `json:"price"`
	Topic           string        `json:"topic"`
	Status          BookingStatus `json:"status"`
	IdempotencyKey  string        `json:"-"` // ключ повторной отправки от клиента
	CreatedAt       time.Time     `json:"created_at"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
}

// IsActive бронирование держит слот
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusConfirmed
}

// Key ключ резервации, который держит бронирование
func (b *Booking) Key() SlotKey {
	return SlotKey{MentorID: b.MentorID, Date: b.Date, Range: b.Range}
}

// IsParticipant проверяет что пользователь - ментор или клиент бронирования
func (b *Booking) IsParticipant(userID int64) bool {
	return b.MentorID == userID || b.CustomerID == userID
}
