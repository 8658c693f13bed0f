package model

import (
	"fmt"
	"time"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
)

// ConcreteSlot конкретный слот на дату, полученный проекцией шаблона.
// Не хранится в БД, пересчитывается при каждом чтении.
type ConcreteSlot struct {
	Date    time.Time  `json:"date"`
	Weekday Weekday    `json:"weekday"`
	Range   TimeRange  `json:"range"`
	Status  SlotStatus `json:"status"`
}

// IsAvailable проверяет что слот свободен
func (s ConcreteSlot) IsAvailable() bool {
	return s.Status == SlotStatusAvailable
}

// StartTime абсолютное время начала слота
func (s ConcreteSlot) StartTime() time.Time {
	return s.Date.Add(time.Duration(s.Range.Start) * time.Minute)
}

// SlotKey ключ резервации (mentorID, date, range).
// Одновременно может существовать не более одной резервации на ключ.
type SlotKey struct {
	MentorID int64
	Date     time.Time
	Range    TimeRange
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.MentorID, FormatDate(k.Date), k.Range)
}
