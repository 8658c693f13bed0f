package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/google/uuid"
)

// Контракты хранилища. Реализации: repository (postgres) и repository/memory.
// Отсутствующая запись - (nil, nil), не ошибка.

type MentorRepository interface {
	Create(ctx context.Context, mentor *model.Mentor) error
	GetByID(ctx context.Context, id int64) (*model.Mentor, error)
	ListIDs(ctx context.Context) ([]int64, error)
	GetPricing(ctx context.Context, mentorID int64) (*model.PricingRule, error)
	UpsertPricing(ctx context.Context, rule *model.PricingRule) error
}

type AvailabilityRepository interface {
	GetTemplate(ctx context.Context, mentorID int64) (*model.AvailabilityTemplate, error)
	// ReplaceDays заменяет интервалы указанных дней атомарно и увеличивает версию
	ReplaceDays(ctx context.Context, mentorID int64, days map[model.Weekday][]model.TimeRange) (*model.AvailabilityTemplate, error)
}

type BookingRepository interface {
	// Reserve insert-if-absent по ключу (mentor, date, range) вместе с записью
	// бронирования. Занятый ключ - scheduling.ErrSlotAlreadyBooked.
	Reserve(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	GetActiveByKey(ctx context.Context, key model.SlotKey) (*model.Booking, error)
	ListReservedKeys(ctx context.Context, mentorID int64, from, to time.Time) ([]model.SlotKey, error)
	// Cancel освобождает ключ, повторный вызов ничего не меняет.
	// changed - отмену выполнил именно этот вызов.
	Cancel(ctx context.Context, id uuid.UUID) (*model.Booking, bool, error)
	ListByMentor(ctx context.Context, mentorID int64) ([]*model.Booking, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*model.Booking, error)
}
