package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/repository/base"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `
	id, mentor_id, customer_id, session_date, start_minute, end_minute, mode,
	duration_minutes, price_amount, price_currency, topic, status,
	COALESCE(idempotency_key, ''), created_at, cancelled_at
`

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

// Reserve атомарно занимает ключ (mentor, date, range) и сохраняет бронирование.
// Если ключ уже занят, возвращает scheduling.ErrSlotAlreadyBooked.
func (r *BookingRepository) Reserve(ctx context.Context, booking *model.Booking) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		if booking.ID == uuid.Nil {
			booking.ID = uuid.New()
		}

		// insert-if-absent по первичному ключу резервации
		tag, err := tx.Exec(ctx, `
			INSERT INTO slot_reservations (mentor_id, session_date, start_minute, end_minute, booking_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (mentor_id, session_date, start_minute, end_minute) DO NOTHING
		`, booking.MentorID, booking.Date, booking.Range.Start, booking.Range.End, booking.ID)
		if err != nil {
			return fmt.Errorf("reserve slot: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return scheduling.ErrSlotAlreadyBooked
		}

		var idempotencyKey *string
		if booking.IdempotencyKey != "" {
			idempotencyKey = &booking.IdempotencyKey
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO bookings (id, mentor_id, customer_id, session_date, start_minute, end_minute, mode,
				duration_minutes, price_amount, price_currency, topic, status, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING created_at
		`,
			booking.ID,
			booking.MentorID,
			booking.CustomerID,
			booking.Date,
			booking.Range.Start,
			booking.Range.End,
			string(booking.Mode),
			booking.DurationMinutes,
			booking.Price.Amount,
			booking.Price.Currency,
			booking.Topic,
			string(booking.Status),
			idempotencyKey,
		).Scan(&booking.CreatedAt)
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("booking %s already exists: %w", booking.ID, scheduling.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		return nil
	})
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	row := r.Pool().QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)

	booking, err := scanBooking(row)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// GetActiveByKey получает бронирование, которое держит ключ резервации
func (r *BookingRepository) GetActiveByKey(ctx context.Context, key model.SlotKey) (*model.Booking, error) {
	row := r.Pool().QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = (
			SELECT booking_id FROM slot_reservations
			WHERE mentor_id = $1 AND session_date = $2 AND start_minute = $3 AND end_minute = $4
		)
	`, key.MentorID, key.Date, key.Range.Start, key.Range.End)

	booking, err := scanBooking(row)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by slot: %w", err)
	}

	return booking, nil
}

// ListReservedKeys занятые ключи ментора в диапазоне дат включительно
func (r *BookingRepository) ListReservedKeys(ctx context.Context, mentorID int64, from, to time.Time) ([]model.SlotKey, error) {
	rows, err := r.Pool().Query(ctx, `
		SELECT session_date, start_minute, end_minute
		FROM slot_reservations
		WHERE mentor_id = $1 AND session_date BETWEEN $2 AND $3
		ORDER BY session_date, start_minute
	`, mentorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list reserved slots: %w", err)
	}
	defer rows.Close()

	var keys []model.SlotKey
	for rows.Next() {
		key := model.SlotKey{MentorID: mentorID}
		if err := rows.Scan(&key.Date, &key.Range.Start, &key.Range.End); err != nil {
			return nil, fmt.Errorf("scan reserved slot: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reserved slots: %w", err)
	}

	return keys, nil
}

// Cancel отменяет бронирование и освобождает ключ резервации.
// Повторная отмена ничего не меняет и возвращает текущее состояние, changed = false.
// Строка блокируется FOR UPDATE, поэтому из параллельных отмен changed получит одна.
func (r *BookingRepository) Cancel(ctx context.Context, id uuid.UUID) (*model.Booking, bool, error) {
	var (
		booking *model.Booking
		changed bool
	)
	err := r.InTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)

		var err error
		booking, err = scanBooking(row)
		if err != nil {
			if base.IsNotFound(err) {
				booking = nil
				return nil
			}
			return fmt.Errorf("get booking for update: %w", err)
		}

		if !booking.IsActive() {
			return nil
		}

		var cancelledAt time.Time
		err = tx.QueryRow(ctx, `
			UPDATE bookings
			SET status = $2, cancelled_at = now()
			WHERE id = $1
			RETURNING cancelled_at
		`, id, string(model.BookingStatusCancelled)).Scan(&cancelledAt)
		if err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM slot_reservations WHERE booking_id = $1`, id); err != nil {
			return fmt.Errorf("release slot: %w", err)
		}

		booking.Status = model.BookingStatusCancelled
		booking.CancelledAt = &cancelledAt
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("cancel booking: %w", err)
	}

	return booking, changed, nil
}

// ListByMentor получает все бронирования ментора
func (r *BookingRepository) ListByMentor(ctx context.Context, mentorID int64) ([]*model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE mentor_id = $1 ORDER BY session_date, start_minute`, mentorID)
}

// ListByCustomer получает все бронирования клиента
func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE customer_id = $1 ORDER BY session_date, start_minute`, customerID)
}

func (r *BookingRepository) list(ctx context.Context, query string, id int64) ([]*model.Booking, error) {
	rows, err := r.Pool().Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		booking model.Booking
		mode    string
		status  string
	)
	err := row.Scan(
		&booking.ID,
		&booking.MentorID,
		&booking.CustomerID,
		&booking.Date,
		&booking.Range.Start,
		&booking.Range.End,
		&mode,
		&booking.DurationMinutes,
		&booking.Price.Amount,
		&booking.Price.Currency,
		&booking.Topic,
		&status,
		&booking.IdempotencyKey,
		&booking.CreatedAt,
		&booking.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	booking.Mode = model.SessionMode(mode)
	booking.Status = model.BookingStatus(status)
	return &booking, nil
}
