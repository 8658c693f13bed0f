// Package notify уведомления ментора о бронированиях
package notify

import (
	"context"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"go.uber.org/zap"
)

// Notifier получатель событий бронирования. Ошибка уведомления
// не отменяет бронирование, вызывающий только логирует её.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking *model.Booking, mentor *model.Mentor) error
	BookingCancelled(ctx context.Context, booking *model.Booking, mentor *model.Mentor) error
}

// LogNotifier пишет события в лог, когда Telegram не настроен
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) BookingConfirmed(_ context.Context, booking *model.Booking, _ *model.Mentor) error {
	n.logger.Info("Booking confirmed notification",
		zap.String("booking_id", booking.ID.String()),
		zap.Int64("mentor_id", booking.MentorID),
		zap.Int64("customer_id", booking.CustomerID),
		zap.String("slot", booking.Key().String()))
	return nil
}

func (n *LogNotifier) BookingCancelled(_ context.Context, booking *model.Booking, _ *model.Mentor) error {
	n.logger.Info("Booking cancelled notification",
		zap.String("booking_id", booking.ID.String()),
		zap.Int64("mentor_id", booking.MentorID),
		zap.String("slot", booking.Key().String()))
	return nil
}
