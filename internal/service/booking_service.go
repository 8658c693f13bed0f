package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/mentorship_scheduler/internal/cache"
	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/notify"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxTopicLength предел длины темы занятия в символах
const MaxTopicLength = 200

// BookingRequest одна попытка бронирования. Живёт только в рамках запроса.
type BookingRequest struct {
	MentorID        int64
	CustomerID      int64
	Date            time.Time
	Range           model.TimeRange
	Mode            model.SessionMode
	DurationMinutes int
	Topic           string
	IdempotencyKey  string
}

// Этапы попытки бронирования для логов
const (
	stageRequested = "requested"
	stageValidated = "validated"
	stageReserved  = "reserved"
)

type BookingService struct {
	mentorRepo  MentorRepository
	bookingRepo BookingRepository
	slots       *SlotService
	calculator  scheduling.Calculator
	cache       cache.ProjectionCache
	notifier    notify.Notifier
	logger      *zap.Logger
}

func NewBookingService(
	mentorRepo MentorRepository,
	bookingRepo BookingRepository,
	slots *SlotService,
	calculator scheduling.Calculator,
	projectionCache cache.ProjectionCache,
	notifier notify.Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		mentorRepo:  mentorRepo,
		bookingRepo: bookingRepo,
		slots:       slots,
		calculator:  calculator,
		cache:       projectionCache,
		notifier:    notifier,
		logger:      logger,
	}
}

// Book проводит попытку через Requested → Validated → Reserved → Confirmed.
// Любой этап до Confirmed может завершиться отказом с причиной.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	booking, stage, err := s.book(ctx, req)

	fields := []zap.Field{
		zap.Int64("mentor_id", req.MentorID),
		zap.Int64("customer_id", req.CustomerID),
		zap.String("date", model.FormatDate(req.Date)),
		zap.Stringer("range", req.Range),
		zap.String("mode", string(req.Mode)),
		zap.Int("duration_minutes", req.DurationMinutes),
	}

	if err != nil {
		s.logger.Info("Booking rejected",
			append(fields,
				zap.String("stage", stage),
				zap.String("reason", rejectReason(err)),
				zap.Error(err),
			)...,
		)
		return nil, err
	}

	s.logger.Info("Booking confirmed",
		append(fields,
			zap.String("booking_id", booking.ID.String()),
			zap.Int64("price", booking.Price.Amount),
			zap.String("currency", booking.Price.Currency),
		)...,
	)

	return booking, nil
}

func (s *BookingService) book(ctx context.Context, req BookingRequest) (*model.Booking, string, error) {
	// Requested → Validated
	topic := strings.TrimSpace(req.Topic)
	if n := utf8.RuneCountInString(topic); n == 0 || n > MaxTopicLength {
		return nil, stageRequested, scheduling.NewValidationError(scheduling.ErrInvalidTopic)
	}
	if !req.Mode.Valid() {
		return nil, stageRequested, scheduling.NewValidationError(scheduling.ErrUnsupportedMode)
	}

	mentor, err := requireMentor(ctx, s.mentorRepo, req.MentorID)
	if err != nil {
		return nil, stageRequested, err
	}

	date := model.StartOfDay(req.Date, s.slots.Location())
	if date.Before(s.slots.Today()) {
		return nil, stageRequested, scheduling.NewValidationError(scheduling.ErrPastDate)
	}

	// свежая проекция, кэш здесь не используется
	slot, found, err := s.slots.Lookup(ctx, req.MentorID, date, req.Range)
	if err != nil {
		return nil, stageRequested, fmt.Errorf("project slot: %w", err)
	}
	if !found {
		return nil, stageRequested, scheduling.NewValidationError(scheduling.ErrSlotUnavailable)
	}

	key := model.SlotKey{MentorID: req.MentorID, Date: date, Range: req.Range}
	if !slot.IsAvailable() {
		if existing := s.sameAttempt(ctx, key, req); existing != nil {
			return existing, stageReserved, nil
		}
		return nil, stageRequested, scheduling.ErrSlotAlreadyBooked
	}

	rule, err := s.mentorRepo.GetPricing(ctx, req.MentorID)
	if err != nil {
		return nil, stageRequested, fmt.Errorf("get pricing: %w", err)
	}
	price, err := s.calculator.Price(rule, req.Mode, req.DurationMinutes)
	if err != nil {
		return nil, stageRequested, err
	}
	if req.DurationMinutes > req.Range.Minutes() {
		return nil, stageRequested, scheduling.NewValidationError(scheduling.ErrDurationExceedsSlot)
	}

	// Validated → Reserved → Confirmed: резервация и запись одной транзакцией
	booking := &model.Booking{
		ID:              uuid.New(),
		MentorID:        req.MentorID,
		CustomerID:      req.CustomerID,
		Date:            date,
		Range:           req.Range,
		Mode:            req.Mode,
		DurationMinutes: req.DurationMinutes,
		Price:           price,
		Topic:           topic,
		Status:          model.BookingStatusConfirmed,
		IdempotencyKey:  req.IdempotencyKey,
	}

	if err := s.bookingRepo.Reserve(ctx, booking); err != nil {
		if errors.Is(err, scheduling.ErrSlotAlreadyBooked) {
			if existing := s.sameAttempt(ctx, key, req); existing != nil {
				return existing, stageReserved, nil
			}
			return nil, stageValidated, err
		}
		return nil, stageValidated, fmt.Errorf("reserve slot: %w", err)
	}

	s.invalidate(ctx, req.MentorID)

	if err := s.notifier.BookingConfirmed(ctx, booking, mentor); err != nil {
		s.logger.Warn("Failed to notify mentor about booking",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
	}

	return booking, stageReserved, nil
}

// sameAttempt возвращает бронирование, если ключ занят повтором того же запроса
func (s *BookingService) sameAttempt(ctx context.Context, key model.SlotKey, req BookingRequest) *model.Booking {
	if req.IdempotencyKey == "" {
		return nil
	}

	holder, err := s.bookingRepo.GetActiveByKey(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to load slot holder",
			zap.String("slot", key.String()),
			zap.Error(err))
		return nil
	}
	if holder == nil || holder.CustomerID != req.CustomerID || holder.IdempotencyKey != req.IdempotencyKey {
		return nil
	}
	return holder
}

// Cancel отменяет бронирование. Доступно только участникам, повторная
// отмена возвращает бронирование без изменений.
func (s *BookingService) Cancel(ctx context.Context, bookingID uuid.UUID, actorID int64) (*model.Booking, error) {
	booking, err := s.Get(ctx, bookingID, actorID)
	if err != nil {
		return nil, err
	}
	if !booking.IsActive() {
		return booking, nil
	}

	cancelled, changed, err := s.bookingRepo.Cancel(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	if cancelled == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, scheduling.ErrNotFound)
	}
	// параллельная отмена успела раньше, она и уведомляет
	if !changed {
		return cancelled, nil
	}

	s.invalidate(ctx, cancelled.MentorID)

	mentor, err := s.mentorRepo.GetByID(ctx, cancelled.MentorID)
	if err != nil {
		s.logger.Warn("Failed to load mentor for notification", zap.Error(err))
	}
	if err := s.notifier.BookingCancelled(ctx, cancelled, mentor); err != nil {
		s.logger.Warn("Failed to notify mentor about cancellation",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err))
	}

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.Int64("actor_id", actorID),
		zap.String("slot", cancelled.Key().String()),
	)

	return cancelled, nil
}

// Get бронирование, видимое только участникам
func (s *BookingService) Get(ctx context.Context, bookingID uuid.UUID, actorID int64) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, scheduling.ErrNotFound)
	}
	if !booking.IsParticipant(actorID) {
		return nil, fmt.Errorf("booking %s: %w", bookingID, scheduling.ErrForbidden)
	}
	return booking, nil
}

// ListForMentor все бронирования ментора
func (s *BookingService) ListForMentor(ctx context.Context, mentorID int64) ([]*model.Booking, error) {
	if _, err := requireMentor(ctx, s.mentorRepo, mentorID); err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("list mentor bookings: %w", err)
	}
	return bookings, nil
}

// ListForCustomer все бронирования клиента
func (s *BookingService) ListForCustomer(ctx context.Context, customerID int64) ([]*model.Booking, error) {
	bookings, err := s.bookingRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) invalidate(ctx context.Context, mentorID int64) {
	if err := s.cache.InvalidateMentor(ctx, mentorID); err != nil {
		s.logger.Error("Failed to invalidate projection cache",
			zap.Int64("mentor_id", mentorID),
			zap.Error(err))
	}
}

func rejectReason(err error) string {
	var verr *scheduling.ValidationError
	switch {
	case errors.As(err, &verr) && len(verr.Violations) > 0:
		return scheduling.RuleCode(verr.Violations[0].Rule)
	case errors.Is(err, scheduling.ErrSlotAlreadyBooked):
		return "slot_already_booked"
	case errors.Is(err, scheduling.ErrNotFound):
		return "not_found"
	default:
		return "system_error"
	}
}
