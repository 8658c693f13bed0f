package service

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/cache"
	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"go.uber.org/zap"
)

// MentorOverview карточка ментора для списка и экрана бронирования
type MentorOverview struct {
	Mentor            *model.Mentor               `json:"mentor"`
	Template          *model.AvailabilityTemplate `json:"availability"`
	Pricing           *model.PricingRule          `json:"pricing,omitempty"`
	Modes             []model.SessionMode         `json:"modes"`
	MinSessionMinutes int                         `json:"min_session_minutes"`
}

// SlotService проекция шаблонов в конкретные слоты для чтения
type SlotService struct {
	mentorRepo       MentorRepository
	availabilityRepo AvailabilityRepository
	bookingRepo      BookingRepository
	cache            cache.ProjectionCache
	projector        scheduling.Projector
	horizonDays      int
	now              func() time.Time
	logger           *zap.Logger
}

func NewSlotService(
	mentorRepo MentorRepository,
	availabilityRepo AvailabilityRepository,
	bookingRepo BookingRepository,
	projectionCache cache.ProjectionCache,
	projector scheduling.Projector,
	horizonDays int,
	logger *zap.Logger,
) *SlotService {
	return &SlotService{
		mentorRepo:       mentorRepo,
		availabilityRepo: availabilityRepo,
		bookingRepo:      bookingRepo,
		cache:            projectionCache,
		projector:        projector,
		horizonDays:      horizonDays,
		now:              time.Now,
		logger:           logger,
	}
}

// SetClock подменяет текущее время, для тестов
func (s *SlotService) SetClock(now func() time.Time) {
	s.now = now
}

// Today полночь текущего дня в локали сервиса
func (s *SlotService) Today() time.Time {
	return model.StartOfDay(s.now(), s.projector.Location)
}

// Location локаль, в которой считаются даты
func (s *SlotService) Location() *time.Location {
	return s.projector.Location
}

// DefaultRange сегодня и настроенный горизонт
func (s *SlotService) DefaultRange() (time.Time, time.Time) {
	today := s.Today()
	days := s.horizonDays
	if days < 1 {
		days = 1
	}
	return today, today.AddDate(0, 0, days-1)
}

// ListSlots слоты ментора в диапазоне дат включительно. Нулевые границы
// заменяются горизонтом по умолчанию, дальше горизонта слотов нет. Результат кэшируется.
func (s *SlotService) ListSlots(ctx context.Context, mentorID int64, from, to time.Time) ([]model.ConcreteSlot, error) {
	if _, err := requireMentor(ctx, s.mentorRepo, mentorID); err != nil {
		return nil, err
	}

	defFrom, defTo := s.DefaultRange()
	if from.IsZero() {
		from = defFrom
	}
	if to.IsZero() {
		to = defTo
	}
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s before start %s: %w",
			model.FormatDate(to), model.FormatDate(from), scheduling.ErrValidation)
	}
	if to.After(defTo) {
		to = defTo
	}
	if from.After(to) {
		return []model.ConcreteSlot{}, nil
	}

	now := s.now()
	key := fmt.Sprintf("%s:%s:%s", now.In(s.projector.Location).Format("2006-01-02T15"),
		model.FormatDate(from), model.FormatDate(to))

	// кэш недоступен - считаем без него
	gen, err := s.cache.Generation(ctx, mentorID)
	cacheOK := err == nil
	if err != nil {
		s.logger.Warn("Projection cache unavailable",
			zap.Int64("mentor_id", mentorID),
			zap.Error(err))
	}

	if cacheOK {
		slots, hit, err := s.cache.Get(ctx, mentorID, gen, key)
		if err != nil {
			s.logger.Warn("Projection cache read failed",
				zap.Int64("mentor_id", mentorID),
				zap.Error(err))
		}
		if hit {
			// ключ меняется раз в час, уже начавшиеся слоты отбрасываем при чтении
			return s.projector.DropStarted(slots, now), nil
		}
	}

	seq, err := s.project(ctx, mentorID, now, from, to)
	if err != nil {
		return nil, err
	}
	slots := scheduling.Collect(seq)

	if cacheOK {
		if err := s.cache.Set(ctx, mentorID, gen, key, slots); err != nil {
			s.logger.Warn("Projection cache write failed",
				zap.Int64("mentor_id", mentorID),
				zap.Error(err))
		}
	}

	return slots, nil
}

// Lookup свежая проекция (без кэша) для проверки одного слота перед бронированием.
// Дата за настроенным горизонтом не найдена, как и в ListSlots.
func (s *SlotService) Lookup(ctx context.Context, mentorID int64, date time.Time, r model.TimeRange) (model.ConcreteSlot, bool, error) {
	if _, last := s.DefaultRange(); model.StartOfDay(date, s.projector.Location).After(last) {
		return model.ConcreteSlot{}, false, nil
	}

	seq, err := s.project(ctx, mentorID, s.now(), date, date)
	if err != nil {
		return model.ConcreteSlot{}, false, err
	}
	slot, ok := scheduling.Find(seq, date, r)
	return slot, ok, nil
}

func (s *SlotService) project(ctx context.Context, mentorID int64, now, from, to time.Time) (iter.Seq[model.ConcreteSlot], error) {
	tpl, err := s.availabilityRepo.GetTemplate(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	keys, err := s.bookingRepo.ListReservedKeys(ctx, mentorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list reserved slots: %w", err)
	}

	return s.projector.ProjectRange(tpl, scheduling.NewBookedSet(keys...), now, from, to), nil
}

// MentorOverview шаблон, тарифы и минимальная длительность ментора
func (s *SlotService) MentorOverview(ctx context.Context, mentorID int64) (*MentorOverview, error) {
	mentor, err := requireMentor(ctx, s.mentorRepo, mentorID)
	if err != nil {
		return nil, err
	}

	tpl, err := s.availabilityRepo.GetTemplate(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	rule, err := s.mentorRepo.GetPricing(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get pricing: %w", err)
	}

	overview := &MentorOverview{
		Mentor:   mentor,
		Template: tpl,
		Pricing:  rule,
		Modes:    []model.SessionMode{},
	}
	if rule != nil {
		overview.Modes = rule.EnabledModes()
		overview.MinSessionMinutes = rule.MinSessionMinutes
	}

	return overview, nil
}

// WarmAll заранее считает проекции всех менторов на горизонт по умолчанию.
// Ошибка одного ментора не останавливает остальных.
func (s *SlotService) WarmAll(ctx context.Context) (int, error) {
	ids, err := s.mentorRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list mentors: %w", err)
	}

	warmed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return warmed, ctx.Err()
		}
		if _, err := s.ListSlots(ctx, id, time.Time{}, time.Time{}); err != nil {
			s.logger.Error("Failed to warm projection",
				zap.Int64("mentor_id", id),
				zap.Error(err))
			continue
		}
		warmed++
	}

	return warmed, nil
}
