package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/mentorship_scheduler/internal/cache"
	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"go.uber.org/zap"
)

// AvailabilityService хранилище еженедельных шаблонов: каждая запись
// проходит валидацию целиком, при нарушении день не меняется.
type AvailabilityService struct {
	mentorRepo       MentorRepository
	availabilityRepo AvailabilityRepository
	cache            cache.ProjectionCache
	validator        scheduling.Validator
	logger           *zap.Logger
}

func NewAvailabilityService(
	mentorRepo MentorRepository,
	availabilityRepo AvailabilityRepository,
	projectionCache cache.ProjectionCache,
	validator scheduling.Validator,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		mentorRepo:       mentorRepo,
		availabilityRepo: availabilityRepo,
		cache:            projectionCache,
		validator:        validator,
		logger:           logger,
	}
}

// GetTemplate шаблон ментора, всегда 7 дней
func (s *AvailabilityService) GetTemplate(ctx context.Context, mentorID int64) (*model.AvailabilityTemplate, error) {
	if _, err := requireMentor(ctx, s.mentorRepo, mentorID); err != nil {
		return nil, err
	}

	tpl, err := s.availabilityRepo.GetTemplate(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return tpl, nil
}

// ReplaceDay заменяет интервалы одного дня
func (s *AvailabilityService) ReplaceDay(ctx context.Context, mentorID int64, day model.Weekday, ranges []model.TimeRange) (*model.AvailabilityTemplate, error) {
	return s.ReplaceWeek(ctx, mentorID, map[model.Weekday][]model.TimeRange{day: ranges})
}

// ReplaceWeek заменяет несколько дней одной транзакцией.
// Сначала валидируются все дни, ошибка любого дня отклоняет всю запись.
func (s *AvailabilityService) ReplaceWeek(ctx context.Context, mentorID int64, days map[model.Weekday][]model.TimeRange) (*model.AvailabilityTemplate, error) {
	if _, err := requireMentor(ctx, s.mentorRepo, mentorID); err != nil {
		return nil, err
	}

	sorted := make(map[model.Weekday][]model.TimeRange, len(days))
	for w := model.Sunday; w <= model.Saturday; w++ {
		ranges, ok := days[w]
		if !ok {
			continue
		}
		if err := s.validator.Validate(ranges); err != nil {
			s.logger.Info("Availability update rejected",
				zap.Int64("mentor_id", mentorID),
				zap.Stringer("weekday", w),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%s: %w", w, err)
		}
		sorted[w] = scheduling.SortRanges(ranges)
	}
	if len(sorted) != len(days) {
		return nil, scheduling.NewValidationError(scheduling.ErrInvalidWeekday)
	}

	tpl, err := s.availabilityRepo.ReplaceDays(ctx, mentorID, sorted)
	if err != nil {
		return nil, fmt.Errorf("replace days: %w", err)
	}

	if err := s.cache.InvalidateMentor(ctx, mentorID); err != nil {
		s.logger.Error("Failed to invalidate projection cache",
			zap.Int64("mentor_id", mentorID),
			zap.Error(err),
		)
	}

	s.logger.Info("Availability updated",
		zap.Int64("mentor_id", mentorID),
		zap.Int("days", len(sorted)),
		zap.Int64("version", tpl.Version),
	)

	return tpl, nil
}
