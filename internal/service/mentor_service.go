package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"go.uber.org/zap"
)

type MentorService struct {
	mentorRepo MentorRepository
	logger     *zap.Logger
}

func NewMentorService(mentorRepo MentorRepository, logger *zap.Logger) *MentorService {
	return &MentorService{
		mentorRepo: mentorRepo,
		logger:     logger,
	}
}

// Register регистрирует или обновляет ментора. ID выдаёт сервис идентификации.
func (s *MentorService) Register(ctx context.Context, mentor *model.Mentor) (*model.Mentor, error) {
	mentor.DisplayName = strings.TrimSpace(mentor.DisplayName)
	if mentor.ID <= 0 || mentor.DisplayName == "" {
		return nil, fmt.Errorf("mentor id and display name are required: %w", scheduling.ErrValidation)
	}

	if err := s.mentorRepo.Create(ctx, mentor); err != nil {
		return nil, fmt.Errorf("register mentor: %w", err)
	}

	s.logger.Info("Mentor registered",
		zap.Int64("mentor_id", mentor.ID),
		zap.String("display_name", mentor.DisplayName),
	)

	return mentor, nil
}

// Get получает ментора, ErrNotFound если его нет
func (s *MentorService) Get(ctx context.Context, mentorID int64) (*model.Mentor, error) {
	return requireMentor(ctx, s.mentorRepo, mentorID)
}

// SetPricing проверяет и сохраняет тарифы ментора целиком
func (s *MentorService) SetPricing(ctx context.Context, rule *model.PricingRule) (*model.PricingRule, error) {
	if _, err := requireMentor(ctx, s.mentorRepo, rule.MentorID); err != nil {
		return nil, err
	}

	rule.Currency = strings.ToUpper(strings.TrimSpace(rule.Currency))
	if rule.Currency == "" {
		rule.Currency = "USD"
	}
	// сетка тарификации общая с сеткой шаблонов
	rule.GranularityMinutes = model.DefaultGranularityMinutes
	if err := scheduling.ValidateRule(rule); err != nil {
		return nil, err
	}

	if err := s.mentorRepo.UpsertPricing(ctx, rule); err != nil {
		return nil, fmt.Errorf("set pricing: %w", err)
	}

	s.logger.Info("Pricing updated",
		zap.Int64("mentor_id", rule.MentorID),
		zap.String("currency", rule.Currency),
		zap.Int("min_session_minutes", rule.MinSessionMinutes),
		zap.Int("modes", len(rule.EnabledModes())),
	)

	return rule, nil
}

// GetPricing тарифы ментора, nil если не настроены
func (s *MentorService) GetPricing(ctx context.Context, mentorID int64) (*model.PricingRule, error) {
	if _, err := requireMentor(ctx, s.mentorRepo, mentorID); err != nil {
		return nil, err
	}

	rule, err := s.mentorRepo.GetPricing(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get pricing: %w", err)
	}
	return rule, nil
}

func requireMentor(ctx context.Context, repo MentorRepository, mentorID int64) (*model.Mentor, error) {
	mentor, err := repo.GetByID(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	if mentor == nil {
		return nil, fmt.Errorf("mentor %d: %w", mentorID, scheduling.ErrNotFound)
	}
	return mentor, nil
}
