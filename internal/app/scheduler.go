package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ProjectionWarmer пересчитывает кэш проекций всех менторов
type ProjectionWarmer interface {
	WarmAll(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	warmer   ProjectionWarmer
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(warmer ProjectionWarmer, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		warmer:   warmer,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	go s.runWarmUpTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт завершения текущего прогона
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.done
}

// runWarmUpTask раз в интервал пересчитывает проекции: "сегодня" сдвигается,
// и кэш должен начинаться с новой даты
func (s *Scheduler) runWarmUpTask(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.warmUp(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.warmUp(ctx)
		case <-s.stopChan:
			s.logger.Info("Projection warm-up task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Projection warm-up task cancelled")
			return
		}
	}
}

func (s *Scheduler) warmUp(ctx context.Context) {
	started := time.Now()

	warmed, err := s.warmer.WarmAll(ctx)
	if err != nil {
		s.logger.Error("Failed to warm projections", zap.Error(err))
		return
	}

	s.logger.Info("Projection warm-up completed",
		zap.Int("mentors", warmed),
		zap.Duration("took", time.Since(started)))
}
