package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/app"
	"github.com/Freeeeeet/mentorship_scheduler/internal/cache"
	"github.com/Freeeeeet/mentorship_scheduler/internal/config"
	"github.com/Freeeeeet/mentorship_scheduler/internal/controller/api"
	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/notify"
	"github.com/Freeeeeet/mentorship_scheduler/internal/repository"
	"github.com/Freeeeeet/mentorship_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/Freeeeeet/mentorship_scheduler/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// прогрев раз в час: ключ проекции меняется каждый час
const warmInterval = time.Hour

type repositories struct {
	mentors      service.MentorRepository
	availability service.AvailabilityRepository
	bookings     service.BookingRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting mentorship scheduler",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage),
		zap.String("timezone", cfg.Location.String()),
		zap.Int("horizon_days", cfg.HorizonDays))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer closeRepos()

	projections, err := openCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create Telegram bot", zap.Error(err))
	}

	validator := scheduling.Validator{
		Granularity:   model.DefaultGranularityMinutes,
		BusinessStart: cfg.BusinessStart,
		BusinessEnd:   cfg.BusinessEnd,
	}
	calculator := scheduling.NewCalculator(scheduling.NewConverter(cfg.DisplayCurrency, cfg.CurrencyMultiplier))

	slots := service.NewSlotService(
		repos.mentors, repos.availability, repos.bookings,
		projections, scheduling.NewProjector(cfg.Location), cfg.HorizonDays, logger,
	)
	services := api.Services{
		Mentors:      service.NewMentorService(repos.mentors, logger),
		Availability: service.NewAvailabilityService(repos.mentors, repos.availability, projections, validator, logger),
		Slots:        slots,
		Bookings: service.NewBookingService(
			repos.mentors, repos.bookings, slots, calculator, projections, notifier, logger,
		),
	}

	a := api.NewAPI(services, cfg.BookingRateLimit, logger)
	a.RegisterRoutes()

	scheduler := app.NewScheduler(slots, warmInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	logger.Info("Stopped gracefully")
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return repositories{
			mentors:      store.Mentors(),
			availability: store.Availability(),
			bookings:     store.Bookings(),
		}, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return repositories{}, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return repositories{}, nil, err
	}
	logger.Info("Connected to database")

	if cfg.Migrations {
		migrator, err := app.NewMigrator(pool, logger)
		if err != nil {
			pool.Close()
			return repositories{}, nil, err
		}
		err = migrator.Run(ctx)
		_ = migrator.Close()
		if err != nil {
			pool.Close()
			return repositories{}, nil, err
		}
	}

	return repositories{
		mentors:      repository.NewMentorRepository(pool),
		availability: repository.NewAvailabilityRepository(pool, logger),
		bookings:     repository.NewBookingRepository(pool),
	}, pool.Close, nil
}

func openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.ProjectionCache, error) {
	if cfg.RedisAddr == "" {
		logger.Info("Projection cache in memory", zap.Duration("ttl", cfg.ProjectionTTL))
		return cache.NewMemoryCache(cfg.ProjectionTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Info("Projection cache in Redis",
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.ProjectionTTL))
	return cache.NewRedisCache(client, cfg.ProjectionTTL), nil
}

func newNotifier(cfg *config.Config, logger *zap.Logger) (notify.Notifier, error) {
	if cfg.TelegramToken == "" {
		logger.Info("Telegram token not set, notifications go to log")
		return notify.NewLogNotifier(logger), nil
	}

	b, err := notify.NewTelegramBot(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}
	return notify.NewTelegramNotifier(b, logger), nil
}
