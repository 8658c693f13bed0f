package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/cache"
	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/Freeeeeet/mentorship_scheduler/internal/service"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	mentorID   int64 = 1
	customerID int64 = 100
)

// понедельник 2026-10-19 08:00 UTC
var monday = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

var zeroTime time.Time

// MockNotifier is a mock implementation of notify.Notifier
type MockNotifier struct {
	testifymock.Mock
}

func (m *MockNotifier) BookingConfirmed(ctx context.Context, booking *model.Booking, mentor *model.Mentor) error {
	args := m.Called(ctx, booking, mentor)
	return args.Error(0)
}

func (m *MockNotifier) BookingCancelled(ctx context.Context, booking *model.Booking, mentor *model.Mentor) error {
	args := m.Called(ctx, booking, mentor)
	return args.Error(0)
}

type fixture struct {
	store        *memory.Store
	cache        *cache.MemoryCache
	notifier     *MockNotifier
	mentors      *service.MentorService
	availability *service.AvailabilityService
	slots        *service.SlotService
	bookings     *service.BookingService
}

func newFixture() *fixture {
	logger := zap.NewNop()
	store := memory.NewStore()
	store.SetClock(func() time.Time { return monday })
	projections := cache.NewMemoryCache(time.Minute)
	notifier := new(MockNotifier)

	slots := service.NewSlotService(
		store.Mentors(), store.Availability(), store.Bookings(),
		projections, scheduling.NewProjector(time.UTC), 30, logger,
	)
	slots.SetClock(func() time.Time { return monday })

	return &fixture{
		store:    store,
		cache:    projections,
		notifier: notifier,
		mentors:  service.NewMentorService(store.Mentors(), logger),
		availability: service.NewAvailabilityService(
			store.Mentors(), store.Availability(), projections, scheduling.DefaultValidator(), logger,
		),
		slots: slots,
		bookings: service.NewBookingService(
			store.Mentors(), store.Bookings(), slots,
			scheduling.NewCalculator(scheduling.Converter{}), projections, notifier, logger,
		),
	}
}

// seed регистрирует ментора с понедельником 09:00-09:15 и 10:00-11:00,
// чат 10 и видео 333 за 15 минут, минимум 15 минут
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := t.Context()

	_, err := f.mentors.Register(ctx, &model.Mentor{ID: mentorID, DisplayName: "Ada"})
	require.NoError(t, err)

	_, err = f.availability.ReplaceDay(ctx, mentorID, model.Monday, []model.TimeRange{
		model.MustTimeRange("10:00", "11:00"),
		model.MustTimeRange("09:00", "09:15"),
	})
	require.NoError(t, err)

	_, err = f.mentors.SetPricing(ctx, &model.PricingRule{
		MentorID:          mentorID,
		Currency:          "usd",
		MinSessionMinutes: 15,
		Rates: map[model.SessionMode]int64{
			model.SessionModeChat:  10,
			model.SessionModeVideo: 333,
		},
	})
	require.NoError(t, err)
}

func (f *fixture) expectNotifications() {
	f.notifier.On("BookingConfirmed", testifymock.Anything, testifymock.Anything, testifymock.Anything).Return(nil)
	f.notifier.On("BookingCancelled", testifymock.Anything, testifymock.Anything, testifymock.Anything).Return(nil)
}

func request(date time.Time, start, end string) service.BookingRequest {
	return service.BookingRequest{
		MentorID:        mentorID,
		CustomerID:      customerID,
		Date:            date,
		Range:           model.MustTimeRange(start, end),
		Mode:            model.SessionModeChat,
		DurationMinutes: 30,
		Topic:           "mock interview",
	}
}

func today() time.Time {
	return model.StartOfDay(monday, time.UTC)
}
