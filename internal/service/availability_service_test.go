package service_test

import (
	"testing"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceDay(t *testing.T) {
	t.Run("misaligned range rejected and day unchanged", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		before, err := f.availability.GetTemplate(ctx, mentorID)
		require.NoError(t, err)

		_, err = f.availability.ReplaceDay(ctx, mentorID, model.Monday, []model.TimeRange{
			model.MustTimeRange("08:00", "09:00"),
			model.MustTimeRange("10:05", "10:20"),
		})
		assert.ErrorIs(t, err, scheduling.ErrValidation)
		assert.ErrorIs(t, err, scheduling.ErrNotAligned)

		after, err := f.availability.GetTemplate(ctx, mentorID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("stores sorted ranges and bumps version", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		tpl, err := f.availability.ReplaceDay(ctx, mentorID, model.Friday, []model.TimeRange{
			model.MustTimeRange("18:00", "19:00"),
			model.MustTimeRange("07:00", "07:30"),
		})
		require.NoError(t, err)

		assert.Equal(t, []model.TimeRange{
			model.MustTimeRange("07:00", "07:30"),
			model.MustTimeRange("18:00", "19:00"),
		}, tpl.Day(model.Friday))
		assert.Len(t, tpl.Day(model.Monday), 2, "other days untouched")
		assert.Equal(t, int64(2), tpl.Version)
	})

	t.Run("empty list clears the day", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		tpl, err := f.availability.ReplaceDay(ctx, mentorID, model.Monday, nil)
		require.NoError(t, err)
		assert.True(t, tpl.IsEmpty())
	})

	t.Run("all violations reported", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		_, err := f.availability.ReplaceDay(ctx, mentorID, model.Sunday, []model.TimeRange{
			{Start: 5 * 60, End: 6 * 60},
			{Start: 12 * 60, End: 11 * 60},
			model.MustTimeRange("14:00", "16:00"),
			model.MustTimeRange("15:00", "17:00"),
		})
		var verr *scheduling.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.ErrorIs(t, err, scheduling.ErrOutsideBusinessHours)
		assert.ErrorIs(t, err, scheduling.ErrRangeOrder)
		assert.ErrorIs(t, err, scheduling.ErrOverlap)
	})

	t.Run("unknown mentor", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()

		_, err := f.availability.ReplaceDay(ctx, 42, model.Monday, nil)
		assert.ErrorIs(t, err, scheduling.ErrNotFound)

		_, err = f.availability.GetTemplate(ctx, 42)
		assert.ErrorIs(t, err, scheduling.ErrNotFound)
	})

	t.Run("invalid weekday", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		_, err := f.availability.ReplaceDay(ctx, mentorID, model.Weekday(9), nil)
		assert.ErrorIs(t, err, scheduling.ErrInvalidWeekday)
	})
}

func TestReplaceWeekIsAllOrNothing(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.seed(t)

	_, err := f.availability.ReplaceWeek(ctx, mentorID, map[model.Weekday][]model.TimeRange{
		model.Tuesday:   {model.MustTimeRange("09:00", "10:00")},
		model.Wednesday: {model.MustTimeRange("09:00", "09:10")},
	})
	assert.ErrorIs(t, err, scheduling.ErrNotAligned)

	tpl, err := f.availability.GetTemplate(ctx, mentorID)
	require.NoError(t, err)
	assert.Empty(t, tpl.Day(model.Tuesday), "valid day not written either")
}

func TestListSlots(t *testing.T) {
	t.Run("template edit invalidates cached projection", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		slots, err := f.slots.ListSlots(ctx, mentorID, today(), today().AddDate(0, 0, 6))
		require.NoError(t, err)
		require.Len(t, slots, 2)

		_, err = f.availability.ReplaceDay(ctx, mentorID, model.Monday, []model.TimeRange{
			model.MustTimeRange("12:00", "13:00"),
		})
		require.NoError(t, err)

		slots, err = f.slots.ListSlots(ctx, mentorID, today(), today().AddDate(0, 0, 6))
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, model.MustTimeRange("12:00", "13:00"), slots[0].Range)
	})

	t.Run("default range covers configured horizon", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		slots, err := f.slots.ListSlots(ctx, mentorID, zeroTime, zeroTime)
		require.NoError(t, err)
		// 30 дней с понедельника: 5 понедельников по 2 интервала
		assert.Len(t, slots, 10)
		for _, s := range slots {
			assert.Equal(t, model.Monday, s.Weekday)
			assert.False(t, s.Date.Before(today()))
		}
	})

	t.Run("cached projection hides slots that started since", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		now := monday.Add(time.Hour) // 09:00
		f.slots.SetClock(func() time.Time { return now })

		slots, err := f.slots.ListSlots(ctx, mentorID, today(), today())
		require.NoError(t, err)
		require.Len(t, slots, 2)

		now = now.Add(5 * time.Minute) // тот же час, тот же ключ кэша
		slots, err = f.slots.ListSlots(ctx, mentorID, today(), today())
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, model.MustTimeRange("10:00", "11:00"), slots[0].Range)

		_, err = f.bookings.Book(ctx, request(today(), "09:00", "09:15"))
		assert.ErrorIs(t, err, scheduling.ErrSlotUnavailable)
	})

	t.Run("listing stops at configured horizon", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		slots, err := f.slots.ListSlots(ctx, mentorID, today(), today().AddDate(0, 0, 59))
		require.NoError(t, err)
		assert.Len(t, slots, 10, "30 day horizon")
		for _, s := range slots {
			assert.True(t, s.Date.Before(today().AddDate(0, 0, 30)))
		}

		slots, err = f.slots.ListSlots(ctx, mentorID, today().AddDate(0, 0, 35), today().AddDate(0, 0, 42))
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("inverted range", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		_, err := f.slots.ListSlots(ctx, mentorID, today().AddDate(0, 0, 3), today())
		assert.ErrorIs(t, err, scheduling.ErrValidation)
	})

	t.Run("warm all", func(t *testing.T) {
		f := newFixture()
		ctx := t.Context()
		f.seed(t)

		warmed, err := f.slots.WarmAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, warmed)
	})
}

func TestMentorOverview(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.seed(t)

	overview, err := f.slots.MentorOverview(ctx, mentorID)
	require.NoError(t, err)

	assert.Equal(t, "Ada", overview.Mentor.DisplayName)
	assert.Equal(t, 15, overview.MinSessionMinutes)
	assert.ElementsMatch(t, []model.SessionMode{model.SessionModeChat, model.SessionModeVideo}, overview.Modes)
	assert.Len(t, overview.Template.Day(model.Monday), 2)
	assert.Equal(t, "USD", overview.Pricing.Currency)
}

func TestSetPricing(t *testing.T) {
	f := newFixture()
	ctx := t.Context()
	f.seed(t)

	_, err := f.mentors.SetPricing(ctx, &model.PricingRule{
		MentorID:          mentorID,
		MinSessionMinutes: 25,
		Rates:             map[model.SessionMode]int64{model.SessionModeChat: -1},
	})
	assert.ErrorIs(t, err, scheduling.ErrInvalidMinDuration)
	assert.ErrorIs(t, err, scheduling.ErrInvalidRate)

	rule, err := f.mentors.GetPricing(ctx, mentorID)
	require.NoError(t, err)
	assert.Equal(t, 15, rule.MinSessionMinutes, "previous rule kept")

	_, err = f.mentors.SetPricing(ctx, &model.PricingRule{MentorID: 42, MinSessionMinutes: 15})
	assert.ErrorIs(t, err, scheduling.ErrNotFound)

	t.Run("display currency conversion", func(t *testing.T) {
		calc := scheduling.NewCalculator(scheduling.NewConverter("INR", decimal.NewFromInt(83)))
		price, err := calc.Price(rule, model.SessionModeChat, 30)
		require.NoError(t, err)
		assert.Equal(t, model.Money{Amount: 1660, Currency: "INR"}, price)
	})
}
