package scheduling_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v := scheduling.DefaultValidator()

	tests := []struct {
		name   string
		ranges []model.TimeRange
		rule   error
	}{
		{name: "empty day", ranges: nil},
		{name: "single aligned range", ranges: []model.TimeRange{model.MustTimeRange("09:00", "09:15")}},
		{name: "adjacent ranges", ranges: []model.TimeRange{
			model.MustTimeRange("09:00", "10:00"),
			model.MustTimeRange("10:00", "11:00"),
		}},
		{name: "business hours bounds", ranges: []model.TimeRange{model.MustTimeRange("06:00", "23:00")}},
		{name: "start equals end", ranges: []model.TimeRange{model.MustTimeRange("10:00", "10:00")}, rule: scheduling.ErrRangeOrder},
		{name: "start after end", ranges: []model.TimeRange{model.MustTimeRange("11:00", "10:00")}, rule: scheduling.ErrRangeOrder},
		{name: "not aligned", ranges: []model.TimeRange{model.MustTimeRange("10:05", "10:20")}, rule: scheduling.ErrNotAligned},
		{name: "end not aligned", ranges: []model.TimeRange{model.MustTimeRange("10:00", "10:20")}, rule: scheduling.ErrNotAligned},
		{name: "before opening", ranges: []model.TimeRange{model.MustTimeRange("05:45", "06:30")}, rule: scheduling.ErrOutsideBusinessHours},
		{name: "after closing", ranges: []model.TimeRange{model.MustTimeRange("22:30", "23:15")}, rule: scheduling.ErrOutsideBusinessHours},
		{name: "overlap", ranges: []model.TimeRange{
			model.MustTimeRange("09:00", "10:00"),
			model.MustTimeRange("09:45", "10:30"),
		}, rule: scheduling.ErrOverlap},
		{name: "duplicate", ranges: []model.TimeRange{
			model.MustTimeRange("09:00", "10:00"),
			model.MustTimeRange("09:00", "10:00"),
		}, rule: scheduling.ErrOverlap},
		{name: "unsorted overlap", ranges: []model.TimeRange{
			model.MustTimeRange("12:00", "13:00"),
			model.MustTimeRange("08:00", "09:00"),
			model.MustTimeRange("12:30", "12:45"),
		}, rule: scheduling.ErrOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.ranges)
			if tt.rule == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, scheduling.ErrValidation)
			assert.ErrorIs(t, err, tt.rule)

			var verr *scheduling.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.NotEmpty(t, verr.Violations)
		})
	}
}

func TestValidatorReportsAllViolations(t *testing.T) {
	err := scheduling.DefaultValidator().Validate([]model.TimeRange{
		model.MustTimeRange("05:00", "05:10"),
		model.MustTimeRange("10:00", "09:00"),
	})

	var verr *scheduling.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, scheduling.ErrNotAligned)
	assert.ErrorIs(t, err, scheduling.ErrOutsideBusinessHours)
	assert.ErrorIs(t, err, scheduling.ErrRangeOrder)
}

func TestValidatorDoesNotMutateInput(t *testing.T) {
	ranges := []model.TimeRange{
		model.MustTimeRange("12:00", "13:00"),
		model.MustTimeRange("08:00", "09:00"),
	}
	require.NoError(t, scheduling.DefaultValidator().Validate(ranges))
	assert.Equal(t, model.MustTimeRange("12:00", "13:00"), ranges[0])
}

// Перемешанный вход с одним внедрённым пересечением всегда отклоняется
func TestValidatorDetectsInjectedOverlapInShuffledInput(t *testing.T) {
	v := scheduling.DefaultValidator()
	rng := rand.New(rand.NewPCG(42, 7))

	for iter := 0; iter < 200; iter++ {
		// Непересекающиеся часовые интервалы 06:00-23:00 с пропусками
		var ranges []model.TimeRange
		for start := 6 * 60; start+60 <= 23*60; start += 120 {
			ranges = append(ranges, model.TimeRange{Start: start, End: start + 60})
		}
		require.NoError(t, v.Validate(ranges))

		victim := ranges[rng.IntN(len(ranges))]
		injected := model.TimeRange{Start: victim.Start + 15, End: victim.End + 15}
		ranges = append(ranges, injected)
		rng.Shuffle(len(ranges), func(i, j int) { ranges[i], ranges[j] = ranges[j], ranges[i] })

		err := v.Validate(ranges)
		require.ErrorIs(t, err, scheduling.ErrOverlap, "iteration %d", iter)
	}
}

func TestSortRanges(t *testing.T) {
	in := []model.TimeRange{
		model.MustTimeRange("12:00", "13:00"),
		model.MustTimeRange("08:00", "09:00"),
		model.MustTimeRange("10:00", "10:30"),
	}
	out := scheduling.SortRanges(in)
	assert.Equal(t, []model.TimeRange{
		model.MustTimeRange("08:00", "09:00"),
		model.MustTimeRange("10:00", "10:30"),
		model.MustTimeRange("12:00", "13:00"),
	}, out)
}
