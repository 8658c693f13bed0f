package scheduling_test

import (
	"testing"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-10-18 - воскресенье
var sunday = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

func mondayTemplate() *model.AvailabilityTemplate {
	tpl := model.NewAvailabilityTemplate(1)
	tpl.Days[model.Monday].Ranges = []model.TimeRange{model.MustTimeRange("09:00", "09:15")}
	return tpl
}

func TestProjectSingleMondaySlot(t *testing.T) {
	p := scheduling.NewProjector(time.UTC)

	slots := scheduling.Collect(p.Project(mondayTemplate(), scheduling.NewBookedSet(), sunday, 7))

	require.Len(t, slots, 1)
	assert.Equal(t, model.Monday, slots[0].Weekday)
	assert.Equal(t, "2026-10-19", model.FormatDate(slots[0].Date))
	assert.Equal(t, model.MustTimeRange("09:00", "09:15"), slots[0].Range)
	assert.Equal(t, model.SlotStatusAvailable, slots[0].Status)
}

func TestProjectNeverEmitsPastDates(t *testing.T) {
	p := scheduling.NewProjector(time.UTC)
	tpl := model.NewAvailabilityTemplate(1)
	for d := range tpl.Days {
		tpl.Days[d].Ranges = []model.TimeRange{
			model.MustTimeRange("06:00", "07:00"),
			model.MustTimeRange("20:00", "21:00"),
		}
	}

	today := model.StartOfDay(sunday, time.UTC)
	count := 0
	for s := range p.Project(tpl, scheduling.NewBookedSet(), sunday, 30) {
		assert.False(t, s.Date.Before(today), "slot on %s", model.FormatDate(s.Date))
		count++
	}
	// Сегодня 06:00 уже прошло, остаётся 20:00
	assert.Equal(t, 30*2-1, count)
}

func TestProjectRangeClipsPast(t *testing.T) {
	p := scheduling.NewProjector(time.UTC)
	from := sunday.AddDate(0, 0, -10)
	to := sunday.AddDate(0, 0, 8)

	slots := scheduling.Collect(p.ProjectRange(mondayTemplate(), scheduling.NewBookedSet(), sunday, from, to))

	require.Len(t, slots, 2)
	assert.Equal(t, "2026-10-19", model.FormatDate(slots[0].Date))
	assert.Equal(t, "2026-10-26", model.FormatDate(slots[1].Date))
}

func TestProjectRangeClipsHorizon(t *testing.T) {
	p := scheduling.NewProjector(time.UTC)
	to := sunday.AddDate(1, 0, 0)

	slots := scheduling.Collect(p.ProjectRange(mondayTemplate(), scheduling.NewBookedSet(), sunday, sunday, to))

	last := model.StartOfDay(sunday, time.UTC).AddDate(0, 0, scheduling.MaxHorizonDays-1)
	for _, s := range slots {
		assert.False(t, s.Date.After(last))
	}
	assert.Len(t, slots, 9)
}

func TestProjectMarksBooked(t *testing.T) {
	p := scheduling.NewProjector(time.UTC)
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	booked := scheduling.NewBookedSet(model.SlotKey{
		MentorID: 1,
		Date:     monday,
		Range:    model.MustTimeRange("09:00", "09:15"),
	})

	slots := scheduling.Collect(p.Project(mondayTemplate(), booked, sunday, 14))

	require.Len(t, slots, 2)
	assert.Equal(t, model.SlotStatusBooked, slots[0].Status)
	assert.Equal(t, model.SlotStatusAvailable, slots[1].Status)

	available := scheduling.Collect(scheduling.Available(p.Project(mondayTemplate(), booked, sunday, 14)))
	require.Len(t, available, 1)
	assert.Equal(t, "2026-10-26", model.FormatDate(available[0].Date))
}

func TestProjectIsDeterministicAndRestartable(t *testing.T) {
	p := scheduling.NewProjector(time.UTC)
	tpl := mondayTemplate()
	tpl.Days[model.Thursday].Ranges = []model.TimeRange{
		model.MustTimeRange("10:00", "11:00"),
		model.MustTimeRange("14:00", "14:30"),
	}
	booked := scheduling.NewBookedSet(model.SlotKey{
		MentorID: 1,
		Date:     time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC),
		Range:    model.MustTimeRange("10:00", "11:00"),
	})

	seq := p.Project(tpl, booked, sunday, 45)
	first := scheduling.Collect(seq)
	second := scheduling.Collect(seq)
	third := scheduling.Collect(p.Project(tpl, booked, sunday, 45))

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestProjectStopsEarly(t *testing.T) {
	p := scheduling.NewProjector(time.UTC)
	n := 0
	for range p.Project(mondayTemplate(), scheduling.NewBookedSet(), sunday, 60) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestProjectHorizonBounds(t *testing.T) {
	p := scheduling.NewProjector(time.UTC)

	assert.Empty(t, scheduling.Collect(p.Project(mondayTemplate(), scheduling.NewBookedSet(), sunday, 0)))
	assert.Empty(t, scheduling.Collect(p.Project(mondayTemplate(), scheduling.NewBookedSet(), sunday, -5)))
	assert.Empty(t, scheduling.Collect(p.Project(nil, scheduling.NewBookedSet(), sunday, 7)))
	// 60 дней с воскресенья: понедельников 9
	assert.Len(t, scheduling.Collect(p.Project(mondayTemplate(), scheduling.NewBookedSet(), sunday, 365)), 9)
}

func TestFind(t *testing.T) {
	p := scheduling.NewProjector(time.UTC)
	seq := p.Project(mondayTemplate(), scheduling.NewBookedSet(), sunday, 7)

	slot, ok := scheduling.Find(seq, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), model.MustTimeRange("09:00", "09:15"))
	require.True(t, ok)
	assert.True(t, slot.IsAvailable())

	_, ok = scheduling.Find(seq, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), model.MustTimeRange("09:00", "09:30"))
	assert.False(t, ok)

	_, ok = scheduling.Find(seq, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), model.MustTimeRange("09:00", "09:15"))
	assert.False(t, ok)
}

func TestDropStarted(t *testing.T) {
	p := scheduling.NewProjector(time.UTC)
	tpl := mondayTemplate()
	tpl.Days[model.Monday].Ranges = append(tpl.Days[model.Monday].Ranges, model.MustTimeRange("10:00", "11:00"))

	// посчитано в понедельник в 09:00, читается в 09:05
	computedAt := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	slots := scheduling.Collect(p.Project(tpl, scheduling.NewBookedSet(), computedAt, 8))
	require.Len(t, slots, 4)

	kept := p.DropStarted(slots, computedAt.Add(5*time.Minute))
	require.Len(t, kept, 3)
	assert.Equal(t, model.MustTimeRange("10:00", "11:00"), kept[0].Range)
	assert.Equal(t, "2026-10-19", model.FormatDate(kept[0].Date))

	kept = p.DropStarted(slots, computedAt.AddDate(0, 0, 1))
	require.Len(t, kept, 2, "previous days dropped")
	assert.Equal(t, "2026-10-26", model.FormatDate(kept[0].Date))
}
