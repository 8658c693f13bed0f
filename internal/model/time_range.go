package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay количество минут в сутках
const MinutesPerDay = 24 * 60

// TimeRange полуоткрытый интервал [Start, End) в минутах от начала дня
type TimeRange struct {
	Start int
	End   int
}

// NewTimeRange создаёт интервал из строк формата HH:MM
func NewTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeRange{}, fmt.Errorf("parse start: %w", err)
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeRange{}, fmt.Errorf("parse end: %w", err)
	}
	return TimeRange{Start: s, End: e}, nil
}

// MustTimeRange как NewTimeRange, но паникует на ошибке. Для констант и тестов.
func MustTimeRange(start, end string) TimeRange {
	r, err := NewTimeRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// Minutes длительность интервала в минутах
func (r TimeRange) Minutes() int {
	return r.End - r.Start
}

// Overlaps проверяет пересечение полуоткрытых интервалов
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}

func (r TimeRange) String() string {
	return FormatClock(r.Start) + "-" + FormatClock(r.End)
}

// ParseClock разбирает время HH:MM (24 часа) в минуты от начала дня.
// 24:00 допускается как конец дня.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock форматирует минуты от начала дня как HH:MM
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

type timeRangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r TimeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeRangeJSON{Start: FormatClock(r.Start), End: FormatClock(r.End)})
}

func (r *TimeRange) UnmarshalJSON(data []byte) error {
	var raw timeRangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewTimeRange(raw.Start, raw.End)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
