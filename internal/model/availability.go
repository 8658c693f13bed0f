package model

import "time"

// DayAvailability список интервалов доступности в один день недели,
// отсортирован по началу и без пересечений
type DayAvailability struct {
	Weekday Weekday     `json:"weekday"`
	Ranges  []TimeRange `json:"ranges"`
}

// AvailabilityTemplate еженедельный шаблон доступности ментора.
// Всегда содержит ровно 7 корзин, индекс = Weekday.
type AvailabilityTemplate struct {
	MentorID  int64                       `json:"mentor_id"`
	Days      [DaysInWeek]DayAvailability `json:"days"`
	Version   int64                       `json:"version"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// NewAvailabilityTemplate создаёт пустой шаблон с 7 корзинами
func NewAvailabilityTemplate(mentorID int64) *AvailabilityTemplate {
	t := &AvailabilityTemplate{MentorID: mentorID}
	for i := range t.Days {
		t.Days[i] = DayAvailability{Weekday: Weekday(i), Ranges: []TimeRange{}}
	}
	return t
}

// Day возвращает интервалы дня недели
func (t *AvailabilityTemplate) Day(w Weekday) []TimeRange {
	if !w.Valid() {
		return nil
	}
	return t.Days[w].Ranges
}

// Clone глубокая копия шаблона
func (t *AvailabilityTemplate) Clone() *AvailabilityTemplate {
	c := *t
	for i := range c.Days {
		c.Days[i].Ranges = append([]TimeRange{}, t.Days[i].Ranges...)
	}
	return &c
}

// IsEmpty true если ни в одном дне нет интервалов
func (t *AvailabilityTemplate) IsEmpty() bool {
	for _, d := range t.Days {
		if len(d.Ranges) > 0 {
			return false
		}
	}
	return true
}
