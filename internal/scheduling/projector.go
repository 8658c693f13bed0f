package scheduling

import (
	"iter"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
)

// MaxHorizonDays предел горизонта проекции
const MaxHorizonDays = 60

// BookedSet набор занятых пар (дата, интервал) одного ментора
type BookedSet struct {
	keys map[bookedKey]struct{}
}

type bookedKey struct {
	date  string
	start int
	end   int
}

// NewBookedSet строит набор из ключей резерваций
func NewBookedSet(keys ...model.SlotKey) BookedSet {
	s := BookedSet{keys: make(map[bookedKey]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[toBookedKey(k.Date, k.Range)] = struct{}{}
	}
	return s
}

// Contains проверяет занятость пары (дата, интервал)
func (s BookedSet) Contains(date time.Time, r model.TimeRange) bool {
	if s.keys == nil {
		return false
	}
	_, ok := s.keys[toBookedKey(date, r)]
	return ok
}

// Len количество занятых пар
func (s BookedSet) Len() int {
	return len(s.keys)
}

func toBookedKey(date time.Time, r model.TimeRange) bookedKey {
	return bookedKey{date: model.FormatDate(date), start: r.Start, end: r.End}
}

// Projector разворачивает еженедельный шаблон в конкретные слоты.
// Не хранит изменяемого состояния: одинаковые входные данные дают одинаковую
// последовательность.
type Projector struct {
	Location *time.Location
}

// NewProjector создаёт проектор для единственной локали сервиса
func NewProjector(loc *time.Location) Projector {
	if loc == nil {
		loc = time.UTC
	}
	return Projector{Location: loc}
}

// Project возвращает ленивую конечную последовательность слотов на horizonDays
// дней начиная с сегодняшнего. Каждый range по результату начинает обход заново.
// Слоты сегодняшнего дня, начало которых уже прошло, не выдаются.
func (p Projector) Project(template *model.AvailabilityTemplate, booked BookedSet, now time.Time, horizonDays int) iter.Seq[model.ConcreteSlot] {
	horizonDays = clampHorizon(horizonDays)
	today := model.StartOfDay(now, p.loc())
	return p.projectDays(template, booked, now, today, horizonDays)
}

// ProjectRange как Project, но для диапазона дат [from, to] включительно.
// Диапазон обрезается сегодняшним днём и максимальным горизонтом.
func (p Projector) ProjectRange(template *model.AvailabilityTemplate, booked BookedSet, now, from, to time.Time) iter.Seq[model.ConcreteSlot] {
	loc := p.loc()
	today := model.StartOfDay(now, loc)
	from = model.StartOfDay(from, loc)
	to = model.StartOfDay(to, loc)

	if from.Before(today) {
		from = today
	}
	last := today.AddDate(0, 0, MaxHorizonDays-1)
	if to.After(last) {
		to = last
	}

	days := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days++
	}
	return p.projectDays(template, booked, now, from, days)
}

func (p Projector) projectDays(template *model.AvailabilityTemplate, booked BookedSet, now, start time.Time, days int) iter.Seq[model.ConcreteSlot] {
	loc := p.loc()
	today := model.StartOfDay(now, loc)
	nowMinute := now.In(loc).Hour()*60 + now.In(loc).Minute()

	return func(yield func(model.ConcreteSlot) bool) {
		if template == nil {
			return
		}
		for i := 0; i < days; i++ {
			date := start.AddDate(0, 0, i)
			if date.Before(today) {
				continue
			}

			weekday := model.WeekdayOf(date)
			isToday := date.Equal(today)

			for _, r := range template.Day(weekday) {
				if isToday && r.Start < nowMinute {
					continue
				}

				status := model.SlotStatusAvailable
				if booked.Contains(date, r) {
					status = model.SlotStatusBooked
				}

				slot := model.ConcreteSlot{
					Date:    date,
					Weekday: weekday,
					Range:   r,
					Status:  status,
				}
				if !yield(slot) {
					return
				}
			}
		}
	}
}

// DropStarted убирает слоты прошедших дней и сегодняшние слоты, начало которых
// уже наступило. Для проекций, посчитанных раньше now.
func (p Projector) DropStarted(slots []model.ConcreteSlot, now time.Time) []model.ConcreteSlot {
	loc := p.loc()
	today := model.StartOfDay(now, loc)
	nowMinute := now.In(loc).Hour()*60 + now.In(loc).Minute()

	kept := make([]model.ConcreteSlot, 0, len(slots))
	for _, slot := range slots {
		date := model.StartOfDay(slot.Date, loc)
		if date.Before(today) || (date.Equal(today) && slot.Range.Start < nowMinute) {
			continue
		}
		kept = append(kept, slot)
	}
	return kept
}

func (p Projector) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func clampHorizon(days int) int {
	if days < 0 {
		return 0
	}
	if days > MaxHorizonDays {
		return MaxHorizonDays
	}
	return days
}

// Collect материализует последовательность
func Collect(seq iter.Seq[model.ConcreteSlot]) []model.ConcreteSlot {
	slots := []model.ConcreteSlot{}
	for s := range seq {
		slots = append(slots, s)
	}
	return slots
}

// Available оставляет только свободные слоты
func Available(seq iter.Seq[model.ConcreteSlot]) iter.Seq[model.ConcreteSlot] {
	return func(yield func(model.ConcreteSlot) bool) {
		for s := range seq {
			if s.IsAvailable() && !yield(s) {
				return
			}
		}
	}
}

// Find ищет слот с точным совпадением даты и интервала
func Find(seq iter.Seq[model.ConcreteSlot], date time.Time, r model.TimeRange) (model.ConcreteSlot, bool) {
	for s := range seq {
		if s.Range == r && model.SameDate(s.Date, date) {
			return s, true
		}
	}
	return model.ConcreteSlot{}, false
}
