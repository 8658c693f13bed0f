package scheduling

import (
	"sort"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
)

// Ограничения по умолчанию для шаблона доступности
const (
	DefaultBusinessStart = 6 * 60  // 06:00
	DefaultBusinessEnd   = 23 * 60 // 23:00
)

// Validator проверяет список интервалов одного дня. Без состояния и побочных
// эффектов, безопасен для параллельного использования.
type Validator struct {
	Granularity   int
	BusinessStart int
	BusinessEnd   int
}

// DefaultValidator сетка 15 минут, рабочие часы 06:00-23:00
func DefaultValidator() Validator {
	return Validator{
		Granularity:   model.DefaultGranularityMinutes,
		BusinessStart: DefaultBusinessStart,
		BusinessEnd:   DefaultBusinessEnd,
	}
}

// Validate возвращает nil или *ValidationError со всеми нарушениями.
// Невыровненные границы отклоняются, а не округляются.
func (v Validator) Validate(ranges []model.TimeRange) error {
	verr := &ValidationError{}

	for i := range ranges {
		r := ranges[i]
		if r.Start >= r.End {
			verr.add(ErrRangeOrder, &r)
		}
		if !v.aligned(r.Start) || !v.aligned(r.End) {
			verr.add(ErrNotAligned, &r)
		}
		if r.Start < v.BusinessStart || r.End > v.BusinessEnd {
			verr.add(ErrOutsideBusinessHours, &r)
		}
	}

	// Пересечения: сортируем копию по началу, каждый start >= конца предыдущего
	sorted := SortRanges(ranges)
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Start < prev.End {
			verr.add(ErrOverlap, &cur)
		}
	}

	if len(verr.Violations) > 0 {
		return verr
	}
	return nil
}

func (v Validator) aligned(minute int) bool {
	g := v.Granularity
	if g <= 0 {
		g = model.DefaultGranularityMinutes
	}
	return minute%g == 0
}

// SortRanges возвращает отсортированную по началу копию
func SortRanges(ranges []model.TimeRange) []model.TimeRange {
	sorted := append([]model.TimeRange{}, ranges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})
	return sorted
}
