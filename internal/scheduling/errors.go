package scheduling

import (
	"errors"
	"strings"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
)

// Категории ошибок
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

// Нарушенные правила валидации
var (
	ErrRangeOrder           = errors.New("start must be before end")
	ErrNotAligned           = errors.New("bounds must align to slot granularity")
	ErrOutsideBusinessHours = errors.New("range outside business hours")
	ErrOverlap              = errors.New("range overlaps another range")
	ErrDurationTooShort     = errors.New("duration below mentor minimum")
	ErrDurationExceedsSlot  = errors.New("duration exceeds slot length")
	ErrUnsupportedMode      = errors.New("session mode not enabled by mentor")
	ErrInvalidTopic         = errors.New("topic is empty or too long")
	ErrPastDate             = errors.New("date is in the past")
	ErrSlotUnavailable      = errors.New("slot is not available")
	ErrInvalidMinDuration   = errors.New("minimum session duration not allowed")
	ErrInvalidRate          = errors.New("rate must be positive")
	ErrInvalidWeekday       = errors.New("invalid weekday")
)

// ErrSlotAlreadyBooked другой запрос успел зарезервировать слот
var ErrSlotAlreadyBooked = &conflictError{msg: "slot already booked"}

type conflictError struct {
	msg string
}

func (e *conflictError) Error() string { return e.msg }

func (e *conflictError) Is(target error) bool { return target == ErrConflict }

// Violation одно нарушенное правило
type Violation struct {
	Rule  error
	Range *model.TimeRange
}

func (v Violation) String() string {
	if v.Range != nil {
		return v.Range.String() + ": " + v.Rule.Error()
	}
	return v.Rule.Error()
}

// ValidationError список нарушений. errors.Is срабатывает и на ErrValidation,
// и на каждое правило из Violations.
type ValidationError struct {
	Violations []Violation
}

// NewValidationError ошибка с одним нарушением без привязки к интервалу
func NewValidationError(rule error) *ValidationError {
	return &ValidationError{Violations: []Violation{{Rule: rule}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Violations))
	for _, v := range e.Violations {
		errs = append(errs, v.Rule)
	}
	return errs
}

func (e *ValidationError) add(rule error, r *model.TimeRange) {
	e.Violations = append(e.Violations, Violation{Rule: rule, Range: r})
}

// RuleCode машиночитаемый код правила для внешних интерфейсов
func RuleCode(rule error) string {
	switch rule {
	case ErrRangeOrder:
		return "range_order"
	case ErrNotAligned:
		return "not_aligned"
	case ErrOutsideBusinessHours:
		return "outside_business_hours"
	case ErrOverlap:
		return "overlap"
	case ErrDurationTooShort:
		return "duration_too_short"
	case ErrDurationExceedsSlot:
		return "duration_exceeds_slot"
	case ErrUnsupportedMode:
		return "unsupported_mode"
	case ErrInvalidTopic:
		return "invalid_topic"
	case ErrPastDate:
		return "past_date"
	case ErrSlotUnavailable:
		return "slot_unavailable"
	case ErrInvalidMinDuration:
		return "invalid_min_duration"
	case ErrInvalidRate:
		return "invalid_rate"
	case ErrInvalidWeekday:
		return "invalid_weekday"
	default:
		return "invalid"
	}
}
