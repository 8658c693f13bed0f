package model

import "slices"

// DefaultGranularityMinutes шаг сетки слотов и единица тарификации
const DefaultGranularityMinutes = 15

// AllowedMinSessionMinutes допустимые значения минимальной длительности занятия
var AllowedMinSessionMinutes = []int{10, 15, 20, 30}

// PricingRule тарифы ментора.
// Rates хранит цену за одну единицу тарификации (GranularityMinutes минут)
// в минимальных единицах валюты. Режим без тарифа считается выключенным.
type PricingRule struct {
	MentorID           int64                 `json:"mentor_id"`
	Currency           string                `json:"currency"`
	Rates              map[SessionMode]int64 `json:"rates"`
	MinSessionMinutes  int                   `json:"min_session_minutes"`
	GranularityMinutes int                   `json:"granularity_minutes"`
}

// Rate возвращает тариф режима и признак что режим включён
func (r *PricingRule) Rate(mode SessionMode) (int64, bool) {
	if r == nil || r.Rates == nil {
		return 0, false
	}
	rate, ok := r.Rates[mode]
	return rate, ok && rate > 0
}

// EnabledModes включённые режимы в стабильном порядке
func (r *PricingRule) EnabledModes() []SessionMode {
	var modes []SessionMode
	for _, m := range AllSessionModes {
		if _, ok := r.Rate(m); ok {
			modes = append(modes, m)
		}
	}
	return modes
}

// Granularity единица тарификации с учётом значения по умолчанию
func (r *PricingRule) Granularity() int {
	if r.GranularityMinutes <= 0 {
		return DefaultGranularityMinutes
	}
	return r.GranularityMinutes
}

// IsAllowedMinSession проверяет значение минимальной длительности
func IsAllowedMinSession(minutes int) bool {
	return slices.Contains(AllowedMinSessionMinutes, minutes)
}
