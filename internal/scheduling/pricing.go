package scheduling

import (
	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/shopspring/decimal"
)

// Converter пересчёт суммы в валюту отображения. Нулевое значение - без пересчёта.
type Converter struct {
	Currency   string
	Multiplier decimal.Decimal
}

// NewConverter создаёт конвертер с множителем, например USD→INR = 83
func NewConverter(currency string, multiplier decimal.Decimal) Converter {
	return Converter{Currency: currency, Multiplier: multiplier}
}

func (c Converter) identity() bool {
	return c.Currency == "" || c.Multiplier.IsZero()
}

// Calculator считает стоимость занятия.
// Тариф хранится за единицу тарификации (GranularityMinutes минут),
// цена = тариф * длительность / единица, округление вверх до минимальной единицы валюты.
type Calculator struct {
	Converter Converter
}

// NewCalculator создаёт калькулятор с внедрённым конвертером
func NewCalculator(conv Converter) Calculator {
	return Calculator{Converter: conv}
}

// Price возвращает стоимость занятия длительностью durationMinutes в режиме mode
func (c Calculator) Price(rule *model.PricingRule, mode model.SessionMode, durationMinutes int) (model.Money, error) {
	if rule == nil {
		return model.Money{}, NewValidationError(ErrUnsupportedMode)
	}

	rate, ok := rule.Rate(mode)
	if !ok {
		return model.Money{}, NewValidationError(ErrUnsupportedMode)
	}

	if durationMinutes <= 0 || durationMinutes < rule.MinSessionMinutes {
		return model.Money{}, NewValidationError(ErrDurationTooShort)
	}

	// делим на единицу последним, до округления вверх
	amount := decimal.NewFromInt(rate).Mul(decimal.NewFromInt(int64(durationMinutes)))

	currency := rule.Currency
	if !c.Converter.identity() {
		amount = amount.Mul(c.Converter.Multiplier)
		currency = c.Converter.Currency
	}
	amount = amount.Div(decimal.NewFromInt(int64(rule.Granularity())))

	return model.Money{
		Amount:   amount.Ceil().IntPart(),
		Currency: currency,
	}, nil
}

// ValidateRule проверяет настройки тарифов ментора
func ValidateRule(rule *model.PricingRule) error {
	verr := &ValidationError{}

	if !model.IsAllowedMinSession(rule.MinSessionMinutes) {
		verr.add(ErrInvalidMinDuration, nil)
	}
	for mode, rate := range rule.Rates {
		if !mode.Valid() {
			verr.add(ErrUnsupportedMode, nil)
			continue
		}
		if rate <= 0 {
			verr.add(ErrInvalidRate, nil)
		}
	}

	if len(verr.Violations) > 0 {
		return verr
	}
	return nil
}
