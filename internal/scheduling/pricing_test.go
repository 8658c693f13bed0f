package scheduling_test

import (
	"testing"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRule() *model.PricingRule {
	return &model.PricingRule{
		MentorID: 1,
		Currency: "USD",
		Rates: map[model.SessionMode]int64{
			model.SessionModeChat:  10,
			model.SessionModeVideo: 333,
		},
		MinSessionMinutes:  15,
		GranularityMinutes: 15,
	}
}

func TestPrice(t *testing.T) {
	calc := scheduling.NewCalculator(scheduling.Converter{})

	tests := []struct {
		name     string
		mode     model.SessionMode
		duration int
		want     int64
	}{
		{name: "chat 30 minutes is two units", mode: model.SessionModeChat, duration: 30, want: 20},
		{name: "chat minimum duration", mode: model.SessionModeChat, duration: 15, want: 10},
		{name: "partial unit rounds up", mode: model.SessionModeChat, duration: 20, want: 14},
		{name: "video 45 minutes", mode: model.SessionModeVideo, duration: 45, want: 999},
		{name: "video 25 minutes", mode: model.SessionModeVideo, duration: 25, want: 555},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := calc.Price(testRule(), tt.mode, tt.duration)
			require.NoError(t, err)
			assert.Equal(t, tt.want, price.Amount)
			assert.Equal(t, "USD", price.Currency)
		})
	}
}

func TestPriceErrors(t *testing.T) {
	calc := scheduling.NewCalculator(scheduling.Converter{})

	_, err := calc.Price(testRule(), model.SessionModeVoice, 30)
	assert.ErrorIs(t, err, scheduling.ErrUnsupportedMode)
	assert.ErrorIs(t, err, scheduling.ErrValidation)

	_, err = calc.Price(testRule(), model.SessionModeChat, 10)
	assert.ErrorIs(t, err, scheduling.ErrDurationTooShort)

	_, err = calc.Price(testRule(), model.SessionModeChat, 0)
	assert.ErrorIs(t, err, scheduling.ErrDurationTooShort)

	_, err = calc.Price(nil, model.SessionModeChat, 30)
	assert.ErrorIs(t, err, scheduling.ErrUnsupportedMode)
}

func TestPriceWithConverter(t *testing.T) {
	calc := scheduling.NewCalculator(scheduling.NewConverter("INR", decimal.NewFromInt(83)))

	price, err := calc.Price(testRule(), model.SessionModeChat, 30)
	require.NoError(t, err)
	assert.Equal(t, model.Money{Amount: 1660, Currency: "INR"}, price)

	calc = scheduling.NewCalculator(scheduling.NewConverter("EUR", decimal.RequireFromString("0.925")))
	price, err = calc.Price(testRule(), model.SessionModeChat, 15)
	require.NoError(t, err)
	// 10 * 0.925 = 9.25 -> 10
	assert.Equal(t, model.Money{Amount: 10, Currency: "EUR"}, price)
}

func TestPriceWithConverterPartialUnits(t *testing.T) {
	calc := scheduling.NewCalculator(scheduling.NewConverter("INR", decimal.NewFromInt(3)))

	tests := []struct {
		name     string
		rate     int64
		duration int
		want     int64
	}{
		// 1 * 10/15 * 3 = 2
		{name: "two thirds of a unit", rate: 1, duration: 10, want: 2},
		// 5 * 20/15 * 3 = 20
		{name: "four thirds of a unit", rate: 5, duration: 20, want: 20},
		// 10 * 25/15 * 3 = 50
		{name: "five thirds of a unit", rate: 10, duration: 25, want: 50},
		// 7 * 10/15 * 3 = 14
		{name: "exact after multiplier", rate: 7, duration: 10, want: 14},
		// 1 * 20/15 * 3 = 4
		{name: "whole minor units", rate: 1, duration: 20, want: 4},
		// 2 * 10/15 * 3 = 4
		{name: "even rate", rate: 2, duration: 10, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := testRule()
			rule.MinSessionMinutes = 10
			rule.Rates[model.SessionModeChat] = tt.rate

			price, err := calc.Price(rule, model.SessionModeChat, tt.duration)
			require.NoError(t, err)
			assert.Equal(t, model.Money{Amount: tt.want, Currency: "INR"}, price)
		})
	}

	t.Run("non integer result still rounds up", func(t *testing.T) {
		calc := scheduling.NewCalculator(scheduling.NewConverter("EUR", decimal.RequireFromString("0.925")))
		rule := testRule()
		rule.MinSessionMinutes = 10

		// 10 * 20/15 * 0.925 = 12.333... -> 13
		price, err := calc.Price(rule, model.SessionModeChat, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(13), price.Amount)
	})
}

func TestValidateRule(t *testing.T) {
	require.NoError(t, scheduling.ValidateRule(testRule()))

	rule := testRule()
	rule.MinSessionMinutes = 25
	assert.ErrorIs(t, scheduling.ValidateRule(rule), scheduling.ErrInvalidMinDuration)

	rule = testRule()
	rule.Rates[model.SessionModeVoice] = 0
	assert.ErrorIs(t, scheduling.ValidateRule(rule), scheduling.ErrInvalidRate)

	rule = testRule()
	rule.Rates[model.SessionMode("sms")] = 5
	assert.ErrorIs(t, scheduling.ValidateRule(rule), scheduling.ErrUnsupportedMode)
}
