package scheduling_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Freeeeeet/mentorship_scheduler/internal/scheduling"
	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	wrapped := fmt.Errorf("reserve slot: %w", scheduling.ErrSlotAlreadyBooked)
	assert.ErrorIs(t, wrapped, scheduling.ErrConflict)
	assert.ErrorIs(t, wrapped, scheduling.ErrSlotAlreadyBooked)
	assert.False(t, errors.Is(wrapped, scheduling.ErrValidation))

	verr := fmt.Errorf("book: %w", scheduling.NewValidationError(scheduling.ErrPastDate))
	assert.ErrorIs(t, verr, scheduling.ErrValidation)
	assert.ErrorIs(t, verr, scheduling.ErrPastDate)
	assert.False(t, errors.Is(verr, scheduling.ErrConflict))
	assert.Contains(t, verr.Error(), "date is in the past")
}

func TestRuleCode(t *testing.T) {
	assert.Equal(t, "not_aligned", scheduling.RuleCode(scheduling.ErrNotAligned))
	assert.Equal(t, "duration_too_short", scheduling.RuleCode(scheduling.ErrDurationTooShort))
	assert.Equal(t, "invalid", scheduling.RuleCode(errors.New("other")))
}
