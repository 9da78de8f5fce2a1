package shared

import (
	"errors"
	"strconv"
)

// ErrInvalidDenomination indicates a face value outside the fixed denomination set
type ErrInvalidDenomination struct {
	Value int
}

func (e ErrInvalidDenomination) Error() string {
	return "invalid denomination: " + strconv.Itoa(e.Value)
}

// Is implements the errors.Is interface for ErrInvalidDenomination
func (e ErrInvalidDenomination) Is(target error) bool {
	t, ok := target.(ErrInvalidDenomination)
	if !ok {
		return false
	}
	// A zero target matches any invalid denomination
	if t.Value == 0 {
		return true
	}
	return e.Value == t.Value
}

var (
	// ErrNegativeCount indicates a bill count below zero
	ErrNegativeCount = errors.New("bill count cannot be negative")
	// ErrCountTooLarge indicates more notes of one denomination than a deposit may hold
	ErrCountTooLarge = errors.New("bill count exceeds the per-deposit limit")
)
