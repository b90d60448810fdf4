package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrAssignmentNotFound = fmt.Errorf("%w: assignment", ErrNotFound)
	ErrPayoutNotFound     = fmt.Errorf("%w: payout", ErrNotFound)

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid task configuration")
	ErrTooManyHorizons      = fmt.Errorf("%w: only up to two predictions are supported per round", ErrInvalidConfiguration)
	ErrNonPositiveSigma     = fmt.Errorf("%w: sigma must be positive", ErrInvalidConfiguration)
	ErrNonPositiveDivisor   = fmt.Errorf("%w: bonus divisor must be positive", ErrInvalidConfiguration)
	ErrTaskIndexOutOfRange  = fmt.Errorf("%w: task index out of range", ErrInvalidConfiguration)
	ErrBonusRoundOutOfRange = fmt.Errorf("%w: identifier draws a bonus round outside the task", ErrInvalidConfiguration)

	// Data errors
	ErrMissingData = errors.New("missing data")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfiguration, field, reason)
}

// NewMissingDataError reports an absent or non-finite value at a computed index.
func NewMissingDataError(series string, index int) error {
	return fmt.Errorf("%w: %s[%d]", ErrMissingData, series, index)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

func IsMissingDataError(err error) bool {
	return errors.Is(err, ErrMissingData)
}
