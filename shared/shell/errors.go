package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput classifies errors caused by caller input. They are never retried.
	ErrInvalidInput = errors.New("invalid input")
)

// NewInputError returns an error wrapping ErrInvalidInput with a human-readable message.
func NewInputError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsInputError checks if an error was caused by caller input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// WrapInputError marks err as caused by caller input, keeping err in the chain.
func WrapInputError(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// ErrEventChangeNotificationFailed marks an error of the EventChangeListener after a successful write.
var ErrEventChangeNotificationFailed = errors.New("event change notification failed")
