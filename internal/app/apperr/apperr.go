package apperr

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed input rejected before any storage access.
var ErrValidation = errors.New("invalid request")

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
