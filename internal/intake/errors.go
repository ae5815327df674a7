package intake

import (
	"errors"
	"strings"
)

// ErrStoreUnavailable is returned under the strict policy when the lead
// could not be persisted. No emails are sent in that case.
var ErrStoreUnavailable = errors.New("intake: lead store unavailable")

// ValidationError lists every required field that was missing or blank.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "intake: missing required fields: " + strings.Join(e.Missing, ", ")
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
