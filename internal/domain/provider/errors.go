package provider

import (
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrProviderUnavailable   = crerr.New("provider unavailable")
	ErrQuotaExhausted        = crerr.New("provider quota exhausted")
	ErrMalformedUpstreamData = crerr.New("malformed upstream data")
	ErrEntityNotFound        = crerr.New("provider entity not found")
)

// QuotaError is returned when the daily quota is spent. It matches both
// ErrQuotaExhausted and ErrProviderUnavailable.
type QuotaError struct {
	ResetAt time.Time
}

func (e *QuotaError) Error() string {
	if e.ResetAt.IsZero() {
		return ErrQuotaExhausted.Error()
	}
	return fmt.Sprintf("%s until %s", ErrQuotaExhausted.Error(), e.ResetAt.UTC().Format(time.RFC3339))
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExhausted || target == ErrProviderUnavailable
}

// NewQuotaError builds a quota error for the given reset time.
func NewQuotaError(resetAt time.Time) error {
	return &QuotaError{ResetAt: resetAt}
}

// QuotaResetAt extracts the reset time from a quota error chain.
func QuotaResetAt(err error) (time.Time, bool) {
	var qe *QuotaError
	if !crerr.As(err, &qe) {
		return time.Time{}, false
	}
	return qe.ResetAt, true
}
