package service

import (
	"errors"
	"fmt"

	"persona/backend/internal/ratelimit"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalid             = errors.New("invalid")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// QuotaExceededError carries the denying decision so callers can report the
// window and its reset time.
type QuotaExceededError struct {
	Decision ratelimit.Decision
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded", e.Decision.LimitingWindow)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
