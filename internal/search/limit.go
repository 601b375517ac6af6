package search

import (
	"strconv"

	"github.com/marmitar/MC426-backend/pkg/apperr"
)

// ParseLimit parses the raw "limit" query parameter, accepting values
// in [0, maxLimit]; out-of-range values are rejected, not clamped. An
// absent raw value yields defaultLimit. Non-integer or negative values, or values above
// maxLimit, are reported as apperr.ErrBadRequest; 0 is accepted and
// yields an empty response rather than a 400 (per the open-question
// resolution recorded in DESIGN.md).
func ParseLimit(raw string, defaultLimit, maxLimit int) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.BadRequest("limit must be a non-negative integer")
	}
	if n < 0 {
		return 0, apperr.BadRequest("limit must not be negative")
	}
	if n > maxLimit {
		return 0, apperr.BadRequest("limit exceeds the maximum allowed")
	}
	return n, nil
}
