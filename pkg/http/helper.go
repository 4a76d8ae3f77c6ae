package http

import (
	"net/http"
	"strconv"

	apperrors "skybook/pkg/errors"
)

// ExtractLimit parses the limit query parameter, clamping to [1, max] and
// falling back to def when absent.
func ExtractLimit(r *http.Request, def, max int) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid limit parameter: " + s)
	}
	if v < 1 {
		return 0, apperrors.InvalidInput("limit must be positive")
	}
	if v > max {
		return max, nil
	}
	return v, nil
}
