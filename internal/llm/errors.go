package llm

import (
	"errors"
	"strings"
)

// ErrMissingCredential is returned by backend constructors when no API key
// is configured.
var ErrMissingCredential = errors.New("missing backend credential")

var (
	rateLimitMarkers = []string{"429", "quota", "rate limit", "resource_exhausted", "resource exhausted"}
	transientMarkers = []string{"timeout", "deadline exceeded", "unavailable", "500", "502", "503", "504", "connection reset"}
)

// IsRateLimited reports whether err looks like a quota or rate-limit rejection.
func IsRateLimited(err error) bool {
	return err != nil && containsAny(err.Error(), rateLimitMarkers)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return IsRateLimited(err) || containsAny(err.Error(), transientMarkers)
}

func containsAny(msg string, markers []string) bool {
	msg = strings.ToLower(msg)
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
