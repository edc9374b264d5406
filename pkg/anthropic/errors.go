package anthropic

import (
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
)

// StatusCode extracts the HTTP status code from an API error, or 0 if the
// error did not come from the API.
func StatusCode(err error) int {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// rateLimitPatterns match rate-limit failures that surface as plain strings,
// e.g. from intermediate proxies that swallow the typed API error.
var rateLimitPatterns = []string{
	"rate limit",
	"rate_limit",
	"429",
	"quota",
}

// IsRateLimited reports whether err is an API quota or rate-limit rejection.
// Callers distinguish these from other failures: a rate-limited run degrades
// to rule-based scoring instead of skipping leads.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	if StatusCode(err) == 429 {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range rateLimitPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
