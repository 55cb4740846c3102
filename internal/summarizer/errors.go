package summarizer

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"talentmatch/internal/domain"
)

const (
	defaultRetryAfter = 60 * time.Second
	maxErrorBody      = 512
)

// APIError is a non-success response from a summarization provider. It
// unwraps to domain.ErrSummarizerFailed.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return domain.ErrSummarizerFailed }

// RateLimitError indicates a provider asked the caller to back off. The
// fallback chain keeps the provider's circuit open for RetryAfter.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// NewRateLimitError creates a RateLimitError. A non-positive retryAfterSecs
// means the provider gave no hint; 60s is assumed.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	retryAfter := defaultRetryAfter
	if retryAfterSecs > 0 {
		retryAfter = time.Duration(retryAfterSecs) * time.Second
	}
	return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Err: err}
}

// ParseRetryAfterHeader reads a Retry-After value given either as
// delta-seconds or as an HTTP date. It returns 0 when the value is missing,
// malformed or already in the past.
func ParseRetryAfterHeader(val string, now time.Time) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return max(secs, 0)
	}
	at, err := http.ParseTime(val)
	if err != nil {
		return 0
	}
	secs := int(at.Sub(now).Round(time.Second) / time.Second)
	return max(secs, 0)
}

// CheckResponse maps a provider HTTP status to an error: nil for 200, a
// *RateLimitError for 429 and an *APIError otherwise. The body is truncated
// so provider error pages do not flood logs.
func CheckResponse(provider string, resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	msg := string(body)
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	apiErr := &APIError{Provider: provider, Status: resp.StatusCode, Body: msg}
	if resp.StatusCode == http.StatusTooManyRequests {
		return NewRateLimitError(provider, apiErr, ParseRetryAfterHeader(resp.Header.Get("Retry-After"), time.Now()))
	}
	return apiErr
}
