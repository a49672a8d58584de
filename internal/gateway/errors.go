package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"orthocode/internal/domain"
)

var (
	// ErrNotConfigured means no API key is available for the configured provider.
	ErrNotConfigured = errors.New("AI gateway API key not configured")
	// ErrMalformedResponse means the provider answered 2xx with a body we could not decode.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrContentBlocked means the provider refused to generate content for the prompt.
	ErrContentBlocked = errors.New("provider blocked the request content")
)

const maxErrorBodyLen = 500

// APIError is a non-2xx answer from an AI provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// NewAPIError creates an APIError, truncating the upstream body and parsing Retry-After.
func NewAPIError(provider string, status int, body, retryAfter string) *APIError {
	return &APIError{
		Provider:   provider,
		StatusCode: status,
		Body:       Truncate(body, maxErrorBodyLen),
		RetryAfter: time.Duration(ParseRetryAfterHeader(retryAfter)) * time.Second,
	}
}

// TransportError means the request to the provider never produced an HTTP response.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport failure: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// ToCodingError translates a gateway failure into the client-facing taxonomy.
func ToCodingError(err error) *domain.CodingError {
	var apiErr *APIError
	var transportErr *TransportError

	switch {
	case errors.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return domain.WrapCodingError(domain.CodeAIRateLimited,
				fmt.Sprintf("%s API rate limited", apiErr.Provider), err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.WrapCodingError(domain.CodeAIAuthError,
				fmt.Sprintf("%s API authentication failed (status %d)", apiErr.Provider, apiErr.StatusCode), err)
		case http.StatusPaymentRequired:
			return domain.WrapCodingError(domain.CodeAIError,
				fmt.Sprintf("%s API credits exhausted (status 402)", apiErr.Provider), err)
		case 0:
			return domain.WrapCodingError(domain.CodeAIError,
				fmt.Sprintf("%s API request failed", apiErr.Provider), err)
		default:
			return domain.WrapCodingError(domain.CodeAIError,
				fmt.Sprintf("%s API returned %d", apiErr.Provider, apiErr.StatusCode), err)
		}
	case errors.As(err, &transportErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.WrapCodingError(domain.CodeNetworkError, "could not reach AI provider", err)
	case errors.Is(err, ErrNotConfigured):
		return domain.WrapCodingError(domain.CodeConfigError, ErrNotConfigured.Error(), err)
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrContentBlocked):
		return domain.WrapCodingError(domain.CodeAIError, "AI provider returned an unusable response", err)
	default:
		return domain.AsCodingError(err)
	}
}

// Truncate shortens s to at most maxLen bytes, marking the cut. The cut never
// splits a multi-byte character.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// RetryAfter returns the upstream Retry-After hint carried anywhere in err's chain.
func RetryAfter(err error) (time.Duration, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter, true
	}
	return 0, false
}
