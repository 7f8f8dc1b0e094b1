// Package http provides the shared request executor for Atlassian API clients.
package http

import (
	"errors"
	"fmt"
	"time"
)

// Standard sentinel errors for Atlassian API clients.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing authentication.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the user lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBadRequest indicates the request was malformed or rejected.
	ErrBadRequest = errors.New("bad request")

	// ErrServerError indicates a server-side error occurred.
	ErrServerError = errors.New("server error")
)

// APIError represents a non-2xx response from an Atlassian API.
// It carries the status code and raw response body so presentation
// code can decide user-facing phrasing.
type APIError struct {
	// Service is the name of the API (e.g., "jira", "confluence").
	Service string

	// StatusCode is the HTTP status code returned.
	StatusCode int

	// Message is the error message extracted from the response, if any.
	Message string

	// Body is the raw response body, kept for diagnostics.
	Body []byte

	// Endpoint is the API endpoint that was called.
	Endpoint string

	// RequestID is the correlation ID attached to the request.
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s API error (%d) at %s [%s]: %s",
			e.Service, e.StatusCode, e.Endpoint, e.RequestID, e.Message)
	}
	return fmt.Sprintf("%s API error (%d) at %s: %s",
		e.Service, e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap returns the underlying sentinel error based on status code.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return ErrBadRequest
	}
}

// AuthError represents an authentication or authorization failure (401/403).
// It is surfaced distinctly from generic API errors so calling code can
// instruct a human to re-authenticate rather than retry automatically.
type AuthError struct {
	// Service is the API that rejected the credentials.
	Service string

	// StatusCode is 401 or 403.
	StatusCode int

	// Reason explains why authentication failed.
	Reason string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.StatusCode == 403 {
		return fmt.Sprintf("%s permission denied: %s", e.Service, e.Reason)
	}
	return fmt.Sprintf("%s authentication failed: %s", e.Service, e.Reason)
}

// Unwrap returns ErrForbidden for 403 and ErrUnauthorized otherwise.
func (e *AuthError) Unwrap() error {
	if e.StatusCode == 403 {
		return ErrForbidden
	}
	return ErrUnauthorized
}

// RateLimitError represents a rate limit that persisted through all
// retry attempts.
type RateLimitError struct {
	// Service is the API that rate limited.
	Service string

	// Attempts is how many requests were issued before giving up.
	Attempts int

	// RetryAfter is the last server-provided wait hint, if any.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limit exceeded after %d attempts, retry after %s",
			e.Service, e.Attempts, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limit exceeded after %d attempts", e.Service, e.Attempts)
}

// Unwrap returns ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden reports whether the error indicates permission was denied.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsRetryable reports whether the error is transient and should be retried.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 && apiErr.StatusCode < 600
	}

	return false
}
