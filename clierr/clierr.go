// Package clierr presents API failures as actionable messages for
// command-line front ends. It maps the typed errors of the http package to
// a short message plus a concrete suggestion.
package clierr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	corehttp "github.com/odyssey4me/atlascore/http"
)

// CLIError wraps an underlying error with presentation fields.
type CLIError struct {
	Err        error
	Message    string
	Suggestion string
	Details    []string
}

func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, d := range e.Details {
		b.WriteString("\n  " + d)
	}
	if e.Suggestion != "" {
		b.WriteString("\n\nSuggestion: " + e.Suggestion)
	}
	return b.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// Wrap converts an API error into a CLIError with a suggestion keyed off
// the error class. Unknown errors pass through with a generic message.
// A nil error returns nil.
func Wrap(service string, err error) *CLIError {
	if err == nil {
		return nil
	}

	var rateErr *corehttp.RateLimitError
	if errors.As(err, &rateErr) {
		suggestion := "wait a moment and retry"
		if rateErr.RetryAfter > 0 {
			suggestion = fmt.Sprintf("wait %s and retry", rateErr.RetryAfter.Round(time.Second))
		}
		return &CLIError{
			Err:        err,
			Message:    fmt.Sprintf("%s is rate limiting requests", service),
			Suggestion: suggestion,
			Details:    []string{fmt.Sprintf("gave up after %d attempts", rateErr.Attempts)},
		}
	}

	var authErr *corehttp.AuthError
	if errors.As(err, &authErr) {
		if errors.Is(err, corehttp.ErrForbidden) {
			return &CLIError{
				Err:        err,
				Message:    fmt.Sprintf("%s denied access: %s", service, authErr.Reason),
				Suggestion: "your credentials are valid but lack permission for this resource; ask an instance admin",
			}
		}
		return &CLIError{
			Err:     err,
			Message: fmt.Sprintf("%s rejected the credentials: %s", service, authErr.Reason),
			Suggestion: fmt.Sprintf("verify %s_API_TOKEN and %s_EMAIL, or the %s config file",
				strings.ToUpper(service), strings.ToUpper(service), service),
		}
	}

	var apiErr *corehttp.APIError
	if errors.As(err, &apiErr) {
		cli := &CLIError{
			Err:     err,
			Message: fmt.Sprintf("%s request failed: %s", service, apiErr.Message),
			Details: []string{fmt.Sprintf("status %d on %s", apiErr.StatusCode, apiErr.Endpoint)},
		}
		if apiErr.RequestID != "" {
			cli.Details = append(cli.Details, "request id "+apiErr.RequestID)
		}
		if errors.Is(err, corehttp.ErrNotFound) {
			cli.Suggestion = "check the key or ID; it may not exist or may not be visible to you"
		}
		return cli
	}

	return &CLIError{
		Err:        err,
		Message:    fmt.Sprintf("%s request failed: %v", service, err),
		Suggestion: "check the base URL and network connectivity",
	}
}
