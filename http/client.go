package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxAttempts is the total number of requests issued for one logical
// call before a transient failure escalates to a fatal error.
const DefaultMaxAttempts = 3

// DefaultRetryWait is the first wait of the exponential backoff sequence
// (1s, 2s, 4s).
const DefaultRetryWait = 1 * time.Second

// requestIDHeader carries the correlation ID attached to every request.
const requestIDHeader = "X-Atlascore-Request-Id"

// Executor performs all authenticated HTTP calls for a service client.
// Clients must not bypass it; it centralizes the retry and backoff policy.
type Executor struct {
	client      *http.Client
	baseURL     string
	serviceName string
	maxAttempts int
	retryWait   time.Duration

	// beforeRequest is called before each attempt (for auth headers, etc.)
	beforeRequest func(req *http.Request)
}

// ExecutorConfig holds configuration for Executor.
type ExecutorConfig struct {
	Client        *http.Client
	BaseURL       string
	ServiceName   string
	MaxAttempts   int
	RetryWait     time.Duration
	BeforeRequest func(req *http.Request)
}

// NewExecutor creates a new Executor with the given configuration.
func NewExecutor(cfg ExecutorConfig) *Executor {
	e := &Executor{
		client:        cfg.Client,
		baseURL:       cfg.BaseURL,
		serviceName:   cfg.ServiceName,
		maxAttempts:   cfg.MaxAttempts,
		retryWait:     cfg.RetryWait,
		beforeRequest: cfg.BeforeRequest,
	}

	if e.client == nil {
		e.client = &http.Client{Timeout: DefaultTimeout}
	}
	if e.maxAttempts <= 0 {
		e.maxAttempts = DefaultMaxAttempts
	}
	if e.retryWait <= 0 {
		e.retryWait = DefaultRetryWait
	}

	return e
}

// BaseURL returns the base URL the executor targets.
func (e *Executor) BaseURL() string {
	return e.baseURL
}

// Request executes an HTTP request, retrying transient failures.
//
// 429 responses honor the Retry-After header when present; otherwise they
// fall back to the exponential backoff sequence, which is also used for 5xx
// responses and network errors (no Retry-After is expected on those). 4xx
// responses other than 429 are returned without retrying.
func (e *Executor) Request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	url := e.baseURL + path
	requestID := newRequestID()

	var lastRetryAfter time.Duration
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set(requestIDHeader, requestID)

		if e.beforeRequest != nil {
			e.beforeRequest(req)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			// Network failure: transient, same backoff as 429 but no
			// Retry-After is consulted.
			if attempt < e.maxAttempts {
				if waitErr := e.wait(ctx, e.backoff(attempt)); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, fmt.Errorf("%s request failed after %d attempts: %w",
				e.serviceName, attempt, err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := e.backoff(attempt)
			if retryAfter := retryAfterDuration(resp); retryAfter > 0 {
				wait = retryAfter
				lastRetryAfter = retryAfter
			}
			_ = resp.Body.Close()
			if attempt < e.maxAttempts {
				if waitErr := e.wait(ctx, wait); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, &RateLimitError{
				Service:    e.serviceName,
				Attempts:   attempt,
				RetryAfter: lastRetryAfter,
			}

		case resp.StatusCode >= 500 && attempt < e.maxAttempts:
			_ = resp.Body.Close()
			if waitErr := e.wait(ctx, e.backoff(attempt)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%s request failed: max attempts exceeded", e.serviceName)
}

// Get performs a GET request and decodes the response into result.
func (e *Executor) Get(ctx context.Context, path string, result any) error {
	resp, err := e.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return e.handleResponse(resp, path, result)
}

// Post performs a POST request and decodes the response into result.
func (e *Executor) Post(ctx context.Context, path string, body, result any) error {
	resp, err := e.Request(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return e.handleResponse(resp, path, result)
}

// Put performs a PUT request and decodes the response into result.
func (e *Executor) Put(ctx context.Context, path string, body, result any) error {
	resp, err := e.Request(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return e.handleResponse(resp, path, result)
}

// Delete performs a DELETE request.
func (e *Executor) Delete(ctx context.Context, path string) error {
	resp, err := e.Request(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return e.handleResponse(resp, path, nil)
}

// GetRaw performs a GET request and returns the raw response body.
func (e *Executor) GetRaw(ctx context.Context, path string) ([]byte, error) {
	resp, err := e.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, e.parseError(resp, path)
	}

	return io.ReadAll(resp.Body)
}

// handleResponse checks status and decodes the response body.
func (e *Executor) handleResponse(resp *http.Response, path string, result any) error {
	if resp.StatusCode >= 400 {
		return e.parseError(resp, path)
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", e.serviceName, err)
	}

	return nil
}

// parseError converts a non-2xx response into a typed error.
// 401/403 become AuthError; everything else becomes APIError carrying the
// status code and raw body.
func (e *Executor) parseError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(resp.Body)
	message := extractMessage(body)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{
			Service:    e.serviceName,
			StatusCode: resp.StatusCode,
			Reason:     message,
		}
	}

	return &APIError{
		Service:    e.serviceName,
		StatusCode: resp.StatusCode,
		Message:    message,
		Body:       body,
		Endpoint:   path,
		RequestID:  resp.Request.Header.Get(requestIDHeader),
	}
}

// extractMessage pulls an error message out of an Atlassian error payload.
// Jira uses errorMessages, Confluence uses message; some endpoints use error.
func extractMessage(body []byte) string {
	var parsed struct {
		ErrorMessages []string `json:"errorMessages"`
		Message       string   `json:"message"`
		Error         string   `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if len(parsed.ErrorMessages) > 0 {
		return parsed.ErrorMessages[0]
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.Error
}

// backoff returns the wait before the attempt following the given one:
// retryWait, 2*retryWait, 4*retryWait, ...
func (e *Executor) backoff(attempt int) time.Duration {
	return e.retryWait * time.Duration(1<<(attempt-1))
}

// wait sleeps for the given duration or until the context is canceled.
func (e *Executor) wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retryAfterDuration reads the Retry-After header from a 429 response.
// Returns 0 when absent or unparseable.
func retryAfterDuration(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	seconds, err := strconv.Atoi(retryAfter)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// newRequestID generates a short correlation ID for one logical request.
// All retry attempts of a call share the same ID.
func newRequestID() string {
	id, err := nanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", 12)
	if err != nil {
		return "unknown"
	}
	return id
}
