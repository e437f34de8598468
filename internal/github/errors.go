package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
)

// Common errors
var (
	ErrNotAuthenticated = errors.New("not authenticated - run 'gh auth login' first")
	ErrNotFound         = errors.New("resource not found")
	ErrRateLimited      = errors.New("API rate limit exceeded")
	ErrAlreadyExists    = errors.New("release already exists")
)

// APIError wraps GitHub API errors with additional context
type APIError struct {
	Operation string
	Resource  string
	Err       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Resource, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// statusCode extracts the HTTP status from a go-gh error, or 0
func statusCode(err error) int {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsNotFound checks if an error indicates a resource was not found
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	if err == nil {
		return false
	}
	if statusCode(err) == http.StatusNotFound {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Could not resolve") ||
		strings.Contains(msg, "NOT_FOUND")
}

// IsRateLimited checks if an error indicates rate limiting.
// Non-rate-limit 403 errors (e.g., permission denied) are not treated as such.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if err == nil {
		return false
	}

	switch statusCode(err) {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		msg := strings.ToLower(err.Error())
		return strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limited")
	}

	msg := err.Error()
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "RATE_LIMITED")
}

// IsAlreadyExists checks if an error reports a duplicate release for a tag
func IsAlreadyExists(err error) bool {
	if errors.Is(err, ErrAlreadyExists) {
		return true
	}
	if err == nil {
		return false
	}
	return statusCode(err) == http.StatusUnprocessableEntity &&
		strings.Contains(err.Error(), "already_exists")
}

// WrapError wraps an API error with operation context
func WrapError(operation, resource string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case IsRateLimited(err):
		err = ErrRateLimited
	case IsNotFound(err):
		err = ErrNotFound
	case IsAlreadyExists(err):
		err = ErrAlreadyExists
	}

	return &APIError{
		Operation: operation,
		Resource:  resource,
		Err:       err,
	}
}
