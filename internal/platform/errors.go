package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested item does not exist (HTTP 404).
	ErrNotFound = errors.New("item not found")

	// ErrConflict indicates the request conflicts with existing state
	// (HTTP 409), e.g. creating an item that already exists.
	ErrConflict = errors.New("item conflict")

	// ErrForbidden indicates the session lacks permission (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrNoSession indicates a request was attempted before Login.
	ErrNoSession = errors.New("no active session, call Login first")

	// ErrTenantRequired indicates an operation that needs a tenant-scoped
	// session was called on an unscoped client.
	ErrTenantRequired = errors.New("operation requires a tenant-scoped session")
)

// APIError is returned for any non-2xx response not covered by a sentinel.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.Path, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// statusError maps a response status to the matching typed error.
func statusError(statusCode int, method, path, message string) error {
	switch statusCode {
	case 404:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case 409:
		return fmt.Errorf("%w: %s %s", ErrConflict, method, path)
	case 403:
		return fmt.Errorf("%w: %s %s", ErrForbidden, method, path)
	default:
		return &APIError{StatusCode: statusCode, Method: method, Path: path, Message: message}
	}
}
