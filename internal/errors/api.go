package apierrors

import "fmt"

// APIError is a structured failure returned across the service boundary.
// Handlers translate it into an HTTP status plus a machine-readable code;
// it is never allowed to escape as a panic.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Code)
}

func NewAPIError(status int, code string) *APIError {
	return &APIError{Status: status, Code: code}
}
