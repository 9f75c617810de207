package models

import "errors"

var (
	// ErrNotFound is returned when a store, product, barcode or placement does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned for any failed store authentication.
	// It never says whether the store id or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden is returned when a store tries to write another store's product.
	ErrForbidden = errors.New("forbidden")
	// ErrNotLoggedIn is returned by the client when a view requires a logged-in store.
	ErrNotLoggedIn = errors.New("store login required")
)

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
