package service

import (
	"errors"
	"fmt"
)

// Errors shared across services. Handlers translate these into JSON bodies;
// everything here is a 400-class condition except ErrNotFound.
var (
	// ErrNotFound signals that a path-referenced recipe or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned by an add-toggle when the join row is
	// already present, including when a concurrent request won the race.
	ErrAlreadyExists = errors.New("already present")

	// ErrNotPresent is returned by a remove-toggle with nothing to remove.
	ErrNotPresent = errors.New("not present, nothing to remove")

	// ErrSelfFollow rejects a user subscribing to themself.
	ErrSelfFollow = errors.New("you cannot subscribe to yourself")

	// ErrEmptyCart distinguishes an empty shopping-cart export from a
	// validation failure.
	ErrEmptyCart = errors.New("shopping cart is empty, nothing to download")

	// ErrForbidden signals a write attempt on a recipe by a non-author.
	ErrForbidden = errors.New("only the author can modify this recipe")
)

// FieldError is a validation failure scoped to a single submission field.
// The request is rejected and no partial state is persisted.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErr(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}
