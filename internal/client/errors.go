package client

import (
	"errors"
	"fmt"
	"freight-order-service/internal/domain"
)

// ValidationError is returned before any request is sent when an order form
// fails local validation.
type ValidationError struct {
	Fields domain.FieldErrors
}

func (e *ValidationError) Error() string { return e.Fields.Error() }

func (e *ValidationError) Unwrap() error { return e.Fields }

func formError(err error) error {
	var fe domain.FieldErrors
	if errors.As(err, &fe) {
		return &ValidationError{Fields: fe}
	}
	return err
}

// RejectedError is a reply with success=false. Message is the server's text,
// unchanged.
type RejectedError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected (%d): %s", e.Status, e.Message)
}

// TransportError covers everything that kept a well-formed reply from
// arriving: connection failures, timeouts and non-envelope bodies.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is a 401 rejection.
func IsUnauthorized(err error) bool {
	var re *RejectedError
	return errors.As(err, &re) && re.Status == 401
}
