// Package apperr holds the error kinds surfaced by the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError is user-correctable input; Message is shown verbatim to the client.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// DeliveryError is an outbound mail provider failure. It is never retried.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return "delivery: " + e.Err.Error() }
func (e *DeliveryError) Unwrap() error { return e.Err }

// ParseError is a malformed webhook payload.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func Delivery(err error) error {
	return &DeliveryError{Err: err}
}

func Parse(err error) error {
	return &ParseError{Err: err}
}

// AsValidation returns the ValidationError in err's chain, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	ok := errors.As(err, &v)
	return v, ok
}

func IsDelivery(err error) bool {
	var d *DeliveryError
	return errors.As(err, &d)
}

func IsParse(err error) bool {
	var p *ParseError
	return errors.As(err, &p)
}
