package xmlwire

import (
	"errors"
	"fmt"
)

// ErrEmptyBody is returned when a response carries no document.
var ErrEmptyBody = errors.New("empty response body")

// DecodeError is returned when a body cannot be decoded into the target type.
type DecodeError struct {
	Type string
	Body string
	Err  error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError is returned when a payload cannot be encoded.
type EncodeError struct {
	Type string
	Err  error
}

// Error implements the error interface
func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Type, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
