package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidKey is matched by every InvalidKeyError.
var ErrInvalidKey = errors.New("invalid cache key")

// InvalidKeyError is returned when a key fails validation.
type InvalidKeyError struct {
	Key string
	Err error
}

// Error implements the error interface
func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid cache key %s: %v", e.Key, e.Err)
}

func (e *InvalidKeyError) Unwrap() []error {
	return []error{ErrInvalidKey, e.Err}
}
