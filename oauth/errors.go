package oauth

import "errors"

var (
	// ErrInvalidCredentials is returned when identity or secret is missing.
	ErrInvalidCredentials = errors.New("invalid oauth credentials")
	// ErrRelativeURL is returned when asked to sign a URL without scheme and host.
	ErrRelativeURL = errors.New("cannot sign relative url")
	// ErrSignature wraps a failure computing the HMAC digest.
	ErrSignature = errors.New("failed to compute signature")
)
