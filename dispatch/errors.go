package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/s0up4200/lmsctl/xmlwire"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid dispatcher configuration
	ErrInvalidConfig = errors.New("invalid lms configuration")
	// ErrUploaderUnreachable indicates the content uploader did not answer 200
	ErrUploaderUnreachable = errors.New("content uploader unreachable")
)

// TransportError is a non-2xx response or a connection failure.
type TransportError struct {
	Op            string
	Method        string
	URL           string
	StatusCode    int
	ServerMessage string // ConvergenceError response header
	Body          string
	Err           error // set for connection failures
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	if e.ServerMessage != "" {
		return fmt.Sprintf("%s: status %d - %s", e.Op, e.StatusCode, e.ServerMessage)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates a not found response
func (e *TransportError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *TransportError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ProtocolError is a successful response whose body does not have the
// expected shape.
type ProtocolError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ApplicationError is a well-formed response in which the service reports a
// logical failure.
type ApplicationError struct {
	Op      string
	Message string
	Body    string
}

// Error implements the error interface
func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: rejected by server", e.Op)
	}
	return fmt.Sprintf("%s: rejected by server: %s", e.Op, e.Message)
}

// Kind classifies an error returned by the dispatcher or a client built on it.
type Kind int

const (
	KindNone Kind = iota
	KindTransport
	KindProtocol
	KindApplication
	KindPrecondition
	KindCanceled
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindApplication:
		return "application"
	case KindPrecondition:
		return "precondition"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// PreconditionError marks a failure detected before any request is sent,
// such as a missing parent entity.
type PreconditionError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Classify reports which failure class err belongs to.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var (
		transportErr    *TransportError
		protocolErr     *ProtocolError
		applicationErr  *ApplicationError
		preconditionErr *PreconditionError
		decodeErr       *xmlwire.DecodeError
	)
	switch {
	case errors.As(err, &preconditionErr):
		return KindPrecondition
	case errors.As(err, &applicationErr):
		return KindApplication
	case errors.As(err, &protocolErr), errors.As(err, &decodeErr):
		return KindProtocol
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &transportErr):
		return KindTransport
	}
	return KindUnknown
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool { return Classify(err) == KindTransport }

// IsProtocol reports whether err is a ProtocolError.
func IsProtocol(err error) bool { return Classify(err) == KindProtocol }

// IsApplication reports whether err is an ApplicationError.
func IsApplication(err error) bool { return Classify(err) == KindApplication }

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr) && transportErr.IsNotFound()
}

// ServerMessage returns the server supplied message carried by err, if any.
func ServerMessage(err error) string {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.ServerMessage
	}
	var applicationErr *ApplicationError
	if errors.As(err, &applicationErr) {
		return applicationErr.Message
	}
	return ""
}
