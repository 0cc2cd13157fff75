// Package dispatch performs HTTP calls against the training registry.
//
// Signed calls carry a one-legged OAuth 1.0 Authorization header. Mutating
// calls also send an XML body, the fixed user agent and an application/xml
// content type. A few legacy endpoints are unsigned and pass the secondary
// secret key in the query instead; their outcome is decided by matching
// known phrases in a plain text body.
//
// # Error Handling
//
// Every failure is logged once, with the operation name, and returned as one
// of:
//
//   - TransportError: non-2xx status or connection failure. ServerMessage
//     holds the ConvergenceError response header.
//   - ProtocolError: the body could not be decoded.
//   - ApplicationError: the service reported a logical failure.
//   - PreconditionError: a failure detected before any request was sent.
//
// Classify maps an error to its Kind.
package dispatch
