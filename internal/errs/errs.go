// Package errs defines the error taxonomy used across the command-processing
// pipeline: malformed-command, not-found, backend and transport errors, each
// carrying enough information for the dispatcher to pick a response status.
// Frame codec errors are the wire package's own sentinel errors.
package errs

import "fmt"

// Kind classifies an error by where it surfaces and how the dispatcher
// should turn it into a response.
type Kind int

const (
	// KindMalformed covers semantically invalid commands (empty table,
	// empty topic, unknown command kind, ...). Surfaced as status 422.
	KindMalformed Kind = iota
	// KindNotFound covers unsubscribe of an unknown (topic, id) pair.
	// Surfaced as status 404.
	KindNotFound
	// KindBackend covers storage/backend failures. Surfaced as status 500.
	KindBackend
	// KindTransport covers connection-level failures. Never turned into a
	// response; the affected connection and its substreams terminate.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindNotFound:
		return "not_found"
	case KindBackend:
		return "backend"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is the concrete error type produced by every layer of the pipeline.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Malformed builds a KindMalformed error, used for 422 responses.
func Malformed(format string, args ...any) *Error {
	return New(KindMalformed, format, args...)
}

// NotFound builds a KindNotFound error, used for 404 responses.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// Backend builds a KindBackend error, used for 500 responses.
func Backend(format string, args ...any) *Error {
	return New(KindBackend, format, args...)
}

// Transport builds a KindTransport error. Never reaches a client as a
// response; it terminates the connection it occurred on.
func Transport(format string, args ...any) *Error {
	return New(KindTransport, format, args...)
}

// StatusFor maps err to the wire status code the dispatcher should use.
// A nil error maps to 200. An error that isn't an *Error defaults to 500,
// matching the "Backend internal error" row of the status-mapping table.
func StatusFor(err error) uint32 {
	if err == nil {
		return 200
	}
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return 500
	}
	switch e.Kind {
	case KindMalformed:
		return 422
	case KindNotFound:
		return 404
	default:
		return 500
	}
}
