package derrors

import "fmt"

// Code classifies a domain error for transport-level translation.
type Code string

const (
	// CodeUnauthenticated means no usable credential was present; the call
	// was refused locally and never reached the upstream service.
	CodeUnauthenticated Code = "unauthenticated"

	// CodeTransport covers network failures and non-success responses from
	// the upstream service. Not retried automatically.
	CodeTransport Code = "transport_failure"

	// CodeMalformed means the upstream response was missing fields the core
	// depends on and no safe fallback existed.
	CodeMalformed Code = "malformed_response"

	// CodeBadRequest covers caller input validation failures.
	CodeBadRequest Code = "bad_request"

	// CodeConflict means the operation cannot run in the current state,
	// e.g. a submission is already in flight.
	CodeConflict Code = "conflict"

	// CodeNotFound means the referenced entity does not exist.
	CodeNotFound Code = "not_found"

	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal_error"
)

// Error is a domain error with a stable code and a human-readable message.
// Services build these at the point a collaborator failure is collapsed into
// a single user-facing condition.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a coded error that preserves the underlying cause for errors.Is
// checks against sentinel errors.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// CodeOf extracts the domain code from err, walking the wrap chain.
// Unknown errors map to CodeInternal.
func CodeOf(err error) Code {
	for err != nil {
		if de, ok := err.(*Error); ok {
			return de.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return CodeInternal
}
