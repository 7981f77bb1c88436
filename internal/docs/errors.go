package docs

import (
	"errors"
	"fmt"
)

// Error codes used across the query and indexing paths.
const (
	ENOTFOUND    = "not_found"
	EINVALID     = "invalid"
	EUNAVAILABLE = "unavailable"
	EPARSE       = "parse_failure"
	EINTERNAL    = "internal"
)

// Error is a domain error with a machine-readable code. The request
// surfaces map codes to their own signaling (HTTP status, tool error).
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode unwraps err and returns its domain code, or EINTERNAL for
// non-domain errors. A nil error yields an empty string.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message for domain errors and
// a generic message otherwise, keeping internals out of responses.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
