package lexcrawl

import (
	"errors"
	"fmt"
)

// Application error codes. These map errors to behavior: ENETWORK,
// ERATELIMIT and ENOTFOUND are transient and retried with backoff;
// EROBOTS is a hard skip; everything else is fatal to the operation
// that produced it.
const (
	EINVALID   = "invalid"    // malformed input (URL, HTML, rule document)
	ENOTFOUND  = "not_found"  // content or record does not exist
	ENETWORK   = "network"    // timeout, connection failure, 5xx
	ERATELIMIT = "rate_limit" // 429 or a limiter rejection
	EBLOCKED   = "blocked"    // 403/406, typically a JS-wall; escalate to browser
	EROBOTS    = "robots"     // path disallowed by robots.txt
	EINTERNAL  = "internal"   // everything else
)

// Error represents an application error with a machine-readable code.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("lexcrawl error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs an Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode unwraps err and returns its code, or EINTERNAL for non-application
// errors. Returns the empty string for nil.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps err and returns its message, or a generic message for
// non-application errors. Returns the empty string for nil.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Retryable reports whether err is transient: a retry with backoff may
// succeed. Robots violations and invalid input are never retryable.
func Retryable(err error) bool {
	switch ErrorCode(err) {
	case ENETWORK, ERATELIMIT, ENOTFOUND:
		return true
	}
	return false
}
