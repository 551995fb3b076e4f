package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status and a stable machine-readable code alongside
// the underlying error. Handlers translate it into the response envelope;
// callers can distinguish bad input from missing targets from unsupported
// operations by code alone.
type Error struct {
	Status int
	Code   string
	Err    error
}

const (
	CodeBadRequest     = "bad_request"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeNotImplemented = "not_implemented"
	CodeInternal       = "internal"
)

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// BadRequest marks structurally broken input: parse failures, duplicate
// identifiers, bad cell values, invalid column mappings.
func BadRequest(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, fmt.Errorf(format, args...))
}

// NotFound marks operations that target an experiment or record that does
// not exist. Never silently defaulted to empty results.
func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

// Conflict marks uniqueness violations on well-formed input, e.g. creating
// an experiment whose id already exists.
func Conflict(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeConflict, fmt.Errorf(format, args...))
}

// NotImplemented marks recognized but unimplemented operations (FPKM
// computation). Distinct from BadRequest: the caller did nothing wrong.
func NotImplemented(format string, args ...interface{}) *Error {
	return New(http.StatusNotImplemented, CodeNotImplemented, fmt.Errorf(format, args...))
}

// Internal wraps storage or transaction failures. The wrapped error is logged
// by the handler but not returned to the caller.
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// From extracts an *Error from err's chain, or nil when err carries none.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	ae := From(err)
	return ae != nil && ae.Code == code
}
