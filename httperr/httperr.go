// Package httperr attaches an HTTP status code, and optionally a message safe
// to show to users, to an error.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	code int
	// msg is shown to the user, err is only logged.
	msg string
	err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %v", e.code, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// WithMessage sets the message returned to the user, instead of the default
// text for the status code.
func (e *Error) WithMessage(msg string) *Error {
	e.msg = msg
	return e
}

func newErr(code int, format string, args ...interface{}) *Error {
	return &Error{code: code, err: fmt.Errorf(format, args...)}
}

func BadRequest(format string, args ...interface{}) *Error {
	return newErr(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newErr(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newErr(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newErr(http.StatusNotFound, format, args...)
}

func MethodNotAllowed(format string, args ...interface{}) *Error {
	return newErr(http.StatusMethodNotAllowed, format, args...)
}

func Internal(format string, args ...interface{}) *Error {
	return newErr(http.StatusInternalServerError, format, args...)
}

// Extract returns the status code and user-facing message for err. Errors that
// didn't come from this package are internal server errors, and their details
// aren't shown.
func Extract(err error) (int, string) {
	var herr *Error
	if !errors.As(err, &herr) {
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
	if herr.msg != "" {
		return herr.code, herr.msg
	}
	return herr.code, http.StatusText(herr.code)
}
