package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries the HTTP status a data manager or service failure should surface as.
type Error struct {
	Status int
	Code   string
	Err    error
}

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

// Newf builds an Error whose message is formatted like fmt.Errorf.
func Newf(status int, code string, format string, args ...any) *Error {
	return &Error{Status: status, Code: code, Err: fmt.Errorf(format, args...)}
}

func Unauthenticated(msg string) *Error {
	return New(http.StatusUnauthorized, "unauthenticated", errors.New(msg))
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, "not_found", errors.New(msg))
}

func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, "bad_request", errors.New(msg))
}

func Conflict(msg string) *Error {
	return New(http.StatusConflict, "conflict", errors.New(msg))
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// StatusOf returns the status carried by err, or 500 when it carries none.
func StatusOf(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}
