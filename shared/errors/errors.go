package errors

import (
	"errors"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

const (
	MsgPostingClosed   = "Posting is only allowed on weekends"
	MsgThreadNotFound  = "Thread not found"
	MsgInvalidThreadId = "Invalid thread ID"
	MsgStorageLimit    = "Storage limit reached. Posts temporarily disabled."
)

func Validation(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest}
}

func PolicyViolation() error {
	return &ErrorWithStatusCode{Message: MsgPostingClosed, StatusCode: http.StatusForbidden}
}

func NotFound(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

func ThreadNotFound() error {
	return NotFound(MsgThreadNotFound)
}

func CapacityExceeded() error {
	return &ErrorWithStatusCode{Message: MsgStorageLimit, StatusCode: http.StatusInsufficientStorage}
}

// StatusCode returns the status carried by err, or 500 for anything else.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
