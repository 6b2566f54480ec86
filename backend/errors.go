package backend

import (
	"errors"
	"fmt"
)

// ErrNotConfirmed is returned by destructive operations called without confirmation.
var ErrNotConfirmed = errors.New("destructive action not confirmed")

// ValidationError reports a missing or rejected input detected before any request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NetworkError wraps a transport failure: the backend could not be reached
// or the connection broke before a response was read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response. Msg is the body's message field, if any.
type ServerError struct {
	Status int
	Msg    string
}

func (e *ServerError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Msg)
}

// ParseError is a response body that is not valid JSON.
type ParseError struct {
	Status int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response (status %d): %v", e.Status, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UserMessage converts err into the text shown to the operator. Server-provided
// messages win; everything else falls back to fallback.
func UserMessage(err error, fallback string) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Msg
	}
	var serr *ServerError
	if errors.As(err, &serr) && serr.Msg != "" {
		return serr.Msg
	}
	return fallback
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var nerr *NetworkError
	return errors.As(err, &nerr)
}
