package protocol

import (
	"fmt"
)

// Error is a protocol error caused by a malformed or unknown command line.
// It concerns a single line and never requires closing the connection.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "protocol error: " + e.Reason
}

func newError(format string, args ...interface{}) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

var (
	ErrEmptyLine        = &Error{Reason: "empty line"}
	ErrEmptyKey         = &Error{Reason: "empty key"}
	ErrLineTooLong      = &Error{Reason: "line too long"}
	ErrUnterminatedLine = &Error{Reason: "unterminated line"}
)
