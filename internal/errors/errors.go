// Package errors provides the coded error type used throughout keel.
package errors

import (
	"fmt"

	"github.com/keeldata/keel/codes"
)

// Error is the error type returned by keel operations. It carries a
// category code alongside the message so callers can branch on the
// category without matching message text.
type Error struct {
	// Code is the category of this error.
	Code codes.Code

	// Msg is a human readable message.
	Msg string

	// Err is a wrapped error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Msg != "" && e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	} else if e.Msg != "" {
		return e.Msg
	} else if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an error with the given code and message.
func New(code codes.Code, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// Newf constructs an error with the given code and a formatted message.
func Newf(code codes.Code, format string, args ...interface{}) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with the given code and message. If the code is
// codes.Inherit, the wrapped error keeps the code of err.
func Wrap(err error, code codes.Code, msg string) error {
	if code == codes.Inherit {
		code = Code(err)
	}
	return &Error{Code: code, Msg: msg, Err: err}
}

// Wrapf wraps err with the given code and a formatted message.
func Wrapf(err error, code codes.Code, format string, args ...interface{}) error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Code returns the code of err, or codes.Internal when err carries no
// code. A nil error has code codes.Inherit.
func Code(err error) codes.Code {
	if err == nil {
		return codes.Inherit
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return codes.Internal
}
