package errors

import (
	"errors"
	"reflect"
)

const (
	// SuccessCode is reported for a transaction or instruction that
	// completed without an error.
	SuccessCode = 0

	// Errors that were not registered share a single internal code. Their
	// message can leak implementation details so it is replaced unless
	// debug output was requested.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// Result returns the code and the message that describe the outcome of a
// transaction to a client or a log line.
//
// Registered errors keep their message. Any other error is reported with
// code 1 and, unless debug is set, a generic "internal error" message.
func Result(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessCode, ""
	}
	if code := CodeOf(err); code != internalCode {
		return code, err.Error()
	}
	if debug {
		return internalCode, err.Error()
	}
	return internalCode, internalLog
}

type coder interface {
	Code() uint32
}

// CodeOf unwraps err until it finds a registered error and returns its
// code. Unregistered errors are internal.
func CodeOf(err error) uint32 {
	if errIsNil(err) {
		return SuccessCode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		c, ok := err.(causer)
		if !ok {
			return internalCode
		}
		err = c.Cause()
	}
}

// errIsNil returns true if value represented by the given error is nil.
//
// A typed nil, for example (*Error)(nil), is also nil.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}

// Redact replaces every error that does not originate from a registered
// error with a generic internal error. Panics are always redacted.
//
// This is a no-operation function when running in debug mode.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) || CodeOf(err) == internalCode {
		return errors.New(internalLog)
	}
	return err
}
