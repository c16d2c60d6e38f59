package qtree

import (
	"errors"
	"fmt"
)

// ErrCode identifies the class of a qtree error.
type ErrCode int

const (
	// ErrCodeInvalidRegion indicates a region with ne <= sw on some axis.
	ErrCodeInvalidRegion ErrCode = iota + 1
	// ErrCodeInvalidBucketSize indicates a bucket size of 0.
	ErrCodeInvalidBucketSize
	// ErrCodeOutOfRegion indicates an inserted item lies outside the builder's region.
	ErrCodeOutOfRegion
	// ErrCodeIO wraps an underlying file I/O failure during dump or load.
	ErrCodeIO
	// ErrCodeCorrupted indicates a finalized buffer too short for its own header.
	ErrCodeCorrupted
	// ErrCodeInvalidFormat indicates a header that fails validation.
	ErrCodeInvalidFormat
	// ErrCodeInvalidMagic indicates a header with the wrong magic number.
	ErrCodeInvalidMagic
	// ErrCodeUnsupportedVersion indicates a header with an unrecognised version.
	ErrCodeUnsupportedVersion
)

var errCodeMessages = map[ErrCode]string{
	ErrCodeInvalidRegion:      "invalid region",
	ErrCodeInvalidBucketSize:  "invalid bucket size",
	ErrCodeOutOfRegion:        "item outside builder region",
	ErrCodeIO:                 "i/o failure",
	ErrCodeCorrupted:          "corrupted finalized tree",
	ErrCodeInvalidFormat:      "invalid file format",
	ErrCodeInvalidMagic:       "invalid magic number",
	ErrCodeUnsupportedVersion: "unsupported version",
}

// Error is the error type returned by every exported qtree operation.
//
// The original C library treated all of these as fatal (assert/abort or
// exit(1)); this is the modernization spec.md §7 calls for: errors as
// values, termination policy left to the caller.
type Error struct {
	Code    ErrCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("qtree: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("qtree: %s", e.Message)
}

// Unwrap supports errors.Is and errors.As against e.Cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError builds an *Error from a code and an optional underlying cause.
func NewError(code ErrCode, cause error) *Error {
	msg, ok := errCodeMessages[code]
	if !ok {
		msg = "unknown error"
	}
	return &Error{Code: code, Message: msg, Cause: cause}
}

// NewErrorf builds an *Error with a formatted message. If the final
// argument is an error, it becomes the Cause and is stripped from the
// formatted message.
func NewErrorf(code ErrCode, format string, args ...any) *Error {
	var cause error
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			cause = err
			args = args[:len(args)-1]
		}
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf returns the ErrCode carried by err, or 0 if err is not a *Error.
func CodeOf(err error) ErrCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsCode reports whether err carries the given ErrCode.
func IsCode(err error, code ErrCode) bool {
	return CodeOf(err) == code
}
