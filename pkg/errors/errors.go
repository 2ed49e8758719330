// Package errors defines the coded errors langpatch reports.
//
// Every failure that decides what happens to a package carries a [Code].
// The pipeline maps codes to per-package statuses and the CLI prints
// [UserMessage] without the code prefix. Codes survive fmt.Errorf
// wrapping, so callers may add context freely:
//
//	err := errors.New(errors.ErrCodeAnchorNotFound, "no version() call in %s", class)
//	err = fmt.Errorf("zlib: %w", err)
//	errors.Is(err, errors.ErrCodeAnchorNotFound) // true
//
// Only [ErrCodeLineOutOfRange] aborts a run. It means the anchor locator
// and the patch writer disagree about the definition text.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable failure class.
type Code string

const (
	// Input that never reaches the network.
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidIndex   Code = "INVALID_INDEX"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Registry metadata that rules a package out of a run.
	ErrCodeNoUsableDigest Code = "NO_USABLE_DIGEST"
	ErrCodeNoUsableURL    Code = "NO_USABLE_URL"
	ErrCodeNoVersions     Code = "NO_VERSIONS"

	// Downloads.
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Archive inspection.
	ErrCodeFormatUnrecognized Code = "FORMAT_UNRECOGNIZED"
	ErrCodeUndecodablePath    Code = "UNDECODABLE_PATH"

	// Definition files.
	ErrCodeDefinitionNotFound Code = "DEFINITION_NOT_FOUND"
	ErrCodeAnchorNotFound     Code = "ANCHOR_NOT_FOUND"
	ErrCodeSyntax             Code = "SYNTAX_ERROR"
	ErrCodeLineOutOfRange     Code = "LINE_OUT_OF_RANGE"
)

// Error pairs a [Code] with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with a cause that stays reachable through errors.Is and
// errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns err's message without the code prefix. Errors
// without a code are returned as is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
