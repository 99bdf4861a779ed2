// Package errs defines the structured error taxonomy shared by every stage of
// the code generator.
//
// All stages return *Error values (possibly wrapped). Callers classify them
// with IsCode or errors.As:
//
//	var ge *errs.Error
//	if errors.As(err, &ge) && ge.Code == errs.NetworkError {
//	    // retry budget exhausted while fetching enum values
//	}
package errs

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Code categorizes an error for handling and messaging.
type Code string

const (
	// StructuralError: a required document section is absent.
	StructuralError Code = "StructuralError"
	// ValidationError: an IR or configuration value is invalid.
	ValidationError Code = "ValidationError"
	// IOError: a filesystem read or write failed.
	IOError Code = "IOError"
	// NetworkError: a remote fetch exhausted its retry budget.
	NetworkError Code = "NetworkError"
	// FormatError: the external formatter rejected generated text.
	FormatError Code = "FormatError"
	// SchemaShapeError: a schema variant the model parser does not understand.
	SchemaShapeError Code = "SchemaShapeError"

	// Loader codes.
	InputError      Code = "InputError"
	ParseError      Code = "ParseError"
	ConversionError Code = "ConversionError"
)

// Error is a categorized error with optional location context.
type Error struct {
	Code    Code
	Message string
	Path    string // file path, URL or IR location
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error without a cause.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf is New with formatting.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code, message and location to cause. A nil cause yields nil.
func Wrap(code Code, cause error, path, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Path: path, Cause: errors.WithStack(cause)}
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
