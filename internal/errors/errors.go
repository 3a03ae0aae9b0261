package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies a conversion failure class. Codes are stable strings so
// log pipelines and tests can key on them.
type Code string

const (
	// CodeConfiguration covers startup problems such as an unreadable or
	// incomplete reference workbook. Fatal before any worksheet runs.
	CodeConfiguration Code = "CONFIGURATION_ERROR"
	// CodeInputNotFound means the input spreadsheet path does not exist.
	CodeInputNotFound Code = "INPUT_NOT_FOUND"
	// CodeSchemaViolation means a designated sheet is missing reference
	// columns or carries misspelled ones. The sheet is not persisted and
	// the run aborts.
	CodeSchemaViolation Code = "SCHEMA_VIOLATION"
	// CodeSchemaWarning means a designated sheet only has genuinely extra
	// columns. The sheet is persisted as-is; non-fatal.
	CodeSchemaWarning Code = "SCHEMA_WARNING"
	// CodeMissingDesignatedSheet means a designated sheet kind never
	// occurred in the input. Reported at end of run; non-fatal.
	CodeMissingDesignatedSheet Code = "MISSING_DESIGNATED_SHEET"
)

// ConversionError is the coded error type crossing component boundaries.
// Details carries structured payload (offending column names, paths) for
// logs and diagnostics.
type ConversionError struct {
	Code    Code
	Message string
	Details any
	Err     error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is/As chains.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// New creates a ConversionError with the given code and message.
func New(code Code, message string) *ConversionError {
	return &ConversionError{Code: code, Message: message}
}

// NewWithDetails creates a ConversionError carrying a structured payload.
func NewWithDetails(code Code, message string, details any) *ConversionError {
	return &ConversionError{Code: code, Message: message, Details: details}
}

// Wrap creates a ConversionError around an underlying cause.
func Wrap(code Code, message string, err error) *ConversionError {
	return &ConversionError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the conversion code from an error chain, or "".
func CodeOf(err error) Code {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsCode reports whether the error chain contains a ConversionError with
// the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// Configuration wraps a startup failure.
func Configuration(message string, err error) *ConversionError {
	return Wrap(CodeConfiguration, message, err)
}

// InputNotFound reports a missing input spreadsheet.
func InputNotFound(path string) *ConversionError {
	return NewWithDetails(CodeInputNotFound, fmt.Sprintf("input file %s does not exist", path), path)
}

// SchemaViolation reports a designated sheet whose schema cannot be
// reconciled. The details payload is the reconciliation outcome.
func SchemaViolation(sheet string, details any) *ConversionError {
	return NewWithDetails(CodeSchemaViolation, fmt.Sprintf("schema validation failed for sheet %q", sheet), details)
}

// SchemaWarning reports a designated sheet persisted despite carrying
// columns the reference does not know.
func SchemaWarning(sheet string, extra []string) *ConversionError {
	return NewWithDetails(CodeSchemaWarning,
		fmt.Sprintf("sheet %q has extra columns: %s", sheet, strings.Join(extra, ", ")), extra)
}

// MissingDesignatedSheet reports designated sheet kinds absent from the
// input workbook.
func MissingDesignatedSheet(kinds []string) *ConversionError {
	return NewWithDetails(CodeMissingDesignatedSheet,
		fmt.Sprintf("input workbook has no %s sheet", joinAnd(kinds)), kinds)
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		out := items[0]
		for _, item := range items[1 : len(items)-1] {
			out += ", " + item
		}
		return out + " and " + items[len(items)-1]
	}
}
