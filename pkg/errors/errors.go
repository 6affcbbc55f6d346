// Package errors provides structured error types for dagedit.
//
// Every rejection produced by the editing core carries a machine-readable
// [Code], so hosts can branch on the reason without string matching:
//   - Structural rejections from validation (cycle, depth, fan-in, ...)
//   - Collapse/expand misuse on the wrong node
//   - History underflow, which callers usually ignore
//   - Host-level input and layout failures
//
// # Recoverability
//
// All codes in the editing taxonomy are recoverable: a rejected change leaves
// the graph untouched and the caller may simply report it. [IsRecoverable]
// distinguishes those from host-level failures such as [ErrCodeInternal].
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCycleRejected, "edge %s -> %s closes a cycle", src, dst)
//	if errors.Is(err, errors.ErrCodeCycleRejected) {
//	    // tell the user, nothing to roll back
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCustomValidation, cause, "predicate failed for %s", dst)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the editing taxonomy.
const (
	// Validation rejections
	ErrCodeNodeNotFound       Code = "NODE_NOT_FOUND"
	ErrCodeDuplicateEdge      Code = "DUPLICATE_EDGE"
	ErrCodeSelfLoopRejected   Code = "SELF_LOOP_REJECTED"
	ErrCodeCycleRejected      Code = "CYCLE_REJECTED"
	ErrCodeMaxParentsExceeded Code = "MAX_PARENTS_EXCEEDED"
	ErrCodeMaxDepthExceeded   Code = "MAX_DEPTH_EXCEEDED"
	ErrCodeCustomValidation   Code = "CUSTOM_VALIDATION_REJECTED"
	ErrCodeNothingToUndo      Code = "NOTHING_TO_UNDO"
	ErrCodeNothingToRedo      Code = "NOTHING_TO_REDO"
	ErrCodeCannotCollapseLeaf Code = "CANNOT_COLLAPSE_LEAF"
	ErrCodeAlreadyCollapsed   Code = "ALREADY_COLLAPSED"
	ErrCodeNotCollapsed       Code = "NOT_COLLAPSED"
	ErrCodeDuplicateNode      Code = "DUPLICATE_NODE"
	ErrCodeInvalidNodeID      Code = "INVALID_NODE_ID"
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidGraph       Code = "INVALID_GRAPH"
	ErrCodeLayoutFailed       Code = "LAYOUT_FAILED"
	ErrCodeInternal           Code = "INTERNAL_ERROR"
	ErrCodeUnsupported        Code = "UNSUPPORTED"
	ErrCodeConfigInvalid      Code = "INVALID_CONFIG"
)

// recoverable lists the codes of the editing taxonomy. Errors carrying one of
// these never leave the graph partially mutated.
var recoverable = map[Code]bool{
	ErrCodeNodeNotFound:       true,
	ErrCodeDuplicateEdge:      true,
	ErrCodeSelfLoopRejected:   true,
	ErrCodeCycleRejected:      true,
	ErrCodeMaxParentsExceeded: true,
	ErrCodeMaxDepthExceeded:   true,
	ErrCodeCustomValidation:   true,
	ErrCodeNothingToUndo:      true,
	ErrCodeNothingToRedo:      true,
	ErrCodeCannotCollapseLeaf: true,
	ErrCodeAlreadyCollapsed:   true,
	ErrCodeNotCollapsed:       true,
	ErrCodeDuplicateNode:      true,
	ErrCodeInvalidNodeID:      true,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsRecoverable reports whether err belongs to the editing taxonomy, i.e.
// a rejection the caller can report and move on from.
func IsRecoverable(err error) bool {
	return recoverable[GetCode(err)]
}

// IsHistoryUnderflow reports whether err signals an empty undo or redo stack.
// Hosts usually ignore these silently.
func IsHistoryUnderflow(err error) bool {
	code := GetCode(err)
	return code == ErrCodeNothingToUndo || code == ErrCodeNothingToRedo
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
