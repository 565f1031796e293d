package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rileyhilliard/signkey/internal/util"
)

// Error codes for categorizing errors
const (
	ErrConfig  = "CONFIG"
	ErrSpawn   = "SPAWN"   // child process failed to launch
	ErrPattern = "PATTERN" // expected prompt never showed up
	ErrExit    = "EXIT"    // child exited before the script finished
	ErrDecode  = "DECODE"  // transcript bytes are not valid text
	ErrKey     = "KEY"
)

// Error is a structured error with code, message, suggestion, and optional cause.
// It renders as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewPatternNotFound reports a prompt that did not appear before the wait ended.
func NewPatternNotFound(pattern string, cause error) *Error {
	return &Error{
		Code:       ErrPattern,
		Message:    fmt.Sprintf("Never saw %q from the key generator", pattern),
		Suggestion: "Check the command prompts with this text, or raise --timeout if it is just slow.",
		Cause:      cause,
	}
}

// NewPrematureExit reports a child that closed its output while a prompt was still expected.
func NewPrematureExit(pattern string, matched int) *Error {
	return &Error{
		Code:       ErrExit,
		Message:    fmt.Sprintf("Key generator exited before prompting for %q", pattern),
		Suggestion: fmt.Sprintf("It closed after %s. Run the command by hand to see what it expects.", util.CountNoun(matched, "answered prompt", "answered prompts")),
	}
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var skErr *Error
	if errors.As(err, &skErr) {
		return skErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost structured Error, or "" if there is none.
func CodeOf(err error) string {
	var skErr *Error
	if errors.As(err, &skErr) {
		return skErr.Code
	}
	return ""
}
