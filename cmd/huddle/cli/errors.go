// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/huddle-chat/huddle/lib/backend"
)

// ErrorCategory classifies command errors so that scripts can branch on
// the exit status without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation means the caller provided invalid input and
	// should fix it before retrying.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound means a referenced workspace, member, channel,
	// or message does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden means the viewer lacks permission or has no
	// valid session.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict means the operation conflicts with existing
	// state, such as registering an email twice.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient means a temporary failure: network error,
	// timeout, or rate limit. Retrying later may succeed.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal means an unexpected failure.
	CategoryInternal ErrorCategory = "internal"
)

// exitCodes maps each category to a process exit status.
var exitCodes = map[ErrorCategory]int{
	CategoryInternal:   1,
	CategoryValidation: 2,
	CategoryNotFound:   3,
	CategoryForbidden:  4,
	CategoryConflict:   5,
	CategoryTransient:  6,
}

// CommandError is a categorized error returned by commands. It wraps
// the underlying error so errors.Is and errors.As still see the chain.
type CommandError struct {
	Category ErrorCategory
	Err      error

	// Hint is an optional next step printed after the message.
	Hint string
}

func (e *CommandError) Error() string { return e.Err.Error() }

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode returns the exit status for the error's category.
func (e *CommandError) ExitCode() int {
	if code, ok := exitCodes[e.Category]; ok {
		return code
	}
	return 1
}

// WithHint returns e with a hint attached.
func (e *CommandError) WithHint(format string, args ...any) *CommandError {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// Classify wraps err in a CommandError whose category follows the
// backend error code, network failure, or deadline found in its chain.
// Errors that are already classified, ExitErrors, and nil pass through
// unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var commandError *CommandError
	if errors.As(err, &commandError) {
		return err
	}
	var exitError *ExitError
	if errors.As(err, &exitError) {
		return err
	}

	var backendError *backend.Error
	if errors.As(err, &backendError) {
		switch backendError.Code {
		case backend.CodeNotFound:
			return &CommandError{Category: CategoryNotFound, Err: err}
		case backend.CodeForbidden:
			return &CommandError{Category: CategoryForbidden, Err: err}
		case backend.CodeUnauthorized:
			return (&CommandError{Category: CategoryForbidden, Err: err}).
				WithHint("run 'huddle login' to start a new session")
		case backend.CodeInvalidParam:
			return &CommandError{Category: CategoryValidation, Err: err}
		case backend.CodeConflict:
			return &CommandError{Category: CategoryConflict, Err: err}
		case backend.CodeRateLimited:
			return (&CommandError{Category: CategoryTransient, Err: err}).
				WithHint("wait a moment and try again")
		}
		return &CommandError{Category: CategoryInternal, Err: err}
	}

	var netError net.Error
	if errors.As(err, &netError) || errors.Is(err, context.DeadlineExceeded) {
		return &CommandError{Category: CategoryTransient, Err: err}
	}
	return &CommandError{Category: CategoryInternal, Err: err}
}
