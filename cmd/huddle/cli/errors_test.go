// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/huddle-chat/huddle/lib/backend"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		exitCode int
		hint     bool
	}{
		{"not found", fmt.Errorf("get member: %w", backend.ErrNotFound), CategoryNotFound, 3, false},
		{"forbidden", backend.Errorf(backend.CodeForbidden, "only admins can do that"), CategoryForbidden, 4, false},
		{"unauthorized", backend.ErrUnauthorized, CategoryForbidden, 4, true},
		{"invalid", backend.ErrInvalidParam, CategoryValidation, 2, false},
		{"conflict", backend.ErrConflict, CategoryConflict, 5, false},
		{"rate limited", backend.ErrRateLimited, CategoryTransient, 6, true},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), CategoryTransient, 6, false},
		{"other", errors.New("boom"), CategoryInternal, 1, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			classified := Classify(test.err)
			var commandError *CommandError
			if !errors.As(classified, &commandError) {
				t.Fatalf("Classify() = %T, want *CommandError", classified)
			}
			if commandError.Category != test.category {
				t.Errorf("category = %q, want %q", commandError.Category, test.category)
			}
			if ExitCode(classified) != test.exitCode {
				t.Errorf("ExitCode = %d, want %d", ExitCode(classified), test.exitCode)
			}
			if (commandError.Hint != "") != test.hint {
				t.Errorf("hint = %q, want present=%v", commandError.Hint, test.hint)
			}
			if !errors.Is(classified, test.err) {
				t.Error("classified error no longer wraps the original")
			}
		})
	}

	t.Run("passthrough", func(t *testing.T) {
		original := NotFound("no such channel")
		if Classify(original) != error(original) {
			t.Error("an already classified error was rewrapped")
		}
		exit := &ExitError{Code: 1}
		if Classify(exit) != error(exit) || !Silent(exit) {
			t.Error("ExitError should pass through and stay silent")
		}
		if Classify(nil) != nil || ExitCode(nil) != 0 {
			t.Error("nil should classify to nil with exit code 0")
		}
	})
}
