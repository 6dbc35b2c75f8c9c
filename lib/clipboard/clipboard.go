// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package clipboard writes text to the user's clipboard.
//
// [OSC52] asks the terminal emulator to set the clipboard through an
// escape sequence, which works over SSH and inside tmux. [System] uses
// the host's clipboard tools. [Fallback] tries each in turn.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by OSC52 when its output is not a
// terminal that could interpret the escape sequence.
var ErrNotTerminal = errors.New("clipboard: output is not a terminal")

// Writer stores text on a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// OSC52 copies through the terminal. Out defaults to stdout.
type OSC52 struct {
	Out io.Writer
}

func (o OSC52) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := o.Out
	if out == nil {
		out = os.Stdout
	}
	if file, ok := out.(*os.File); ok && !term.IsTerminal(int(file.Fd())) {
		return ErrNotTerminal
	}
	termenv.NewOutput(out).Copy(text)
	return nil
}

// System copies with the platform clipboard utility (pbcopy, xclip,
// xsel, wl-copy, or the Windows API).
type System struct{}

func (System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return errors.New("clipboard: no system clipboard utility found")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: system clipboard: %w", err)
	}
	return nil
}

// Fallback tries each writer until one succeeds and returns every
// error when none does.
func Fallback(writers ...Writer) Writer {
	return fallback(writers)
}

type fallback []Writer

func (f fallback) WriteText(ctx context.Context, text string) error {
	var errs []error
	for _, writer := range f {
		err := writer.WriteText(ctx, text)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return errors.New("clipboard: no clipboard configured")
	}
	return errors.Join(errs...)
}

// Memory is an in-process clipboard. Set Err to make writes fail.
type Memory struct {
	mu   sync.Mutex
	text string
	Err  error
}

func (m *Memory) WriteText(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.text = text
	return nil
}

// Text returns the last successful write.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
