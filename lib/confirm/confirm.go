// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package confirm asks the user to approve destructive actions.
//
// Panels depend only on [Confirmer]. The CLI answers with [Terminal],
// the terminal viewer with a [Queue] drained by its modal, and tests
// with [Always] or [Script].
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ErrNoTerminal is returned by Terminal when it must prompt but its
// input is not an interactive terminal.
var ErrNoTerminal = errors.New("confirm: no terminal available for confirmation (pass --yes to accept)")

// Prompt is the question shown to the user.
type Prompt struct {
	Title string
	Body  string
}

// Confirmer obtains a yes/no decision. A false result with a nil error
// means the user declined.
type Confirmer interface {
	RequestConfirmation(ctx context.Context, prompt Prompt) (bool, error)
}

// Func adapts a function to Confirmer.
type Func func(ctx context.Context, prompt Prompt) (bool, error)

func (f Func) RequestConfirmation(ctx context.Context, prompt Prompt) (bool, error) {
	return f(ctx, prompt)
}

// Always returns a Confirmer that answers every prompt with decision.
func Always(decision bool) Confirmer {
	return Func(func(context.Context, Prompt) (bool, error) { return decision, nil })
}

// Terminal prompts on a line-oriented terminal.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	// AssumeYes accepts every prompt without asking.
	AssumeYes bool
}

// RequestConfirmation writes the prompt and reads one line. Only "y"
// and "yes" (any case) accept.
func (t *Terminal) RequestConfirmation(ctx context.Context, prompt Prompt) (bool, error) {
	if t.AssumeYes {
		return true, nil
	}
	in := t.In
	if in == nil {
		in = os.Stdin
	}
	out := t.Out
	if out == nil {
		out = os.Stderr
	}
	if file, ok := in.(*os.File); ok && !term.IsTerminal(int(file.Fd())) {
		return false, ErrNoTerminal
	}

	if prompt.Title != "" {
		fmt.Fprintln(out, prompt.Title)
	}
	fmt.Fprintf(out, "%s [y/N]: ", prompt.Body)

	answer := make(chan string, 1)
	failed := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			failed <- err
			return
		}
		answer <- line
	}()
	select {
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	case err := <-failed:
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("confirm: reading answer: %w", err)
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Request is one pending confirmation in a Queue.
type Request struct {
	Prompt Prompt
	answer chan bool
}

// Answer resolves the request. Only the first answer counts.
func (r *Request) Answer(accepted bool) {
	select {
	case r.answer <- accepted:
	default:
	}
}

// Queue hands prompts to an asynchronous UI. RequestConfirmation blocks
// until the UI answers the Request it receives from Requests, or until
// ctx ends.
type Queue struct {
	requests chan *Request
}

// NewQueue creates a Queue.
func NewQueue() *Queue {
	return &Queue{requests: make(chan *Request)}
}

// Requests delivers pending prompts to the UI.
func (q *Queue) Requests() <-chan *Request {
	return q.requests
}

func (q *Queue) RequestConfirmation(ctx context.Context, prompt Prompt) (bool, error) {
	request := &Request{Prompt: prompt, answer: make(chan bool, 1)}
	select {
	case q.requests <- request:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case accepted := <-request.answer:
		return accepted, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Script answers prompts from a fixed list and records them. Prompts
// beyond the list are declined.
type Script struct {
	mu      sync.Mutex
	answers []bool
	prompts []Prompt
}

// NewScript creates a Script that gives answers in order.
func NewScript(answers ...bool) *Script {
	return &Script{answers: answers}
}

func (s *Script) RequestConfirmation(_ context.Context, prompt Prompt) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return false, nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Prompts returns every prompt seen so far.
func (s *Script) Prompts() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Prompt(nil), s.prompts...)
}
