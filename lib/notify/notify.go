// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify carries short-lived user notifications ("Member
// removed successfully.") from panels to whatever surface displays
// them: stderr for the CLI, the status line for the terminal viewer.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/huddle-chat/huddle/lib/clock"
)

// Level classifies a notification.
type Level int

const (
	Info Level = iota
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is one message shown to the user.
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives notifications.
type Notifier interface {
	Notify(level Level, message string)
}

// Func adapts a function to Notifier.
type Func func(level Level, message string)

func (f Func) Notify(level Level, message string) { f(level, message) }

// Writer prints each notification on its own line.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter returns a Notifier that prints to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Notify(level Level, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if level == Error {
		fmt.Fprintf(w.out, "error: %s\n", message)
		return
	}
	fmt.Fprintln(w.out, message)
}

// Log returns a Notifier that records notifications as log entries.
func Log(logger *slog.Logger) Notifier {
	return Func(func(level Level, message string) {
		if level == Error {
			logger.Warn("notification", "level", level.String(), "message", message)
			return
		}
		logger.Info("notification", "level", level.String(), "message", message)
	})
}

// Tee forwards every notification to each notifier in order.
func Tee(notifiers ...Notifier) Notifier {
	return Func(func(level Level, message string) {
		for _, notifier := range notifiers {
			notifier.Notify(level, message)
		}
	})
}

// DefaultTTL is how long a Center shows a notification.
const DefaultTTL = 4 * time.Second

// Center keeps recent notifications until they expire.
type Center struct {
	clock clock.Clock
	ttl   time.Duration

	mu      sync.Mutex
	entries []Notification
	changed chan struct{}
}

// NewCenter creates a Center. A nil clock means the real clock and a
// non-positive ttl means DefaultTTL.
func NewCenter(c clock.Clock, ttl time.Duration) *Center {
	if c == nil {
		c = clock.Real()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{clock: c, ttl: ttl, changed: make(chan struct{})}
}

func (c *Center) Notify(level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Notification{Level: level, Message: message, At: c.clock.Now()})
	close(c.changed)
	c.changed = make(chan struct{})
}

// Active returns the unexpired notifications, oldest first, and drops
// the expired ones.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	kept := c.entries[:0]
	for _, entry := range c.entries {
		if now.Sub(entry.At) < c.ttl {
			kept = append(kept, entry)
		}
	}
	c.entries = kept
	return append([]Notification(nil), kept...)
}

// Latest returns the newest unexpired notification.
func (c *Center) Latest() (Notification, bool) {
	active := c.Active()
	if len(active) == 0 {
		return Notification{}, false
	}
	return active[len(active)-1], true
}

// Changed returns a channel closed at the next Notify.
func (c *Center) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Recorder keeps every notification. Tests use it to assert on the
// exact messages a panel emits.
type Recorder struct {
	mu      sync.Mutex
	entries []Notification
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Notification{Level: level, Message: message})
}

// All returns the recorded notifications in order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.entries...)
}

// Messages returns "level: message" strings in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	messages := make([]string, len(r.entries))
	for i, entry := range r.entries {
		messages[i] = entry.Level.String() + ": " + entry.Message
	}
	return messages
}
