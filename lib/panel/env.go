// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/clipboard"
	"github.com/huddle-chat/huddle/lib/confirm"
	"github.com/huddle-chat/huddle/lib/notify"
	"github.com/huddle-chat/huddle/lib/route"
	"github.com/huddle-chat/huddle/lib/subscription"
)

var (
	// ErrPending is returned when an action is submitted while the
	// previous submission has not finished.
	ErrPending = errors.New("panel: a submission is already in progress")

	// ErrNotPermitted is returned for actions outside the viewer's
	// capabilities. No confirmation is requested and nothing changes.
	ErrNotPermitted = errors.New("panel: action not permitted")

	// ErrDeclined is returned when the user declines a confirmation.
	ErrDeclined = errors.New("panel: confirmation declined")

	// ErrInvalidCode is returned for join codes that cannot be valid.
	ErrInvalidCode = errors.New("panel: join code must be 6 letters or digits")

	// ErrNotReady is returned by profile actions requested before both
	// members have loaded.
	ErrNotReady = errors.New("panel: still loading")

	// ErrRepliesNotImplemented is returned by ThreadPanel.Reply.
	ErrRepliesNotImplemented = errors.New("panel: thread replies are not implemented")
)

// Env is what every panel needs from its surroundings.
type Env struct {
	Backend  backend.Backend
	Registry *subscription.Registry

	Confirmer confirm.Confirmer
	Notifier  notify.Notifier
	Navigator route.Navigator
	Clipboard clipboard.Writer

	// Origin is the absolute base URL used for invite links.
	Origin string

	// PageSize is the number of messages per feed page. Zero means
	// backend.DefaultPageSize.
	PageSize int

	Logger *slog.Logger
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e Env) pageSize() int {
	if e.PageSize <= 0 {
		return backend.DefaultPageSize
	}
	return e.PageSize
}

func (e Env) notify(level notify.Level, message string) {
	if e.Notifier != nil {
		e.Notifier.Notify(level, message)
	}
}

func (e Env) push(to route.Route) {
	if e.Navigator != nil {
		e.Navigator.Push(to)
	}
}

func (e Env) replace(to route.Route) {
	if e.Navigator != nil {
		e.Navigator.Replace(to)
	}
}

// confirm asks for approval. A missing Confirmer declines.
func (e Env) confirm(ctx context.Context, title, body string) error {
	if e.Confirmer == nil {
		return ErrDeclined
	}
	accepted, err := e.Confirmer.RequestConfirmation(ctx, confirm.Prompt{Title: title, Body: body})
	if err != nil {
		return err
	}
	if !accepted {
		return ErrDeclined
	}
	return nil
}
