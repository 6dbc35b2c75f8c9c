// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/chatstore"
	"github.com/huddle-chat/huddle/lib/clipboard"
	"github.com/huddle-chat/huddle/lib/confirm"
	"github.com/huddle-chat/huddle/lib/notify"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/route"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/subscription"
)

// harness is an Env for one viewer with recording collaborators.
type harness struct {
	env       Env
	confirmer *confirm.Script
	notes     *notify.Recorder
	history   *route.History
	clipboard *clipboard.Memory
}

// newHarness starts a registry watching viewer. answers script the
// confirmation prompts in order; unscripted prompts are declined.
func newHarness(t *testing.T, viewer backend.Backend, start route.Route, answers ...bool) *harness {
	t.Helper()
	registry := subscription.New(subscription.Config{Watcher: viewer})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- registry.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Run: %v", err)
		}
	})

	h := &harness{
		confirmer: confirm.NewScript(answers...),
		notes:     &notify.Recorder{},
		history:   route.NewHistory(start),
		clipboard: &clipboard.Memory{},
	}
	h.env = Env{
		Backend:   viewer,
		Registry:  registry,
		Confirmer: h.confirmer,
		Notifier:  h.notes,
		Navigator: h.history,
		Clipboard: h.clipboard,
		Origin:    "https://huddle.example",
		PageSize:  2,
	}
	return h
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:realclock test hang prevention
	t.Cleanup(cancel)
	return ctx
}

// eventually waits until condition holds, re-checking it whenever any
// of the channels returned by changed closes.
func eventually(t *testing.T, changed func() []<-chan struct{}, condition func() bool, description string) {
	t.Helper()
	deadline := time.After(5 * time.Second) //nolint:realclock test hang prevention
	for {
		signals := changed()
		if condition() {
			return
		}
		cases := []reflect.SelectCase{{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(deadline)}}
		for _, signal := range signals {
			cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(signal)})
		}
		if chosen, _, _ := reflect.Select(cases); chosen == 0 {
			t.Fatalf("timed out waiting for %s", description)
		}
	}
}

func channels(signals ...func() <-chan struct{}) func() []<-chan struct{} {
	return func() []<-chan struct{} {
		out := make([]<-chan struct{}, len(signals))
		for i, signal := range signals {
			out[i] = signal()
		}
		return out
	}
}

func requireMessages(t *testing.T, notes *notify.Recorder, want ...string) {
	t.Helper()
	if got := notes.Messages(); !slices.Equal(got, want) {
		t.Fatalf("notifications = %q, want %q", got, want)
	}
}

func requireEntries(t *testing.T, history *route.History, want ...route.Route) {
	t.Helper()
	if got := history.Entries(); !slices.Equal(got, want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
}

// counting wraps a backend and counts mutations.
type counting struct {
	backend.Backend
	mutations int
}

func (c *counting) Join(ctx context.Context, id ref.WorkspaceID, code string) (ref.WorkspaceID, error) {
	c.mutations++
	return c.Backend.Join(ctx, id, code)
}

func (c *counting) NewJoinCode(ctx context.Context, id ref.WorkspaceID) (ref.WorkspaceID, error) {
	c.mutations++
	return c.Backend.NewJoinCode(ctx, id)
}

func (c *counting) UpdateMember(ctx context.Context, id ref.MemberID, role schema.Role) (ref.MemberID, error) {
	c.mutations++
	return c.Backend.UpdateMember(ctx, id, role)
}

func (c *counting) RemoveMember(ctx context.Context, id ref.MemberID) (ref.MemberID, error) {
	c.mutations++
	return c.Backend.RemoveMember(ctx, id)
}

func (c *counting) CreateMessage(ctx context.Context, request backend.CreateMessageRequest) (ref.MessageID, error) {
	c.mutations++
	return c.Backend.CreateMessage(ctx, request)
}

var _ backend.Backend = (*chatstore.Viewer)(nil)
