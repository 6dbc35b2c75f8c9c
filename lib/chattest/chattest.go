// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package chattest builds populated reference backends for tests in
// other packages. Each Fixture owns a fresh SQLite store in a temp
// directory and a fake clock, so message timestamps are deterministic.
package chattest

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/chatstore"
	"github.com/huddle-chat/huddle/lib/clock"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/testutil"
)

// Epoch is the fake clock's starting time.
var Epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Password is the password of every account a Fixture registers.
const Password = "correct horse battery"

// Fixture is a reference backend with helpers for populating it.
type Fixture struct {
	Store *chatstore.Store
	Clock *clock.FakeClock
}

// New opens an empty store that is closed when the test ends.
func New(t *testing.T) *Fixture {
	t.Helper()
	fakeClock := clock.Fake(Epoch)
	store, err := chatstore.Open(chatstore.Config{
		Path:         testutil.DatabasePath(t),
		PasswordCost: bcrypt.MinCost,
		Clock:        fakeClock,
	})
	if err != nil {
		t.Fatalf("chatstore.Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("chatstore.Close: %v", err)
		}
	})
	return &Fixture{Store: store, Clock: fakeClock}
}

// Register creates an account named name and returns its viewer.
func (f *Fixture) Register(t *testing.T, name string) *chatstore.Viewer {
	t.Helper()
	user, _, err := f.Store.Register(context.Background(), chatstore.Registration{
		Name:     name,
		Email:    testutil.UniqueEmail(name),
		Password: Password,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", name, err)
	}
	return f.Store.As(user.ID)
}

// Workspace creates a workspace owned by admin and returns it with the
// admin's member record.
func (f *Fixture) Workspace(t *testing.T, admin *chatstore.Viewer, name string) (*schema.Workspace, *schema.Member) {
	t.Helper()
	ctx := context.Background()
	workspaceID, err := admin.CreateWorkspace(ctx, name)
	if err != nil {
		t.Fatalf("CreateWorkspace(%s): %v", name, err)
	}
	workspace, err := admin.GetWorkspace(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetWorkspace: %v", err)
	}
	member, err := admin.GetCurrentMember(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetCurrentMember: %v", err)
	}
	return workspace, member
}

// Join adds viewer to a workspace with its current join code.
func (f *Fixture) Join(t *testing.T, admin, viewer *chatstore.Viewer, workspaceID ref.WorkspaceID) *schema.Member {
	t.Helper()
	ctx := context.Background()
	workspace, err := admin.GetWorkspace(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetWorkspace: %v", err)
	}
	if _, err := viewer.Join(ctx, workspaceID, workspace.JoinCode); err != nil {
		t.Fatalf("Join: %v", err)
	}
	member, err := viewer.GetCurrentMember(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetCurrentMember: %v", err)
	}
	return member
}

// General returns the channel every workspace starts with.
func (f *Fixture) General(t *testing.T, viewer *chatstore.Viewer, workspaceID ref.WorkspaceID) ref.ChannelID {
	t.Helper()
	channels, err := viewer.ListChannels(context.Background(), workspaceID)
	if err != nil {
		t.Fatalf("ListChannels: %v", err)
	}
	for _, channel := range channels {
		if channel.Name == "general" {
			return channel.ID
		}
	}
	t.Fatalf("workspace %s has no general channel", workspaceID)
	return ref.ChannelID{}
}

// Post creates a message and advances the clock one second so that
// successive posts have distinct timestamps.
func (f *Fixture) Post(t *testing.T, viewer *chatstore.Viewer, request backend.CreateMessageRequest) ref.MessageID {
	t.Helper()
	id, err := viewer.CreateMessage(context.Background(), request)
	if err != nil {
		t.Fatalf("CreateMessage(%q): %v", request.Body, err)
	}
	f.Clock.Advance(time.Second)
	return id
}

// AdvanceWhenWaiting blocks until the clock holds more than pending
// waiters, then advances it by d. Long-poll tests use it to expire a
// watch once the watch has registered its timeout.
func (f *Fixture) AdvanceWhenWaiting(t *testing.T, pending int, d time.Duration) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for f.Clock.PendingWaiters() <= pending {
		if time.Now().After(deadline) {
			t.Fatalf("no clock waiter registered beyond %d", pending)
		}
		time.Sleep(time.Millisecond)
	}
	f.Clock.Advance(d)
}

// RequireCode fails the test unless err carries the backend error code.
func RequireCode(t *testing.T, err error, code string) {
	t.Helper()
	if !backend.IsCode(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}
