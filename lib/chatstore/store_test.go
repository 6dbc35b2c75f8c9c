// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/clock"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/testutil"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *Store
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fakeClock := clock.Fake(epoch)
	store, err := Open(Config{
		Path:         testutil.DatabasePath(t),
		PasswordCost: bcrypt.MinCost,
		Clock:        fakeClock,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return &fixture{store: store, clock: fakeClock}
}

// register creates an account and returns its viewer.
func (f *fixture) register(t *testing.T, name string) *Viewer {
	t.Helper()
	user, _, err := f.store.Register(context.Background(), Registration{
		Name:     name,
		Email:    testutil.UniqueEmail(name),
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", name, err)
	}
	return f.store.As(user.ID)
}

// workspace creates a workspace owned by admin and returns its ID and
// the admin's member record.
func (f *fixture) workspace(t *testing.T, admin *Viewer, name string) (ref.WorkspaceID, *schema.Member) {
	t.Helper()
	ctx := context.Background()
	workspaceID, err := admin.CreateWorkspace(ctx, name)
	if err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}
	member, err := admin.GetCurrentMember(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetCurrentMember: %v", err)
	}
	return workspaceID, member
}

// join adds viewer to a workspace using its current code.
func (f *fixture) join(t *testing.T, admin, viewer *Viewer, workspaceID ref.WorkspaceID) *schema.Member {
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

// generalChannel returns the channel every workspace starts with.
func (f *fixture) generalChannel(t *testing.T, viewer *Viewer, workspaceID ref.WorkspaceID) ref.ChannelID {
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

// post creates a message and advances the clock so that successive
// posts have distinct timestamps.
func (f *fixture) post(t *testing.T, viewer *Viewer, request backend.CreateMessageRequest) ref.MessageID {
	t.Helper()
	id, err := viewer.CreateMessage(context.Background(), request)
	if err != nil {
		t.Fatalf("CreateMessage(%q): %v", request.Body, err)
	}
	f.clock.Advance(time.Second)
	return id
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	if !backend.IsCode(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, token, err := f.store.Register(ctx, Registration{
		Name:     "Ada",
		Email:    " Ada@Example.com ",
		Password: "analytical",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Email = %q, want normalized address", user.Email)
	}

	authenticated, err := f.store.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if authenticated != user.ID {
		t.Errorf("Authenticate = %s, want %s", authenticated, user.ID)
	}

	_, _, err = f.store.Register(ctx, Registration{Name: "Imposter", Email: "ada@example.com", Password: "analytical"})
	requireCode(t, err, backend.CodeConflict)

	_, _, err = f.store.Register(ctx, Registration{Name: "Short", Email: "short@example.com", Password: "abc"})
	requireCode(t, err, backend.CodeInvalidParam)

	_, _, err = f.store.Login(ctx, "ada@example.com", "wrong password")
	requireCode(t, err, backend.CodeUnauthorized)

	_, _, err = f.store.Login(ctx, "nobody@example.com", "analytical")
	requireCode(t, err, backend.CodeUnauthorized)

	loggedIn, second, err := f.store.Login(ctx, "ADA@example.com", "analytical")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID || second == token {
		t.Errorf("Login returned user %s token reuse %v", loggedIn.ID, second == token)
	}

	if err := f.store.Logout(ctx, token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	_, err = f.store.Authenticate(ctx, token)
	requireCode(t, err, backend.CodeUnauthorized)
	if _, err := f.store.Authenticate(ctx, second); err != nil {
		t.Errorf("other session should survive logout: %v", err)
	}
}

func TestUnknownViewerIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	ghost := f.store.As(ref.NewUserID())

	_, err := ghost.CurrentUser(context.Background())
	requireCode(t, err, backend.CodeUnauthorized)
	_, err = ghost.CreateWorkspace(context.Background(), "Haunted")
	requireCode(t, err, backend.CodeUnauthorized)
}
