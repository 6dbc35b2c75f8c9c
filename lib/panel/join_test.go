// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/chattest"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/route"
)

func TestJoinView(t *testing.T) {
	f := chattest.New(t)
	admin := f.Register(t, "Ada")
	bob := f.Register(t, "Bob")
	workspace, _ := f.Workspace(t, admin, "Acme")
	h := newHarness(t, bob, route.Join(workspace.ID))

	flow := NewJoinFlow(h.env, workspace.ID)
	defer flow.Close()
	if _, _, err := flow.Resource().Wait(testContext(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	view := flow.View()
	if view.Status != live.StatusReady {
		t.Fatalf("Status = %v, want ready", view.Status)
	}
	if view.Title != "Join Acme" {
		t.Errorf("Title = %q, want %q", view.Title, "Join Acme")
	}
	if view.Subtitle != "Enter the workspace code to join" {
		t.Errorf("Subtitle = %q", view.Subtitle)
	}
	requireEntries(t, h.history, route.Join(workspace.ID))
}

func TestJoinSubmit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := chattest.New(t)
		admin := f.Register(t, "Ada")
		bob := f.Register(t, "Bob")
		workspace, _ := f.Workspace(t, admin, "Acme")
		h := newHarness(t, bob, route.Join(workspace.ID))

		flow := NewJoinFlow(h.env, workspace.ID)
		defer flow.Close()

		// Codes are accepted with surrounding space and in any case.
		got, err := flow.Submit(testContext(t), "  "+strings.ToUpper(workspace.JoinCode)+"\n")
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if got != workspace.ID {
			t.Errorf("Submit = %s, want %s", got, workspace.ID)
		}
		requireEntries(t, h.history, route.Workspace(workspace.ID))
		requireMessages(t, h.notes, "success: Successfully joined workspace")

		// The membership change reaches the info resource without a
		// second navigation.
		eventually(t, channels(flow.Resource().Changed), func() bool {
			info, _, _ := flow.Resource().State()
			return info != nil && info.IsMember
		}, "membership to show")
		requireEntries(t, h.history, route.Workspace(workspace.ID))
	})

	t.Run("wrong code", func(t *testing.T) {
		f := chattest.New(t)
		admin := f.Register(t, "Ada")
		bob := f.Register(t, "Bob")
		workspace, _ := f.Workspace(t, admin, "Acme")
		h := newHarness(t, bob, route.Join(workspace.ID))

		flow := NewJoinFlow(h.env, workspace.ID)
		defer flow.Close()

		wrong := "zzzzzz"
		if workspace.JoinCode == wrong {
			wrong = "yyyyyy"
		}
		if _, err := flow.Submit(testContext(t), wrong); err == nil {
			t.Fatal("Submit with the wrong code succeeded")
		}
		requireEntries(t, h.history, route.Join(workspace.ID))
		requireMessages(t, h.notes, "error: Failed to join workspace")
		if flow.View().Pending {
			t.Error("Pending after a finished submission")
		}
	})

	t.Run("malformed code", func(t *testing.T) {
		f := chattest.New(t)
		admin := f.Register(t, "Ada")
		bob := f.Register(t, "Bob")
		workspace, _ := f.Workspace(t, admin, "Acme")
		counter := &counting{Backend: bob}
		h := newHarness(t, counter, route.Join(workspace.ID))

		flow := NewJoinFlow(h.env, workspace.ID)
		defer flow.Close()

		for _, code := range []string{"", "abc", "abcdefg", "ab-cde"} {
			if _, err := flow.Submit(testContext(t), code); !errors.Is(err, ErrInvalidCode) {
				t.Errorf("Submit(%q) = %v, want ErrInvalidCode", code, err)
			}
		}
		if counter.mutations != 0 {
			t.Errorf("malformed codes reached the backend %d times", counter.mutations)
		}
		requireEntries(t, h.history, route.Join(workspace.ID))
	})
}

// blockingJoin holds Join until release is closed.
type blockingJoin struct {
	backend.Backend
	entered chan struct{}
	release chan struct{}
}

func (b *blockingJoin) Join(ctx context.Context, id ref.WorkspaceID, code string) (ref.WorkspaceID, error) {
	close(b.entered)
	<-b.release
	return b.Backend.Join(ctx, id, code)
}

func TestJoinPending(t *testing.T) {
	f := chattest.New(t)
	admin := f.Register(t, "Ada")
	bob := f.Register(t, "Bob")
	workspace, _ := f.Workspace(t, admin, "Acme")
	blocking := &blockingJoin{Backend: bob, entered: make(chan struct{}), release: make(chan struct{})}
	h := newHarness(t, blocking, route.Join(workspace.ID))

	flow := NewJoinFlow(h.env, workspace.ID)
	defer flow.Close()

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(testContext(t), workspace.JoinCode)
		done <- err
	}()
	<-blocking.entered

	if !flow.View().Pending {
		t.Error("View().Pending = false during submission")
	}
	if _, err := flow.Submit(testContext(t), workspace.JoinCode); !errors.Is(err, ErrPending) {
		t.Errorf("second Submit = %v, want ErrPending", err)
	}

	close(blocking.release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	requireEntries(t, h.history, route.Workspace(workspace.ID))
}

func TestJoinRedirectsMembers(t *testing.T) {
	f := chattest.New(t)
	admin := f.Register(t, "Ada")
	workspace, _ := f.Workspace(t, admin, "Acme")
	h := newHarness(t, admin, route.Join(workspace.ID))

	flow := NewJoinFlow(h.env, workspace.ID)
	defer flow.Close()

	eventually(t, channels(h.history.Changed), func() bool {
		return h.history.Current() == route.Workspace(workspace.ID)
	}, "redirect to the workspace")

	// Later deliveries do not navigate again.
	if _, err := admin.UpdateWorkspace(testContext(t), workspace.ID, "Acme Corp"); err != nil {
		t.Fatalf("UpdateWorkspace: %v", err)
	}
	eventually(t, channels(flow.Resource().Changed), func() bool {
		return flow.View().Title == "Join Acme Corp"
	}, "rename to arrive")
	requireEntries(t, h.history, route.Join(workspace.ID), route.Workspace(workspace.ID))
	if len(h.notes.Messages()) != 0 {
		t.Errorf("notifications = %q, want none", h.notes.Messages())
	}
}

func TestJoinUnknownWorkspace(t *testing.T) {
	f := chattest.New(t)
	bob := f.Register(t, "Bob")
	h := newHarness(t, bob, route.Root())

	flow := NewJoinFlow(h.env, ref.NewWorkspaceID())
	defer flow.Close()
	_, status, _ := flow.Resource().Wait(testContext(t))
	if status != live.StatusNotFound {
		t.Fatalf("status = %v, want not found", status)
	}
	if view := flow.View(); view.Title != "" {
		t.Errorf("Title = %q, want empty", view.Title)
	}
}
