// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"errors"
	"testing"

	"github.com/huddle-chat/huddle/lib/chattest"
	"github.com/huddle-chat/huddle/lib/confirm"
	"github.com/huddle-chat/huddle/lib/route"
)

func TestInviteView(t *testing.T) {
	f := chattest.New(t)
	admin := f.Register(t, "Ada")
	workspace, _ := f.Workspace(t, admin, "Acme")
	h := newHarness(t, admin, route.Workspace(workspace.ID))

	invite := NewInvitePanel(h.env, workspace.ID)
	defer invite.Close()
	if _, _, err := invite.Resource().Wait(testContext(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if invite.ID() != workspace.ID {
		t.Errorf("ID = %s, want %s", invite.ID(), workspace.ID)
	}
	view := invite.View()
	if view.Title != "Invite people to Acme" {
		t.Errorf("Title = %q", view.Title)
	}
	if view.JoinCode != workspace.JoinCode {
		t.Errorf("JoinCode = %q, want %q", view.JoinCode, workspace.JoinCode)
	}
	if want := "https://huddle.example/join/" + workspace.ID.String(); view.Link != want {
		t.Errorf("Link = %q, want %q", view.Link, want)
	}
}

func TestInviteRegenerate(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		f := chattest.New(t)
		admin := f.Register(t, "Ada")
		workspace, _ := f.Workspace(t, admin, "Acme")
		h := newHarness(t, admin, route.Workspace(workspace.ID), true)

		invite := NewInvitePanel(h.env, workspace.ID)
		defer invite.Close()
		if _, _, err := invite.Resource().Wait(testContext(t)); err != nil {
			t.Fatalf("Wait: %v", err)
		}

		if err := invite.Regenerate(testContext(t)); err != nil {
			t.Fatalf("Regenerate: %v", err)
		}
		prompts := h.confirmer.Prompts()
		want := confirm.Prompt{
			Title: "Are you sure you want to generate a new code?",
			Body:  "This will deactivate the current code and generate a new one.",
		}
		if len(prompts) != 1 || prompts[0] != want {
			t.Errorf("prompts = %+v, want [%+v]", prompts, want)
		}
		requireMessages(t, h.notes, "success: New code generated successfully")

		eventually(t, channels(invite.Resource().Changed), func() bool {
			code := invite.View().JoinCode
			return code != "" && code != workspace.JoinCode
		}, "the new code to arrive")
	})

	t.Run("declined", func(t *testing.T) {
		f := chattest.New(t)
		admin := f.Register(t, "Ada")
		workspace, _ := f.Workspace(t, admin, "Acme")
		counter := &counting{Backend: admin}
		h := newHarness(t, counter, route.Workspace(workspace.ID), false)

		invite := NewInvitePanel(h.env, workspace.ID)
		defer invite.Close()

		if err := invite.Regenerate(testContext(t)); !errors.Is(err, ErrDeclined) {
			t.Fatalf("Regenerate = %v, want ErrDeclined", err)
		}
		if counter.mutations != 0 {
			t.Errorf("declined regeneration ran %d mutations", counter.mutations)
		}
		requireMessages(t, h.notes)
		current, err := admin.GetWorkspace(testContext(t), workspace.ID)
		if err != nil {
			t.Fatalf("GetWorkspace: %v", err)
		}
		if current.JoinCode != workspace.JoinCode {
			t.Errorf("JoinCode changed to %q", current.JoinCode)
		}
	})

	t.Run("not an admin", func(t *testing.T) {
		f := chattest.New(t)
		admin := f.Register(t, "Ada")
		bob := f.Register(t, "Bob")
		workspace, _ := f.Workspace(t, admin, "Acme")
		f.Join(t, admin, bob, workspace.ID)
		h := newHarness(t, bob, route.Workspace(workspace.ID), true)

		invite := NewInvitePanel(h.env, workspace.ID)
		defer invite.Close()

		if err := invite.Regenerate(testContext(t)); err == nil {
			t.Fatal("Regenerate by a member succeeded")
		}
		requireMessages(t, h.notes, "error: Failed to generate new code")
	})
}

func TestInviteCopyLink(t *testing.T) {
	f := chattest.New(t)
	admin := f.Register(t, "Ada")
	workspace, _ := f.Workspace(t, admin, "Acme")
	h := newHarness(t, admin, route.Workspace(workspace.ID))

	invite := NewInvitePanel(h.env, workspace.ID)
	defer invite.Close()

	link, err := invite.CopyLink(testContext(t))
	if err != nil {
		t.Fatalf("CopyLink: %v", err)
	}
	if want := "https://huddle.example/join/" + workspace.ID.String(); link != want {
		t.Errorf("link = %q, want %q", link, want)
	}
	if h.clipboard.Text() != link {
		t.Errorf("clipboard = %q, want %q", h.clipboard.Text(), link)
	}
	requireMessages(t, h.notes, "success: Link copied to clipboard")

	h.clipboard.Err = errors.New("no display")
	if _, err := invite.CopyLink(testContext(t)); err == nil {
		t.Error("CopyLink with a failing clipboard succeeded")
	}
	requireMessages(t, h.notes, "success: Link copied to clipboard")
}
