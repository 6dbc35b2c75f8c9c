// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"errors"
	"testing"
	"time"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/route"
)

func TestThreadPanel(t *testing.T) {
	w, adminViewer, bobViewer := newProfileWorkspace(t)
	general := w.f.General(t, adminViewer, w.workspace.ID)
	root := w.f.Post(t, adminViewer, backend.CreateMessageRequest{WorkspaceID: w.workspace.ID, ChannelID: general, Body: "root"})
	w.f.Post(t, bobViewer, backend.CreateMessageRequest{WorkspaceID: w.workspace.ID, ParentMessageID: root, Body: "reply"})

	counter := &counting{Backend: adminViewer}
	h := newHarness(t, counter, route.Channel(w.workspace.ID, general))
	closed := false
	panel := NewThreadPanel(h.env, w.workspace.ID, root, func() { closed = true })

	state, err := panel.Wait(testContext(t))
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if state.Status != live.StatusReady || state.Root == nil || state.Root.Body != "root" {
		t.Fatalf("state = %+v", state)
	}
	if state.Placeholder != "Reply to this message..." {
		t.Errorf("Placeholder = %q", state.Placeholder)
	}
	eventually(t, panel.Changed, func() bool {
		view := panel.View()
		return view.IsAuthor && len(view.Replies) == 1
	}, "authorship and replies")

	rendered, ok := panel.Render(plainContext(ref.MemberID{}))
	if !ok {
		t.Fatal("Render found no root")
	}
	if rendered.Thread != nil {
		t.Error("thread button shown inside the thread panel")
	}
	if !rendered.IsAuthor {
		t.Error("rendered root is not attributed to the viewer")
	}

	if err := panel.Reply(testContext(t), "another"); !errors.Is(err, ErrRepliesNotImplemented) {
		t.Errorf("Reply = %v, want ErrRepliesNotImplemented", err)
	}
	if counter.mutations != 0 {
		t.Errorf("Reply ran %d mutations", counter.mutations)
	}

	panel.Dismiss()
	if !closed {
		t.Error("Dismiss did not run onClose")
	}
}

func TestThreadPanelNotFound(t *testing.T) {
	w, adminViewer, _ := newProfileWorkspace(t)
	h := newHarness(t, adminViewer, route.Workspace(w.workspace.ID))

	panel := NewThreadPanel(h.env, w.workspace.ID, ref.NewMessageID(), nil)
	defer panel.Close()
	state, err := panel.Wait(testContext(t))
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if state.Status != live.StatusNotFound || state.NotFound != "Message not found." || state.Root != nil {
		t.Errorf("state = %+v", state)
	}
	if _, ok := panel.Render(plainContext(ref.MemberID{})); ok {
		t.Error("Render succeeded without a root message")
	}
}

func TestThreadViewStatusMatchesRoot(t *testing.T) {
	w, adminViewer, _ := newProfileWorkspace(t)
	general := w.f.General(t, adminViewer, w.workspace.ID)
	root := w.f.Post(t, adminViewer, backend.CreateMessageRequest{WorkspaceID: w.workspace.ID, ChannelID: general, Body: "root"})
	h := newHarness(t, adminViewer, route.Channel(w.workspace.ID, general))

	panel := NewThreadPanel(h.env, w.workspace.ID, root, nil)
	defer panel.Close()
	// Sample the view while the root resolves; every sample must be one
	// coherent state.
	deadline := time.Now().Add(5 * time.Second) //nolint:realclock test hang prevention
	for {
		view := panel.View()
		if (view.Status == live.StatusReady) != (view.Root != nil) {
			t.Fatalf("view status %v with root %v", view.Status, view.Root)
		}
		if view.Status == live.StatusReady {
			break
		}
		if time.Now().After(deadline) { //nolint:realclock test hang prevention
			t.Fatal("root message never resolved")
		}
	}
}
