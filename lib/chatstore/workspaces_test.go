// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"strings"
	"testing"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/joincode"
	"github.com/huddle-chat/huddle/lib/schema"
)

func TestCreateWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin")

	workspaceID, member := f.workspace(t, admin, "  Acme  ")
	if member.Role != schema.RoleAdmin {
		t.Errorf("creator role = %q, want admin", member.Role)
	}
	if member.User.ID != admin.UserID() {
		t.Errorf("member user = %s, want %s", member.User.ID, admin.UserID())
	}

	workspace, err := admin.GetWorkspace(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetWorkspace: %v", err)
	}
	if workspace.Name != "Acme" {
		t.Errorf("Name = %q, want trimmed %q", workspace.Name, "Acme")
	}
	if !joincode.Valid(workspace.JoinCode) {
		t.Errorf("JoinCode %q is not a valid code", workspace.JoinCode)
	}
	if !workspace.CreatedAt.Equal(epoch) {
		t.Errorf("CreatedAt = %v, want %v", workspace.CreatedAt, epoch)
	}

	channels, err := admin.ListChannels(ctx, workspaceID)
	if err != nil {
		t.Fatalf("ListChannels: %v", err)
	}
	if len(channels) != 1 || channels[0].Name != "general" {
		t.Errorf("channels = %+v, want only general", channels)
	}

	workspaces, err := admin.ListWorkspaces(ctx)
	if err != nil {
		t.Fatalf("ListWorkspaces: %v", err)
	}
	if len(workspaces) != 1 || workspaces[0].ID != workspaceID {
		t.Errorf("ListWorkspaces = %+v", workspaces)
	}

	for _, name := range []string{"ab", strings.Repeat("x", 81), "   "} {
		_, err := admin.CreateWorkspace(ctx, name)
		requireCode(t, err, backend.CodeInvalidParam)
	}
}

func TestJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin")
	guest := f.register(t, "guest")
	workspaceID, _ := f.workspace(t, admin, "Acme")

	info, err := guest.GetWorkspaceInfo(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetWorkspaceInfo: %v", err)
	}
	if info.Name != "Acme" || info.IsMember {
		t.Errorf("info before join = %+v", info)
	}

	// Non-members cannot see the workspace itself.
	_, err = guest.GetWorkspace(ctx, workspaceID)
	requireCode(t, err, backend.CodeNotFound)
	_, err = guest.ListMembers(ctx, workspaceID)
	requireCode(t, err, backend.CodeNotFound)

	_, err = guest.Join(ctx, workspaceID, "zzzzzz")
	requireCode(t, err, backend.CodeInvalidParam)

	workspace, err := admin.GetWorkspace(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetWorkspace: %v", err)
	}
	joined, err := guest.Join(ctx, workspaceID, strings.ToUpper(workspace.JoinCode))
	if err != nil {
		t.Fatalf("Join with upper-cased code: %v", err)
	}
	if joined != workspaceID {
		t.Errorf("Join returned %s, want %s", joined, workspaceID)
	}

	member, err := guest.GetCurrentMember(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetCurrentMember: %v", err)
	}
	if member.Role != schema.RoleMember {
		t.Errorf("joined role = %q, want member", member.Role)
	}

	info, err = guest.GetWorkspaceInfo(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetWorkspaceInfo: %v", err)
	}
	if !info.IsMember {
		t.Error("IsMember should be true after joining")
	}

	_, err = guest.Join(ctx, workspaceID, workspace.JoinCode)
	requireCode(t, err, backend.CodeConflict)

	members, err := admin.ListMembers(ctx, workspaceID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("ListMembers returned %d members, want 2", len(members))
	}
}

func TestNewJoinCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin")
	guest := f.register(t, "guest")
	workspaceID, _ := f.workspace(t, admin, "Acme")
	f.join(t, admin, guest, workspaceID)

	_, err := guest.NewJoinCode(ctx, workspaceID)
	requireCode(t, err, backend.CodeForbidden)

	previous, err := admin.GetWorkspace(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetWorkspace: %v", err)
	}
	original := previous.JoinCode
	for range 20 {
		if _, err := admin.NewJoinCode(ctx, workspaceID); err != nil {
			t.Fatalf("NewJoinCode: %v", err)
		}
		current, err := admin.GetWorkspace(ctx, workspaceID)
		if err != nil {
			t.Fatalf("GetWorkspace: %v", err)
		}
		if joincode.Equal(current.JoinCode, previous.JoinCode) {
			t.Fatalf("NewJoinCode reused %q", current.JoinCode)
		}
		previous = current
	}

	// The original code no longer admits anyone.
	if !joincode.Equal(original, previous.JoinCode) {
		late := f.register(t, "late")
		_, err = late.Join(ctx, workspaceID, original)
		requireCode(t, err, backend.CodeInvalidParam)
	}
}

func TestUpdateAndRemoveWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin")
	guest := f.register(t, "guest")
	workspaceID, _ := f.workspace(t, admin, "Acme")
	f.join(t, admin, guest, workspaceID)

	_, err := guest.UpdateWorkspace(ctx, workspaceID, "Hijacked")
	requireCode(t, err, backend.CodeForbidden)

	if _, err := admin.UpdateWorkspace(ctx, workspaceID, "Acme Corp"); err != nil {
		t.Fatalf("UpdateWorkspace: %v", err)
	}
	info, err := guest.GetWorkspaceInfo(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetWorkspaceInfo: %v", err)
	}
	if info.Name != "Acme Corp" {
		t.Errorf("Name = %q after rename", info.Name)
	}

	_, err = guest.RemoveWorkspace(ctx, workspaceID)
	requireCode(t, err, backend.CodeForbidden)
	if _, err := admin.RemoveWorkspace(ctx, workspaceID); err != nil {
		t.Fatalf("RemoveWorkspace: %v", err)
	}
	_, err = admin.GetWorkspaceInfo(ctx, workspaceID)
	requireCode(t, err, backend.CodeNotFound)
	workspaces, err := guest.ListWorkspaces(ctx)
	if err != nil {
		t.Fatalf("ListWorkspaces: %v", err)
	}
	if len(workspaces) != 0 {
		t.Errorf("guest still lists %d workspaces", len(workspaces))
	}
}

func TestChannels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin")
	guest := f.register(t, "guest")
	workspaceID, _ := f.workspace(t, admin, "Acme")
	f.join(t, admin, guest, workspaceID)

	_, err := guest.CreateChannel(ctx, workspaceID, "random")
	requireCode(t, err, backend.CodeForbidden)

	channelID, err := admin.CreateChannel(ctx, workspaceID, "  Release   Planning ")
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	channel, err := guest.GetChannel(ctx, channelID)
	if err != nil {
		t.Fatalf("GetChannel: %v", err)
	}
	if channel.Name != "release-planning" {
		t.Errorf("Name = %q, want release-planning", channel.Name)
	}

	if _, err := admin.UpdateChannel(ctx, channelID, "launch"); err != nil {
		t.Fatalf("UpdateChannel: %v", err)
	}
	f.post(t, guest, backend.CreateMessageRequest{ChannelID: channelID, Body: "hello"})

	if _, err := admin.RemoveChannel(ctx, channelID); err != nil {
		t.Fatalf("RemoveChannel: %v", err)
	}
	_, err = guest.GetChannel(ctx, channelID)
	requireCode(t, err, backend.CodeNotFound)
	_, err = guest.GetMessages(ctx, backend.MessagesQuery{ChannelID: channelID})
	requireCode(t, err, backend.CodeNotFound)
}
