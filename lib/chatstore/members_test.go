// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"testing"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/schema"
)

func TestGetMemberVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin")
	outsider := f.register(t, "outsider")
	workspaceID, adminMember := f.workspace(t, admin, "Acme")

	member, err := admin.GetMember(ctx, adminMember.ID)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if member.WorkspaceID != workspaceID || member.User.Name != "admin" {
		t.Errorf("GetMember = %+v", member)
	}

	_, err = outsider.GetMember(ctx, adminMember.ID)
	requireCode(t, err, backend.CodeNotFound)
	_, err = outsider.GetCurrentMember(ctx, workspaceID)
	requireCode(t, err, backend.CodeNotFound)
}

func TestUpdateMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin")
	guest := f.register(t, "guest")
	workspaceID, adminMember := f.workspace(t, admin, "Acme")
	guestMember := f.join(t, admin, guest, workspaceID)

	_, err := guest.UpdateMember(ctx, adminMember.ID, schema.RoleMember)
	requireCode(t, err, backend.CodeForbidden)

	_, err = admin.UpdateMember(ctx, guestMember.ID, schema.Role("owner"))
	requireCode(t, err, backend.CodeInvalidParam)

	if _, err := admin.UpdateMember(ctx, guestMember.ID, schema.RoleAdmin); err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	updated, err := guest.GetCurrentMember(ctx, workspaceID)
	if err != nil {
		t.Fatalf("GetCurrentMember: %v", err)
	}
	if updated.Role != schema.RoleAdmin {
		t.Errorf("Role = %q after promotion", updated.Role)
	}
}

func TestRemoveMemberRules(t *testing.T) {
	tests := []struct {
		name string
		// actor and subject are "admin", "guest", or "other".
		actor, subject string
		wantCode       string
	}{
		{name: "admin removes member", actor: "admin", subject: "guest"},
		{name: "member leaves", actor: "guest", subject: "guest"},
		{name: "admin cannot leave", actor: "admin", subject: "admin", wantCode: backend.CodeForbidden},
		{name: "member cannot remove member", actor: "guest", subject: "other", wantCode: backend.CodeForbidden},
		{name: "member cannot remove admin", actor: "guest", subject: "admin", wantCode: backend.CodeForbidden},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			viewers := map[string]*Viewer{
				"admin": f.register(t, "admin"),
				"guest": f.register(t, "guest"),
				"other": f.register(t, "other"),
			}
			workspaceID, adminMember := f.workspace(t, viewers["admin"], "Acme")
			members := map[string]*schema.Member{
				"admin": adminMember,
				"guest": f.join(t, viewers["admin"], viewers["guest"], workspaceID),
				"other": f.join(t, viewers["admin"], viewers["other"], workspaceID),
			}

			_, err := viewers[test.actor].RemoveMember(ctx, members[test.subject].ID)
			if test.wantCode != "" {
				requireCode(t, err, test.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("RemoveMember: %v", err)
			}
			_, err = viewers["admin"].GetMember(ctx, members[test.subject].ID)
			requireCode(t, err, backend.CodeNotFound)
		})
	}
}

func TestRemoveAdminByAnotherAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin")
	deputy := f.register(t, "deputy")
	workspaceID, adminMember := f.workspace(t, admin, "Acme")
	deputyMember := f.join(t, admin, deputy, workspaceID)
	if _, err := admin.UpdateMember(ctx, deputyMember.ID, schema.RoleAdmin); err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}

	_, err := deputy.RemoveMember(ctx, adminMember.ID)
	requireCode(t, err, backend.CodeForbidden)
}

func TestRemoveMemberCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin")
	guest := f.register(t, "guest")
	workspaceID, adminMember := f.workspace(t, admin, "Acme")
	guestMember := f.join(t, admin, guest, workspaceID)
	channelID := f.generalChannel(t, admin, workspaceID)

	adminPost := f.post(t, admin, backend.CreateMessageRequest{ChannelID: channelID, Body: "welcome"})
	f.post(t, guest, backend.CreateMessageRequest{ChannelID: channelID, Body: "thanks"})
	if _, err := guest.ToggleReaction(ctx, adminPost, "👍"); err != nil {
		t.Fatalf("ToggleReaction: %v", err)
	}
	conversationID, err := admin.CreateOrGetConversation(ctx, workspaceID, guestMember.ID)
	if err != nil {
		t.Fatalf("CreateOrGetConversation: %v", err)
	}
	f.post(t, admin, backend.CreateMessageRequest{ConversationID: conversationID, Body: "private"})

	if _, err := guest.RemoveMember(ctx, guestMember.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	page, err := admin.GetMessages(ctx, backend.MessagesQuery{ChannelID: channelID})
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(page.Messages) != 1 || page.Messages[0].ID != adminPost {
		t.Fatalf("channel holds %d messages after removal, want only the admin's", len(page.Messages))
	}
	if len(page.Messages[0].Reactions) != 0 {
		t.Errorf("removed member's reaction survived: %+v", page.Messages[0].Reactions)
	}
	if page.Messages[0].Member.ID != adminMember.ID {
		t.Errorf("author = %s, want %s", page.Messages[0].Member.ID, adminMember.ID)
	}

	_, err = admin.GetConversation(ctx, conversationID)
	requireCode(t, err, backend.CodeNotFound)
}
