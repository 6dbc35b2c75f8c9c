// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// ListMembers implements backend.Queries.
func (v *Viewer) ListMembers(ctx context.Context, workspaceID ref.WorkspaceID) ([]schema.Member, error) {
	var members []schema.Member
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		if _, err := v.requireMember(conn, workspaceID, backend.NotFound("workspace", workspaceID)); err != nil {
			return err
		}
		var err error
		members, err = queryMembers(conn, "m.workspace_id = ?", workspaceID.String())
		return err
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// GetMember implements backend.Queries.
func (v *Viewer) GetMember(ctx context.Context, id ref.MemberID) (*schema.Member, error) {
	notFound := backend.NotFound("member", id)
	var member *schema.Member
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		var err error
		member, err = loadMember(conn, id)
		if err != nil {
			return err
		}
		if member == nil {
			if _, err := v.requireUser(conn); err != nil {
				return err
			}
			return notFound
		}
		_, err = v.requireMember(conn, member.WorkspaceID, notFound)
		return err
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// GetCurrentMember implements backend.Queries.
func (v *Viewer) GetCurrentMember(ctx context.Context, workspaceID ref.WorkspaceID) (*schema.Member, error) {
	var member *schema.Member
	err := v.store.read(ctx, func(conn *sqlite.Conn) (err error) {
		member, err = v.requireMember(conn, workspaceID, backend.Errorf(backend.CodeNotFound, "not a member of workspace %s", workspaceID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// UpdateMember implements backend.Mutations.
func (v *Viewer) UpdateMember(ctx context.Context, id ref.MemberID, role schema.Role) (ref.MemberID, error) {
	if !role.Valid() {
		return ref.MemberID{}, backend.Errorf(backend.CodeInvalidParam, "invalid role %q", role)
	}
	err := v.store.write(ctx, []backend.Topic{backend.TopicMembers}, func(conn *sqlite.Conn) error {
		member, err := loadMember(conn, id)
		if err != nil {
			return err
		}
		if member == nil {
			return backend.NotFound("member", id)
		}
		if _, err := v.requireAdmin(conn, member.WorkspaceID); err != nil {
			return err
		}
		return sqlitex.Execute(conn, "UPDATE members SET role = ? WHERE id = ?", &sqlitex.ExecOptions{
			Args: []any{string(role), id.String()},
		})
	})
	if err != nil {
		return ref.MemberID{}, err
	}
	v.store.logger.Info("member role updated",
		"member_id", id.String(),
		"role", string(role),
	)
	return id, nil
}

// RemoveMember implements backend.Mutations.
func (v *Viewer) RemoveMember(ctx context.Context, id ref.MemberID) (ref.MemberID, error) {
	topics := []backend.Topic{
		backend.TopicMembers,
		backend.TopicConversations,
		backend.TopicMessages,
		backend.TopicReactions,
	}
	err := v.store.write(ctx, topics, func(conn *sqlite.Conn) error {
		member, err := loadMember(conn, id)
		if err != nil {
			return err
		}
		if member == nil {
			return backend.NotFound("member", id)
		}
		current, err := v.requireMember(conn, member.WorkspaceID, backend.ErrForbidden)
		if err != nil {
			return err
		}

		self := current.ID == member.ID
		switch {
		case self && current.Role == schema.RoleAdmin:
			return backend.Errorf(backend.CodeForbidden, "an admin cannot leave the workspace")
		case !self && current.Role != schema.RoleAdmin:
			return backend.Errorf(backend.CodeForbidden, "admin role required")
		case member.Role == schema.RoleAdmin:
			return backend.Errorf(backend.CodeForbidden, "an admin cannot be removed")
		}

		return deleteMember(conn, id)
	})
	if err != nil {
		return ref.MemberID{}, err
	}
	v.store.logger.Info("member removed", "member_id", id.String())
	return id, nil
}

// deleteMember removes a member and everything they own: their
// messages (and reactions on those messages), their reactions, and
// their conversations (and the messages in them).
func deleteMember(conn *sqlite.Conn, id ref.MemberID) error {
	statements := []string{
		`DELETE FROM reactions WHERE member_id = ?1
			OR message_id IN (SELECT id FROM messages WHERE member_id = ?1)
			OR message_id IN (SELECT m.id FROM messages m JOIN conversations c ON c.id = m.conversation_id
				WHERE c.member_one_id = ?1 OR c.member_two_id = ?1)`,
		`DELETE FROM messages WHERE member_id = ?1
			OR conversation_id IN (SELECT id FROM conversations WHERE member_one_id = ?1 OR member_two_id = ?1)`,
		`DELETE FROM conversations WHERE member_one_id = ?1 OR member_two_id = ?1`,
		`DELETE FROM members WHERE id = ?1`,
	}
	for _, statement := range statements {
		if err := sqlitex.Execute(conn, statement, &sqlitex.ExecOptions{
			Args: []any{id.String()},
		}); err != nil {
			return fmt.Errorf("chatstore: removing member: %w", err)
		}
	}
	return nil
}
