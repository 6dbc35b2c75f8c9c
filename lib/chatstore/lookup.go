// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// Lookups return (nil, nil) for missing rows. Callers decide whether
// absence is not-found, forbidden, or fine.

const memberColumns = `m.id, m.workspace_id, m.user_id, m.role, u.id, u.name, u.email, u.image`

func scanMember(stmt *sqlite.Stmt) (*schema.Member, error) {
	r := &row{stmt: stmt}
	member := &schema.Member{Role: schema.Role(r.text(3))}
	r.id(0, &member.ID)
	r.id(1, &member.WorkspaceID)
	r.id(2, &member.UserID)
	r.id(4, &member.User.ID)
	member.User.Name = r.text(5)
	member.User.Email = r.text(6)
	member.User.Image = r.text(7)
	return member, r.err
}

func queryMembers(conn *sqlite.Conn, where string, args ...any) ([]schema.Member, error) {
	var members []schema.Member
	err := sqlitex.Execute(conn, `SELECT `+memberColumns+`
		FROM members m JOIN users u ON u.id = m.user_id
		WHERE `+where+` ORDER BY m.created_at, m.id`, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			member, err := scanMember(stmt)
			if err != nil {
				return err
			}
			members = append(members, *member)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chatstore: querying members: %w", err)
	}
	return members, nil
}

func queryMember(conn *sqlite.Conn, where string, args ...any) (*schema.Member, error) {
	members, err := queryMembers(conn, where, args...)
	if err != nil || len(members) == 0 {
		return nil, err
	}
	return &members[0], nil
}

func loadMember(conn *sqlite.Conn, id ref.MemberID) (*schema.Member, error) {
	return queryMember(conn, "m.id = ?", id.String())
}

// membership returns userID's member record in workspaceID.
func membership(conn *sqlite.Conn, workspaceID ref.WorkspaceID, userID ref.UserID) (*schema.Member, error) {
	return queryMember(conn, "m.workspace_id = ? AND m.user_id = ?", workspaceID.String(), userID.String())
}

func loadUser(conn *sqlite.Conn, id ref.UserID) (*schema.User, error) {
	var user *schema.User
	err := sqlitex.Execute(conn, "SELECT id, name, email, image FROM users WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			r := &row{stmt: stmt}
			user = &schema.User{Name: r.text(1), Email: r.text(2), Image: r.text(3)}
			r.id(0, &user.ID)
			return r.err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chatstore: loading user: %w", err)
	}
	return user, nil
}

const workspaceColumns = `w.id, w.name, w.join_code, w.user_id, w.created_at`

func scanWorkspace(stmt *sqlite.Stmt) (*schema.Workspace, error) {
	r := &row{stmt: stmt}
	workspace := &schema.Workspace{
		Name:      r.text(1),
		JoinCode:  r.text(2),
		CreatedAt: r.time(4),
	}
	r.id(0, &workspace.ID)
	r.id(3, &workspace.UserID)
	return workspace, r.err
}

func loadWorkspace(conn *sqlite.Conn, id ref.WorkspaceID) (*schema.Workspace, error) {
	var workspace *schema.Workspace
	err := sqlitex.Execute(conn, "SELECT "+workspaceColumns+" FROM workspaces w WHERE w.id = ?", &sqlitex.ExecOptions{
		Args: []any{id.String()},
		ResultFunc: func(stmt *sqlite.Stmt) (err error) {
			workspace, err = scanWorkspace(stmt)
			return err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chatstore: loading workspace: %w", err)
	}
	return workspace, nil
}

func scanChannel(stmt *sqlite.Stmt) (*schema.Channel, error) {
	r := &row{stmt: stmt}
	channel := &schema.Channel{Name: r.text(2)}
	r.id(0, &channel.ID)
	r.id(1, &channel.WorkspaceID)
	return channel, r.err
}

func loadChannel(conn *sqlite.Conn, id ref.ChannelID) (*schema.Channel, error) {
	var channel *schema.Channel
	err := sqlitex.Execute(conn, "SELECT id, workspace_id, name FROM channels WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id.String()},
		ResultFunc: func(stmt *sqlite.Stmt) (err error) {
			channel, err = scanChannel(stmt)
			return err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chatstore: loading channel: %w", err)
	}
	return channel, nil
}

func scanConversation(stmt *sqlite.Stmt) (*schema.Conversation, error) {
	r := &row{stmt: stmt}
	conversation := &schema.Conversation{}
	r.id(0, &conversation.ID)
	r.id(1, &conversation.WorkspaceID)
	r.id(2, &conversation.MemberOneID)
	r.id(3, &conversation.MemberTwoID)
	return conversation, r.err
}

func loadConversation(conn *sqlite.Conn, id ref.ConversationID) (*schema.Conversation, error) {
	var conversation *schema.Conversation
	err := sqlitex.Execute(conn, `SELECT id, workspace_id, member_one_id, member_two_id
		FROM conversations WHERE id = ?`, &sqlitex.ExecOptions{
		Args: []any{id.String()},
		ResultFunc: func(stmt *sqlite.Stmt) (err error) {
			conversation, err = scanConversation(stmt)
			return err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chatstore: loading conversation: %w", err)
	}
	return conversation, nil
}

const messageColumns = `id, workspace_id, channel_id, conversation_id, parent_message_id,
	member_id, body, image, created_at, updated_at`

func scanMessage(stmt *sqlite.Stmt) (*schema.Message, error) {
	r := &row{stmt: stmt}
	message := &schema.Message{
		Body:      r.text(6),
		Image:     r.text(7),
		CreatedAt: r.time(8),
		UpdatedAt: r.time(9),
	}
	r.id(0, &message.ID)
	r.id(1, &message.WorkspaceID)
	r.id(2, &message.ChannelID)
	r.id(3, &message.ConversationID)
	r.id(4, &message.ParentMessageID)
	r.id(5, &message.MemberID)
	return message, r.err
}

func loadMessage(conn *sqlite.Conn, id ref.MessageID) (*schema.Message, error) {
	var message *schema.Message
	err := sqlitex.Execute(conn, "SELECT "+messageColumns+" FROM messages WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id.String()},
		ResultFunc: func(stmt *sqlite.Stmt) (err error) {
			message, err = scanMessage(stmt)
			return err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chatstore: loading message: %w", err)
	}
	return message, nil
}

// requireUser fails with CodeUnauthorized when the viewer's account
// does not exist.
func (v *Viewer) requireUser(conn *sqlite.Conn) (*schema.User, error) {
	if v.userID.IsZero() {
		return nil, backend.ErrUnauthorized
	}
	user, err := loadUser(conn, v.userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, backend.ErrUnauthorized
	}
	return user, nil
}

// requireMember returns the viewer's membership in workspaceID. A
// non-member gets notFound, which callers set to CodeNotFound for reads
// (hiding existence) and CodeForbidden for writes.
func (v *Viewer) requireMember(conn *sqlite.Conn, workspaceID ref.WorkspaceID, notMember *backend.Error) (*schema.Member, error) {
	if _, err := v.requireUser(conn); err != nil {
		return nil, err
	}
	member, err := membership(conn, workspaceID, v.userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, notMember
	}
	return member, nil
}

// requireAdmin is requireMember plus the admin role.
func (v *Viewer) requireAdmin(conn *sqlite.Conn, workspaceID ref.WorkspaceID) (*schema.Member, error) {
	member, err := v.requireMember(conn, workspaceID, backend.ErrForbidden)
	if err != nil {
		return nil, err
	}
	if member.Role != schema.RoleAdmin {
		return nil, backend.Errorf(backend.CodeForbidden, "admin role required")
	}
	return member, nil
}
