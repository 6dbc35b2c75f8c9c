// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/joincode"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// CurrentUser implements backend.Queries.
func (v *Viewer) CurrentUser(ctx context.Context) (*schema.User, error) {
	var user *schema.User
	err := v.store.read(ctx, func(conn *sqlite.Conn) (err error) {
		user, err = v.requireUser(conn)
		return err
	})
	return user, err
}

// ListWorkspaces implements backend.Queries.
func (v *Viewer) ListWorkspaces(ctx context.Context) ([]schema.Workspace, error) {
	var workspaces []schema.Workspace
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		if _, err := v.requireUser(conn); err != nil {
			return err
		}
		return sqlitex.Execute(conn, `SELECT `+workspaceColumns+`
			FROM workspaces w JOIN members m ON m.workspace_id = w.id
			WHERE m.user_id = ?
			ORDER BY w.created_at, w.id`, &sqlitex.ExecOptions{
			Args: []any{v.userID.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				workspace, err := scanWorkspace(stmt)
				if err != nil {
					return err
				}
				workspaces = append(workspaces, *workspace)
				return nil
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return workspaces, nil
}

// GetWorkspace implements backend.Queries.
func (v *Viewer) GetWorkspace(ctx context.Context, id ref.WorkspaceID) (*schema.Workspace, error) {
	notFound := backend.NotFound("workspace", id)
	var workspace *schema.Workspace
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		if _, err := v.requireMember(conn, id, notFound); err != nil {
			return err
		}
		var err error
		workspace, err = loadWorkspace(conn, id)
		if err != nil {
			return err
		}
		if workspace == nil {
			return notFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workspace, nil
}

// GetWorkspaceInfo implements backend.Queries.
func (v *Viewer) GetWorkspaceInfo(ctx context.Context, id ref.WorkspaceID) (*schema.WorkspaceInfo, error) {
	var info *schema.WorkspaceInfo
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		if _, err := v.requireUser(conn); err != nil {
			return err
		}
		workspace, err := loadWorkspace(conn, id)
		if err != nil {
			return err
		}
		if workspace == nil {
			return backend.NotFound("workspace", id)
		}
		member, err := membership(conn, id, v.userID)
		if err != nil {
			return err
		}
		info = &schema.WorkspaceInfo{Name: workspace.Name, IsMember: member != nil}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// CreateWorkspace implements backend.Mutations.
func (v *Viewer) CreateWorkspace(ctx context.Context, name string) (ref.WorkspaceID, error) {
	name, err := normalizeName("workspace", name)
	if err != nil {
		return ref.WorkspaceID{}, err
	}
	code, err := joincode.Generate()
	if err != nil {
		return ref.WorkspaceID{}, fmt.Errorf("chatstore: %w", err)
	}
	workspaceID := ref.NewWorkspaceID()

	topics := []backend.Topic{backend.TopicWorkspaces, backend.TopicMembers, backend.TopicChannels}
	err = v.store.write(ctx, topics, func(conn *sqlite.Conn) error {
		if _, err := v.requireUser(conn); err != nil {
			return err
		}
		now := toNanos(v.store.now())
		if err := sqlitex.Execute(conn, `INSERT INTO workspaces (id, name, join_code, user_id, created_at)
			VALUES (?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
			Args: []any{workspaceID.String(), name, code, v.userID.String(), now},
		}); err != nil {
			return fmt.Errorf("chatstore: inserting workspace: %w", err)
		}
		if err := insertMember(conn, ref.NewMemberID(), workspaceID, v.userID, schema.RoleAdmin, now); err != nil {
			return err
		}
		return insertChannel(conn, ref.NewChannelID(), workspaceID, "general", now)
	})
	if err != nil {
		return ref.WorkspaceID{}, err
	}

	v.store.logger.Info("workspace created",
		"workspace_id", workspaceID.String(),
		"user_id", v.userID.String(),
	)
	return workspaceID, nil
}

// UpdateWorkspace implements backend.Mutations.
func (v *Viewer) UpdateWorkspace(ctx context.Context, id ref.WorkspaceID, name string) (ref.WorkspaceID, error) {
	name, err := normalizeName("workspace", name)
	if err != nil {
		return ref.WorkspaceID{}, err
	}
	err = v.store.write(ctx, []backend.Topic{backend.TopicWorkspaces}, func(conn *sqlite.Conn) error {
		if _, err := v.requireAdmin(conn, id); err != nil {
			return err
		}
		return sqlitex.Execute(conn, "UPDATE workspaces SET name = ? WHERE id = ?", &sqlitex.ExecOptions{
			Args: []any{name, id.String()},
		})
	})
	if err != nil {
		return ref.WorkspaceID{}, err
	}
	return id, nil
}

// RemoveWorkspace implements backend.Mutations.
func (v *Viewer) RemoveWorkspace(ctx context.Context, id ref.WorkspaceID) (ref.WorkspaceID, error) {
	topics := []backend.Topic{
		backend.TopicWorkspaces,
		backend.TopicMembers,
		backend.TopicChannels,
		backend.TopicConversations,
		backend.TopicMessages,
		backend.TopicReactions,
	}
	err := v.store.write(ctx, topics, func(conn *sqlite.Conn) error {
		if _, err := v.requireAdmin(conn, id); err != nil {
			return err
		}
		for _, table := range []string{"reactions", "messages", "conversations", "channels", "members"} {
			if err := sqlitex.Execute(conn, "DELETE FROM "+table+" WHERE workspace_id = ?", &sqlitex.ExecOptions{
				Args: []any{id.String()},
			}); err != nil {
				return fmt.Errorf("chatstore: deleting %s: %w", table, err)
			}
		}
		return sqlitex.Execute(conn, "DELETE FROM workspaces WHERE id = ?", &sqlitex.ExecOptions{
			Args: []any{id.String()},
		})
	})
	if err != nil {
		return ref.WorkspaceID{}, err
	}
	v.store.logger.Info("workspace removed", "workspace_id", id.String())
	return id, nil
}

// Join implements backend.Mutations.
func (v *Viewer) Join(ctx context.Context, id ref.WorkspaceID, code string) (ref.WorkspaceID, error) {
	err := v.store.write(ctx, []backend.Topic{backend.TopicMembers}, func(conn *sqlite.Conn) error {
		if _, err := v.requireUser(conn); err != nil {
			return err
		}
		workspace, err := loadWorkspace(conn, id)
		if err != nil {
			return err
		}
		if workspace == nil {
			return backend.NotFound("workspace", id)
		}
		if !joincode.Equal(code, workspace.JoinCode) {
			return backend.Errorf(backend.CodeInvalidParam, "invalid join code")
		}
		existing, err := membership(conn, id, v.userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return backend.Errorf(backend.CodeConflict, "already a member of this workspace")
		}
		return insertMember(conn, ref.NewMemberID(), id, v.userID, schema.RoleMember, toNanos(v.store.now()))
	})
	if err != nil {
		return ref.WorkspaceID{}, err
	}
	v.store.logger.Info("workspace joined",
		"workspace_id", id.String(),
		"user_id", v.userID.String(),
	)
	return id, nil
}

// NewJoinCode implements backend.Mutations.
func (v *Viewer) NewJoinCode(ctx context.Context, id ref.WorkspaceID) (ref.WorkspaceID, error) {
	err := v.store.write(ctx, []backend.Topic{backend.TopicWorkspaces}, func(conn *sqlite.Conn) error {
		if _, err := v.requireAdmin(conn, id); err != nil {
			return err
		}
		workspace, err := loadWorkspace(conn, id)
		if err != nil {
			return err
		}
		if workspace == nil {
			return backend.NotFound("workspace", id)
		}
		code, err := joincode.Regenerate(workspace.JoinCode)
		if err != nil {
			return fmt.Errorf("chatstore: %w", err)
		}
		return sqlitex.Execute(conn, "UPDATE workspaces SET join_code = ? WHERE id = ?", &sqlitex.ExecOptions{
			Args: []any{code, id.String()},
		})
	})
	if err != nil {
		return ref.WorkspaceID{}, err
	}
	return id, nil
}

func insertMember(conn *sqlite.Conn, id ref.MemberID, workspaceID ref.WorkspaceID, userID ref.UserID, role schema.Role, now int64) error {
	if err := sqlitex.Execute(conn, `INSERT INTO members (id, workspace_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{id.String(), workspaceID.String(), userID.String(), string(role), now},
	}); err != nil {
		return fmt.Errorf("chatstore: inserting member: %w", err)
	}
	return nil
}
