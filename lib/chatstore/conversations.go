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

// GetConversation implements backend.Queries.
func (v *Viewer) GetConversation(ctx context.Context, id ref.ConversationID) (*schema.Conversation, error) {
	notFound := backend.NotFound("conversation", id)
	var conversation *schema.Conversation
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		var err error
		conversation, err = loadConversation(conn, id)
		if err != nil {
			return err
		}
		if conversation == nil {
			return notFound
		}
		_, err = v.requireMember(conn, conversation.WorkspaceID, notFound)
		return err
	})
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

// CreateOrGetConversation implements backend.Mutations.
func (v *Viewer) CreateOrGetConversation(ctx context.Context, workspaceID ref.WorkspaceID, memberID ref.MemberID) (ref.ConversationID, error) {
	var conversationID ref.ConversationID
	created := false

	// The write publishes nothing itself; a created conversation is
	// announced after commit.
	err := v.store.write(ctx, nil, func(conn *sqlite.Conn) error {
		current, err := v.requireMember(conn, workspaceID, backend.ErrForbidden)
		if err != nil {
			return err
		}
		other, err := loadMember(conn, memberID)
		if err != nil {
			return err
		}
		if other == nil || other.WorkspaceID != workspaceID {
			return backend.NotFound("member", memberID)
		}

		err = sqlitex.Execute(conn, `SELECT id, workspace_id, member_one_id, member_two_id FROM conversations
			WHERE workspace_id = ?1
			  AND ((member_one_id = ?2 AND member_two_id = ?3) OR (member_one_id = ?3 AND member_two_id = ?2))
			LIMIT 1`, &sqlitex.ExecOptions{
			Args: []any{workspaceID.String(), current.ID.String(), other.ID.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				conversation, err := scanConversation(stmt)
				if err != nil {
					return err
				}
				conversationID = conversation.ID
				return nil
			},
		})
		if err != nil {
			return fmt.Errorf("chatstore: finding conversation: %w", err)
		}
		if !conversationID.IsZero() {
			return nil
		}

		conversationID = ref.NewConversationID()
		created = true
		if err := sqlitex.Execute(conn, `INSERT INTO conversations
			(id, workspace_id, member_one_id, member_two_id, created_at)
			VALUES (?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
			Args: []any{
				conversationID.String(),
				workspaceID.String(),
				current.ID.String(),
				other.ID.String(),
				toNanos(v.store.now()),
			},
		}); err != nil {
			return fmt.Errorf("chatstore: inserting conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return ref.ConversationID{}, err
	}
	if created {
		v.store.feed.publish(backend.TopicConversations)
	}
	return conversationID, nil
}
