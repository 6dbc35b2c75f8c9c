// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// maxReactionLength bounds a reaction value in runes. Emoji with
// modifiers and joiners span several runes.
const maxReactionLength = 16

// ToggleReaction implements backend.Mutations.
func (v *Viewer) ToggleReaction(ctx context.Context, messageID ref.MessageID, value string) (ref.MessageID, error) {
	value = strings.TrimSpace(value)
	if value == "" || utf8.RuneCountInString(value) > maxReactionLength {
		return ref.MessageID{}, backend.Errorf(backend.CodeInvalidParam, "reaction must be 1 to %d characters", maxReactionLength)
	}

	added := false
	err := v.store.write(ctx, []backend.Topic{backend.TopicReactions}, func(conn *sqlite.Conn) error {
		message, err := loadMessage(conn, messageID)
		if err != nil {
			return err
		}
		if message == nil {
			return backend.NotFound("message", messageID)
		}
		member, err := v.requireMember(conn, message.WorkspaceID, backend.ErrForbidden)
		if err != nil {
			return err
		}

		present, err := exists(conn, "SELECT 1 FROM reactions WHERE message_id = ? AND member_id = ? AND value = ?",
			messageID.String(), member.ID.String(), value)
		if err != nil {
			return err
		}
		if present {
			return sqlitex.Execute(conn, "DELETE FROM reactions WHERE message_id = ? AND member_id = ? AND value = ?", &sqlitex.ExecOptions{
				Args: []any{messageID.String(), member.ID.String(), value},
			})
		}

		added = true
		return sqlitex.Execute(conn, `INSERT INTO reactions (id, workspace_id, message_id, member_id, value, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
			Args: []any{
				ref.NewReactionID().String(),
				message.WorkspaceID.String(),
				messageID.String(),
				member.ID.String(),
				value,
				toNanos(v.store.now()),
			},
		})
	})
	if err != nil {
		return ref.MessageID{}, err
	}
	v.store.logger.Debug("reaction toggled",
		"message_id", messageID.String(),
		"value", value,
		"added", added,
	)
	return messageID, nil
}

// aggregateReactions groups a message's reactions by value. Groups are
// ordered by their first reaction, and member IDs within a group by
// reaction time.
func aggregateReactions(conn *sqlite.Conn, messageID ref.MessageID) ([]schema.ReactionAggregate, error) {
	var aggregates []schema.ReactionAggregate
	index := make(map[string]int)
	err := sqlitex.Execute(conn, `SELECT value, member_id FROM reactions
		WHERE message_id = ? ORDER BY created_at, id`, &sqlitex.ExecOptions{
		Args: []any{messageID.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			r := &row{stmt: stmt}
			value := r.text(0)
			var memberID ref.MemberID
			r.id(1, &memberID)
			if r.err != nil {
				return r.err
			}
			position, found := index[value]
			if !found {
				position = len(aggregates)
				index[value] = position
				aggregates = append(aggregates, schema.ReactionAggregate{Value: value})
			}
			aggregates[position].MemberIDs = append(aggregates[position].MemberIDs, memberID)
			aggregates[position].Count++
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chatstore: reading reactions: %w", err)
	}
	return aggregates, nil
}
