// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"fmt"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// stream identifies one message feed: a channel's or conversation's
// top-level messages, or a thread's replies.
type stream struct {
	workspaceID ref.WorkspaceID
	where       string
	args        []any
}

// resolveStream locates the feed a query or new message targets and
// the workspace that owns it. Missing targets are not found.
func resolveStream(conn *sqlite.Conn, channelID ref.ChannelID, conversationID ref.ConversationID, parentID ref.MessageID) (*stream, *schema.Message, error) {
	switch {
	case !channelID.IsZero():
		channel, err := loadChannel(conn, channelID)
		if err != nil {
			return nil, nil, err
		}
		if channel == nil {
			return nil, nil, backend.NotFound("channel", channelID)
		}
		return &stream{
			workspaceID: channel.WorkspaceID,
			where:       "channel_id = ? AND parent_message_id = ''",
			args:        []any{channelID.String()},
		}, nil, nil

	case !conversationID.IsZero():
		conversation, err := loadConversation(conn, conversationID)
		if err != nil {
			return nil, nil, err
		}
		if conversation == nil {
			return nil, nil, backend.NotFound("conversation", conversationID)
		}
		return &stream{
			workspaceID: conversation.WorkspaceID,
			where:       "conversation_id = ? AND parent_message_id = ''",
			args:        []any{conversationID.String()},
		}, nil, nil

	case !parentID.IsZero():
		parent, err := loadMessage(conn, parentID)
		if err != nil {
			return nil, nil, err
		}
		if parent == nil {
			return nil, nil, backend.NotFound("message", parentID)
		}
		return &stream{
			workspaceID: parent.WorkspaceID,
			where:       "parent_message_id = ?",
			args:        []any{parentID.String()},
		}, parent, nil
	}
	return nil, nil, backend.Errorf(backend.CodeInvalidParam, "a channel, conversation, or parent message is required")
}

// GetMessage implements backend.Queries.
func (v *Viewer) GetMessage(ctx context.Context, id ref.MessageID) (*schema.MessageView, error) {
	notFound := backend.NotFound("message", id)
	var view *schema.MessageView
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		message, err := loadMessage(conn, id)
		if err != nil {
			return err
		}
		if message == nil {
			if _, err := v.requireUser(conn); err != nil {
				return err
			}
			return notFound
		}
		if _, err := v.requireMember(conn, message.WorkspaceID, notFound); err != nil {
			return err
		}
		views, err := populate(conn, []schema.Message{*message})
		if err != nil {
			return err
		}
		if len(views) == 0 {
			// The author's membership is gone.
			return notFound
		}
		view = &views[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetMessages implements backend.Queries.
func (v *Viewer) GetMessages(ctx context.Context, query backend.MessagesQuery) (*backend.MessagePage, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	var upper, lower *backend.Cursor
	if query.Cursor != "" {
		cursor, err := backend.ParseCursor(query.Cursor)
		if err != nil {
			return nil, err
		}
		upper = &cursor
	}
	if query.EndCursor != "" {
		cursor, err := backend.ParseCursor(query.EndCursor)
		if err != nil {
			return nil, err
		}
		lower = &cursor
	}
	limit := query.NumItems
	if limit == 0 {
		limit = backend.DefaultPageSize
	}

	var page *backend.MessagePage
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		feed, _, err := resolveStream(conn, query.ChannelID, query.ConversationID, query.ParentMessageID)
		if backend.IsNotFound(err) {
			if _, userErr := v.requireUser(conn); userErr != nil {
				return userErr
			}
		}
		if err != nil {
			return err
		}
		if _, err := v.requireMember(conn, feed.workspaceID, backend.Errorf(backend.CodeNotFound, "message feed not found")); err != nil {
			return err
		}
		page, err = readPage(conn, feed, upper, lower, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// readPage reads messages older than upper (when set), down to and
// including lower (when set) or limit messages otherwise.
func readPage(conn *sqlite.Conn, feed *stream, upper, lower *backend.Cursor, limit int) (*backend.MessagePage, error) {
	where := []string{feed.where}
	args := append([]any(nil), feed.args...)
	if upper != nil {
		where = append(where, "(created_at < ? OR (created_at = ? AND id < ?))")
		nanos := toNanos(upper.CreatedAt)
		args = append(args, nanos, nanos, upper.ID.String())
	}
	if lower != nil {
		where = append(where, "(created_at > ? OR (created_at = ? AND id >= ?))")
		nanos := toNanos(lower.CreatedAt)
		args = append(args, nanos, nanos, lower.ID.String())
	}
	query := "SELECT " + messageColumns + " FROM messages WHERE " + strings.Join(where, " AND ") +
		" ORDER BY created_at DESC, id DESC"
	if lower == nil {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var messages []schema.Message
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			message, err := scanMessage(stmt)
			if err != nil {
				return err
			}
			messages = append(messages, *message)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chatstore: reading messages: %w", err)
	}

	// A pinned page always continues at its lower bound, even when
	// the message at that bound has since been deleted, so the next
	// page starts exactly where this one ends.
	var continueAt *backend.Cursor
	switch {
	case lower != nil:
		continueAt = lower
	case len(messages) > 0:
		cursor := backend.CursorOf(messages[len(messages)-1])
		continueAt = &cursor
	default:
		continueAt = upper
	}

	page := &backend.MessagePage{IsDone: true}
	if continueAt != nil {
		page.ContinueCursor = continueAt.Token()
		nanos := toNanos(continueAt.CreatedAt)
		older, err := exists(conn,
			"SELECT 1 FROM messages WHERE "+feed.where+
				" AND (created_at < ? OR (created_at = ? AND id < ?)) LIMIT 1",
			append(append([]any(nil), feed.args...), nanos, nanos, continueAt.ID.String())...)
		if err != nil {
			return nil, err
		}
		page.IsDone = !older
	}

	page.Messages, err = populate(conn, messages)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// populate builds views for messages, in order. Messages whose author
// member no longer exists are dropped.
func populate(conn *sqlite.Conn, messages []schema.Message) ([]schema.MessageView, error) {
	authors := make(map[ref.MemberID]*schema.Member)
	views := make([]schema.MessageView, 0, len(messages))
	for _, message := range messages {
		author, cached := authors[message.MemberID]
		if !cached {
			var err error
			author, err = loadMember(conn, message.MemberID)
			if err != nil {
				return nil, err
			}
			authors[message.MemberID] = author
		}
		if author == nil {
			continue
		}

		reactions, err := aggregateReactions(conn, message.ID)
		if err != nil {
			return nil, err
		}
		thread, err := summarizeThread(conn, message.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, schema.MessageView{
			Message:   message,
			Member:    *author,
			User:      author.User,
			Reactions: reactions,
			Thread:    thread,
		})
	}
	return views, nil
}

// summarizeThread counts the replies to a message and describes the
// most recent one.
func summarizeThread(conn *sqlite.Conn, parentID ref.MessageID) (schema.ThreadSummary, error) {
	var summary schema.ThreadSummary
	err := sqlitex.Execute(conn, "SELECT COUNT(*) FROM messages WHERE parent_message_id = ?", &sqlitex.ExecOptions{
		Args: []any{parentID.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			summary.Count = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return summary, fmt.Errorf("chatstore: counting replies: %w", err)
	}
	if summary.Count == 0 {
		return summary, nil
	}

	err = sqlitex.Execute(conn, `SELECT msg.created_at, u.name, u.image
		FROM messages msg
		LEFT JOIN members m ON m.id = msg.member_id
		LEFT JOIN users u ON u.id = m.user_id
		WHERE msg.parent_message_id = ?
		ORDER BY msg.created_at DESC, msg.id DESC
		LIMIT 1`, &sqlitex.ExecOptions{
		Args: []any{parentID.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			r := &row{stmt: stmt}
			summary.Timestamp = r.time(0)
			summary.Name = r.text(1)
			summary.Image = r.text(2)
			return nil
		},
	})
	if err != nil {
		return summary, fmt.Errorf("chatstore: reading last reply: %w", err)
	}
	return summary, nil
}

// CreateMessage implements backend.Mutations.
func (v *Viewer) CreateMessage(ctx context.Context, request backend.CreateMessageRequest) (ref.MessageID, error) {
	selectors := 0
	for _, set := range []bool{!request.ChannelID.IsZero(), !request.ConversationID.IsZero(), !request.ParentMessageID.IsZero()} {
		if set {
			selectors++
		}
	}
	if selectors != 1 {
		return ref.MessageID{}, backend.Errorf(backend.CodeInvalidParam, "exactly one of channel, conversation, or parent message is required")
	}
	body := strings.TrimSpace(request.Body)
	image := strings.TrimSpace(request.Image)
	if body == "" && image == "" {
		return ref.MessageID{}, backend.Errorf(backend.CodeInvalidParam, "message body or image is required")
	}

	messageID := ref.NewMessageID()
	err := v.store.write(ctx, []backend.Topic{backend.TopicMessages}, func(conn *sqlite.Conn) error {
		feed, parent, err := resolveStream(conn, request.ChannelID, request.ConversationID, request.ParentMessageID)
		if err != nil {
			return err
		}
		if !request.WorkspaceID.IsZero() && request.WorkspaceID != feed.workspaceID {
			return backend.Errorf(backend.CodeInvalidParam, "target does not belong to workspace %s", request.WorkspaceID)
		}
		author, err := v.requireMember(conn, feed.workspaceID, backend.ErrForbidden)
		if err != nil {
			return err
		}

		message := schema.Message{
			ID:              messageID,
			WorkspaceID:     feed.workspaceID,
			ChannelID:       request.ChannelID,
			ConversationID:  request.ConversationID,
			ParentMessageID: request.ParentMessageID,
			MemberID:        author.ID,
			Body:            body,
			Image:           image,
			CreatedAt:       v.store.now(),
		}
		if parent != nil {
			if parent.IsReply() {
				return backend.Errorf(backend.CodeInvalidParam, "cannot reply to a thread reply")
			}
			// Replies live in their parent's channel or conversation.
			message.ChannelID = parent.ChannelID
			message.ConversationID = parent.ConversationID
		}
		return insertMessage(conn, message)
	})
	if err != nil {
		return ref.MessageID{}, err
	}
	return messageID, nil
}

// UpdateMessage implements backend.Mutations.
func (v *Viewer) UpdateMessage(ctx context.Context, id ref.MessageID, body string) (ref.MessageID, error) {
	body = strings.TrimSpace(body)
	err := v.store.write(ctx, []backend.Topic{backend.TopicMessages}, func(conn *sqlite.Conn) error {
		message, err := v.requireAuthor(conn, id)
		if err != nil {
			return err
		}
		if body == "" && message.Image == "" {
			return backend.Errorf(backend.CodeInvalidParam, "message body is required")
		}
		return sqlitex.Execute(conn, "UPDATE messages SET body = ?, updated_at = ? WHERE id = ?", &sqlitex.ExecOptions{
			Args: []any{body, toNanos(v.store.now()), id.String()},
		})
	})
	if err != nil {
		return ref.MessageID{}, err
	}
	return id, nil
}

// RemoveMessage implements backend.Mutations.
func (v *Viewer) RemoveMessage(ctx context.Context, id ref.MessageID) (ref.MessageID, error) {
	topics := []backend.Topic{backend.TopicMessages, backend.TopicReactions}
	err := v.store.write(ctx, topics, func(conn *sqlite.Conn) error {
		if _, err := v.requireAuthor(conn, id); err != nil {
			return err
		}
		for _, statement := range []string{
			"DELETE FROM reactions WHERE message_id = ?",
			"DELETE FROM messages WHERE id = ?",
		} {
			if err := sqlitex.Execute(conn, statement, &sqlitex.ExecOptions{
				Args: []any{id.String()},
			}); err != nil {
				return fmt.Errorf("chatstore: removing message: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return ref.MessageID{}, err
	}
	return id, nil
}

// requireAuthor loads a message the viewer wrote.
func (v *Viewer) requireAuthor(conn *sqlite.Conn, id ref.MessageID) (*schema.Message, error) {
	message, err := loadMessage(conn, id)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, backend.NotFound("message", id)
	}
	member, err := v.requireMember(conn, message.WorkspaceID, backend.ErrForbidden)
	if err != nil {
		return nil, err
	}
	if member.ID != message.MemberID {
		return nil, backend.Errorf(backend.CodeForbidden, "only the author may change a message")
	}
	return message, nil
}

func insertMessage(conn *sqlite.Conn, message schema.Message) error {
	if err := sqlitex.Execute(conn, `INSERT INTO messages
		(id, workspace_id, channel_id, conversation_id, parent_message_id,
		 member_id, body, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`, &sqlitex.ExecOptions{
		Args: []any{
			message.ID.String(),
			message.WorkspaceID.String(),
			message.ChannelID.String(),
			message.ConversationID.String(),
			message.ParentMessageID.String(),
			message.MemberID.String(),
			message.Body,
			message.Image,
			toNanos(message.CreatedAt),
		},
	}); err != nil {
		return fmt.Errorf("chatstore: inserting message: %w", err)
	}
	return nil
}
