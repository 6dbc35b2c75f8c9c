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

// ListChannels implements backend.Queries.
func (v *Viewer) ListChannels(ctx context.Context, workspaceID ref.WorkspaceID) ([]schema.Channel, error) {
	var channels []schema.Channel
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		if _, err := v.requireMember(conn, workspaceID, backend.NotFound("workspace", workspaceID)); err != nil {
			return err
		}
		return sqlitex.Execute(conn, `SELECT id, workspace_id, name FROM channels
			WHERE workspace_id = ? ORDER BY created_at, id`, &sqlitex.ExecOptions{
			Args: []any{workspaceID.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				channel, err := scanChannel(stmt)
				if err != nil {
					return err
				}
				channels = append(channels, *channel)
				return nil
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// GetChannel implements backend.Queries.
func (v *Viewer) GetChannel(ctx context.Context, id ref.ChannelID) (*schema.Channel, error) {
	notFound := backend.NotFound("channel", id)
	var channel *schema.Channel
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		var err error
		channel, err = loadChannel(conn, id)
		if err != nil {
			return err
		}
		if channel == nil {
			return notFound
		}
		_, err = v.requireMember(conn, channel.WorkspaceID, notFound)
		return err
	})
	if err != nil {
		return nil, err
	}
	return channel, nil
}

// CreateChannel implements backend.Mutations.
func (v *Viewer) CreateChannel(ctx context.Context, workspaceID ref.WorkspaceID, name string) (ref.ChannelID, error) {
	name, err := normalizeChannelName(name)
	if err != nil {
		return ref.ChannelID{}, err
	}
	channelID := ref.NewChannelID()
	err = v.store.write(ctx, []backend.Topic{backend.TopicChannels}, func(conn *sqlite.Conn) error {
		if _, err := v.requireAdmin(conn, workspaceID); err != nil {
			return err
		}
		return insertChannel(conn, channelID, workspaceID, name, toNanos(v.store.now()))
	})
	if err != nil {
		return ref.ChannelID{}, err
	}
	return channelID, nil
}

// UpdateChannel implements backend.Mutations.
func (v *Viewer) UpdateChannel(ctx context.Context, id ref.ChannelID, name string) (ref.ChannelID, error) {
	name, err := normalizeChannelName(name)
	if err != nil {
		return ref.ChannelID{}, err
	}
	err = v.store.write(ctx, []backend.Topic{backend.TopicChannels}, func(conn *sqlite.Conn) error {
		channel, err := loadChannel(conn, id)
		if err != nil {
			return err
		}
		if channel == nil {
			return backend.NotFound("channel", id)
		}
		if _, err := v.requireAdmin(conn, channel.WorkspaceID); err != nil {
			return err
		}
		return sqlitex.Execute(conn, "UPDATE channels SET name = ? WHERE id = ?", &sqlitex.ExecOptions{
			Args: []any{name, id.String()},
		})
	})
	if err != nil {
		return ref.ChannelID{}, err
	}
	return id, nil
}

// RemoveChannel implements backend.Mutations.
func (v *Viewer) RemoveChannel(ctx context.Context, id ref.ChannelID) (ref.ChannelID, error) {
	topics := []backend.Topic{backend.TopicChannels, backend.TopicMessages, backend.TopicReactions}
	err := v.store.write(ctx, topics, func(conn *sqlite.Conn) error {
		channel, err := loadChannel(conn, id)
		if err != nil {
			return err
		}
		if channel == nil {
			return backend.NotFound("channel", id)
		}
		if _, err := v.requireAdmin(conn, channel.WorkspaceID); err != nil {
			return err
		}
		statements := []string{
			"DELETE FROM reactions WHERE message_id IN (SELECT id FROM messages WHERE channel_id = ?1)",
			"DELETE FROM messages WHERE channel_id = ?1",
			"DELETE FROM channels WHERE id = ?1",
		}
		for _, statement := range statements {
			if err := sqlitex.Execute(conn, statement, &sqlitex.ExecOptions{
				Args: []any{id.String()},
			}); err != nil {
				return fmt.Errorf("chatstore: removing channel: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return ref.ChannelID{}, err
	}
	return id, nil
}

func insertChannel(conn *sqlite.Conn, id ref.ChannelID, workspaceID ref.WorkspaceID, name string, now int64) error {
	if err := sqlitex.Execute(conn, `INSERT INTO channels (id, workspace_id, name, created_at)
		VALUES (?, ?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{id.String(), workspaceID.String(), name, now},
	}); err != nil {
		return fmt.Errorf("chatstore: inserting channel: %w", err)
	}
	return nil
}
