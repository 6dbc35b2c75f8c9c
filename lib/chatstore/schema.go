// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import "github.com/huddle-chat/huddle/lib/mediastore"

// Absent optional references are stored as the empty string rather
// than NULL so that the feed index covers every top-level lookup.
// Timestamps are Unix nanoseconds; updated_at is 0 for unedited
// messages.
var migrations = []string{
	`
CREATE TABLE users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	image         TEXT NOT NULL DEFAULT '',
	password_hash BLOB NOT NULL,
	created_at    INTEGER NOT NULL
);

CREATE TABLE sessions (
	token_hash TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX sessions_by_user ON sessions (user_id);

CREATE TABLE workspaces (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	join_code  TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE members (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	role         TEXT NOT NULL CHECK (role IN ('admin', 'member')),
	created_at   INTEGER NOT NULL,
	UNIQUE (workspace_id, user_id)
);
CREATE INDEX members_by_user ON members (user_id);

CREATE TABLE channels (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	name         TEXT NOT NULL,
	created_at   INTEGER NOT NULL
);
CREATE INDEX channels_by_workspace ON channels (workspace_id, created_at);

CREATE TABLE conversations (
	id            TEXT PRIMARY KEY,
	workspace_id  TEXT NOT NULL,
	member_one_id TEXT NOT NULL,
	member_two_id TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);
CREATE INDEX conversations_by_workspace ON conversations (workspace_id);

CREATE TABLE messages (
	id                TEXT PRIMARY KEY,
	workspace_id      TEXT NOT NULL,
	channel_id        TEXT NOT NULL DEFAULT '',
	conversation_id   TEXT NOT NULL DEFAULT '',
	parent_message_id TEXT NOT NULL DEFAULT '',
	member_id         TEXT NOT NULL,
	body              TEXT NOT NULL,
	image             TEXT NOT NULL DEFAULT '',
	created_at        INTEGER NOT NULL,
	updated_at        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX messages_by_channel ON messages (channel_id, parent_message_id, created_at, id);
CREATE INDEX messages_by_conversation ON messages (conversation_id, parent_message_id, created_at, id);
CREATE INDEX messages_by_parent ON messages (parent_message_id, created_at, id);
CREATE INDEX messages_by_member ON messages (member_id);
CREATE INDEX messages_by_workspace ON messages (workspace_id);

CREATE TABLE reactions (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	message_id   TEXT NOT NULL,
	member_id    TEXT NOT NULL,
	value        TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	UNIQUE (message_id, member_id, value)
);
CREATE INDEX reactions_by_member ON reactions (member_id);
CREATE INDEX reactions_by_workspace ON reactions (workspace_id);
`,
	mediastore.Schema,
}
