// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/huddle-chat/huddle/lib/codec"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// Cursor is a position in a newest-first message feed: the sort key of
// one message. Feeds order by creation time, then by message ID to break
// ties, both descending.
type Cursor struct {
	CreatedAt time.Time     `cbor:"t"`
	ID        ref.MessageID `cbor:"id"`
}

// CursorOf returns the cursor positioned at message.
func CursorOf(message schema.Message) Cursor {
	return Cursor{CreatedAt: message.CreatedAt, ID: message.ID}
}

// Token encodes the cursor as an opaque string.
func (c Cursor) Token() string {
	token, err := codec.EncodeToken(c)
	if err != nil {
		// A Cursor holds only a time and a validated ID; encoding
		// cannot fail for well-formed values.
		panic(fmt.Sprintf("backend: encoding cursor: %v", err))
	}
	return token
}

// ParseCursor decodes a cursor token.
func ParseCursor(token string) (Cursor, error) {
	var cursor Cursor
	if err := codec.DecodeToken(token, &cursor); err != nil {
		return Cursor{}, Errorf(CodeInvalidParam, "invalid cursor: %v", err)
	}
	if cursor.ID.IsZero() {
		return Cursor{}, Errorf(CodeInvalidParam, "invalid cursor: missing message ID")
	}
	return cursor, nil
}

// Compare orders two cursors in feed order: negative when c sorts
// before other (c is newer), positive when after (older), zero when
// equal.
func (c Cursor) Compare(other Cursor) int {
	if !c.CreatedAt.Equal(other.CreatedAt) {
		if c.CreatedAt.After(other.CreatedAt) {
			return -1
		}
		return 1
	}
	// Descending by ID.
	return -strings.Compare(c.ID.String(), other.ID.String())
}

// MessagesQuery selects one page of a message feed.
//
// The feed is the top-level messages of ChannelID or ConversationID, or
// the replies to ParentMessageID. Set exactly one of the three.
//
// Cursor, when set, is an exclusive upper bound: only messages older
// than the cursor are returned. EndCursor, when set, is an inclusive
// lower bound and makes the page unlimited: the page holds every
// message from Cursor (exclusive) down to EndCursor (inclusive).
// Without EndCursor the page holds at most NumItems messages.
type MessagesQuery struct {
	ChannelID       ref.ChannelID      `json:"channel_id"`
	ConversationID  ref.ConversationID `json:"conversation_id"`
	ParentMessageID ref.MessageID      `json:"parent_message_id"`

	Cursor    string `json:"cursor,omitempty"`
	EndCursor string `json:"end_cursor,omitempty"`
	NumItems  int    `json:"num_items"`
}

// DefaultPageSize is used when NumItems is zero.
const DefaultPageSize = 20

// MaxPageSize caps NumItems.
const MaxPageSize = 200

// Validate checks the query's shape.
func (q MessagesQuery) Validate() error {
	selectors := 0
	if !q.ChannelID.IsZero() {
		selectors++
	}
	if !q.ConversationID.IsZero() {
		selectors++
	}
	if !q.ParentMessageID.IsZero() {
		selectors++
	}
	if selectors != 1 {
		return Errorf(CodeInvalidParam, "exactly one of channel, conversation, or parent message is required")
	}
	if q.NumItems < 0 || q.NumItems > MaxPageSize {
		return Errorf(CodeInvalidParam, "num_items must be between 0 and %d", MaxPageSize)
	}
	return nil
}

// MessagePage is one page of a feed.
type MessagePage struct {
	// Messages are newest first.
	Messages []schema.MessageView `json:"messages"`

	// ContinueCursor is the cursor of the oldest message in the page.
	// Pass it as Cursor to fetch the next (older) page. Empty when the
	// page is empty.
	ContinueCursor string `json:"continue_cursor"`

	// IsDone is set when no messages older than this page exist.
	IsDone bool `json:"is_done"`
}
