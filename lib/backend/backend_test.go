// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/huddle-chat/huddle/lib/ref"
)

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("loading member: %w", NotFound("member", ref.NewMemberID()))

	if !errors.Is(err, ErrNotFound) {
		t.Error("wrapped not-found error should match ErrNotFound")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("not-found error should not match ErrForbidden")
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should see through wrapping")
	}
	if IsCode(errors.New("plain"), CodeNotFound) {
		t.Error("plain error should not carry a code")
	}

	var backendErr *Error
	if !errors.As(err, &backendErr) {
		t.Fatal("errors.As should extract *Error")
	}
	if backendErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", backendErr.StatusCode, http.StatusNotFound)
	}
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeForbidden, http.StatusForbidden},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{"something_else", http.StatusInternalServerError},
	}
	for _, test := range tests {
		t.Run(test.code, func(t *testing.T) {
			if got := StatusForCode(test.code); got != test.want {
				t.Errorf("StatusForCode(%q) = %d, want %d", test.code, got, test.want)
			}
		})
	}
}

func TestCursorToken(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC),
		ID:        ref.NewMessageID(),
	}

	parsed, err := ParseCursor(cursor.Token())
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) || parsed.ID != cursor.ID {
		t.Errorf("round trip = %+v, want %+v", parsed, cursor)
	}

	for _, token := range []string{"", "!!!", "oA"} {
		if _, err := ParseCursor(token); !IsCode(err, CodeInvalidParam) {
			t.Errorf("ParseCursor(%q) error = %v, want invalid_param", token, err)
		}
	}
}

func TestCursorCompare(t *testing.T) {
	early := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	late := early.Add(time.Second)
	a := ref.MustParseMessageID("msg_00000000-0000-0000-0000-00000000000a")
	b := ref.MustParseMessageID("msg_00000000-0000-0000-0000-00000000000b")

	newer := Cursor{CreatedAt: late, ID: a}
	older := Cursor{CreatedAt: early, ID: b}
	if newer.Compare(older) >= 0 {
		t.Error("newer cursor should sort first")
	}
	if older.Compare(newer) <= 0 {
		t.Error("older cursor should sort last")
	}

	// Equal times fall back to descending ID.
	tieA := Cursor{CreatedAt: early, ID: a}
	tieB := Cursor{CreatedAt: early, ID: b}
	if tieB.Compare(tieA) >= 0 {
		t.Error("larger ID should sort first on a time tie")
	}
	if tieA.Compare(tieA) != 0 {
		t.Error("cursor should compare equal to itself")
	}
}

func TestMessagesQueryValidate(t *testing.T) {
	channel := ref.NewChannelID()
	conversation := ref.NewConversationID()

	tests := []struct {
		name    string
		query   MessagesQuery
		wantErr bool
	}{
		{"channel", MessagesQuery{ChannelID: channel}, false},
		{"conversation", MessagesQuery{ConversationID: conversation, NumItems: 10}, false},
		{"thread", MessagesQuery{ParentMessageID: ref.NewMessageID()}, false},
		{"none", MessagesQuery{}, true},
		{"two selectors", MessagesQuery{ChannelID: channel, ConversationID: conversation}, true},
		{"negative size", MessagesQuery{ChannelID: channel, NumItems: -1}, true},
		{"oversized", MessagesQuery{ChannelID: channel, NumItems: MaxPageSize + 1}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.query.Validate()
			if (err != nil) != test.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
}

func TestMergeTopics(t *testing.T) {
	merged := MergeTopics(
		[]Topic{TopicMessages, TopicMembers},
		[]Topic{TopicReactions, TopicMessages},
	)
	want := []Topic{TopicMembers, TopicMessages, TopicReactions}
	if fmt.Sprint(merged) != fmt.Sprint(want) {
		t.Errorf("MergeTopics = %v, want %v", merged, want)
	}
	if !Intersects(merged, []Topic{TopicReactions}) {
		t.Error("Intersects should find reactions")
	}
	if Intersects(merged, []Topic{TopicChannels}) {
		t.Error("Intersects should not find channels")
	}
}
