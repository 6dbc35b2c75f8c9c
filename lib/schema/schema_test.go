// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"testing"
	"time"

	"github.com/huddle-chat/huddle/lib/ref"
)

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"admin", "member"} {
		role, err := ParseRole(raw)
		if err != nil {
			t.Errorf("ParseRole(%q): %v", raw, err)
		}
		if string(role) != raw {
			t.Errorf("ParseRole(%q) = %q", raw, role)
		}
	}
	for _, raw := range []string{"", "owner", "Admin"} {
		if _, err := ParseRole(raw); err == nil {
			t.Errorf("ParseRole(%q) succeeded, want error", raw)
		}
	}
}

func TestConversationOther(t *testing.T) {
	one, two := ref.NewMemberID(), ref.NewMemberID()
	conversation := Conversation{MemberOneID: one, MemberTwoID: two}
	if got := conversation.Other(one); got != two {
		t.Errorf("Other(one) = %v, want %v", got, two)
	}
	if got := conversation.Other(two); got != one {
		t.Errorf("Other(two) = %v, want %v", got, one)
	}
}

func TestMessageFlags(t *testing.T) {
	message := Message{CreatedAt: time.Unix(100, 0)}
	if message.Edited() {
		t.Error("fresh message reports Edited")
	}
	if message.IsReply() {
		t.Error("top-level message reports IsReply")
	}
	message.UpdatedAt = time.Unix(200, 0)
	message.ParentMessageID = ref.NewMessageID()
	if !message.Edited() || !message.IsReply() {
		t.Error("edited reply does not report Edited and IsReply")
	}
}

func TestReactionAggregateIncludes(t *testing.T) {
	alice, bob := ref.NewMemberID(), ref.NewMemberID()
	aggregate := ReactionAggregate{Value: "👍", Count: 1, MemberIDs: []ref.MemberID{alice}}
	if !aggregate.Includes(alice) {
		t.Error("aggregate should include alice")
	}
	if aggregate.Includes(bob) {
		t.Error("aggregate should not include bob")
	}
}
