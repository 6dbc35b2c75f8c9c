// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"time"

	"github.com/huddle-chat/huddle/lib/ref"
)

// Role is a member's permission level within a workspace.
type Role string

const (
	// RoleAdmin may rename the workspace, regenerate its join code,
	// manage channels, and change or remove other members.
	RoleAdmin Role = "admin"

	// RoleMember is the default role granted by join-by-code.
	RoleMember Role = "member"
)

// ParseRole validates a role string.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q (must be %q or %q)", raw, RoleAdmin, RoleMember)
	}
	return role, nil
}

// Valid reports whether r is one of the two enumerated roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User is an account on the backend.
type User struct {
	ID    ref.UserID `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Image string     `json:"image,omitempty"`
}

// Workspace is the top-level tenant container.
type Workspace struct {
	ID        ref.WorkspaceID `json:"id"`
	Name      string          `json:"name"`
	JoinCode  string          `json:"join_code"`
	UserID    ref.UserID      `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// WorkspaceInfo is the public projection of a workspace shown on the
// join screen. It is readable by any authenticated user, member or not.
type WorkspaceInfo struct {
	Name     string `json:"name"`
	IsMember bool   `json:"is_member"`
}

// Member is a user's membership record in one workspace, populated
// with the user's profile.
type Member struct {
	ID          ref.MemberID    `json:"id"`
	WorkspaceID ref.WorkspaceID `json:"workspace_id"`
	UserID      ref.UserID      `json:"user_id"`
	Role        Role            `json:"role"`
	User        User            `json:"user"`
}

// Channel is a named message stream within a workspace.
type Channel struct {
	ID          ref.ChannelID   `json:"id"`
	WorkspaceID ref.WorkspaceID `json:"workspace_id"`
	Name        string          `json:"name"`
}

// Conversation pairs two members of the same workspace for direct
// messaging. The pair is unordered.
type Conversation struct {
	ID          ref.ConversationID `json:"id"`
	WorkspaceID ref.WorkspaceID    `json:"workspace_id"`
	MemberOneID ref.MemberID       `json:"member_one_id"`
	MemberTwoID ref.MemberID       `json:"member_two_id"`
}

// Other returns the participant that is not self. If self is not a
// participant, MemberOneID is returned.
func (c Conversation) Other(self ref.MemberID) ref.MemberID {
	if c.MemberOneID == self {
		return c.MemberTwoID
	}
	return c.MemberOneID
}

// Message is a single posted message. Exactly one of ChannelID and
// ConversationID is set; thread replies carry their parent's stream
// and set ParentMessageID.
type Message struct {
	ID              ref.MessageID      `json:"id"`
	WorkspaceID     ref.WorkspaceID    `json:"workspace_id"`
	ChannelID       ref.ChannelID      `json:"channel_id"`
	ConversationID  ref.ConversationID `json:"conversation_id"`
	ParentMessageID ref.MessageID      `json:"parent_message_id"`
	MemberID        ref.MemberID       `json:"member_id"`

	// Body is rich content in Markdown.
	Body string `json:"body"`

	// Image is the media URL of an attached image, or empty.
	Image string `json:"image,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the time of the last edit. Zero when the message
	// has never been edited.
	UpdatedAt time.Time `json:"updated_at"`
}

// Edited reports whether the message has been edited since creation.
func (m Message) Edited() bool { return !m.UpdatedAt.IsZero() }

// IsReply reports whether the message is a thread reply.
func (m Message) IsReply() bool { return !m.ParentMessageID.IsZero() }
