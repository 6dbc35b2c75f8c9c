// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package ref

type workspaceKind struct{}

func (workspaceKind) prefix() string { return "ws" }
func (workspaceKind) name() string   { return "workspace" }

type memberKind struct{}

func (memberKind) prefix() string { return "mem" }
func (memberKind) name() string   { return "member" }

type userKind struct{}

func (userKind) prefix() string { return "usr" }
func (userKind) name() string   { return "user" }

type channelKind struct{}

func (channelKind) prefix() string { return "ch" }
func (channelKind) name() string   { return "channel" }

type conversationKind struct{}

func (conversationKind) prefix() string { return "conv" }
func (conversationKind) name() string   { return "conversation" }

type messageKind struct{}

func (messageKind) prefix() string { return "msg" }
func (messageKind) name() string   { return "message" }

type reactionKind struct{}

func (reactionKind) prefix() string { return "rx" }
func (reactionKind) name() string   { return "reaction" }

// WorkspaceID identifies a workspace.
type WorkspaceID = ID[workspaceKind]

// MemberID identifies a user's membership in one workspace.
type MemberID = ID[memberKind]

// UserID identifies an account on the backend.
type UserID = ID[userKind]

// ChannelID identifies a channel within a workspace.
type ChannelID = ID[channelKind]

// ConversationID identifies a direct-message pairing of two members.
type ConversationID = ID[conversationKind]

// MessageID identifies a message, including thread replies.
type MessageID = ID[messageKind]

// ReactionID identifies one member's reaction with one emoji.
type ReactionID = ID[reactionKind]

// NewWorkspaceID mints a fresh workspace ID. Only the backend mints IDs.
func NewWorkspaceID() WorkspaceID { return newID[workspaceKind]() }

// NewMemberID mints a fresh member ID.
func NewMemberID() MemberID { return newID[memberKind]() }

// NewUserID mints a fresh user ID.
func NewUserID() UserID { return newID[userKind]() }

// NewChannelID mints a fresh channel ID.
func NewChannelID() ChannelID { return newID[channelKind]() }

// NewConversationID mints a fresh conversation ID.
func NewConversationID() ConversationID { return newID[conversationKind]() }

// NewMessageID mints a fresh message ID.
func NewMessageID() MessageID { return newID[messageKind]() }

// NewReactionID mints a fresh reaction ID.
func NewReactionID() ReactionID { return newID[reactionKind]() }

// ParseWorkspaceID validates a raw workspace ID string.
func ParseWorkspaceID(raw string) (WorkspaceID, error) { return parseID[workspaceKind](raw) }

// ParseMemberID validates a raw member ID string.
func ParseMemberID(raw string) (MemberID, error) { return parseID[memberKind](raw) }

// ParseUserID validates a raw user ID string.
func ParseUserID(raw string) (UserID, error) { return parseID[userKind](raw) }

// ParseChannelID validates a raw channel ID string.
func ParseChannelID(raw string) (ChannelID, error) { return parseID[channelKind](raw) }

// ParseConversationID validates a raw conversation ID string.
func ParseConversationID(raw string) (ConversationID, error) {
	return parseID[conversationKind](raw)
}

// ParseMessageID validates a raw message ID string.
func ParseMessageID(raw string) (MessageID, error) { return parseID[messageKind](raw) }

// ParseReactionID validates a raw reaction ID string.
func ParseReactionID(raw string) (ReactionID, error) { return parseID[reactionKind](raw) }

// MustParseWorkspaceID is like ParseWorkspaceID but panics on error.
// Use in tests and static initialization.
func MustParseWorkspaceID(raw string) WorkspaceID { return mustParseID[workspaceKind](raw) }

// MustParseMemberID is like ParseMemberID but panics on error.
func MustParseMemberID(raw string) MemberID { return mustParseID[memberKind](raw) }

// MustParseMessageID is like ParseMessageID but panics on error.
func MustParseMessageID(raw string) MessageID { return mustParseID[messageKind](raw) }
