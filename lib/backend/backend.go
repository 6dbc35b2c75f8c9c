// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"time"

	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// Queries reads entities as the authenticated user sees them. Entities
// the user may not see are reported as ErrNotFound.
type Queries interface {
	// CurrentUser returns the authenticated user.
	CurrentUser(ctx context.Context) (*schema.User, error)

	// ListWorkspaces returns the workspaces the user is a member of.
	ListWorkspaces(ctx context.Context) ([]schema.Workspace, error)

	// GetWorkspace returns a workspace the user is a member of.
	GetWorkspace(ctx context.Context, id ref.WorkspaceID) (*schema.Workspace, error)

	// GetWorkspaceInfo returns the public name of any workspace and
	// whether the user is already a member.
	GetWorkspaceInfo(ctx context.Context, id ref.WorkspaceID) (*schema.WorkspaceInfo, error)

	// ListMembers returns every member of a workspace.
	ListMembers(ctx context.Context, workspaceID ref.WorkspaceID) ([]schema.Member, error)

	// GetMember returns a member of a workspace the user belongs to.
	GetMember(ctx context.Context, id ref.MemberID) (*schema.Member, error)

	// GetCurrentMember returns the user's own membership in a workspace.
	GetCurrentMember(ctx context.Context, workspaceID ref.WorkspaceID) (*schema.Member, error)

	// ListChannels returns the channels of a workspace.
	ListChannels(ctx context.Context, workspaceID ref.WorkspaceID) ([]schema.Channel, error)

	// GetChannel returns a channel.
	GetChannel(ctx context.Context, id ref.ChannelID) (*schema.Channel, error)

	// GetConversation returns a conversation.
	GetConversation(ctx context.Context, id ref.ConversationID) (*schema.Conversation, error)

	// GetMessage returns a fully populated message.
	GetMessage(ctx context.Context, id ref.MessageID) (*schema.MessageView, error)

	// GetMessages returns one page of a message feed, newest first.
	GetMessages(ctx context.Context, query MessagesQuery) (*MessagePage, error)
}

// Mutations changes backend state. Every method returns the ID of the
// entity it acted on.
type Mutations interface {
	// CreateWorkspace creates a workspace owned by the user, makes the
	// user its admin, and creates a "general" channel.
	CreateWorkspace(ctx context.Context, name string) (ref.WorkspaceID, error)

	// UpdateWorkspace renames a workspace. Admin only.
	UpdateWorkspace(ctx context.Context, id ref.WorkspaceID, name string) (ref.WorkspaceID, error)

	// RemoveWorkspace deletes a workspace and everything in it. Admin only.
	RemoveWorkspace(ctx context.Context, id ref.WorkspaceID) (ref.WorkspaceID, error)

	// Join adds the user to a workspace when joinCode matches its
	// current code (case-insensitive). Fails with CodeConflict when the
	// user is already a member.
	Join(ctx context.Context, id ref.WorkspaceID, joinCode string) (ref.WorkspaceID, error)

	// NewJoinCode replaces a workspace's join code with a fresh one that
	// differs from the previous code. Admin only.
	NewJoinCode(ctx context.Context, id ref.WorkspaceID) (ref.WorkspaceID, error)

	// UpdateMember changes a member's role. Admin only.
	UpdateMember(ctx context.Context, id ref.MemberID, role schema.Role) (ref.MemberID, error)

	// RemoveMember removes a member (an admin removing someone else, or
	// a non-admin leaving). Admins cannot be removed and cannot leave.
	// The member's messages, reactions, and conversations are deleted.
	RemoveMember(ctx context.Context, id ref.MemberID) (ref.MemberID, error)

	// CreateChannel adds a channel to a workspace. Admin only.
	CreateChannel(ctx context.Context, workspaceID ref.WorkspaceID, name string) (ref.ChannelID, error)

	// UpdateChannel renames a channel. Admin only.
	UpdateChannel(ctx context.Context, id ref.ChannelID, name string) (ref.ChannelID, error)

	// RemoveChannel deletes a channel and its messages. Admin only.
	RemoveChannel(ctx context.Context, id ref.ChannelID) (ref.ChannelID, error)

	// CreateOrGetConversation returns the conversation between the
	// user's membership in a workspace and another member, creating it
	// on first use.
	CreateOrGetConversation(ctx context.Context, workspaceID ref.WorkspaceID, memberID ref.MemberID) (ref.ConversationID, error)

	// CreateMessage posts a message to a channel or conversation, or a
	// reply to a thread.
	CreateMessage(ctx context.Context, request CreateMessageRequest) (ref.MessageID, error)

	// UpdateMessage replaces a message body. Author only.
	UpdateMessage(ctx context.Context, id ref.MessageID, body string) (ref.MessageID, error)

	// RemoveMessage deletes a message. Author only.
	RemoveMessage(ctx context.Context, id ref.MessageID) (ref.MessageID, error)

	// ToggleReaction adds the user's reaction with value to a message,
	// or removes it when already present. Returns the message ID.
	ToggleReaction(ctx context.Context, messageID ref.MessageID, value string) (ref.MessageID, error)

	// UploadMedia stores an attachment and returns its media URL for
	// use in CreateMessageRequest.Image.
	UploadMedia(ctx context.Context, contentType string, data []byte) (string, error)
}

// Watcher is the backend's change feed.
type Watcher interface {
	// Watch blocks until the backend's data version exceeds since, then
	// returns the topics changed in between. With since == 0 it returns
	// the current version immediately. If timeout elapses first, it
	// returns a ChangeSet with Version == since and no topics.
	Watch(ctx context.Context, since uint64, timeout time.Duration) (*ChangeSet, error)
}

// Backend is the complete boundary as seen by one authenticated user.
type Backend interface {
	Queries
	Mutations
	Watcher
}

// CreateMessageRequest holds the parameters of CreateMessage. Set
// exactly one of ChannelID, ConversationID, or ParentMessageID; replies
// inherit their parent's channel or conversation.
type CreateMessageRequest struct {
	WorkspaceID     ref.WorkspaceID    `json:"workspace_id"`
	ChannelID       ref.ChannelID      `json:"channel_id"`
	ConversationID  ref.ConversationID `json:"conversation_id"`
	ParentMessageID ref.MessageID      `json:"parent_message_id"`
	Body            string             `json:"body"`
	Image           string             `json:"image,omitempty"`
}
