// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// HTTP paths of the wire API. Queries and mutations are POSTed to the
// prefix followed by the operation name, with a JSON body holding the
// operation's arguments.
const (
	PathRegister = "/v1/auth/register"
	PathLogin    = "/v1/auth/login"
	PathLogout   = "/v1/auth/logout"
	PathWhoAmI   = "/v1/auth/whoami"

	PathQuery    = "/v1/query/"
	PathMutation = "/v1/mutation/"

	// PathWatch takes "since" and "timeout" (milliseconds) query
	// parameters and returns a ChangeSet.
	PathWatch = "/v1/watch"

	// PathMedia accepts uploads by POST; objects are served from
	// PathMedia + "/" + hash.
	PathMedia = "/v1/media"

	// PathHealth reports liveness and the server version without
	// authentication.
	PathHealth = "/v1/health"
)

// Query operation names.
const (
	OpCurrentUser      = "current_user"
	OpListWorkspaces   = "list_workspaces"
	OpGetWorkspace     = "get_workspace"
	OpGetWorkspaceInfo = "get_workspace_info"
	OpListMembers      = "list_members"
	OpGetMember        = "get_member"
	OpGetCurrentMember = "get_current_member"
	OpListChannels     = "list_channels"
	OpGetChannel       = "get_channel"
	OpGetConversation  = "get_conversation"
	OpGetMessage       = "get_message"
	OpGetMessages      = "get_messages"
)

// Mutation operation names.
const (
	OpCreateWorkspace         = "create_workspace"
	OpUpdateWorkspace         = "update_workspace"
	OpRemoveWorkspace         = "remove_workspace"
	OpJoin                    = "join"
	OpNewJoinCode             = "new_join_code"
	OpUpdateMember            = "update_member"
	OpRemoveMember            = "remove_member"
	OpCreateChannel           = "create_channel"
	OpUpdateChannel           = "update_channel"
	OpRemoveChannel           = "remove_channel"
	OpCreateOrGetConversation = "create_or_get_conversation"
	OpCreateMessage           = "create_message"
	OpUpdateMessage           = "update_message"
	OpRemoveMessage           = "remove_message"
	OpToggleReaction          = "toggle_reaction"
)

// IDArgs addresses one entity.
type IDArgs[T any] struct {
	ID T `json:"id"`
}

// IDResult is the reply of every mutation.
type IDResult[T any] struct {
	ID T `json:"id"`
}

// WorkspaceArgs addresses a workspace's contents.
type WorkspaceArgs struct {
	WorkspaceID ref.WorkspaceID `json:"workspace_id"`
}

// NameArgs creates or renames an entity. ID is unset on create.
type NameArgs[T any] struct {
	ID   T      `json:"id"`
	Name string `json:"name"`
}

// CreateChannelArgs holds the arguments of CreateChannel.
type CreateChannelArgs struct {
	WorkspaceID ref.WorkspaceID `json:"workspace_id"`
	Name        string          `json:"name"`
}

// JoinArgs holds the arguments of Join.
type JoinArgs struct {
	ID       ref.WorkspaceID `json:"id"`
	JoinCode string          `json:"join_code"`
}

// UpdateMemberArgs holds the arguments of UpdateMember.
type UpdateMemberArgs struct {
	ID   ref.MemberID `json:"id"`
	Role schema.Role  `json:"role"`
}

// ConversationArgs holds the arguments of CreateOrGetConversation.
type ConversationArgs struct {
	WorkspaceID ref.WorkspaceID `json:"workspace_id"`
	MemberID    ref.MemberID    `json:"member_id"`
}

// UpdateMessageArgs holds the arguments of UpdateMessage.
type UpdateMessageArgs struct {
	ID   ref.MessageID `json:"id"`
	Body string        `json:"body"`
}

// ToggleReactionArgs holds the arguments of ToggleReaction.
type ToggleReactionArgs struct {
	MessageID ref.MessageID `json:"message_id"`
	Value     string        `json:"value"`
}

// Credentials is the body of register and login requests. Name is
// only read by register.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the reply to register and login.
type AuthResult struct {
	User  schema.User `json:"user"`
	Token string      `json:"token"`
}

// MediaResult is the reply to an upload.
type MediaResult struct {
	URL string `json:"url"`
}

// HealthResult is the reply to PathHealth.
type HealthResult struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
