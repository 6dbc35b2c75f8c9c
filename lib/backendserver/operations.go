// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backendserver

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/chatstore"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// operation runs one named query or mutation with JSON arguments.
type operation func(ctx context.Context, viewer *chatstore.Viewer, body []byte) (any, error)

// op decodes the arguments into A before calling call. An empty body
// decodes as the zero A.
func op[A, R any](call func(ctx context.Context, viewer *chatstore.Viewer, args A) (R, error)) operation {
	return func(ctx context.Context, viewer *chatstore.Viewer, body []byte) (any, error) {
		var args A
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &args); err != nil {
				return nil, backend.Errorf(backend.CodeInvalidParam, "invalid arguments: %v", err)
			}
		}
		return call(ctx, viewer, args)
	}
}

// mutate wraps a mutation's returned ID in an IDResult.
func mutate[A, T any](call func(ctx context.Context, viewer *chatstore.Viewer, args A) (T, error)) operation {
	return op(func(ctx context.Context, viewer *chatstore.Viewer, args A) (backend.IDResult[T], error) {
		id, err := call(ctx, viewer, args)
		return backend.IDResult[T]{ID: id}, err
	})
}

type none struct{}

func queryTable() map[string]operation {
	return map[string]operation{
		backend.OpCurrentUser: op(func(ctx context.Context, v *chatstore.Viewer, _ none) (*schema.User, error) {
			return v.CurrentUser(ctx)
		}),
		backend.OpListWorkspaces: op(func(ctx context.Context, v *chatstore.Viewer, _ none) ([]schema.Workspace, error) {
			return v.ListWorkspaces(ctx)
		}),
		backend.OpGetWorkspace: op(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.WorkspaceID]) (*schema.Workspace, error) {
			return v.GetWorkspace(ctx, a.ID)
		}),
		backend.OpGetWorkspaceInfo: op(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.WorkspaceID]) (*schema.WorkspaceInfo, error) {
			return v.GetWorkspaceInfo(ctx, a.ID)
		}),
		backend.OpListMembers: op(func(ctx context.Context, v *chatstore.Viewer, a backend.WorkspaceArgs) ([]schema.Member, error) {
			return v.ListMembers(ctx, a.WorkspaceID)
		}),
		backend.OpGetMember: op(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.MemberID]) (*schema.Member, error) {
			return v.GetMember(ctx, a.ID)
		}),
		backend.OpGetCurrentMember: op(func(ctx context.Context, v *chatstore.Viewer, a backend.WorkspaceArgs) (*schema.Member, error) {
			return v.GetCurrentMember(ctx, a.WorkspaceID)
		}),
		backend.OpListChannels: op(func(ctx context.Context, v *chatstore.Viewer, a backend.WorkspaceArgs) ([]schema.Channel, error) {
			return v.ListChannels(ctx, a.WorkspaceID)
		}),
		backend.OpGetChannel: op(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.ChannelID]) (*schema.Channel, error) {
			return v.GetChannel(ctx, a.ID)
		}),
		backend.OpGetConversation: op(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.ConversationID]) (*schema.Conversation, error) {
			return v.GetConversation(ctx, a.ID)
		}),
		backend.OpGetMessage: op(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.MessageID]) (*schema.MessageView, error) {
			return v.GetMessage(ctx, a.ID)
		}),
		backend.OpGetMessages: op(func(ctx context.Context, v *chatstore.Viewer, q backend.MessagesQuery) (*backend.MessagePage, error) {
			return v.GetMessages(ctx, q)
		}),
	}
}

func (s *Server) mutationTable() map[string]operation {
	return map[string]operation{
		backend.OpCreateWorkspace: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.NameArgs[ref.WorkspaceID]) (ref.WorkspaceID, error) {
			return v.CreateWorkspace(ctx, a.Name)
		}),
		backend.OpUpdateWorkspace: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.NameArgs[ref.WorkspaceID]) (ref.WorkspaceID, error) {
			return v.UpdateWorkspace(ctx, a.ID, a.Name)
		}),
		backend.OpRemoveWorkspace: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.WorkspaceID]) (ref.WorkspaceID, error) {
			return v.RemoveWorkspace(ctx, a.ID)
		}),
		backend.OpJoin: mutate(s.limitedJoin),
		backend.OpNewJoinCode: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.WorkspaceID]) (ref.WorkspaceID, error) {
			return v.NewJoinCode(ctx, a.ID)
		}),
		backend.OpUpdateMember: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.UpdateMemberArgs) (ref.MemberID, error) {
			return v.UpdateMember(ctx, a.ID, a.Role)
		}),
		backend.OpRemoveMember: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.MemberID]) (ref.MemberID, error) {
			return v.RemoveMember(ctx, a.ID)
		}),
		backend.OpCreateChannel: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.CreateChannelArgs) (ref.ChannelID, error) {
			return v.CreateChannel(ctx, a.WorkspaceID, a.Name)
		}),
		backend.OpUpdateChannel: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.NameArgs[ref.ChannelID]) (ref.ChannelID, error) {
			return v.UpdateChannel(ctx, a.ID, a.Name)
		}),
		backend.OpRemoveChannel: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.ChannelID]) (ref.ChannelID, error) {
			return v.RemoveChannel(ctx, a.ID)
		}),
		backend.OpCreateOrGetConversation: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.ConversationArgs) (ref.ConversationID, error) {
			return v.CreateOrGetConversation(ctx, a.WorkspaceID, a.MemberID)
		}),
		backend.OpCreateMessage: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.CreateMessageRequest) (ref.MessageID, error) {
			return v.CreateMessage(ctx, a)
		}),
		backend.OpUpdateMessage: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.UpdateMessageArgs) (ref.MessageID, error) {
			return v.UpdateMessage(ctx, a.ID, a.Body)
		}),
		backend.OpRemoveMessage: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.IDArgs[ref.MessageID]) (ref.MessageID, error) {
			return v.RemoveMessage(ctx, a.ID)
		}),
		backend.OpToggleReaction: mutate(func(ctx context.Context, v *chatstore.Viewer, a backend.ToggleReactionArgs) (ref.MessageID, error) {
			return v.ToggleReaction(ctx, a.MessageID, a.Value)
		}),
	}
}
