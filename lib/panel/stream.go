// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"context"
	"fmt"
	"strings"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/notify"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

const (
	sendFailed = "Failed to send message"

	editSucceeded = "Message updated"
	editFailed    = "Failed to update message"

	deleteTitle     = "Delete message"
	deleteBody      = "Are you sure you want to delete this message? This cannot be undone."
	deleteSucceeded = "Message deleted"
	deleteFailed    = "Failed to delete message"

	reactionFailed = "Failed to toggle reaction"
)

// stream is the message feed shared by channel and conversation
// views, together with the viewer's membership and the message
// actions.
type stream struct {
	env         Env
	workspaceID ref.WorkspaceID
	target      backend.CreateMessageRequest
	feed        *live.Feed
	viewer      *live.Resource[*schema.Member]
}

func newStream(env Env, workspaceID ref.WorkspaceID, selector backend.MessagesQuery) *stream {
	return &stream{
		env:         env,
		workspaceID: workspaceID,
		target: backend.CreateMessageRequest{
			WorkspaceID:     workspaceID,
			ChannelID:       selector.ChannelID,
			ConversationID:  selector.ConversationID,
			ParentMessageID: selector.ParentMessageID,
		},
		feed: live.NewFeed(env.Registry, env.Backend, selector, env.pageSize()),
		viewer: live.Watch(env.Registry, "current-member:"+workspaceID.String(),
			[]backend.Topic{backend.TopicMembers, backend.TopicUsers},
			func(ctx context.Context) (*schema.Member, error) {
				return env.Backend.GetCurrentMember(ctx, workspaceID)
			}),
	}
}

// viewerID is the viewer's member ID, zero until known.
func (s *stream) viewerID() ref.MemberID {
	member, status, _ := s.viewer.State()
	if status != live.StatusReady || member == nil {
		return ref.MemberID{}
	}
	return member.ID
}

func (s *stream) send(ctx context.Context, body, image string) (ref.MessageID, error) {
	if strings.TrimSpace(body) == "" && image == "" {
		return ref.MessageID{}, fmt.Errorf("panel: message is empty")
	}
	request := s.target
	request.Body = body
	request.Image = image
	id, err := s.env.Backend.CreateMessage(ctx, request)
	if err != nil {
		s.env.logger().Warn("send failed", "workspace_id", s.workspaceID, "error", err)
		s.env.notify(notify.Error, sendFailed)
		return ref.MessageID{}, fmt.Errorf("panel: send message: %w", err)
	}
	return id, nil
}

func (s *stream) edit(ctx context.Context, id ref.MessageID, body string) error {
	if _, err := s.env.Backend.UpdateMessage(ctx, id, body); err != nil {
		s.env.notify(notify.Error, editFailed)
		return fmt.Errorf("panel: edit message: %w", err)
	}
	s.env.notify(notify.Success, editSucceeded)
	return nil
}

func (s *stream) remove(ctx context.Context, id ref.MessageID) error {
	if err := s.env.confirm(ctx, deleteTitle, deleteBody); err != nil {
		return err
	}
	if _, err := s.env.Backend.RemoveMessage(ctx, id); err != nil {
		s.env.notify(notify.Error, deleteFailed)
		return fmt.Errorf("panel: delete message: %w", err)
	}
	s.env.notify(notify.Success, deleteSucceeded)
	return nil
}

func (s *stream) react(ctx context.Context, id ref.MessageID, value string) error {
	if _, err := s.env.Backend.ToggleReaction(ctx, id, value); err != nil {
		s.env.notify(notify.Error, reactionFailed)
		return fmt.Errorf("panel: toggle reaction: %w", err)
	}
	return nil
}

func (s *stream) close() {
	s.feed.Close()
	s.viewer.Close()
}
