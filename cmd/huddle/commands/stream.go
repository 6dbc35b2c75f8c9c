// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// stream is what the message commands need from a channel or
// conversation view.
type stream interface {
	View() panel.StreamView
	Send(ctx context.Context, body string) (ref.MessageID, error)
	SendImage(ctx context.Context, body, image string) (ref.MessageID, error)
	Edit(ctx context.Context, id ref.MessageID, body string) error
	Delete(ctx context.Context, id ref.MessageID) error
	React(ctx context.Context, id ref.MessageID, value string) error
	Close()
}

var (
	_ stream = (*panel.ChannelView)(nil)
	_ stream = (*panel.ConversationView)(nil)
)

// openConversation opens a conversation by ID, resolving the other
// participant from the viewer's membership.
func (c *connection) openConversation(ctx context.Context, conversationID ref.ConversationID) (*panel.ConversationView, *schema.Conversation, error) {
	conversation, err := c.backend.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, nil, cli.Classify(err)
	}
	self, err := c.backend.GetCurrentMember(ctx, conversation.WorkspaceID)
	if err != nil {
		return nil, nil, cli.Classify(err)
	}
	if self == nil {
		return nil, nil, cli.Forbidden("you are not a member of %s", conversation.WorkspaceID)
	}
	other := conversation.Other(self.ID)
	return panel.NewConversationView(c.env, conversation.WorkspaceID, conversationID, other), conversation, nil
}

// streamOf opens the channel or conversation that message belongs to.
func (c *connection) streamOf(ctx context.Context, messageID ref.MessageID) (stream, *schema.MessageView, error) {
	message, err := c.backend.GetMessage(ctx, messageID)
	if err != nil {
		return nil, nil, cli.Classify(err)
	}
	if !message.ChannelID.IsZero() {
		return panel.NewChannelView(c.env, message.WorkspaceID, message.ChannelID), message, nil
	}
	view, _, err := c.openConversation(ctx, message.ConversationID)
	if err != nil {
		return nil, nil, err
	}
	return view, message, nil
}
