// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"context"
	"fmt"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// StreamView is the state of a channel or conversation screen.
type StreamView struct {
	Status live.Status

	// Header.
	Name  string
	Image string

	Feed     live.FeedStatus
	Messages []schema.MessageView
	Viewer   ref.MemberID
}

// ConversationView is a direct conversation with one other member.
type ConversationView struct {
	*stream
	conversationID ref.ConversationID
	member         *live.Resource[*schema.Member]
}

// OpenConversation finds or creates the conversation between the
// viewer and memberID and opens it.
func OpenConversation(ctx context.Context, env Env, workspaceID ref.WorkspaceID, memberID ref.MemberID) (*ConversationView, error) {
	conversationID, err := env.Backend.CreateOrGetConversation(ctx, workspaceID, memberID)
	if err != nil {
		return nil, fmt.Errorf("panel: open conversation: %w", err)
	}
	return NewConversationView(env, workspaceID, conversationID, memberID), nil
}

// NewConversationView opens an existing conversation. memberID is the
// other participant.
func NewConversationView(env Env, workspaceID ref.WorkspaceID, conversationID ref.ConversationID, memberID ref.MemberID) *ConversationView {
	return &ConversationView{
		stream:         newStream(env, workspaceID, backend.MessagesQuery{ConversationID: conversationID}),
		conversationID: conversationID,
		member: live.Watch(env.Registry, "member:"+memberID.String(),
			[]backend.Topic{backend.TopicMembers, backend.TopicUsers},
			func(ctx context.Context) (*schema.Member, error) {
				return env.Backend.GetMember(ctx, memberID)
			}),
	}
}

// ID returns the conversation ID.
func (v *ConversationView) ID() ref.ConversationID { return v.conversationID }

// View is loading until the other member has resolved and the first
// page of messages has arrived. A member that no longer exists shows
// as "Member".
func (v *ConversationView) View() StreamView {
	member, memberStatus, _ := v.member.State()
	view := StreamView{Status: live.StatusLoading, Feed: v.feed.Status(), Name: authorFallback}
	if memberStatus == live.StatusLoading || !v.feed.Loaded() {
		return view
	}
	view.Status = live.StatusReady
	if member != nil && member.User.Name != "" {
		view.Name = member.User.Name
		view.Image = member.User.Image
	}
	view.Messages = v.feed.Messages()
	view.Viewer = v.viewerID()
	return view
}

// Feed exposes the message feed.
func (v *ConversationView) Feed() *live.Feed { return v.feed }

// Wait blocks until View leaves loading.
func (v *ConversationView) Wait(ctx context.Context) (StreamView, error) {
	if _, _, err := v.member.Wait(ctx); err != nil && ctx.Err() != nil {
		return v.View(), err
	}
	if err := v.feed.WaitLoaded(ctx); err != nil {
		return v.View(), err
	}
	return v.View(), nil
}

// Changed returns channels closed at the next change of any input.
func (v *ConversationView) Changed() []<-chan struct{} {
	return []<-chan struct{}{v.member.Changed(), v.feed.Changed(), v.viewer.Changed()}
}

// LoadMore asks for numItems older messages.
func (v *ConversationView) LoadMore(numItems int) error { return v.feed.LoadMore(numItems) }

// Send posts body to the conversation.
func (v *ConversationView) Send(ctx context.Context, body string) (ref.MessageID, error) {
	return v.send(ctx, body, "")
}

// SendImage posts an uploaded image with an optional caption.
func (v *ConversationView) SendImage(ctx context.Context, body, image string) (ref.MessageID, error) {
	return v.send(ctx, body, image)
}

// Edit replaces the body of one of the viewer's messages.
func (v *ConversationView) Edit(ctx context.Context, id ref.MessageID, body string) error {
	return v.edit(ctx, id, body)
}

// Delete removes one of the viewer's messages after confirmation.
func (v *ConversationView) Delete(ctx context.Context, id ref.MessageID) error {
	return v.remove(ctx, id)
}

// React toggles the viewer's reaction on a message.
func (v *ConversationView) React(ctx context.Context, id ref.MessageID, value string) error {
	return v.react(ctx, id, value)
}

// Close releases every subscription.
func (v *ConversationView) Close() {
	v.member.Close()
	v.close()
}

// ChannelView is a workspace channel.
type ChannelView struct {
	*stream
	channelID ref.ChannelID
	channel   *live.Resource[*schema.Channel]
}

// NewChannelView opens a channel.
func NewChannelView(env Env, workspaceID ref.WorkspaceID, channelID ref.ChannelID) *ChannelView {
	return &ChannelView{
		stream:    newStream(env, workspaceID, backend.MessagesQuery{ChannelID: channelID}),
		channelID: channelID,
		channel: live.Watch(env.Registry, "channel:"+channelID.String(),
			[]backend.Topic{backend.TopicChannels},
			func(ctx context.Context) (*schema.Channel, error) {
				return env.Backend.GetChannel(ctx, channelID)
			}),
	}
}

// ID returns the channel ID.
func (v *ChannelView) ID() ref.ChannelID { return v.channelID }

// View is loading until the channel and the first page have arrived,
// and not-found when the channel is gone.
func (v *ChannelView) View() StreamView {
	channel, status, _ := v.channel.State()
	view := StreamView{Status: status, Feed: v.feed.Status()}
	switch {
	case status == live.StatusNotFound:
		return view
	case status == live.StatusLoading || !v.feed.Loaded():
		view.Status = live.StatusLoading
		return view
	}
	view.Name = "# " + channel.Name
	view.Messages = v.feed.Messages()
	view.Viewer = v.viewerID()
	return view
}

// Feed exposes the message feed.
func (v *ChannelView) Feed() *live.Feed { return v.feed }

// Wait blocks until View leaves loading.
func (v *ChannelView) Wait(ctx context.Context) (StreamView, error) {
	_, status, err := v.channel.Wait(ctx)
	if err != nil && ctx.Err() != nil {
		return v.View(), err
	}
	if status == live.StatusNotFound {
		return v.View(), nil
	}
	if err := v.feed.WaitLoaded(ctx); err != nil {
		return v.View(), err
	}
	return v.View(), nil
}

// Changed returns channels closed at the next change of any input.
func (v *ChannelView) Changed() []<-chan struct{} {
	return []<-chan struct{}{v.channel.Changed(), v.feed.Changed(), v.viewer.Changed()}
}

// LoadMore asks for numItems older messages.
func (v *ChannelView) LoadMore(numItems int) error { return v.feed.LoadMore(numItems) }

// Send posts body to the channel.
func (v *ChannelView) Send(ctx context.Context, body string) (ref.MessageID, error) {
	return v.send(ctx, body, "")
}

// SendImage posts an uploaded image with an optional caption.
func (v *ChannelView) SendImage(ctx context.Context, body, image string) (ref.MessageID, error) {
	return v.send(ctx, body, image)
}

// Edit replaces the body of one of the viewer's messages.
func (v *ChannelView) Edit(ctx context.Context, id ref.MessageID, body string) error {
	return v.edit(ctx, id, body)
}

// Delete removes one of the viewer's messages after confirmation.
func (v *ChannelView) Delete(ctx context.Context, id ref.MessageID) error {
	return v.remove(ctx, id)
}

// React toggles the viewer's reaction on a message.
func (v *ChannelView) React(ctx context.Context, id ref.MessageID, value string) error {
	return v.react(ctx, id, value)
}

// Close releases every subscription.
func (v *ChannelView) Close() {
	v.channel.Close()
	v.close()
}
