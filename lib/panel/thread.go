// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"context"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

const (
	threadTitle       = "Thread"
	threadNotFound    = "Message not found."
	threadPlaceholder = "Reply to this message..."
)

// ThreadView is the state of the thread side panel.
type ThreadView struct {
	Status      live.Status
	Title       string
	NotFound    string
	Placeholder string

	// Root is set when Status is ready.
	Root     *schema.MessageView
	IsAuthor bool

	Replies []schema.MessageView
	Feed    live.FeedStatus
}

// ThreadPanel shows a message and the replies anchored to it.
type ThreadPanel struct {
	env       Env
	messageID ref.MessageID
	onClose   func()

	message *live.Resource[*schema.MessageView]
	viewer  *live.Resource[*schema.Member]
	replies *live.Feed
}

// NewThreadPanel opens the thread rooted at messageID. onClose may be
// nil.
func NewThreadPanel(env Env, workspaceID ref.WorkspaceID, messageID ref.MessageID, onClose func()) *ThreadPanel {
	return &ThreadPanel{
		env:       env,
		messageID: messageID,
		onClose:   onClose,
		message: live.Watch(env.Registry, "message:"+messageID.String(), live.FeedTopics,
			func(ctx context.Context) (*schema.MessageView, error) {
				return env.Backend.GetMessage(ctx, messageID)
			}),
		viewer: live.Watch(env.Registry, "current-member:"+workspaceID.String(),
			[]backend.Topic{backend.TopicMembers, backend.TopicUsers},
			func(ctx context.Context) (*schema.Member, error) {
				return env.Backend.GetCurrentMember(ctx, workspaceID)
			}),
		replies: live.NewFeed(env.Registry, env.Backend,
			backend.MessagesQuery{ParentMessageID: messageID}, env.pageSize()),
	}
}

// View is loading while the root message resolves and shows
// "Message not found." once it is known to be gone.
func (p *ThreadPanel) View() ThreadView {
	message, status, _ := p.message.State()
	view := ThreadView{
		Status:      status,
		Title:       threadTitle,
		Placeholder: threadPlaceholder,
		Feed:        p.replies.Status(),
	}
	switch {
	case status == live.StatusLoading:
		return view
	case status == live.StatusNotFound || message == nil:
		view.Status = live.StatusNotFound
		view.NotFound = threadNotFound
		return view
	}
	view.Root = message
	if viewer, viewerStatus, _ := p.viewer.State(); viewerStatus == live.StatusReady && viewer != nil {
		view.IsAuthor = message.MemberID == viewer.ID
	}
	view.Replies = p.replies.Messages()
	return view
}

// Render prepares the root message. The thread button is always
// hidden inside the thread panel.
func (p *ThreadPanel) Render(options MessageContext) (RenderedMessage, bool) {
	view := p.View()
	if view.Root == nil {
		return RenderedMessage{}, false
	}
	options.HideThreadButton = true
	if viewer, status, _ := p.viewer.State(); status == live.StatusReady && viewer != nil {
		options.Viewer = viewer.ID
	}
	return RenderMessage(*view.Root, options), true
}

// Wait blocks until the root message has resolved.
func (p *ThreadPanel) Wait(ctx context.Context) (ThreadView, error) {
	if _, _, err := p.message.Wait(ctx); err != nil && ctx.Err() != nil {
		return p.View(), err
	}
	return p.View(), nil
}

// Feed is the replies feed.
func (p *ThreadPanel) Feed() *live.Feed { return p.replies }

// Changed returns channels closed at the next change of any input.
func (p *ThreadPanel) Changed() []<-chan struct{} {
	return []<-chan struct{}{p.message.Changed(), p.viewer.Changed(), p.replies.Changed()}
}

// Reply is not wired to a mutation yet. It never touches the backend.
// TODO: post through CreateMessage with ParentMessageID once the
// reply composer exists in the viewer.
func (p *ThreadPanel) Reply(context.Context, string) error {
	return ErrRepliesNotImplemented
}

// Dismiss closes the panel and runs onClose.
func (p *ThreadPanel) Dismiss() {
	p.Close()
	if p.onClose != nil {
		p.onClose()
	}
}

// Close releases every subscription.
func (p *ThreadPanel) Close() {
	p.message.Close()
	p.viewer.Close()
	p.replies.Close()
}
