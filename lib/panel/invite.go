// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"context"
	"fmt"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/notify"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/route"
	"github.com/huddle-chat/huddle/lib/schema"
)

const (
	regenerateTitle     = "Are you sure you want to generate a new code?"
	regenerateBody      = "This will deactivate the current code and generate a new one."
	regenerateSucceeded = "New code generated successfully"
	regenerateFailed    = "Failed to generate new code"
	linkCopied          = "Link copied to clipboard"
)

// InviteView is what the invite dialog shows.
type InviteView struct {
	Status   live.Status
	Title    string
	Name     string
	JoinCode string
	// Link is empty when the configured origin is unusable.
	Link string
}

// InvitePanel shows a workspace's join code and lets an admin replace
// it or share the join link.
type InvitePanel struct {
	env         Env
	workspaceID ref.WorkspaceID
	workspace   *live.Resource[*schema.Workspace]
}

// NewInvitePanel starts resolving the workspace.
func NewInvitePanel(env Env, workspaceID ref.WorkspaceID) *InvitePanel {
	return &InvitePanel{
		env:         env,
		workspaceID: workspaceID,
		workspace: live.Watch(env.Registry, "workspace:"+workspaceID.String(),
			[]backend.Topic{backend.TopicWorkspaces},
			func(ctx context.Context) (*schema.Workspace, error) {
				return env.Backend.GetWorkspace(ctx, workspaceID)
			}),
	}
}

// View returns the dialog state.
func (p *InvitePanel) View() InviteView {
	workspace, status, _ := p.workspace.State()
	view := InviteView{Status: status}
	if status == live.StatusReady && workspace != nil {
		view.Title = "Invite people to " + workspace.Name
		view.Name = workspace.Name
		view.JoinCode = workspace.JoinCode
		if link, err := route.InviteLink(p.env.Origin, p.workspaceID); err == nil {
			view.Link = link
		}
	}
	return view
}

// ID returns the workspace the panel invites to.
func (p *InvitePanel) ID() ref.WorkspaceID { return p.workspaceID }

// Resource exposes the workspace for surfaces that wait on it.
func (p *InvitePanel) Resource() *live.Resource[*schema.Workspace] {
	return p.workspace
}

// Regenerate replaces the join code after confirmation. Declining
// returns ErrDeclined and changes nothing.
func (p *InvitePanel) Regenerate(ctx context.Context) error {
	if err := p.env.confirm(ctx, regenerateTitle, regenerateBody); err != nil {
		return err
	}
	if _, err := p.env.Backend.NewJoinCode(ctx, p.workspaceID); err != nil {
		p.env.logger().Warn("join code regeneration failed", "workspace_id", p.workspaceID, "error", err)
		p.env.notify(notify.Error, regenerateFailed)
		return fmt.Errorf("panel: new join code: %w", err)
	}
	p.env.notify(notify.Success, regenerateSucceeded)
	return nil
}

// CopyLink writes the join link to the clipboard and returns it.
// Clipboard failures are returned without a notification.
func (p *InvitePanel) CopyLink(ctx context.Context) (string, error) {
	link, err := route.InviteLink(p.env.Origin, p.workspaceID)
	if err != nil {
		return "", fmt.Errorf("panel: invite link: %w", err)
	}
	if p.env.Clipboard == nil {
		return link, fmt.Errorf("panel: no clipboard available")
	}
	if err := p.env.Clipboard.WriteText(ctx, link); err != nil {
		return link, fmt.Errorf("panel: copy invite link: %w", err)
	}
	p.env.notify(notify.Success, linkCopied)
	return link, nil
}

// Close stops tracking the workspace.
func (p *InvitePanel) Close() {
	p.workspace.Close()
}
