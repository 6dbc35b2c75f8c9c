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
	updateRoleTitle     = "Update Role"
	updateRoleBody      = "Are you sure you want to update this member role?"
	updateRoleSucceeded = "Role updated successfully."
	updateRoleFailed    = "Failed to update role."

	removeTitle     = "Remove Member"
	removeBody      = "Are you sure you want to remove this member?"
	removeSucceeded = "Member removed successfully."
	removeFailed    = "Failed to remove member."

	leaveTitle     = "Leave Workspace"
	leaveBody      = "Are you sure you want to leave this workspace?"
	leaveSucceeded = "You left the workspace successfully."
	leaveFailed    = "Failed to leave the workspace."

	// memberInitialFallback is the avatar letter for a member with no
	// usable name.
	memberInitialFallback = "M"
)

// ProfileView is what the profile panel shows. Only Status is set
// unless Status is live.StatusReady.
type ProfileView struct {
	Status live.Status

	MemberID     ref.MemberID
	Name         string
	Image        string
	Initial      string
	Email        string
	Role         schema.Role
	Capabilities Capabilities
}

// ProfilePanel shows one member of a workspace and offers the actions
// the viewer is entitled to. The same component serves the read-only
// variant: pass ReadOnly as the allowance.
type ProfilePanel struct {
	env         Env
	workspaceID ref.WorkspaceID
	memberID    ref.MemberID
	allowed     Capabilities
	onClose     func()

	subject *live.Resource[*schema.Member]
	viewer  *live.Resource[*schema.Member]
}

// NewProfilePanel starts resolving the member and the viewer's own
// membership. onClose runs after a successful role update, removal, or
// leave; it may be nil.
func NewProfilePanel(env Env, workspaceID ref.WorkspaceID, memberID ref.MemberID, allowed Capabilities, onClose func()) *ProfilePanel {
	topics := []backend.Topic{backend.TopicMembers, backend.TopicUsers}
	return &ProfilePanel{
		env:         env,
		workspaceID: workspaceID,
		memberID:    memberID,
		allowed:     allowed,
		onClose:     onClose,
		subject: live.Watch(env.Registry, "member:"+memberID.String(), topics,
			func(ctx context.Context) (*schema.Member, error) {
				return env.Backend.GetMember(ctx, memberID)
			}),
		viewer: live.Watch(env.Registry, "current-member:"+workspaceID.String(), topics,
			func(ctx context.Context) (*schema.Member, error) {
				return env.Backend.GetCurrentMember(ctx, workspaceID)
			}),
	}
}

// View returns the panel state: loading while either member resolves,
// not-found when the subject is gone, ready otherwise.
func (p *ProfilePanel) View() ProfileView {
	subject, subjectStatus, _ := p.subject.State()
	viewer, viewerStatus, _ := p.viewer.State()

	switch {
	case subjectStatus == live.StatusLoading || viewerStatus == live.StatusLoading:
		return ProfileView{Status: live.StatusLoading}
	case subjectStatus == live.StatusNotFound || subject == nil:
		return ProfileView{Status: live.StatusNotFound}
	}

	view := ProfileView{
		Status:   live.StatusReady,
		MemberID: subject.ID,
		Name:     subject.User.Name,
		Image:    subject.User.Image,
		Initial:  Initial(subject.User.Name, memberInitialFallback),
		Email:    subject.User.Email,
		Role:     subject.Role,
	}
	if viewerStatus == live.StatusReady && viewer != nil {
		view.Capabilities = p.allowed & Derive(*viewer, *subject)
	}
	return view
}

// Wait blocks until the panel has left the loading state.
func (p *ProfilePanel) Wait(ctx context.Context) (ProfileView, error) {
	if _, _, err := p.subject.Wait(ctx); err != nil && ctx.Err() != nil {
		return p.View(), err
	}
	if _, _, err := p.viewer.Wait(ctx); err != nil && ctx.Err() != nil {
		return p.View(), err
	}
	return p.View(), nil
}

// Changed returns channels closed at the next change of either member.
func (p *ProfilePanel) Changed() []<-chan struct{} {
	return []<-chan struct{}{p.subject.Changed(), p.viewer.Changed()}
}

// require checks capability before any prompt or mutation.
func (p *ProfilePanel) require(capability Capabilities) error {
	view := p.View()
	switch {
	case view.Status == live.StatusLoading:
		return ErrNotReady
	case view.Status != live.StatusReady || !view.Capabilities.Has(capability):
		return ErrNotPermitted
	}
	return nil
}

// UpdateRole changes the member's role after confirmation.
func (p *ProfilePanel) UpdateRole(ctx context.Context, role schema.Role) error {
	if err := p.require(ManageRole); err != nil {
		return err
	}
	if err := p.env.confirm(ctx, updateRoleTitle, updateRoleBody); err != nil {
		return err
	}
	if _, err := p.env.Backend.UpdateMember(ctx, p.memberID, role); err != nil {
		p.env.logger().Warn("role update failed", "member_id", p.memberID, "role", role, "error", err)
		p.env.notify(notify.Error, updateRoleFailed)
		return fmt.Errorf("panel: update member role: %w", err)
	}
	p.env.notify(notify.Success, updateRoleSucceeded)
	p.close()
	return nil
}

// Remove removes the member after confirmation. It never navigates.
func (p *ProfilePanel) Remove(ctx context.Context) error {
	if err := p.require(Remove); err != nil {
		return err
	}
	if err := p.env.confirm(ctx, removeTitle, removeBody); err != nil {
		return err
	}
	if _, err := p.env.Backend.RemoveMember(ctx, p.memberID); err != nil {
		p.env.logger().Warn("member removal failed", "member_id", p.memberID, "error", err)
		p.env.notify(notify.Error, removeFailed)
		return fmt.Errorf("panel: remove member: %w", err)
	}
	p.env.notify(notify.Success, removeSucceeded)
	p.close()
	return nil
}

// Leave removes the viewer's own membership after confirmation and
// returns to the workspace list.
func (p *ProfilePanel) Leave(ctx context.Context) error {
	if err := p.require(Leave); err != nil {
		return err
	}
	if err := p.env.confirm(ctx, leaveTitle, leaveBody); err != nil {
		return err
	}
	if _, err := p.env.Backend.RemoveMember(ctx, p.memberID); err != nil {
		p.env.logger().Warn("leaving workspace failed", "workspace_id", p.workspaceID, "error", err)
		p.env.notify(notify.Error, leaveFailed)
		return fmt.Errorf("panel: leave workspace: %w", err)
	}
	p.env.replace(route.Root())
	p.env.notify(notify.Success, leaveSucceeded)
	p.close()
	return nil
}

func (p *ProfilePanel) close() {
	if p.onClose != nil {
		p.onClose()
	}
}

// Close stops tracking both members.
func (p *ProfilePanel) Close() {
	p.subject.Close()
	p.viewer.Close()
}
