// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"context"
	"fmt"
	"sync"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/joincode"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/notify"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/route"
	"github.com/huddle-chat/huddle/lib/schema"
)

const (
	joinSubtitle  = "Enter the workspace code to join"
	joinSucceeded = "Successfully joined workspace"
	joinFailed    = "Failed to join workspace"
)

// JoinView is what the join screen shows.
type JoinView struct {
	Status   live.Status
	Title    string
	Subtitle string
	Pending  bool
}

// JoinFlow is the join-by-code screen for one workspace. Members of the
// workspace are sent straight to it.
type JoinFlow struct {
	env         Env
	workspaceID ref.WorkspaceID
	info        *live.Resource[*schema.WorkspaceInfo]

	mu        sync.Mutex
	pending   bool
	navigated bool
}

// NewJoinFlow starts resolving the workspace's public info.
func NewJoinFlow(env Env, workspaceID ref.WorkspaceID) *JoinFlow {
	flow := &JoinFlow{env: env, workspaceID: workspaceID}
	flow.info = live.WatchFunc(env.Registry, "workspace-info:"+workspaceID.String(),
		[]backend.Topic{backend.TopicWorkspaces, backend.TopicMembers},
		func(ctx context.Context) (*schema.WorkspaceInfo, error) {
			return env.Backend.GetWorkspaceInfo(ctx, workspaceID)
		},
		flow.onInfo)
	return flow
}

func (f *JoinFlow) onInfo(info *schema.WorkspaceInfo, status live.Status, _ error) {
	if status != live.StatusReady || info == nil || !info.IsMember {
		return
	}
	f.mu.Lock()
	if f.navigated || f.pending {
		f.mu.Unlock()
		return
	}
	f.navigated = true
	f.mu.Unlock()

	f.env.logger().Info("already a member, opening workspace", "workspace_id", f.workspaceID)
	f.env.push(route.Workspace(f.workspaceID))
}

// View returns the current screen state.
func (f *JoinFlow) View() JoinView {
	info, status, _ := f.info.State()
	view := JoinView{Status: status, Subtitle: joinSubtitle}
	if status == live.StatusReady && info != nil {
		view.Title = "Join " + info.Name
	}
	f.mu.Lock()
	view.Pending = f.pending
	f.mu.Unlock()
	return view
}

// Resource exposes the workspace info for surfaces that wait on it.
func (f *JoinFlow) Resource() *live.Resource[*schema.WorkspaceInfo] {
	return f.info
}

// Submit joins with code. Codes are trimmed and lowercased first; a
// code that cannot be valid fails without contacting the backend.
// Success replaces the current route with the workspace.
func (f *JoinFlow) Submit(ctx context.Context, code string) (ref.WorkspaceID, error) {
	normalized := joincode.Normalize(code)
	if !joincode.Valid(normalized) {
		f.env.notify(notify.Error, joinFailed)
		return ref.WorkspaceID{}, ErrInvalidCode
	}

	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return ref.WorkspaceID{}, ErrPending
	}
	f.pending = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.pending = false
		f.mu.Unlock()
	}()

	workspaceID, err := f.env.Backend.Join(ctx, f.workspaceID, normalized)
	if err != nil {
		f.env.logger().Warn("join failed", "workspace_id", f.workspaceID, "error", err)
		f.env.notify(notify.Error, joinFailed)
		return ref.WorkspaceID{}, fmt.Errorf("panel: join: %w", err)
	}

	f.mu.Lock()
	f.navigated = true
	f.mu.Unlock()
	f.env.replace(route.Workspace(workspaceID))
	f.env.notify(notify.Success, joinSucceeded)
	return workspaceID, nil
}

// Close stops tracking the workspace.
func (f *JoinFlow) Close() {
	f.info.Close()
}
