// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package route names the places a client can be: the workspace list,
// the join screen, a workspace, a member's direct conversation, and a
// channel. Routes render to and parse from URL paths, so they double
// as deep links.
package route

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/huddle-chat/huddle/lib/ref"
)

// Kind identifies the shape of a Route.
type Kind int

const (
	KindRoot Kind = iota
	KindJoin
	KindWorkspace
	KindMember
	KindChannel
)

// Route is a parsed location.
type Route struct {
	Kind        Kind
	WorkspaceID ref.WorkspaceID
	MemberID    ref.MemberID
	ChannelID   ref.ChannelID
}

// Root is "/".
func Root() Route { return Route{Kind: KindRoot} }

// Join is "/join/<workspace>".
func Join(workspaceID ref.WorkspaceID) Route {
	return Route{Kind: KindJoin, WorkspaceID: workspaceID}
}

// Workspace is "/workspace/<workspace>".
func Workspace(workspaceID ref.WorkspaceID) Route {
	return Route{Kind: KindWorkspace, WorkspaceID: workspaceID}
}

// Member is "/workspace/<workspace>/member/<member>".
func Member(workspaceID ref.WorkspaceID, memberID ref.MemberID) Route {
	return Route{Kind: KindMember, WorkspaceID: workspaceID, MemberID: memberID}
}

// Channel is "/workspace/<workspace>/channel/<channel>".
func Channel(workspaceID ref.WorkspaceID, channelID ref.ChannelID) Route {
	return Route{Kind: KindChannel, WorkspaceID: workspaceID, ChannelID: channelID}
}

// Path renders the route as a URL path.
func (r Route) Path() string {
	switch r.Kind {
	case KindJoin:
		return "/join/" + r.WorkspaceID.String()
	case KindWorkspace:
		return "/workspace/" + r.WorkspaceID.String()
	case KindMember:
		return "/workspace/" + r.WorkspaceID.String() + "/member/" + r.MemberID.String()
	case KindChannel:
		return "/workspace/" + r.WorkspaceID.String() + "/channel/" + r.ChannelID.String()
	default:
		return "/"
	}
}

func (r Route) String() string { return r.Path() }

// Parse reads a path produced by Path. A single trailing slash is
// accepted.
func Parse(path string) (Route, error) {
	if !strings.HasPrefix(path, "/") {
		return Route{}, fmt.Errorf("route: %q is not an absolute path", path)
	}
	trimmed := strings.TrimSuffix(path[1:], "/")
	if trimmed == "" {
		return Root(), nil
	}
	segments := strings.Split(trimmed, "/")

	switch {
	case len(segments) == 2 && segments[0] == "join":
		workspaceID, err := ref.ParseWorkspaceID(segments[1])
		if err != nil {
			return Route{}, fmt.Errorf("route: %q: %w", path, err)
		}
		return Join(workspaceID), nil

	case len(segments) >= 2 && segments[0] == "workspace":
		workspaceID, err := ref.ParseWorkspaceID(segments[1])
		if err != nil {
			return Route{}, fmt.Errorf("route: %q: %w", path, err)
		}
		switch {
		case len(segments) == 2:
			return Workspace(workspaceID), nil
		case len(segments) == 4 && segments[2] == "member":
			memberID, err := ref.ParseMemberID(segments[3])
			if err != nil {
				return Route{}, fmt.Errorf("route: %q: %w", path, err)
			}
			return Member(workspaceID, memberID), nil
		case len(segments) == 4 && segments[2] == "channel":
			channelID, err := ref.ParseChannelID(segments[3])
			if err != nil {
				return Route{}, fmt.Errorf("route: %q: %w", path, err)
			}
			return Channel(workspaceID, channelID), nil
		}
	}
	return Route{}, fmt.Errorf("route: unknown path %q", path)
}

// InviteLink returns the shareable join URL for a workspace. origin
// must be an absolute http or https URL; a trailing slash is ignored.
func InviteLink(origin string, workspaceID ref.WorkspaceID) (string, error) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("route: invalid origin %q: %w", origin, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("route: origin %q must be an absolute http(s) URL", origin)
	}
	return strings.TrimRight(origin, "/") + Join(workspaceID).Path(), nil
}

// Navigator moves the client between routes. Push adds a history
// entry; Replace swaps the current one.
type Navigator interface {
	Push(route Route)
	Replace(route Route)
}

// History is an in-memory Navigator.
type History struct {
	mu      sync.Mutex
	entries []Route
	changed chan struct{}
}

// NewHistory starts a history at initial.
func NewHistory(initial Route) *History {
	return &History{entries: []Route{initial}, changed: make(chan struct{})}
}

func (h *History) Push(route Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, route)
	h.fireLocked()
}

func (h *History) Replace(route Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		h.entries = append(h.entries, route)
	} else {
		h.entries[len(h.entries)-1] = route
	}
	h.fireLocked()
}

// Back drops the current entry unless it is the only one and reports
// whether it moved.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) <= 1 {
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	h.fireLocked()
	return true
}

func (h *History) fireLocked() {
	if h.changed == nil {
		return
	}
	close(h.changed)
	h.changed = make(chan struct{})
}

// Current returns the route on top of the stack.
func (h *History) Current() Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return Root()
	}
	return h.entries[len(h.entries)-1]
}

// Entries returns the whole stack, oldest first.
func (h *History) Entries() []Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Route(nil), h.entries...)
}

// Changed returns a channel closed at the next navigation.
func (h *History) Changed() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.changed == nil {
		h.changed = make(chan struct{})
	}
	return h.changed
}
