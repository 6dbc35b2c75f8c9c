// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"strings"

	"github.com/huddle-chat/huddle/lib/schema"
)

// Capabilities is the set of profile actions a viewer may take on a
// member.
type Capabilities uint8

const (
	// ManageRole allows changing the member's role.
	ManageRole Capabilities = 1 << iota
	// Remove allows removing the member from the workspace.
	Remove
	// Leave allows the member to leave the workspace.
	Leave
)

const (
	// AllCapabilities is the default allowance of an interactive
	// profile panel.
	AllCapabilities = ManageRole | Remove | Leave

	// ReadOnly allows nothing.
	ReadOnly Capabilities = 0
)

// Has reports whether every capability in want is present.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

func (c Capabilities) String() string {
	var names []string
	if c.Has(ManageRole) {
		names = append(names, "manage-role")
	}
	if c.Has(Remove) {
		names = append(names, "remove")
	}
	if c.Has(Leave) {
		names = append(names, "leave")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Derive computes what viewer may do to subject. An admin manages and
// removes other members; a non-admin may leave. Nobody else gets
// anything: an admin cannot act on themselves here, and members cannot
// act on others.
func Derive(viewer, subject schema.Member) Capabilities {
	self := viewer.ID == subject.ID
	switch {
	case viewer.Role == schema.RoleAdmin && !self:
		return ManageRole | Remove
	case self && viewer.Role != schema.RoleAdmin:
		return Leave
	default:
		return ReadOnly
	}
}

// Initial returns the avatar fallback for name: its first letter upper
// cased, or fallback when name is blank.
func Initial(name string, fallback string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return fallback
}
