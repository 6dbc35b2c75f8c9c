// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"net/url"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/route"
)

// parseWorkspace accepts a workspace ID, a route path such as
// /workspace/ws_..., or a full invite link.
func parseWorkspace(raw string) (ref.WorkspaceID, error) {
	if id, err := ref.ParseWorkspaceID(raw); err == nil {
		return id, nil
	}
	path := raw
	if parsed, err := url.Parse(raw); err == nil && parsed.Path != "" {
		path = parsed.Path
	}
	if parsed, err := route.Parse(path); err == nil && !parsed.WorkspaceID.IsZero() {
		return parsed.WorkspaceID, nil
	}
	return ref.WorkspaceID{}, cli.Validation("%q is not a workspace ID or link", raw)
}

func parseMember(raw string) (ref.MemberID, error) {
	id, err := ref.ParseMemberID(raw)
	if err != nil {
		return ref.MemberID{}, cli.Validation("%w", err)
	}
	return id, nil
}

func parseChannel(raw string) (ref.ChannelID, error) {
	id, err := ref.ParseChannelID(raw)
	if err != nil {
		return ref.ChannelID{}, cli.Validation("%w", err)
	}
	return id, nil
}

func parseConversation(raw string) (ref.ConversationID, error) {
	id, err := ref.ParseConversationID(raw)
	if err != nil {
		return ref.ConversationID{}, cli.Validation("%w", err)
	}
	return id, nil
}

func parseMessage(raw string) (ref.MessageID, error) {
	id, err := ref.ParseMessageID(raw)
	if err != nil {
		return ref.MessageID{}, cli.Validation("%w", err)
	}
	return id, nil
}
