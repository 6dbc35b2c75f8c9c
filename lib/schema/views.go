// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"time"

	"github.com/huddle-chat/huddle/lib/ref"
)

// ReactionAggregate groups every reaction on one message with one emoji
// value. Count always equals len(MemberIDs).
type ReactionAggregate struct {
	Value     string         `json:"value"`
	Count     int            `json:"count"`
	MemberIDs []ref.MemberID `json:"member_ids"`
}

// Includes reports whether member contributed to this aggregate.
func (a ReactionAggregate) Includes(member ref.MemberID) bool {
	for _, id := range a.MemberIDs {
		if id == member {
			return true
		}
	}
	return false
}

// ThreadSummary describes the replies anchored to a message. A message
// with no replies has a zero summary.
type ThreadSummary struct {
	Count int `json:"count"`

	// Image and Name belong to the author of the most recent reply.
	Image string `json:"image,omitempty"`
	Name  string `json:"name,omitempty"`

	// Timestamp is the creation time of the most recent reply.
	Timestamp time.Time `json:"timestamp"`
}

// MessageView is a message populated with everything needed to render
// it: the author's member and user records, reaction aggregates, and
// the thread summary.
type MessageView struct {
	Message
	Member    Member              `json:"member"`
	User      User                `json:"user"`
	Reactions []ReactionAggregate `json:"reactions"`
	Thread    ThreadSummary       `json:"thread"`
}
