// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import "slices"

// Topic names a slice of backend data for change notification. A query
// depends on a set of topics; it must be re-run whenever any of them
// changes.
type Topic string

const (
	TopicUsers         Topic = "users"
	TopicWorkspaces    Topic = "workspaces"
	TopicMembers       Topic = "members"
	TopicChannels      Topic = "channels"
	TopicConversations Topic = "conversations"
	TopicMessages      Topic = "messages"
	TopicReactions     Topic = "reactions"
)

// AllTopics lists every topic. A reset ChangeSet reports all of them.
var AllTopics = []Topic{
	TopicUsers,
	TopicWorkspaces,
	TopicMembers,
	TopicChannels,
	TopicConversations,
	TopicMessages,
	TopicReactions,
}

// ChangeSet is the result of one Watch call.
type ChangeSet struct {
	// Version is the backend data version the caller has now seen.
	// Pass it as since on the next Watch.
	Version uint64 `json:"version"`

	// Topics lists the topics changed after the caller's since
	// version, deduplicated and sorted.
	Topics []Topic `json:"topics"`

	// Reset is set when the backend no longer remembers changes as old
	// as since. Topics then lists every topic and the caller must
	// refresh everything.
	Reset bool `json:"reset,omitempty"`
}

// Intersects reports whether any topic appears in both lists.
func Intersects(a, b []Topic) bool {
	for _, topic := range a {
		if slices.Contains(b, topic) {
			return true
		}
	}
	return false
}

// MergeTopics returns the sorted union of the given topic lists.
func MergeTopics(lists ...[]Topic) []Topic {
	var merged []Topic
	for _, list := range lists {
		for _, topic := range list {
			if !slices.Contains(merged, topic) {
				merged = append(merged, topic)
			}
		}
	}
	slices.Sort(merged)
	return merged
}
