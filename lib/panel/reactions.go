// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/tui"
)

// ReactionItem is one reaction value under a message.
type ReactionItem struct {
	Value   string
	Count   int
	Reacted bool // the viewer is among the contributors
}

// ReactionBar lists a message's reactions. What a click means is up to
// onChange; the reference backend toggles the viewer's reaction.
type ReactionBar struct {
	Items    []ReactionItem
	onChange func(value string)
}

// NewReactionBar builds the bar for viewer. Aggregates with no
// contributors are skipped. onChange may be nil.
func NewReactionBar(aggregates []schema.ReactionAggregate, viewer ref.MemberID, onChange func(value string)) ReactionBar {
	bar := ReactionBar{onChange: onChange}
	for _, aggregate := range aggregates {
		if aggregate.Count <= 0 {
			continue
		}
		bar.Items = append(bar.Items, ReactionItem{
			Value:   aggregate.Value,
			Count:   aggregate.Count,
			Reacted: !viewer.IsZero() && aggregate.Includes(viewer),
		})
	}
	return bar
}

// Click forwards value to onChange when the bar shows it and reports
// whether it did.
func (b ReactionBar) Click(value string) bool {
	if b.onChange == nil {
		return false
	}
	for _, item := range b.Items {
		if item.Value == value {
			b.onChange(value)
			return true
		}
	}
	return false
}

// Pick forwards any value, as the emoji picker does.
func (b ReactionBar) Pick(value string) {
	if b.onChange != nil && value != "" {
		b.onChange(value)
	}
}

// Text renders the bar as plain text, e.g. "👍 2*  🎉 1". An asterisk
// marks the viewer's reactions.
func (b ReactionBar) Text() string {
	parts := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		part := fmt.Sprintf("%s %d", item.Value, item.Count)
		if item.Reacted {
			part += "*"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ")
}

// Render draws the bar as pills, highlighting the viewer's reactions.
func (b ReactionBar) Render(theme tui.Theme) string {
	if len(b.Items) == 0 {
		return ""
	}
	pills := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		background := theme.ReactionBackground
		if item.Reacted {
			background = theme.ReactedBackground
		}
		pills = append(pills, lipgloss.NewStyle().
			Foreground(theme.NormalText).
			Background(background).
			Padding(0, 1).
			Render(fmt.Sprintf("%s %d", item.Value, item.Count)))
	}
	return strings.Join(pills, " ")
}
