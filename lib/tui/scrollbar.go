// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	scrollThumb = "┃"
	scrollTrack = "│"
)

// RenderScrollbar draws a one-column scrollbar height rows tall for a
// list of total rows of which visible are shown starting at offset.
// When everything fits the thumb fills the track. The thumb takes the
// link color while focused.
func RenderScrollbar(theme Theme, height, total, visible, offset int, focused bool) string {
	if height <= 0 {
		return ""
	}
	thumbColor := theme.BorderColor
	if focused {
		thumbColor = theme.LinkForeground
	}
	thumb := lipgloss.NewStyle().Foreground(thumbColor).Render(scrollThumb)
	track := lipgloss.NewStyle().Foreground(theme.BorderColor).Render(scrollTrack)

	start, size := thumbBounds(height, total, visible, offset)
	rows := make([]string, height)
	for row := range rows {
		if row >= start && row < start+size {
			rows[row] = thumb
		} else {
			rows[row] = track
		}
	}
	return strings.Join(rows, "\n")
}

// thumbBounds places a thumb proportional to the visible share of the
// list, at least one row, positioned by offset within the scrollable
// range.
func thumbBounds(height, total, visible, offset int) (start, size int) {
	if total <= 0 || total <= visible {
		return 0, height
	}
	size = max(height*visible/total, 1)
	scrollable := total - visible
	if free := height - size; free > 0 {
		start = min(offset*free/scrollable, free)
	}
	return start, size
}
