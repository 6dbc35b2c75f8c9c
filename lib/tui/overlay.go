// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// resetSGR clears styling so neither side of a splice bleeds into the
// other.
const resetSGR = "\x1b[0m"

// SpliceOverlay draws overlay lines over view with the top-left corner
// at column x, row y. Rows outside the view are dropped. A view line
// shorter than x is padded with spaces so the overlay keeps its
// column. Escape sequences on both sides of the overlay survive.
func SpliceOverlay(view string, overlay []string, x, y int) string {
	if len(overlay) == 0 {
		return view
	}
	x = max(x, 0)
	rows := strings.Split(view, "\n")
	width := ansi.StringWidth(overlay[0])
	for i, line := range overlay {
		row := y + i
		if row < 0 || row >= len(rows) {
			continue
		}
		rows[row] = spliceLine(rows[row], line, x, width)
	}
	return strings.Join(rows, "\n")
}

func spliceLine(base, overlay string, x, width int) string {
	baseWidth := ansi.StringWidth(base)
	var b strings.Builder
	switch {
	case baseWidth >= x:
		b.WriteString(ansi.Truncate(base, x, ""))
	default:
		b.WriteString(base)
		b.WriteString(strings.Repeat(" ", x-baseWidth))
	}
	b.WriteString(resetSGR)
	b.WriteString(overlay)
	b.WriteString(resetSGR)
	if end := x + width; end < baseWidth {
		b.WriteString(ansi.TruncateLeft(base, end, ""))
	}
	return b.String()
}

// PadOverlayLine frames content as one row of a box innerWidth wide:
// a leading space, the content, then background-styled padding up to
// the right border.
func PadOverlayLine(content string, innerWidth, totalWidth int, background lipgloss.Style) string {
	fill := max(innerWidth-ansi.StringWidth(content), 0) + 1
	return background.Render(" ") + content + background.Render(strings.Repeat(" ", fill))
}

// ExtractExcerpt returns up to maxLines non-blank lines of body, each
// cut to maxWidth with an ellipsis.
func ExtractExcerpt(body string, maxWidth, maxLines int) []string {
	var excerpt []string
	for line := range strings.SplitSeq(body, "\n") {
		if len(excerpt) == maxLines {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if ansi.StringWidth(line) > maxWidth {
			line = ansi.Truncate(line, maxWidth-1, "…")
		}
		excerpt = append(excerpt, line)
	}
	return excerpt
}
