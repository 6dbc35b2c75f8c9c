// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/markdown"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/tui"
)

const (
	sideMinWidth   = 32
	finderMaxShown = 8
	excerptLines   = 3

	loadingText      = "Loading…"
	channelNotFound  = "This channel does not exist or you cannot see it."
	profileNotFound  = "Member not found."
	emptyStream      = "No messages yet. Press c to write the first one."
	loadOlderHint    = "o: load older messages"
	loadingOlderHint = "loading older messages…"
)

// block is one message's rendered lines.
type block struct {
	id    ref.MessageID
	lines []string
}

// bodyHeight is the number of rows between the header and the status
// line.
func (m *Model) bodyHeight() int {
	return max(1, m.height-2)
}

// widths splits the screen between the message list (including its
// scrollbar column) and the side panel.
func (m *Model) widths() (int, int) {
	if !m.sideOpen() {
		return m.width, 0
	}
	side := max(sideMinWidth, m.width*2/5)
	if side >= m.width-10 {
		return m.width, 0
	}
	return m.width - side - 1, side
}

// View renders the whole screen.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	mainWidth, sideWidth := m.widths()
	height := m.bodyHeight()

	mainLines := m.renderMessages(mainWidth, height)
	var sideLines []string
	if sideWidth > 0 {
		sideLines = m.renderSide(sideWidth, height)
	}
	divider := lipgloss.NewStyle().Foreground(m.theme.BorderColor).Render("│")

	rows := make([]string, 0, m.height)
	rows = append(rows, m.renderHeader())
	for index := range height {
		row := fit(mainLines[index], mainWidth)
		if sideWidth > 0 {
			side := ""
			if index < len(sideLines) {
				side = sideLines[index]
			}
			row += divider + fit(side, sideWidth)
		}
		rows = append(rows, row)
	}
	rows = append(rows, m.renderStatus())
	screen := strings.Join(rows, "\n")

	switch m.modal {
	case modalMenu:
		screen = tui.SpliceOverlay(screen, m.menu.Render(m.theme), m.menu.AnchorX, m.menu.AnchorY)
	case modalFinder:
		lines, x, y := m.renderFinder()
		screen = tui.SpliceOverlay(screen, lines, x, y)
	case modalComposer:
		lines, x, y := m.composer.Render(m.width, m.height)
		screen = tui.SpliceOverlay(screen, lines, x, y)
	}
	if m.pending != nil {
		lines, x, y := tui.RenderConfirm(m.theme, m.pending.Prompt, m.width, m.height)
		screen = tui.SpliceOverlay(screen, lines, x, y)
	}
	return screen
}

// fit truncates or pads line to exactly width columns.
func fit(line string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(line) > width {
		line = ansi.Truncate(line, width, "")
	}
	return line + strings.Repeat(" ", width-ansi.StringWidth(line))
}

func (m *Model) renderHeader() string {
	name := m.streamName()
	if m.view.Status == live.StatusLoading {
		name = loadingText
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground).Render(name)
	return fit(" "+title, m.width)
}

// renderStatus shows the newest notification, or the key help for the
// focused region.
func (m *Model) renderStatus() string {
	if note, ok := m.notes.Latest(); ok {
		style := lipgloss.NewStyle().Foreground(m.theme.NotificationColor(note.Level))
		return fit(" "+style.Render(note.Message), m.width)
	}
	help := lipgloss.NewStyle().Foreground(m.theme.HelpText)
	return fit(" "+help.Render(m.helpText()), m.width)
}

// helpText lists only the actions the viewer may take right now.
func (m *Model) helpText() string {
	var bindings []key.Binding
	switch {
	case m.focus == focusSide && m.thread != nil:
		bindings = append(bindings, m.keys.Reply, m.keys.FocusToggle, m.keys.Close)
	case m.focus == focusSide && m.profilePanel != nil:
		view := m.profilePanel.View()
		if view.Capabilities.Has(panel.ManageRole) {
			bindings = append(bindings, m.keys.Role)
		}
		if view.Capabilities.Has(panel.Remove) {
			bindings = append(bindings, m.keys.Remove)
		}
		if view.Capabilities.Has(panel.Leave) {
			bindings = append(bindings, m.keys.Leave)
		}
		if view.Status == live.StatusReady && view.MemberID != m.view.Viewer {
			bindings = append(bindings, m.keys.DirectMessage)
		}
		bindings = append(bindings, m.keys.FocusToggle, m.keys.Close)
	default:
		bindings = append(bindings, m.keys.Up, m.keys.Down, m.keys.Compose)
		if message, ok := m.selectedMessage(); ok {
			if m.isOwn(message) {
				bindings = append(bindings, m.keys.Edit, m.keys.Delete)
			}
			bindings = append(bindings, m.keys.React, m.keys.Thread, m.keys.Profile)
		}
		bindings = append(bindings, m.keys.Find)
	}
	bindings = append(bindings, m.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}

// blocks renders the loaded messages, oldest first, preceded by the
// pagination marker.
func (m *Model) blocks(width int) []block {
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	var marker string
	switch m.view.Feed {
	case live.CanLoadMore:
		marker = loadOlderHint
	case live.LoadingMore:
		marker = loadingOlderHint
	case live.Exhausted:
		marker = "beginning of " + m.streamName()
	}
	blocks := []block{{lines: []string{faint.Render("── " + marker + " ──"), ""}}}
	now := m.clock.Now()
	for _, message := range m.messages {
		blocks = append(blocks, block{id: message.ID, lines: m.renderMessage(message, width, now)})
	}
	return blocks
}

// renderMessage draws one message with its selection or glow gutter.
func (m *Model) renderMessage(message schema.MessageView, width int, now time.Time) []string {
	rendered := panel.RenderMessage(message, panel.MessageContext{
		Viewer:  m.view.Viewer,
		Width:   max(10, width-3),
		Theme:   m.theme,
		Profile: m.profile,
		Now:     now,
	})

	gutter := "  "
	switch intensity := m.glow.Intensity(message.ID.String(), now); {
	case message.ID == m.selected:
		gutter = lipgloss.NewStyle().Foreground(m.theme.SelectedForeground).Render("▌") + " "
	case intensity > 0.5:
		gutter = lipgloss.NewStyle().Foreground(m.theme.NotifySuccess).Render("▎") + " "
	case intensity > 0:
		gutter = lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("▎") + " "
	}

	authorColor := m.theme.AuthorForeground
	if rendered.IsAuthor {
		authorColor = m.theme.OwnAuthor
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(authorColor).Render(rendered.AuthorName) +
		" " + lipgloss.NewStyle().Foreground(m.theme.Timestamp).Render(rendered.Time)
	if rendered.Edited {
		header += " " + lipgloss.NewStyle().Foreground(m.theme.EditedMarker).Render(rendered.EditedLabel)
	}

	lines := []string{gutter + header}
	if rendered.Body != "" {
		for _, line := range strings.Split(rendered.Body, "\n") {
			lines = append(lines, gutter+line)
		}
	}
	if rendered.Image != "" {
		lines = append(lines, gutter+lipgloss.NewStyle().Foreground(m.theme.LinkForeground).Render("[image] "+rendered.Image))
	}
	if reactions := rendered.Reactions.Render(m.theme); reactions != "" {
		lines = append(lines, gutter+reactions)
	}
	if rendered.Thread != nil {
		summary := rendered.Thread.Label
		if rendered.Thread.LastReply != "" {
			summary += " · " + rendered.Thread.LastReply
		}
		lines = append(lines, gutter+lipgloss.NewStyle().Foreground(m.theme.ThreadSummary).Render(summary))
	}
	return append(lines, "")
}

// messageLines flattens the blocks and records where the selected
// message starts and ends.
func (m *Model) messageLines(width int) ([]string, int, int) {
	var lines []string
	start, end := -1, -1
	for _, block := range m.blocks(width) {
		if !block.id.IsZero() && block.id == m.selected {
			start = len(lines)
			end = start + len(block.lines)
		}
		lines = append(lines, block.lines...)
	}
	return lines, start, end
}

// selectedLine is the first line of the selected message.
func (m *Model) selectedLine() int {
	mainWidth, _ := m.widths()
	_, start, _ := m.messageLines(mainWidth - 1)
	return max(0, start)
}

// scrollToSelection moves the viewport so the selected message is
// visible, pinning to the bottom while following.
func (m *Model) scrollToSelection() {
	if m.width == 0 || m.height == 0 {
		return
	}
	mainWidth, _ := m.widths()
	height := m.bodyHeight()
	lines, start, end := m.messageLines(mainWidth - 1)
	bottom := max(0, len(lines)-height)
	switch {
	case m.follow:
		m.offset = bottom
	case start >= 0 && start < m.offset:
		m.offset = start
	case end > m.offset+height:
		m.offset = min(start, end-height)
	}
	m.offset = max(0, min(m.offset, bottom))
}

// renderMessages draws the visible slice of the stream with a
// scrollbar in the last column.
func (m *Model) renderMessages(width, height int) []string {
	out := make([]string, height)
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	switch m.view.Status {
	case live.StatusLoading:
		out[0] = " " + faint.Render(loadingText)
		return out
	case live.StatusNotFound:
		out[0] = " " + channelNotFound
		return out
	}
	if len(m.messages) == 0 && m.view.Feed == live.Exhausted {
		out[0] = " " + faint.Render(emptyStream)
		return out
	}

	lines, _, _ := m.messageLines(width - 1)
	scrollbar := strings.Split(tui.RenderScrollbar(m.theme, height, len(lines), height, m.offset, m.focus == focusMessages), "\n")
	for index := range height {
		line := ""
		if m.offset+index < len(lines) {
			line = lines[m.offset+index]
		}
		bar := ""
		if index < len(scrollbar) {
			bar = scrollbar[index]
		}
		out[index] = fit(line, width-1) + bar
	}
	return out
}

func (m *Model) renderSide(width, height int) []string {
	var lines []string
	if m.thread != nil {
		lines = m.renderThread(width)
	} else {
		lines = m.renderProfile(width)
	}
	offset := min(m.sideOffset, max(0, len(lines)-height))
	m.sideOffset = offset
	return lines[offset:]
}

func (m *Model) sideTitle(title string) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground)
	if m.focus == focusSide {
		style = style.Underline(true)
	}
	return " " + style.Render(title)
}

func (m *Model) renderThread(width int) []string {
	view := m.thread.View()
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	lines := []string{m.sideTitle(view.Title), ""}
	switch view.Status {
	case live.StatusLoading:
		return append(lines, " "+faint.Render(loadingText))
	case live.StatusNotFound:
		return append(lines, " "+view.NotFound)
	}

	now := m.clock.Now()
	root, _ := m.thread.Render(panel.MessageContext{
		Width:   max(10, width-3),
		Theme:   m.theme,
		Profile: m.profile,
		Now:     now,
	})
	authorColor := m.theme.AuthorForeground
	if root.IsAuthor {
		authorColor = m.theme.OwnAuthor
	}
	lines = append(lines, " "+lipgloss.NewStyle().Bold(true).Foreground(authorColor).Render(root.AuthorName)+
		" "+lipgloss.NewStyle().Foreground(m.theme.Timestamp).Render(root.Time))
	for _, line := range strings.Split(root.Body, "\n") {
		lines = append(lines, " "+line)
	}
	if reactions := root.Reactions.Render(m.theme); reactions != "" {
		lines = append(lines, " "+reactions)
	}

	lines = append(lines, "", " "+faint.Render(fmt.Sprintf("── replies (%d) ──", len(view.Replies))))
	for index := len(view.Replies) - 1; index >= 0; index-- {
		reply := view.Replies[index]
		name := reply.User.Name
		if name == "" {
			name = "Member"
		}
		lines = append(lines, " "+lipgloss.NewStyle().Bold(true).Foreground(m.theme.AuthorForeground).Render(name)+
			" "+faint.Render(panel.Ago(now.Sub(reply.CreatedAt))+" ago"))
		for _, line := range tui.ExtractExcerpt(markdown.Plain(reply.Body, width-3), width-3, excerptLines) {
			lines = append(lines, "   "+line)
		}
	}
	return append(lines, "", " "+faint.Render(view.Placeholder))
}

func (m *Model) renderProfile(width int) []string {
	view := m.profilePanel.View()
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	lines := []string{m.sideTitle("Profile"), ""}
	switch view.Status {
	case live.StatusLoading:
		return append(lines, " "+faint.Render(loadingText))
	case live.StatusNotFound:
		return append(lines, " "+profileNotFound)
	}

	avatar := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.ModalForeground).
		Background(m.theme.RoleColor(view.Role)).
		Padding(0, 1).
		Render(view.Initial)
	lines = append(lines,
		" "+avatar+" "+lipgloss.NewStyle().Bold(true).Render(ansi.Truncate(view.Name, width-6, "…")),
		"",
		" "+faint.Render("Email")+"  "+view.Email,
		" "+faint.Render("Role ")+"  "+lipgloss.NewStyle().Foreground(m.theme.RoleColor(view.Role)).Render(string(view.Role)),
	)
	if view.Image != "" {
		lines = append(lines, " "+faint.Render("Image")+"  "+view.Image)
	}
	return lines
}

// renderFinder draws the member finder: the query line above the
// ranked matches.
func (m *Model) renderFinder() ([]string, int, int) {
	width := max(m.finderMenu.Width(), 36)
	background := lipgloss.NewStyle().
		Background(m.theme.ModalBackground).
		Foreground(m.theme.ModalForeground)
	query := lipgloss.NewStyle().
		Background(m.theme.ModalBackground).
		Foreground(m.theme.HeaderForeground).
		Render("Find member: " + m.finderQuery + "▏")

	lines := []string{tui.PadOverlayLine(query, width-2, width, background)}
	menu := m.finderMenu
	if len(menu.Options) > finderMaxShown {
		first := max(0, min(menu.Cursor-finderMaxShown/2, len(menu.Options)-finderMaxShown))
		menu = tui.Menu{Options: menu.Options[first : first+finderMaxShown], Cursor: menu.Cursor - first}
	}
	switch {
	case m.members != nil && m.members.Status() == live.StatusLoading:
		lines = append(lines, tui.PadOverlayLine(background.Render(loadingText), width-2, width, background))
	case len(menu.Options) == 0:
		lines = append(lines, tui.PadOverlayLine(background.Render("No matching members"), width-2, width, background))
	default:
		for _, line := range menu.Render(m.theme) {
			lines = append(lines, line+background.Render(strings.Repeat(" ", max(0, width-ansi.StringWidth(line)))))
		}
	}
	x := max(0, (m.width-width)/2)
	y := max(1, (m.height-len(lines))/3)
	return lines, x, y
}
