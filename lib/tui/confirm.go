// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/huddle-chat/huddle/lib/confirm"
)

// confirmMaxWidth bounds the body before wrapping.
const confirmMaxWidth = 56

// RenderConfirm draws a confirmation prompt as a centered modal and
// returns the overlay lines with their anchor.
func RenderConfirm(theme Theme, prompt confirm.Prompt, screenWidth, screenHeight int) ([]string, int, int) {
	width := min(confirmMaxWidth, max(screenWidth-6, 20))
	background := lipgloss.NewStyle().Background(theme.ModalBackground)
	title := background.Bold(true).Foreground(theme.HeaderForeground).Render(prompt.Title)
	body := background.Foreground(theme.ModalForeground).Render(ansi.Wordwrap(prompt.Body, width, ""))
	keys := background.Foreground(theme.HelpText).Render("y confirm  n cancel")

	content := lipgloss.NewStyle().
		Width(width).
		Background(theme.ModalBackground).
		Render(strings.Join([]string{title, "", body, "", keys}, "\n"))
	rendered := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.NotifyError).
		Background(theme.ModalBackground).
		Padding(0, 1).
		Render(content)
	return centered(strings.Split(rendered, "\n"), screenWidth, screenHeight)
}
