// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// MenuOption is a single selectable item.
type MenuOption struct {
	Label string
	Value string
}

// Menu is a floating list anchored at a screen position: the reaction
// picker and the role picker. It captures input while open (up/down to
// move, enter to pick, escape to dismiss); the owning model routes keys
// to it.
type Menu struct {
	Options []MenuOption
	Cursor  int
	AnchorX int
	AnchorY int
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (menu *Menu) MoveUp() {
	menu.Cursor--
	if menu.Cursor < 0 {
		menu.Cursor = len(menu.Options) - 1
	}
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (menu *Menu) MoveDown() {
	menu.Cursor++
	if menu.Cursor >= len(menu.Options) {
		menu.Cursor = 0
	}
}

// Selected returns the highlighted option.
func (menu *Menu) Selected() MenuOption {
	return menu.Options[menu.Cursor]
}

// Width is the rendered width in columns: a marker column, a space,
// the widest label, and one column of padding on each side.
func (menu *Menu) Width() int {
	widest := 0
	for _, option := range menu.Options {
		widest = max(widest, ansi.StringWidth(option.Label))
	}
	return 2 + widest + 2
}

// Contains reports whether the screen coordinate falls on the menu.
func (menu *Menu) Contains(x, y int) bool {
	if y < menu.AnchorY || y >= menu.AnchorY+len(menu.Options) {
		return false
	}
	return x >= menu.AnchorX && x < menu.AnchorX+menu.Width()
}

// OptionAtY returns the option index on screen row y, or -1.
func (menu *Menu) OptionAtY(y int) int {
	index := y - menu.AnchorY
	if index < 0 || index >= len(menu.Options) {
		return -1
	}
	return index
}

// Render produces equal-width lines for SpliceOverlay.
func (menu *Menu) Render(theme Theme) []string {
	totalWidth := menu.Width()
	innerWidth := totalWidth - 2

	normal := lipgloss.NewStyle().
		Background(theme.ModalBackground).
		Foreground(theme.ModalForeground)
	selected := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	lines := make([]string, 0, len(menu.Options))
	for index, option := range menu.Options {
		style, marker := normal, " "
		if index == menu.Cursor {
			style, marker = selected, ">"
		}
		lines = append(lines, PadOverlayLine(style.Render(marker+" "+option.Label), innerWidth, totalWidth, style))
	}
	return lines
}
