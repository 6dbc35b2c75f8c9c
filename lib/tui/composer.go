// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Composer is a modal multi-line editor for writing, editing, and
// replying to messages. It is rendered centered over the main view.
type Composer struct {
	// Title is shown on the first line, e.g. "Message # general".
	Title string

	lines   [][]rune
	cursorY int
	cursorX int
	theme   Theme
}

// NewComposer creates an empty composer.
func NewComposer(title string, theme Theme) Composer {
	return Composer{
		Title: title,
		lines: [][]rune{{}},
		theme: theme,
	}
}

// NewEditComposer creates a composer prefilled with body and the
// cursor at its end.
func NewEditComposer(title, body string, theme Theme) Composer {
	composer := NewComposer(title, theme)
	composer.lines = nil
	for _, line := range strings.Split(body, "\n") {
		composer.lines = append(composer.lines, []rune(line))
	}
	composer.cursorY = len(composer.lines) - 1
	composer.cursorX = len(composer.lines[composer.cursorY])
	return composer
}

// Value returns the text with surrounding blank space trimmed.
func (composer Composer) Value() string {
	parts := make([]string, len(composer.lines))
	for index, line := range composer.lines {
		parts[index] = string(line)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Empty reports whether the composer holds only whitespace.
func (composer Composer) Empty() bool {
	return composer.Value() == ""
}

// Update applies one key press to the editor.
func (composer *Composer) Update(message tea.KeyMsg) {
	switch message.Type {
	case tea.KeyRunes, tea.KeySpace:
		for _, character := range message.Runes {
			composer.insertRune(character)
		}

	case tea.KeyEnter:
		line := composer.lines[composer.cursorY]
		before := append([]rune(nil), line[:composer.cursorX]...)
		after := append([]rune(nil), line[composer.cursorX:]...)
		composer.lines[composer.cursorY] = before
		composer.lines = append(composer.lines[:composer.cursorY+1],
			append([][]rune{after}, composer.lines[composer.cursorY+1:]...)...)
		composer.cursorY++
		composer.cursorX = 0

	case tea.KeyBackspace:
		if composer.cursorX > 0 {
			line := composer.lines[composer.cursorY]
			composer.lines[composer.cursorY] = append(line[:composer.cursorX-1], line[composer.cursorX:]...)
			composer.cursorX--
		} else if composer.cursorY > 0 {
			previous := composer.lines[composer.cursorY-1]
			current := composer.lines[composer.cursorY]
			composer.cursorX = len(previous)
			composer.lines[composer.cursorY-1] = append(previous, current...)
			composer.lines = append(composer.lines[:composer.cursorY], composer.lines[composer.cursorY+1:]...)
			composer.cursorY--
		}

	case tea.KeyDelete:
		line := composer.lines[composer.cursorY]
		if composer.cursorX < len(line) {
			composer.lines[composer.cursorY] = append(line[:composer.cursorX], line[composer.cursorX+1:]...)
		} else if composer.cursorY < len(composer.lines)-1 {
			composer.lines[composer.cursorY] = append(line, composer.lines[composer.cursorY+1]...)
			composer.lines = append(composer.lines[:composer.cursorY+1], composer.lines[composer.cursorY+2:]...)
		}

	case tea.KeyLeft:
		if composer.cursorX > 0 {
			composer.cursorX--
		} else if composer.cursorY > 0 {
			composer.cursorY--
			composer.cursorX = len(composer.lines[composer.cursorY])
		}

	case tea.KeyRight:
		if composer.cursorX < len(composer.lines[composer.cursorY]) {
			composer.cursorX++
		} else if composer.cursorY < len(composer.lines)-1 {
			composer.cursorY++
			composer.cursorX = 0
		}

	case tea.KeyUp:
		if composer.cursorY > 0 {
			composer.cursorY--
			composer.cursorX = min(composer.cursorX, len(composer.lines[composer.cursorY]))
		}

	case tea.KeyDown:
		if composer.cursorY < len(composer.lines)-1 {
			composer.cursorY++
			composer.cursorX = min(composer.cursorX, len(composer.lines[composer.cursorY]))
		}

	case tea.KeyHome, tea.KeyCtrlA:
		composer.cursorX = 0

	case tea.KeyEnd, tea.KeyCtrlE:
		composer.cursorX = len(composer.lines[composer.cursorY])
	}
}

func (composer *Composer) insertRune(character rune) {
	line := composer.lines[composer.cursorY]
	updated := make([]rune, 0, len(line)+1)
	updated = append(updated, line[:composer.cursorX]...)
	updated = append(updated, character)
	updated = append(updated, line[composer.cursorX:]...)
	composer.lines[composer.cursorY] = updated
	composer.cursorX++
}

// Composer chrome: border and padding take 4 columns; border, title,
// and footer take 4 lines.
const (
	composerChromeWidth    = 4
	composerChromeHeight   = 4
	composerMinInnerWidth  = 30
	composerInnerHeight    = 6
	composerMaxInnerWidth  = 80
	composerHorizontalRoom = 4
)

// Render returns the overlay lines and their top-left anchor for
// SpliceOverlay.
func (composer Composer) Render(screenWidth, screenHeight int) ([]string, int, int) {
	innerWidth := min(composerMaxInnerWidth, screenWidth-composerChromeWidth-composerHorizontalRoom)
	innerWidth = max(innerWidth, composerMinInnerWidth)
	innerWidth = min(innerWidth, max(screenWidth-composerChromeWidth, 1))
	innerHeight := min(composerInnerHeight, max(screenHeight-composerChromeHeight, 1))

	background := lipgloss.NewStyle().Background(composer.theme.ModalBackground)
	titleStyle := background.Bold(true).Foreground(composer.theme.HeaderForeground)
	footerStyle := background.Foreground(composer.theme.HelpText)
	textStyle := background.Foreground(composer.theme.ModalForeground)
	cursorStyle := lipgloss.NewStyle().Reverse(true)

	pad := func(line string) string {
		if width := ansi.StringWidth(line); width < innerWidth {
			line += background.Render(strings.Repeat(" ", innerWidth-width))
		}
		return line
	}

	scrollOffset := 0
	if composer.cursorY >= innerHeight {
		scrollOffset = composer.cursorY - innerHeight + 1
	}
	var textLines []string
	for lineIndex := scrollOffset; lineIndex < scrollOffset+innerHeight; lineIndex++ {
		var rendered string
		if lineIndex < len(composer.lines) {
			line := composer.lines[lineIndex]
			switch {
			case lineIndex != composer.cursorY:
				rendered = textStyle.Render(string(line))
			case composer.cursorX >= len(line):
				rendered = textStyle.Render(string(line)) + cursorStyle.Render(" ")
			default:
				rendered = textStyle.Render(string(line[:composer.cursorX])) +
					cursorStyle.Render(string(line[composer.cursorX])) +
					textStyle.Render(string(line[composer.cursorX+1:]))
			}
		}
		textLines = append(textLines, pad(ansi.Truncate(rendered, innerWidth, "")))
	}

	title := pad(titleStyle.Render(ansi.Truncate(composer.Title, innerWidth, "…")))
	footer := pad(footerStyle.Render("Ctrl+D send  Esc cancel"))

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(composer.theme.BorderColor).
		Background(composer.theme.ModalBackground).
		Padding(0, 1)
	rendered := border.Render(title + "\n" + strings.Join(textLines, "\n") + "\n" + footer)
	return centered(strings.Split(rendered, "\n"), screenWidth, screenHeight)
}

// centered computes the anchor that centers lines on the screen.
func centered(lines []string, screenWidth, screenHeight int) ([]string, int, int) {
	width := 0
	if len(lines) > 0 {
		width = ansi.StringWidth(lines[0])
	}
	return lines, max((screenWidth-width)/2, 0), max((screenHeight-len(lines))/2, 0)
}
