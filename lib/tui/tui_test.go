// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/huddle-chat/huddle/lib/confirm"
)

func typeText(composer *Composer, text string) {
	for _, character := range text {
		if character == '\n' {
			composer.Update(tea.KeyMsg{Type: tea.KeyEnter})
			continue
		}
		composer.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{character}})
	}
}

func TestComposer(t *testing.T) {
	t.Run("typing and newlines", func(t *testing.T) {
		composer := NewComposer("Message # general", DefaultTheme)
		if !composer.Empty() {
			t.Fatal("new composer is not empty")
		}
		typeText(&composer, "hello\nworld")
		if got := composer.Value(); got != "hello\nworld" {
			t.Errorf("Value() = %q", got)
		}
	})

	t.Run("backspace joins lines", func(t *testing.T) {
		composer := NewComposer("", DefaultTheme)
		typeText(&composer, "ab\ncd")
		composer.Update(tea.KeyMsg{Type: tea.KeyHome})
		composer.Update(tea.KeyMsg{Type: tea.KeyBackspace})
		if got := composer.Value(); got != "abcd" {
			t.Errorf("Value() = %q, want abcd", got)
		}
	})

	t.Run("insert mid line", func(t *testing.T) {
		composer := NewComposer("", DefaultTheme)
		typeText(&composer, "helo")
		composer.Update(tea.KeyMsg{Type: tea.KeyLeft})
		typeText(&composer, "l")
		if got := composer.Value(); got != "hello" {
			t.Errorf("Value() = %q, want hello", got)
		}
	})

	t.Run("edit prefill", func(t *testing.T) {
		composer := NewEditComposer("Edit message", "first\nsecond", DefaultTheme)
		typeText(&composer, "!")
		if got := composer.Value(); got != "first\nsecond!" {
			t.Errorf("Value() = %q, want cursor at the end", got)
		}
	})

	t.Run("whitespace only is empty", func(t *testing.T) {
		composer := NewComposer("", DefaultTheme)
		typeText(&composer, "  \n ")
		if !composer.Empty() {
			t.Errorf("Value() = %q, want empty", composer.Value())
		}
	})

	t.Run("render is centered and bounded", func(t *testing.T) {
		composer := NewComposer("Reply in thread", DefaultTheme)
		typeText(&composer, "draft")
		lines, x, y := composer.Render(100, 30)
		if x <= 0 || y <= 0 {
			t.Errorf("anchor = (%d, %d), want inset from the corner", x, y)
		}
		joined := ansi.Strip(strings.Join(lines, "\n"))
		for _, want := range []string{"Reply in thread", "draft", "Ctrl+D send"} {
			if !strings.Contains(joined, want) {
				t.Errorf("render missing %q:\n%s", want, joined)
			}
		}
		for _, line := range lines {
			if width := ansi.StringWidth(line); width > 100 {
				t.Errorf("line width %d exceeds screen", width)
			}
		}
	})
}

func TestMenu(t *testing.T) {
	menu := &Menu{
		Options: []MenuOption{{"👍 thumbs up", "👍"}, {"🎉 party", "🎉"}, {"❤️ heart", "❤️"}},
		AnchorX: 4,
		AnchorY: 10,
	}
	menu.MoveUp()
	if menu.Selected().Value != "❤️" {
		t.Errorf("MoveUp from top selected %q, want wrap to bottom", menu.Selected().Value)
	}
	menu.MoveDown()
	if menu.Selected().Value != "👍" {
		t.Errorf("MoveDown from bottom selected %q, want wrap to top", menu.Selected().Value)
	}

	lines := menu.Render(DefaultTheme)
	if len(lines) != 3 {
		t.Fatalf("Render returned %d lines", len(lines))
	}
	for index, line := range lines {
		if width := ansi.StringWidth(line); width != menu.Width() {
			t.Errorf("line %d width = %d, want %d", index, width, menu.Width())
		}
	}
	if !strings.HasPrefix(strings.TrimSpace(ansi.Strip(lines[0])), ">") {
		t.Errorf("cursor row %q lacks the marker", ansi.Strip(lines[0]))
	}

	if !menu.Contains(4, 10) || menu.Contains(3, 10) || menu.Contains(4, 13) {
		t.Error("Contains disagrees with the anchor and size")
	}
	if menu.OptionAtY(11) != 1 || menu.OptionAtY(9) != -1 {
		t.Error("OptionAtY mismatch")
	}
}

func TestRenderConfirm(t *testing.T) {
	lines, x, y := RenderConfirm(DefaultTheme, confirm.Prompt{
		Title: "Delete message",
		Body:  "Are you sure you want to delete this message? This cannot be undone.",
	}, 80, 24)
	text := ansi.Strip(strings.Join(lines, "\n"))
	for _, want := range []string{"Delete message", "cannot be undone", "y confirm"} {
		if !strings.Contains(text, want) {
			t.Errorf("confirm modal missing %q:\n%s", want, text)
		}
	}
	if x < 0 || y < 0 || x+ansi.StringWidth(lines[0]) > 80 {
		t.Errorf("modal at (%d, %d) does not fit", x, y)
	}
}

func TestGlowTracker(t *testing.T) {
	tracker := NewGlowTracker()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if tracker.Intensity("msg", start) != 0 || tracker.Active(start) {
		t.Fatal("empty tracker glows")
	}
	tracker.Light("msg", start)
	if got := tracker.Intensity("msg", start); got != 1 {
		t.Errorf("intensity at light = %v, want 1", got)
	}
	if got := tracker.Intensity("msg", start.Add(GlowDuration/2)); got < 0.49 || got > 0.51 {
		t.Errorf("intensity halfway = %v, want 0.5", got)
	}
	if !tracker.Active(start.Add(GlowDuration / 2)) {
		t.Error("tracker inactive halfway through the glow")
	}
	end := start.Add(GlowDuration)
	if tracker.Intensity("msg", end) != 0 || tracker.Active(end) {
		t.Error("glow outlived GlowDuration")
	}
}

func TestSpliceOverlay(t *testing.T) {
	view := "0123456789\nabcdefghij\nKLMNOPQRST"
	result := SpliceOverlay(view, []string{"XX", "YY"}, 3, 1)
	lines := strings.Split(ansi.Strip(result), "\n")
	want := []string{"0123456789", "abcXXfghij", "KLMYYPQRST"}
	for index := range want {
		if lines[index] != want[index] {
			t.Errorf("line %d = %q, want %q", index, lines[index], want[index])
		}
	}

	short := ansi.Strip(SpliceOverlay("ab", []string{"X"}, 4, 0))
	if short != "ab  X" {
		t.Errorf("short line splice = %q, want %q", short, "ab  X")
	}
}

func TestExtractExcerpt(t *testing.T) {
	body := "\n\n  first line of a long message body\n\nsecond\nthird\n"
	got := ExtractExcerpt(body, 12, 2)
	if len(got) != 2 {
		t.Fatalf("ExtractExcerpt returned %d lines: %q", len(got), got)
	}
	if ansi.StringWidth(got[0]) > 12 || !strings.HasSuffix(got[0], "…") {
		t.Errorf("first line %q not truncated to 12 columns", got[0])
	}
	if got[1] != "second" {
		t.Errorf("second line = %q", got[1])
	}
}

func TestRenderScrollbar(t *testing.T) {
	if RenderScrollbar(DefaultTheme, 0, 10, 5, 0, true) != "" {
		t.Error("zero-height scrollbar rendered")
	}
	bar := strings.Split(ansi.Strip(RenderScrollbar(DefaultTheme, 10, 100, 10, 90, true)), "\n")
	if len(bar) != 10 {
		t.Fatalf("scrollbar has %d rows", len(bar))
	}
	if bar[9] != "┃" || bar[0] != "│" {
		t.Errorf("thumb not at the bottom when scrolled to the end: %q", bar)
	}
}
