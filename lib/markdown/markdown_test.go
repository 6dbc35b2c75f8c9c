// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package markdown

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/huddle-chat/huddle/lib/tui"
)

func TestPlain(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		width int
		want  string
	}{
		{"empty", "   ", 80, ""},
		{"paragraph reflows soft breaks", "hello\nworld", 80, "hello world"},
		{"hard break", "line one  \nline two", 80, "line one\nline two"},
		{"emphasis is unstyled", "**bold** and _italic_ and ~~gone~~", 80, "bold and italic and gone"},
		{"two paragraphs", "first\n\nsecond", 80, "first\n\nsecond"},
		{"tight list", "- one\n- two", 80, "• one\n• two"},
		{"ordered list", "3. three\n4. four", 80, "3. three\n4. four"},
		{"nested list", "- outer\n  - inner", 80, "• outer\n  • inner"},
		{"code span", "run `make test` now", 80, "run make test now"},
		{"fenced code", "```go\nfmt.Println(1)\n```", 80, "    fmt.Println(1)"},
		{"link", "[docs](https://example.com/docs)", 80, "docs (https://example.com/docs)"},
		{"autolink", "see https://example.com", 80, "see https://example.com"},
		{"heading", "# Launch", 80, "Launch"},
		{"task list", "- [x] done\n- [ ] todo", 80, "• [x] done\n• [ ] todo"},
		{"image", "![chart](https://example.com/c.png)", 80, "[chart] (https://example.com/c.png)"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Plain(test.body, test.width); got != test.want {
				t.Errorf("Plain(%q) = %q, want %q", test.body, got, test.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	body := "The quick brown fox jumps over the lazy dog and keeps running far away."
	got := Plain(body, 20)
	for _, line := range strings.Split(got, "\n") {
		if ansi.StringWidth(line) > 20 {
			t.Errorf("line %q exceeds width 20", line)
		}
	}
	if strings.Join(strings.Fields(got), " ") != body {
		t.Errorf("wrapping lost words: %q", got)
	}
}

func TestBlockquoteWrapsInsidePrefix(t *testing.T) {
	got := Plain("> quoted words that will need wrapping at a narrow width", 24)
	for _, line := range strings.Split(got, "\n") {
		if !strings.HasPrefix(line, "│ ") {
			t.Errorf("line %q lacks the quote prefix", line)
		}
		if ansi.StringWidth(line) > 24 {
			t.Errorf("line %q exceeds width 24", line)
		}
	}
}

func TestRenderStyled(t *testing.T) {
	got := Render("**hi** `code`\n\n```go\nx := 1\n```", Options{Theme: tui.DefaultTheme, Width: 60})
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI styling, got %q", got)
	}
	stripped := ansi.Strip(got)
	if !strings.Contains(stripped, "hi code") || !strings.Contains(stripped, "x := 1") {
		t.Errorf("visible text = %q", stripped)
	}
}
