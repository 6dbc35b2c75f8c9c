// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package markdown renders message bodies for the terminal.
//
// Bodies are GitHub-flavored Markdown. Rendering walks the goldmark
// AST directly: inline content of a block accumulates and is wrapped
// to the target width when the block closes, fenced code is
// highlighted with chroma, and links show their destination after the
// text. Soft line breaks become spaces so bodies reflow at any width.
package markdown

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/huddle-chat/huddle/lib/tui"
)

// Options controls rendering.
type Options struct {
	Theme tui.Theme

	// Width is the wrap column. Zero or less disables wrapping.
	Width int

	// Profile selects the color depth. termenv.Ascii produces plain
	// text; the zero value is treated as termenv.ANSI256.
	Profile termenv.Profile
}

var (
	parser     goldmark.Markdown
	parserOnce sync.Once
)

func markdownParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parser = goldmark.New(goldmark.WithExtensions(
			extension.Strikethrough,
			extension.Linkify,
			extension.TaskList,
		))
	})
	return parser
}

// Render returns body as styled terminal text with no trailing
// newline.
func Render(body string, options Options) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	profile := options.Profile
	if profile == 0 {
		// termenv.TrueColor is the zero Profile value; chat output
		// defaults to 256 colors.
		profile = termenv.ANSI256
	}
	styles := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(profile))
	styles.SetColorProfile(profile)

	source := []byte(body)
	document := markdownParser().Parser().Parse(text.NewReader(source))
	walker := &walker{
		source:  source,
		theme:   options.Theme,
		width:   options.Width,
		styles:  styles,
		colored: profile != termenv.Ascii,
	}
	_ = ast.Walk(document, walker.walk)
	return strings.TrimRight(walker.out.String(), "\n")
}

// Plain renders body without any styling. Used for one-line previews
// and non-terminal output.
func Plain(body string, width int) string {
	return ansi.Strip(Render(body, Options{Theme: tui.DefaultTheme, Width: width, Profile: termenv.Ascii}))
}

type walker struct {
	source  []byte
	theme   tui.Theme
	width   int
	styles  *lipgloss.Renderer
	colored bool

	out      strings.Builder
	inline   strings.Builder
	trailing int // newlines at the end of out

	prefixes []string
	bullet   string // replaces the prefix on the next line only

	lists []list

	bold, italic, strike int
}

type list struct {
	ordered bool
	next    int
	tight   bool
}

func (w *walker) style() lipgloss.Style {
	return w.styles.NewStyle()
}

func (w *walker) prefix() string {
	return strings.Join(w.prefixes, "")
}

func (w *walker) wrapWidth() int {
	if w.width <= 0 {
		return 0
	}
	return max(w.width-ansi.StringWidth(w.prefix()), 10)
}

func (w *walker) write(s string) {
	if s == "" {
		return
	}
	w.out.WriteString(s)
	trimmed := strings.TrimRight(s, "\n")
	newlines := len(s) - len(trimmed)
	if trimmed == "" {
		w.trailing += newlines
	} else {
		w.trailing = newlines
	}
}

func (w *walker) newline() {
	if w.out.Len() > 0 && w.trailing < 1 {
		w.write("\n")
	}
}

func (w *walker) blankLine() {
	if w.out.Len() == 0 {
		return
	}
	for w.trailing < 2 {
		w.write("\n")
	}
}

func (w *walker) tight() bool {
	return len(w.lists) > 0 && w.lists[len(w.lists)-1].tight
}

// emitLines writes content with the current prefixes. The first line
// takes the pending bullet when there is one.
func (w *walker) emitLines(content string) {
	prefix := w.prefix()
	for index, line := range strings.Split(content, "\n") {
		if index == 0 && w.bullet != "" {
			w.write(w.bullet + line)
			w.bullet = ""
		} else {
			w.write(prefix + line)
		}
		w.write("\n")
	}
}

func (w *walker) flushInline() {
	content := w.inline.String()
	w.inline.Reset()
	if content == "" {
		return
	}
	if width := w.wrapWidth(); width > 0 {
		content = ansi.Wrap(content, width, " ,.;-+|")
	}
	w.emitLines(content)
}

func (w *walker) styled(content string) string {
	style := w.style().Foreground(w.theme.NormalText)
	if w.bold > 0 {
		style = style.Bold(true)
	}
	if w.italic > 0 {
		style = style.Italic(true)
	}
	if w.strike > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

func (w *walker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		if !entering {
			w.flushInline()
			if !w.tight() {
				w.blankLine()
			}
		}

	case ast.KindHeading:
		// Chat bodies have no document structure; headings read as
		// bold paragraphs.
		if entering {
			w.bold++
		} else {
			w.bold--
			w.flushInline()
			w.blankLine()
		}

	case ast.KindFencedCodeBlock:
		if entering {
			block := node.(*ast.FencedCodeBlock)
			w.codeBlock(w.lines(block), string(block.Language(w.source)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			w.codeBlock(w.lines(node), "")
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			w.prefixes = append(w.prefixes, w.style().Foreground(w.theme.BorderColor).Render("│")+" ")
		} else {
			w.prefixes = w.prefixes[:len(w.prefixes)-1]
			w.blankLine()
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			w.lists = append(w.lists, listFor(list))
		} else {
			w.lists = w.lists[:len(w.lists)-1]
			if !w.tight() {
				w.blankLine()
			}
		}

	case ast.KindListItem:
		if entering {
			w.enterItem()
		} else {
			w.prefixes = w.prefixes[:len(w.prefixes)-1]
			w.newline()
		}

	case ast.KindThematicBreak:
		if entering {
			width := w.wrapWidth()
			if width == 0 {
				width = 20
			}
			w.blankLine()
			w.emitLines(w.style().Foreground(w.theme.BorderColor).Render(strings.Repeat("─", width)))
			w.blankLine()
		}

	case ast.KindHTMLBlock:
		if entering {
			if raw := strings.TrimSpace(w.lines(node)); raw != "" {
				w.emitLines(w.style().Foreground(w.theme.FaintText).Render(raw))
				w.blankLine()
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindText:
		if entering {
			textNode := node.(*ast.Text)
			w.inline.WriteString(w.styled(string(textNode.Segment.Value(w.source))))
			switch {
			case textNode.HardLineBreak():
				w.inline.WriteString("\n")
			case textNode.SoftLineBreak():
				w.inline.WriteString(" ")
			}
		}

	case ast.KindString:
		if entering {
			w.inline.WriteString(w.styled(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		counter := &w.italic
		if node.(*ast.Emphasis).Level >= 2 {
			counter = &w.bold
		}
		if entering {
			*counter++
		} else {
			*counter--
		}

	case extast.KindStrikethrough:
		if entering {
			w.strike++
		} else {
			w.strike--
		}

	case ast.KindCodeSpan:
		if entering {
			var code strings.Builder
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				if textNode, ok := child.(*ast.Text); ok {
					code.Write(textNode.Segment.Value(w.source))
				}
			}
			w.inline.WriteString(w.style().Foreground(w.theme.CodeForeground).Render(code.String()))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			link := node.(*ast.Link)
			label := w.inlineOf(node)
			w.inline.WriteString(w.style().Foreground(w.theme.LinkForeground).Underline(w.colored).Render(ansi.Strip(label)))
			destination := string(link.Destination)
			if destination != "" && destination != ansi.Strip(label) {
				w.inline.WriteString(" " + w.style().Foreground(w.theme.FaintText).Render("("+destination+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			url := string(node.(*ast.AutoLink).URL(w.source))
			w.inline.WriteString(w.style().Foreground(w.theme.LinkForeground).Underline(w.colored).Render(url))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindImage:
		if entering {
			image := node.(*ast.Image)
			alt := ansi.Strip(w.inlineOf(node))
			if alt == "" {
				alt = "image"
			}
			w.inline.WriteString(w.style().Foreground(w.theme.FaintText).Render(fmt.Sprintf("[%s] (%s)", alt, image.Destination)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindRawHTML:
		if entering {
			raw := node.(*ast.RawHTML)
			var html strings.Builder
			for index := 0; index < raw.Segments.Len(); index++ {
				segment := raw.Segments.At(index)
				html.Write(segment.Value(w.source))
			}
			w.inline.WriteString(w.style().Foreground(w.theme.FaintText).Render(html.String()))
		}

	case extast.KindTaskCheckBox:
		if entering {
			if node.(*extast.TaskCheckBox).IsChecked {
				w.inline.WriteString(w.styled("[x] "))
			} else {
				w.inline.WriteString(w.styled("[ ] "))
			}
		}
	}
	return ast.WalkContinue, nil
}

func listFor(node *ast.List) list {
	start := 0
	if node.IsOrdered() {
		start = node.Start
	}
	return list{ordered: node.IsOrdered(), next: start, tight: node.IsTight}
}

func (w *walker) enterItem() {
	top := &w.lists[len(w.lists)-1]
	marker := "• "
	if top.ordered {
		marker = fmt.Sprintf("%d. ", top.next)
		top.next++
	}
	w.bullet = w.prefix() + marker
	w.prefixes = append(w.prefixes, strings.Repeat(" ", len([]rune(marker))))
}

// inlineOf renders the inline children of node without disturbing the
// enclosing block's accumulated text.
func (w *walker) inlineOf(node ast.Node) string {
	saved := w.inline.String()
	w.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		_ = ast.Walk(child, w.walk)
	}
	rendered := w.inline.String()
	w.inline.Reset()
	w.inline.WriteString(saved)
	return rendered
}

func (w *walker) lines(node ast.Node) string {
	var content strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		content.Write(segment.Value(w.source))
	}
	return content.String()
}

func (w *walker) codeBlock(code, language string) {
	code = strings.TrimRight(code, "\n")
	rendered := w.style().Foreground(w.theme.CodeForeground).Render(code)
	if w.colored && language != "" {
		var highlighted strings.Builder
		if err := quick.Highlight(&highlighted, code, language, "terminal256", "monokai"); err == nil {
			rendered = strings.TrimRight(highlighted.String(), "\n")
		}
	}
	w.blankLine()
	border := w.style().Foreground(w.theme.BorderColor).Render("▏")
	for _, line := range strings.Split(rendered, "\n") {
		if w.colored {
			w.emitLines(border + line)
		} else {
			w.emitLines("    " + line)
		}
	}
	w.blankLine()
}
