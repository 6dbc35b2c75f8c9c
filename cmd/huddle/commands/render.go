// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/tui"
)

const messageWidth = 78

// messageContext renders for the connection's output.
func (c *connection) messageContext(viewer ref.MemberID) panel.MessageContext {
	return panel.MessageContext{
		Viewer:  viewer,
		Width:   messageWidth,
		Theme:   tui.DefaultTheme,
		Profile: c.profile,
		Now:     time.Now(),
	}
}

// printMessages prints messages oldest first. messages arrive newest
// first, as feeds deliver them.
func printMessages(out io.Writer, messages []schema.MessageView, options panel.MessageContext) {
	for i := len(messages) - 1; i >= 0; i-- {
		printMessage(out, panel.RenderMessage(messages[i], options))
	}
}

func printMessage(out io.Writer, message panel.RenderedMessage) {
	header := fmt.Sprintf("[%s] %s", message.Time, message.AuthorName)
	if message.Edited {
		header += " " + message.EditedLabel
	}
	fmt.Fprintf(out, "%s  %s\n", header, message.ID)
	if body := strings.TrimRight(message.Body, "\n"); body != "" {
		for _, line := range strings.Split(body, "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
	if message.Image != "" {
		fmt.Fprintf(out, "    [image] %s\n", message.Image)
	}
	if reactions := message.Reactions.Text(); reactions != "" {
		fmt.Fprintf(out, "    %s\n", reactions)
	}
	if message.Thread != nil {
		line := "    ↳ " + message.Thread.Label
		if message.Thread.LastReply != "" {
			line += " · " + message.Thread.LastReply
		}
		fmt.Fprintln(out, line)
	}
}

// printStream prints a channel or conversation view with a footer
// describing what older history remains.
// title is the channel name, already prefixed, or "@ " and the other
// member's name.
func printStream(out io.Writer, title string, view panel.StreamView, options panel.MessageContext) {
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, strings.Repeat("─", min(messageWidth, max(len([]rune(title)), 20))))
	if len(view.Messages) == 0 {
		fmt.Fprintln(out, "No messages yet.")
		return
	}
	if view.Feed == live.CanLoadMore {
		fmt.Fprintln(out, "(older messages available: pass --older N)")
	}
	printMessages(out, view.Messages, options)
}
