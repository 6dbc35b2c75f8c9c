// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"fmt"
	"time"

	"github.com/muesli/termenv"

	"github.com/huddle-chat/huddle/lib/markdown"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/tui"
)

const (
	authorFallback = "Member"
	editedLabel    = "(edited)"

	shortTimeLayout = "3:04 PM"
	fullTimeLayout  = "Monday, January 2, 2006 at 3:04:05 PM"
)

// MessageContext describes who is looking at a message and how.
type MessageContext struct {
	Viewer           ref.MemberID
	Editing          bool
	Compact          bool
	HideThreadButton bool

	// OnReaction receives reaction clicks for this message.
	OnReaction func(value string)

	// Width is the wrap column for the body. Zero disables wrapping.
	Width   int
	Theme   tui.Theme
	Profile termenv.Profile

	// Now anchors relative times. Zero leaves them out.
	Now      time.Time
	Location *time.Location
}

// RenderedMessage is a message ready for display. It carries no
// behavior beyond its reaction bar.
type RenderedMessage struct {
	ID            ref.MessageID
	AuthorName    string
	AuthorInitial string
	AuthorImage   string
	IsAuthor      bool
	Editing       bool
	Compact       bool

	// Body is the Markdown rendered for the terminal.
	Body  string
	Image string

	Time     string
	FullTime string

	Edited      bool
	EditedLabel string

	Reactions ReactionBar

	// Thread is nil when there is no thread to show.
	Thread *ThreadLine
}

// ThreadLine summarizes a message's replies.
type ThreadLine struct {
	Count     int
	Label     string // "1 reply", "3 replies"
	Name      string
	Image     string
	LastReply string // "Last reply 5m ago"; empty without a clock
}

// RenderMessage prepares view for display with options.
func RenderMessage(view schema.MessageView, options MessageContext) RenderedMessage {
	location := options.Location
	if location == nil {
		location = time.Local
	}
	name := view.User.Name
	if name == "" {
		name = authorFallback
	}
	rendered := RenderedMessage{
		ID:            view.ID,
		AuthorName:    name,
		AuthorInitial: Initial(view.User.Name, memberInitialFallback),
		AuthorImage:   view.User.Image,
		IsAuthor:      !options.Viewer.IsZero() && view.MemberID == options.Viewer,
		Editing:       options.Editing,
		Compact:       options.Compact,
		Body:          markdown.Render(view.Body, markdown.Options{Theme: options.Theme, Width: options.Width, Profile: options.Profile}),
		Image:         view.Image,
		Time:          view.CreatedAt.In(location).Format(shortTimeLayout),
		FullTime:      view.CreatedAt.In(location).Format(fullTimeLayout),
		Edited:        view.Edited(),
		Reactions:     NewReactionBar(view.Reactions, options.Viewer, options.OnReaction),
	}
	if rendered.Edited {
		rendered.EditedLabel = editedLabel
	}
	if view.Thread.Count > 0 && !options.HideThreadButton {
		line := &ThreadLine{
			Count: view.Thread.Count,
			Label: repliesLabel(view.Thread.Count),
			Name:  view.Thread.Name,
			Image: view.Thread.Image,
		}
		if !options.Now.IsZero() && !view.Thread.Timestamp.IsZero() {
			line.LastReply = "Last reply " + Ago(options.Now.Sub(view.Thread.Timestamp)) + " ago"
		}
		rendered.Thread = line
	}
	return rendered
}

func repliesLabel(count int) string {
	if count == 1 {
		return "1 reply"
	}
	return fmt.Sprintf("%d replies", count)
}

// Ago formats an elapsed duration coarsely: "less than a minute",
// "5 minutes", "about 2 hours", "3 days".
func Ago(elapsed time.Duration) string {
	switch {
	case elapsed < time.Minute:
		return "less than a minute"
	case elapsed < 2*time.Minute:
		return "1 minute"
	case elapsed < time.Hour:
		return fmt.Sprintf("%d minutes", int(elapsed/time.Minute))
	case elapsed < 2*time.Hour:
		return "about 1 hour"
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("about %d hours", int(elapsed/time.Hour))
	case elapsed < 48*time.Hour:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", int(elapsed/(24*time.Hour)))
	}
}
