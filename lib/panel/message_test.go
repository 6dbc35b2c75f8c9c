// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/tui"
)

func sampleMessage(author ref.MemberID) schema.MessageView {
	created := time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)
	return schema.MessageView{
		Message: schema.Message{
			ID:        ref.NewMessageID(),
			MemberID:  author,
			Body:      "hello **world**",
			CreatedAt: created,
		},
		User: schema.User{Name: "ada", Image: "/media/ada"},
	}
}

func plainContext(viewer ref.MemberID) MessageContext {
	return MessageContext{Viewer: viewer, Theme: tui.DefaultTheme, Profile: termenv.Ascii, Location: time.UTC}
}

func TestRenderMessage(t *testing.T) {
	author := ref.NewMemberID()
	other := ref.NewMemberID()

	t.Run("basic", func(t *testing.T) {
		rendered := RenderMessage(sampleMessage(author), plainContext(author))
		if rendered.AuthorName != "ada" || rendered.AuthorInitial != "A" || rendered.AuthorImage != "/media/ada" {
			t.Errorf("author = %q %q %q", rendered.AuthorName, rendered.AuthorInitial, rendered.AuthorImage)
		}
		if !rendered.IsAuthor {
			t.Error("IsAuthor = false for the viewer's own message")
		}
		if strings.TrimSpace(ansi.Strip(rendered.Body)) != "hello world" {
			t.Errorf("Body = %q", rendered.Body)
		}
		if rendered.Time != "3:04 PM" {
			t.Errorf("Time = %q", rendered.Time)
		}
		if rendered.FullTime != "Monday, March 2, 2026 at 3:04:05 PM" {
			t.Errorf("FullTime = %q", rendered.FullTime)
		}
		if rendered.Edited || rendered.EditedLabel != "" || rendered.Thread != nil {
			t.Errorf("unexpected decorations: %+v", rendered)
		}
	})

	t.Run("other author", func(t *testing.T) {
		if RenderMessage(sampleMessage(author), plainContext(other)).IsAuthor {
			t.Error("IsAuthor = true for someone else's message")
		}
		if RenderMessage(sampleMessage(author), plainContext(ref.MemberID{})).IsAuthor {
			t.Error("IsAuthor = true without a viewer")
		}
	})

	t.Run("unnamed author", func(t *testing.T) {
		view := sampleMessage(author)
		view.User = schema.User{}
		rendered := RenderMessage(view, plainContext(other))
		if rendered.AuthorName != "Member" || rendered.AuthorInitial != "M" {
			t.Errorf("author = %q %q, want Member M", rendered.AuthorName, rendered.AuthorInitial)
		}
	})

	t.Run("edited", func(t *testing.T) {
		view := sampleMessage(author)
		view.UpdatedAt = view.CreatedAt.Add(time.Minute)
		rendered := RenderMessage(view, plainContext(other))
		if !rendered.Edited || rendered.EditedLabel != "(edited)" {
			t.Errorf("Edited = %v %q", rendered.Edited, rendered.EditedLabel)
		}
	})

	t.Run("thread", func(t *testing.T) {
		view := sampleMessage(author)
		view.Thread = schema.ThreadSummary{Count: 3, Name: "bob", Timestamp: view.CreatedAt.Add(time.Hour)}
		options := plainContext(other)
		options.Now = view.CreatedAt.Add(time.Hour + 5*time.Minute)

		rendered := RenderMessage(view, options)
		if rendered.Thread == nil {
			t.Fatal("Thread = nil")
		}
		if rendered.Thread.Label != "3 replies" || rendered.Thread.Name != "bob" {
			t.Errorf("Thread = %+v", rendered.Thread)
		}
		if rendered.Thread.LastReply != "Last reply 5 minutes ago" {
			t.Errorf("LastReply = %q", rendered.Thread.LastReply)
		}

		options.HideThreadButton = true
		if RenderMessage(view, options).Thread != nil {
			t.Error("Thread shown with HideThreadButton")
		}

		view.Thread.Count = 1
		if got := RenderMessage(view, plainContext(other)).Thread; got == nil || got.Label != "1 reply" || got.LastReply != "" {
			t.Errorf("single reply Thread = %+v", got)
		}
	})
}

func TestReactionBar(t *testing.T) {
	viewer := ref.NewMemberID()
	other := ref.NewMemberID()
	aggregates := []schema.ReactionAggregate{
		{Value: "👍", Count: 2, MemberIDs: []ref.MemberID{viewer, other}},
		{Value: "🎉", Count: 1, MemberIDs: []ref.MemberID{other}},
		{Value: "👀", Count: 0},
	}

	var clicked []string
	bar := NewReactionBar(aggregates, viewer, func(value string) { clicked = append(clicked, value) })

	if len(bar.Items) != 2 {
		t.Fatalf("Items = %+v, want two", bar.Items)
	}
	if !bar.Items[0].Reacted || bar.Items[1].Reacted {
		t.Errorf("Reacted = %v %v, want true false", bar.Items[0].Reacted, bar.Items[1].Reacted)
	}
	if got := bar.Text(); got != "👍 2*  🎉 1" {
		t.Errorf("Text = %q", got)
	}

	if !bar.Click("🎉") {
		t.Error("Click on a shown reaction returned false")
	}
	if bar.Click("👀") {
		t.Error("Click on a hidden reaction returned true")
	}
	bar.Pick("🚀")
	bar.Pick("")
	if want := []string{"🎉", "🚀"}; !slices.Equal(clicked, want) {
		t.Errorf("clicked = %q, want %q", clicked, want)
	}

	if NewReactionBar(nil, viewer, nil).Render(tui.DefaultTheme) != "" {
		t.Error("empty bar rendered something")
	}
	if NewReactionBar(aggregates, viewer, nil).Click("👍") {
		t.Error("Click without a handler returned true")
	}
}

func TestAgo(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    string
	}{
		{10 * time.Second, "less than a minute"},
		{90 * time.Second, "1 minute"},
		{45 * time.Minute, "45 minutes"},
		{80 * time.Minute, "about 1 hour"},
		{5 * time.Hour, "about 5 hours"},
		{30 * time.Hour, "1 day"},
		{100 * time.Hour, "4 days"},
	}
	for _, test := range tests {
		if got := Ago(test.elapsed); got != test.want {
			t.Errorf("Ago(%v) = %q, want %q", test.elapsed, got, test.want)
		}
	}
}
