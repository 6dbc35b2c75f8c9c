// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the viewer.
type KeyMap struct {
	// Message list navigation.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Older    key.Binding // Load the next page of older messages.

	// Focus switching between the message list and the side panel.
	FocusToggle key.Binding
	Close       key.Binding

	// Message actions.
	Compose key.Binding
	Edit    key.Binding
	Delete  key.Binding
	React   key.Binding
	Thread  key.Binding
	Profile key.Binding
	Find    key.Binding

	// Side panel actions.
	Reply         key.Binding
	Role          key.Binding
	Remove        key.Binding
	Leave         key.Binding
	DirectMessage key.Binding

	// Modal answers.
	Accept  key.Binding
	Decline key.Binding
	Submit  key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys and page up/down.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+f", "pgdown"),
		key.WithHelp("C-f", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "oldest"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "newest"),
	),
	Older: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "older"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "focus"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Compose: key.NewBinding(
		key.WithKeys("c", "i"),
		key.WithHelp("c", "compose"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "delete"),
	),
	React: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "react"),
	),
	Thread: key.NewBinding(
		key.WithKeys("t", "enter"),
		key.WithHelp("t", "thread"),
	),
	Profile: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "profile"),
	),
	Find: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "find member"),
	),
	Reply: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reply"),
	),
	Role: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "role"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "remove"),
	),
	Leave: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "leave"),
	),
	DirectMessage: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "message"),
	),
	Accept: key.NewBinding(
		key.WithKeys("y", "enter"),
		key.WithHelp("y", "confirm"),
	),
	Decline: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "cancel"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "send"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
