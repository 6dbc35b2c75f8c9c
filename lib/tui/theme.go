// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/huddle-chat/huddle/lib/notify"
	"github.com/huddle-chat/huddle/lib/schema"
)

// Theme defines the color palette for Huddle's terminal surfaces. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected message or list row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Message chrome.
	AuthorForeground lipgloss.Color
	OwnAuthor        lipgloss.Color // author name on the viewer's own messages
	Timestamp        lipgloss.Color
	EditedMarker     lipgloss.Color
	ThreadSummary    lipgloss.Color

	// Reaction pills. ReactedBackground marks reactions the viewer
	// contributed to.
	ReactionBackground lipgloss.Color
	ReactedBackground  lipgloss.Color

	// Member roles.
	RoleAdmin  lipgloss.Color
	RoleMember lipgloss.Color

	// Notification line.
	NotifyInfo    lipgloss.Color
	NotifySuccess lipgloss.Color
	NotifyError   lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Fuzzy-match highlighting.
	SearchHighlightBackground lipgloss.Color

	// Links and code inside message bodies.
	LinkForeground lipgloss.Color
	CodeForeground lipgloss.Color

	// Modal boxes (confirmations).
	ModalForeground lipgloss.Color
	ModalBackground lipgloss.Color
}

// RoleColor returns the color for a member role.
func (theme Theme) RoleColor(role schema.Role) lipgloss.Color {
	if role == schema.RoleAdmin {
		return theme.RoleAdmin
	}
	return theme.RoleMember
}

// NotificationColor returns the color for a notification level.
func (theme Theme) NotificationColor(level notify.Level) lipgloss.Color {
	switch level {
	case notify.Success:
		return theme.NotifySuccess
	case notify.Error:
		return theme.NotifyError
	default:
		return theme.NotifyInfo
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	AuthorForeground: lipgloss.Color("255"),
	OwnAuthor:        lipgloss.Color("117"),
	Timestamp:        lipgloss.Color("242"),
	EditedMarker:     lipgloss.Color("240"),
	ThreadSummary:    lipgloss.Color("75"),

	ReactionBackground: lipgloss.Color("237"),
	ReactedBackground:  lipgloss.Color("24"),

	RoleAdmin:  lipgloss.Color("208"),
	RoleMember: lipgloss.Color("245"),

	NotifyInfo:    lipgloss.Color("252"),
	NotifySuccess: lipgloss.Color("114"),
	NotifyError:   lipgloss.Color("196"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	SearchHighlightBackground: lipgloss.Color("58"),

	LinkForeground: lipgloss.Color("75"),
	CodeForeground: lipgloss.Color("180"),

	ModalForeground: lipgloss.Color("252"),
	ModalBackground: lipgloss.Color("237"),
}
