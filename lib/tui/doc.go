// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides shared terminal user interface pieces for
// Huddle's viewer: the color theme, overlay splicing, the message
// composer, pick-one menus, the confirmation modal, the arrival glow,
// the scrollbar, and fuzzy matching for member search. The viewer
// itself lives in lib/chatui.
package tui
