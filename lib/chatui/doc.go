// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package chatui is the bubbletea model behind huddle-viewer: one
// channel or direct conversation with live updates, plus the thread
// and profile side panels, a reaction picker, a fuzzy member finder,
// and modal confirmations.
//
// The model owns no data. Every screen region is backed by a panel
// from lib/panel, and the model re-renders when any of their Changed
// channels fire. Mutations run as tea.Cmds so that confirmations,
// which block inside the panel until answered, can be shown by the
// model while the command waits.
package chatui
