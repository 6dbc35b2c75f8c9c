// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identifiers for Huddle
// entities. Every entity the backend owns (workspace, member, user,
// channel, conversation, message, reaction) is addressed by a validated
// value type so that a member ID can never be passed where a message ID
// is expected.
//
// The canonical string form is "<prefix>_<uuid>", for example
// "ws_0b6f3c7e-5a0e-4a53-9d8e-5d7f7b1f0c1a". The prefix identifies the
// entity kind and is checked on parse:
//
//	ws    workspace
//	mem   member
//	usr   user
//	ch    channel
//	conv  conversation
//	msg   message
//	rx    reaction
//
// IDs are minted by the backend. Client code only parses them at the
// boundary (JSON responses, route paths, CLI arguments). JSON and CBOR
// marshaling use the canonical form via encoding.TextMarshaler; the zero
// value marshals as an empty string and means "unset".
package ref
