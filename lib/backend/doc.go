// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package backend defines the query/mutation boundary between Huddle
// clients and the managed real-time backend that owns all chat data.
//
// The boundary has three parts:
//
//   - [Queries]: typed reads of workspaces, members, channels,
//     conversations, and messages. Absent entities are reported as
//     [ErrNotFound], never as a nil value with a nil error.
//   - [Mutations]: typed writes. The backend enforces authorization
//     and invariants; a rejected mutation returns an [*Error] whose
//     Code says why.
//   - [Watcher]: a long-poll change feed. Watch blocks until data
//     changes after a given version and reports which [Topic] values
//     changed, so that a subscription layer can re-run exactly the
//     queries that depend on them.
//
// Two implementations exist: the embedded reference store
// (lib/chatstore) and the HTTP client (messaging). Both return the same
// *Error values, so callers handle failures with one errors.As path
// regardless of transport.
//
// Message feeds are paginated newest-first with opaque cursors. A
// cursor is the (creation time, message ID) key of a message, encoded
// as a CBOR token; see [Cursor].
package backend
