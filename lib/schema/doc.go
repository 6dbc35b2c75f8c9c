// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the typed projections of backend entities that
// Huddle clients consume: users, workspaces, members, channels,
// conversations, messages, and reaction aggregates.
//
// The backend owns these entities and enforces their invariants (one
// member per workspace-user pair, reactions unique per message, member,
// and emoji, roles drawn from [RoleAdmin] and [RoleMember]). Clients only
// read the projections defined here and never mutate them locally.
//
// JSON tags define the wire format of the backend's HTTP API. Times are
// encoded as RFC 3339 strings; an unset UpdatedAt marshals as the zero
// time and means the message was never edited.
package schema
