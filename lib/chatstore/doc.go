// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package chatstore is the reference implementation of the Huddle
// backend: workspaces, members, channels, direct conversations,
// messages, threads, reactions, accounts, and media, persisted in
// SQLite.
//
// A [Store] owns the database. Per-user access goes through a [Viewer]
// obtained from [Store.As]; Viewer implements [backend.Backend] and
// enforces every authorization rule of the backend boundary:
//
//   - Reads are scoped to workspaces the user is a member of. Anything
//     else is reported as not found, so non-members cannot probe for
//     existence. The exception is GetWorkspaceInfo, which exposes a
//     workspace's name to anyone holding its ID (the join screen).
//   - Workspace administration (rename, delete, join code rotation,
//     channel management, role changes) requires the admin role.
//   - Members may leave; admins may remove non-admins. Admins can be
//     neither removed nor leave. Removing a member deletes their
//     messages, reactions, and conversations.
//   - Only a message's author may edit or delete it.
//
// Every committed write publishes the [backend.Topic] values it
// touched to an in-memory change feed. [Viewer.Watch] long-polls that
// feed. Versions are not persisted: a client presenting a version from
// a previous server lifetime receives a reset.
package chatstore
