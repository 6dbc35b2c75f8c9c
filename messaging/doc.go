// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging is the HTTP client for a remote Huddle backend.
//
// [Client] is unauthenticated: it holds the backend URL and HTTP
// transport and turns credentials into a [Session] through register or
// login, or wraps a saved token with [Client.SessionFromToken]. A
// Session implements [backend.Backend] over the wire API served by
// lib/backendserver, so panels and the subscription registry run
// unchanged against a remote backend or the embedded store.
//
// Sessions are cheap. The bearer token lives in a [secret.Buffer];
// call Session.Close to release it. Rejections arrive as
// [*backend.Error] values with the server's code, so callers test them
// with errors.Is against the backend sentinels or with
// [backend.IsCode].
//
// [TopicWatcher] captures a change-feed position and waits for changes
// touching chosen topics, retrying transient watch failures.
package messaging
