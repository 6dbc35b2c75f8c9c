// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for the huddle-backend
// and huddle-viewer binaries, for errors that surface before or after
// the structured logger exists.
package process
