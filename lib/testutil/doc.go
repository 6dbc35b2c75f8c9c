// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Huddle packages.
//
// [RequireReceive], [RequireSend], [RequireClosed], and
// [RequireNoReceive] wrap the select-with-timeout pattern so that tests
// never block forever on a channel and never call time.After directly.
// These helpers are the only place tests use the wall clock; code under
// test takes a lib/clock fake.
//
// [DatabasePath] returns a fresh SQLite path under t.TempDir().
//
// [UniqueID] and [UniqueEmail] generate monotonically increasing
// identifiers for tests that register several accounts against one
// store.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
