// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package subscription keeps query results current. A [Registry] holds
// the set of subscribed queries and runs one delivery loop that fetches
// each query when it is subscribed, waits on the backend's change
// watcher, and refetches the queries whose topics were touched.
//
// Every fetch and every snapshot callback runs on the goroutine that
// called [Registry.Run], one at a time. Callbacks must not block for
// long; they typically store the snapshot and signal a UI.
//
// A snapshot is delivered only when it differs from the last snapshot
// delivered to the same subscription. Equality is decided by the
// deterministic CBOR encoding from lib/codec, so snapshots must be
// CBOR-encodable values (the schema and backend types all are).
package subscription
