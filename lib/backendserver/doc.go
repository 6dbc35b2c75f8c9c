// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package backendserver serves the reference backend over HTTP.
//
// Every query and mutation of [backend.Backend] is a POST to
// /v1/query/<name> or /v1/mutation/<name> with a JSON argument object,
// authenticated by a bearer token issued at register or login. Watch
// is a long-poll GET on /v1/watch. Failures are JSON bodies of the form
// {"errcode": "...", "error": "..."} with the status the code maps to,
// so the messaging client can rebuild the same [*backend.Error] the
// store returned.
//
// Join attempts are rate limited per user to slow down code guessing.
// Request counts, latencies, and open watches are exported on /metrics
// for Prometheus.
package backendserver
