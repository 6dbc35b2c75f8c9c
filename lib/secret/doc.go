// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds passwords and bearer tokens outside the Go heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM and excluded
// from core dumps. Close zeroes and unmaps it. The messaging client
// keeps each session's bearer token in a Buffer, and the CLI reads
// passwords into one with [ReadFromPath].
package secret
