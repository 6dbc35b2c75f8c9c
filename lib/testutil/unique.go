// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueID returns prefix followed by a process-wide increasing
// counter: "member-1", "member-2", and so on.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}

// UniqueEmail returns a distinct, syntactically valid email address.
func UniqueEmail(name string) string {
	return fmt.Sprintf("%s@example.com", UniqueID(name))
}
