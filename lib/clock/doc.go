// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that stamps records (the reference store), expires transient
// state (notifications), or waits between retries (the change watcher)
// takes a Clock instead of calling time.Now or time.After directly.
// Production wiring passes Real(); tests pass Fake() and move time
// forward explicitly with Advance.
//
// Wiring pattern:
//
//	type Center struct {
//	    clock clock.Clock
//	}
//
//	func NewCenter(config CenterConfig) *Center {
//	    c := config.Clock
//	    if c == nil {
//	        c = clock.Real()
//	    }
//	    ...
//	}
package clock
