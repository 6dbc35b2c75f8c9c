// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "time"

// GlowDuration is how long a message stays highlighted after it
// arrives or changes through a live update.
const GlowDuration = 4 * time.Second

// GlowTickInterval is the re-render interval while anything glows.
const GlowTickInterval = 100 * time.Millisecond

// GlowTracker remembers when messages arrived so the viewer can fade
// a highlight over GlowDuration. It is owned by one bubbletea model
// and is not safe for concurrent use.
type GlowTracker struct {
	lit map[string]time.Time
}

// NewGlowTracker creates an empty tracker.
func NewGlowTracker() *GlowTracker {
	return &GlowTracker{lit: make(map[string]time.Time)}
}

// Light starts or restarts the glow for id.
func (tracker *GlowTracker) Light(id string, now time.Time) {
	tracker.lit[id] = now
}

// Intensity is 1 when id was just lit and falls linearly to 0 over
// GlowDuration. Unknown IDs have intensity 0.
func (tracker *GlowTracker) Intensity(id string, now time.Time) float64 {
	litAt, ok := tracker.lit[id]
	if !ok {
		return 0
	}
	elapsed := now.Sub(litAt)
	if elapsed >= GlowDuration {
		return 0
	}
	return 1 - float64(elapsed)/float64(GlowDuration)
}

// Active reports whether anything still glows, dropping expired
// entries. The viewer keeps its tick running while it returns true.
func (tracker *GlowTracker) Active(now time.Time) bool {
	active := false
	for id, litAt := range tracker.lit {
		if now.Sub(litAt) < GlowDuration {
			active = true
			continue
		}
		delete(tracker.lit, id)
	}
	return active
}
