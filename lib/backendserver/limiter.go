// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backendserver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterSweepInterval is how often the pool drops idle buckets.
const limiterSweepInterval = time.Minute

// limiterPool keeps one token bucket per key. A bucket that has
// refilled to its burst holds no history, so the periodic sweep drops
// it and the pool only grows with keys that are actively limited.
type limiterPool struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

func newLimiterPool(limit rate.Limit, burst int) *limiterPool {
	return &limiterPool{limiters: make(map[string]*rate.Limiter), limit: limit, burst: burst}
}

func (p *limiterPool) allow(key string) bool {
	return p.allowAt(key, time.Now())
}

func (p *limiterPool) allowAt(key string, now time.Time) bool {
	p.mu.Lock()
	if now.Sub(p.lastSweep) >= limiterSweepInterval {
		p.sweepLocked(now)
	}
	limiter, ok := p.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(p.limit, p.burst)
		p.limiters[key] = limiter
	}
	p.mu.Unlock()
	return limiter.AllowN(now, 1)
}

func (p *limiterPool) sweepLocked(now time.Time) {
	for key, limiter := range p.limiters {
		if limiter.TokensAt(now) >= float64(p.burst) {
			delete(p.limiters, key)
		}
	}
	p.lastSweep = now
}

func (p *limiterPool) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.limiters)
}
