// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"sync"
	"time"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/clock"
)

// defaultChangeRetention is how many versions the feed remembers.
const defaultChangeRetention = 4096

// changefeed is a versioned log of which topics each committed write
// touched. Watchers block on wake, which is closed and replaced on
// every publish.
type changefeed struct {
	clock     clock.Clock
	retention int

	mu      sync.Mutex
	version uint64
	entries []changeEntry
	wake    chan struct{}
}

type changeEntry struct {
	version uint64
	topics  []backend.Topic
}

func newChangefeed(clk clock.Clock, retention int) *changefeed {
	if retention <= 0 {
		retention = defaultChangeRetention
	}
	return &changefeed{
		clock:     clk,
		retention: retention,
		// Version 0 is reserved for "no version yet".
		version: 1,
		wake:    make(chan struct{}),
	}
}

// publish records one write and wakes every watcher.
func (f *changefeed) publish(topics ...backend.Topic) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.version++
	f.entries = append(f.entries, changeEntry{
		version: f.version,
		topics:  backend.MergeTopics(topics),
	})
	if len(f.entries) > f.retention {
		f.entries = append(f.entries[:0:0], f.entries[len(f.entries)-f.retention:]...)
	}
	close(f.wake)
	f.wake = make(chan struct{})
	return f.version
}

// current returns the latest version.
func (f *changefeed) current() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version
}

// collect returns the changes after since, or nil and a channel that
// closes on the next publish when there are none.
func (f *changefeed) collect(since uint64) (*backend.ChangeSet, <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if since == 0 {
		return &backend.ChangeSet{Version: f.version}, nil
	}
	if since == f.version {
		return nil, f.wake
	}

	// The oldest version from which every later change is retained.
	oldest := f.version - uint64(len(f.entries))
	if since > f.version || since < oldest {
		return &backend.ChangeSet{
			Version: f.version,
			Topics:  append([]backend.Topic(nil), backend.AllTopics...),
			Reset:   true,
		}, nil
	}

	var lists [][]backend.Topic
	for _, entry := range f.entries {
		if entry.version > since {
			lists = append(lists, entry.topics)
		}
	}
	return &backend.ChangeSet{
		Version: f.version,
		Topics:  backend.MergeTopics(lists...),
	}, nil
}

// watch blocks until a change after since is published, timeout
// elapses, or ctx is cancelled. A timeout of zero or less waits
// without limit.
func (f *changefeed) watch(ctx context.Context, since uint64, timeout time.Duration) (*backend.ChangeSet, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		expired = f.clock.After(timeout)
	}
	for {
		changes, wake := f.collect(since)
		if changes != nil {
			return changes, nil
		}
		select {
		case <-wake:
		case <-expired:
			return &backend.ChangeSet{Version: since}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
