// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/huddle-chat/huddle/lib/backend"
)

// TopicWatcher captures a position in a backend's change feed. Create
// one with WatchTopics before triggering the action that produces the
// expected change, then call Wait to receive changes made after the
// checkpoint.
//
// TopicWatcher is not safe for concurrent use. Create one per
// goroutine; each keeps its own version against the same backend.
type TopicWatcher struct {
	watcher backend.Watcher
	topics  []backend.Topic
	version uint64
	logger  *slog.Logger
}

// maxWatchRetries is the number of consecutive watch failures allowed
// before Wait returns an error.
const maxWatchRetries = 5

const (
	longPollTimeout = 30 * time.Second

	// retryTimeout is used after a failure so the retry round-trip
	// completes quickly.
	retryTimeout = time.Second
)

// WatchTopics captures the current version of the change feed. Only
// changes to the given topics are reported by Wait; with no topics,
// every change is. A nil logger discards output.
func WatchTopics(ctx context.Context, watcher backend.Watcher, logger *slog.Logger, topics ...backend.Topic) (*TopicWatcher, error) {
	changes, err := watcher.Watch(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("messaging: capturing change feed position: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TopicWatcher{
		watcher: watcher,
		topics:  topics,
		version: changes.Version,
		logger:  logger,
	}, nil
}

// Version returns the last version the watcher has seen.
func (w *TopicWatcher) Version() uint64 {
	return w.version
}

// Wait blocks until a change touching the watched topics arrives and
// returns it. Changes to other topics advance the version silently.
// Transient watch failures are retried up to five times, dropping the
// backend's idle connections between attempts when it supports that.
func (w *TopicWatcher) Wait(ctx context.Context) (*backend.ChangeSet, error) {
	var retries int
	for {
		timeout := longPollTimeout
		if retries > 0 {
			timeout = retryTimeout
		}
		changes, err := w.watcher.Watch(ctx, w.version, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("messaging: waiting for changes: %w", ctx.Err())
			}
			retries++
			if closer, ok := w.watcher.(interface{ CloseIdleConnections() }); ok {
				closer.CloseIdleConnections()
			}
			if retries > maxWatchRetries {
				return nil, fmt.Errorf("messaging: watch failed %d consecutive times: %w", retries, err)
			}
			w.logger.Debug("watch error, retrying",
				"attempt", retries,
				"max_attempts", maxWatchRetries,
				"error", err,
			)
			continue
		}
		retries = 0
		if changes.Version == w.version {
			continue
		}
		w.version = changes.Version
		if len(w.topics) == 0 || changes.Reset || backend.Intersects(changes.Topics, w.topics) {
			return changes, nil
		}
	}
}
