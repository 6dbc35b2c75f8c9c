// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package subscription

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/codec"
)

// ErrRunning is returned by Run when another Run is already active on
// the same registry.
var ErrRunning = errors.New("subscription: registry is already running")

const (
	// maxWatchRetries is the number of consecutive watch failures
	// tolerated before Run gives up. Retries use retryTimeout so the
	// round-trip itself spaces the attempts.
	maxWatchRetries = 5

	// DefaultWatchTimeout is the long-poll hold requested from the
	// backend when nothing is failing.
	DefaultWatchTimeout = 30 * time.Second

	retryTimeout = time.Second
)

// Config configures a Registry.
type Config struct {
	// Watcher reports backend changes. Required.
	Watcher backend.Watcher

	// WatchTimeout is the long-poll hold for each Watch call. Zero
	// means DefaultWatchTimeout.
	WatchTimeout time.Duration

	// Logger receives delivery and watch diagnostics. Nil discards.
	Logger *slog.Logger
}

// Registry owns a set of subscriptions and delivers their snapshots.
type Registry struct {
	watcher      backend.Watcher
	watchTimeout time.Duration
	logger       *slog.Logger

	mu            sync.Mutex
	subscriptions map[uint64]*Subscription
	// pending holds subscriptions whose initial fetch has not run.
	pending []*Subscription
	nextID  uint64
	running bool

	// notify wakes the delivery loop when pending gains entries.
	notify chan struct{}
}

// New creates a Registry. Subscriptions may be added before Run starts;
// their initial fetch happens once the loop is running.
func New(config Config) *Registry {
	if config.Watcher == nil {
		panic("subscription: Config.Watcher is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	watchTimeout := config.WatchTimeout
	if watchTimeout <= 0 {
		watchTimeout = DefaultWatchTimeout
	}
	return &Registry{
		watcher:       config.Watcher,
		watchTimeout:  watchTimeout,
		logger:        logger,
		subscriptions: make(map[uint64]*Subscription),
		notify:        make(chan struct{}, 1),
	}
}

// Subscription is one subscribed query. Close it when the consumer goes
// away.
type Subscription struct {
	registry *Registry
	id       uint64
	name     string
	topics   []backend.Topic

	fetch   func(ctx context.Context) (any, error)
	deliver func(snapshot any, err error)

	// Accessed only from the delivery loop.
	fingerprint string
	delivered   bool

	closeOnce sync.Once
	closed    atomic.Bool
	// deliverMu is held from the closed check through the callback.
	deliverMu  sync.Mutex
	inCallback atomic.Bool
}

// Subscribe registers a query. fetch produces the current snapshot and
// deliver receives it. deliver is called with a nil error for every
// distinct snapshot and with the fetch error whenever fetch fails.
// Topics scope refetching; an empty list refetches on every change.
func Subscribe[T any](registry *Registry, name string, topics []backend.Topic, fetch func(ctx context.Context) (T, error), deliver func(snapshot T, err error)) *Subscription {
	if len(topics) == 0 {
		topics = backend.AllTopics
	}
	subscription := &Subscription{
		registry: registry,
		name:     name,
		topics:   backend.MergeTopics(topics),
		fetch: func(ctx context.Context) (any, error) {
			return fetch(ctx)
		},
		deliver: func(snapshot any, err error) {
			if err != nil {
				var zero T
				deliver(zero, err)
				return
			}
			value, _ := snapshot.(T)
			deliver(value, nil)
		},
	}

	registry.mu.Lock()
	registry.nextID++
	subscription.id = registry.nextID
	registry.subscriptions[subscription.id] = subscription
	registry.pending = append(registry.pending, subscription)
	registry.mu.Unlock()

	registry.wake()
	return subscription
}

// Name returns the label given at Subscribe.
func (s *Subscription) Name() string { return s.name }

// Topics returns the topics that trigger a refetch.
func (s *Subscription) Topics() []backend.Topic { return s.topics }

// Close removes the subscription. After Close returns no further
// delivery starts, and a delivery that was about to start when Close
// was called has finished. A callback already running on the registry
// goroutine is not waited for, so Close is safe to call from inside
// the deliver callback. Close is idempotent.
func (s *Subscription) Close() {
	if s.inCallback.Load() {
		s.markClosed()
		return
	}
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	s.markClosed()
}

func (s *Subscription) markClosed() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		s.registry.mu.Lock()
		delete(s.registry.subscriptions, s.id)
		s.registry.mu.Unlock()
	})
}

func (s *Subscription) isClosed() bool {
	return s.closed.Load()
}

// hand runs the deliver callback unless the subscription is closed.
func (s *Subscription) hand(snapshot any, err error) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.closed.Load() {
		return
	}
	s.inCallback.Store(true)
	defer s.inCallback.Store(false)
	s.deliver(snapshot, err)
}

// Len returns the number of open subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscriptions)
}

func (r *Registry) wake() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Run drives the registry until ctx is cancelled or the change watcher
// fails more than the retry budget allows. It returns ctx.Err() on
// cancellation.
func (r *Registry) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrRunning
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	// Anchor the change stream before any fetch so that a change made
	// between a fetch and the first long-poll is still reported.
	anchor, err := r.watchOnce(ctx, 0, 0)
	if err != nil {
		return err
	}
	r.logger.Debug("subscription registry started", "version", anchor.Version)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	changes := make(chan backend.ChangeSet)
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- r.watch(watchCtx, anchor.Version, changes)
	}()

	for {
		r.fetchPending(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.notify:
		case change := <-changes:
			change = coalesce(change, changes)
			r.refetch(ctx, change)
		case err := <-watchDone:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// coalesce folds any change sets already waiting into first.
func coalesce(first backend.ChangeSet, changes <-chan backend.ChangeSet) backend.ChangeSet {
	for {
		select {
		case next := <-changes:
			first.Version = next.Version
			first.Reset = first.Reset || next.Reset
			first.Topics = backend.MergeTopics(first.Topics, next.Topics)
		default:
			return first
		}
	}
}

func (r *Registry) fetchPending(ctx context.Context) {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, subscription := range pending {
		if ctx.Err() != nil {
			return
		}
		r.deliver(ctx, subscription)
	}
}

func (r *Registry) refetch(ctx context.Context, change backend.ChangeSet) {
	r.mu.Lock()
	var affected []*Subscription
	for _, subscription := range r.subscriptions {
		if change.Reset || backend.Intersects(subscription.topics, change.Topics) {
			affected = append(affected, subscription)
		}
	}
	r.mu.Unlock()

	// Map iteration order is random; deliver in subscription order so
	// that consumers see a stable sequence.
	slices.SortFunc(affected, func(a, b *Subscription) int { return cmp.Compare(a.id, b.id) })

	r.logger.Debug("backend changed",
		"version", change.Version,
		"topics", change.Topics,
		"reset", change.Reset,
		"affected", len(affected),
	)
	for _, subscription := range affected {
		if ctx.Err() != nil {
			return
		}
		r.deliver(ctx, subscription)
	}
}

// deliver fetches one subscription and hands the snapshot over unless
// it matches the previous delivery.
func (r *Registry) deliver(ctx context.Context, subscription *Subscription) {
	if subscription.isClosed() {
		return
	}
	snapshot, err := subscription.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Debug("subscription fetch failed",
			"subscription", subscription.name,
			"error", err,
		)
		subscription.delivered = false
		subscription.fingerprint = ""
		subscription.hand(nil, err)
		return
	}

	fingerprint, err := codec.Fingerprint(snapshot)
	if err != nil {
		// Without a fingerprint every snapshot counts as new.
		r.logger.Warn("subscription snapshot is not encodable",
			"subscription", subscription.name,
			"error", err,
		)
		fingerprint = ""
	}
	if subscription.delivered && fingerprint != "" && fingerprint == subscription.fingerprint {
		return
	}
	subscription.fingerprint = fingerprint
	subscription.delivered = true
	subscription.hand(snapshot, nil)
}

// watch long-polls the backend from since and forwards every change
// set that moves the version. It returns when ctx ends or after
// maxWatchRetries consecutive failures.
func (r *Registry) watch(ctx context.Context, since uint64, changes chan<- backend.ChangeSet) error {
	for {
		change, err := r.watchOnce(ctx, since, r.watchTimeout)
		if err != nil {
			return err
		}
		if change.Version == since && !change.Reset && len(change.Topics) == 0 {
			// Long-poll expired without changes.
			continue
		}
		since = change.Version
		select {
		case changes <- *change:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// watchOnce performs one Watch call, retrying failures with a short
// hold and fresh connections.
func (r *Registry) watchOnce(ctx context.Context, since uint64, timeout time.Duration) (*backend.ChangeSet, error) {
	var failures int
	for {
		holdFor := timeout
		if failures > 0 && timeout > retryTimeout {
			holdFor = retryTimeout
		}
		change, err := r.watcher.Watch(ctx, since, holdFor)
		if err == nil {
			return change, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		failures++
		// A failed long-poll often leaves a dead connection in the
		// transport's idle pool. Drop them so the retry dials fresh.
		if closer, ok := r.watcher.(interface{ CloseIdleConnections() }); ok {
			closer.CloseIdleConnections()
		}
		if failures >= maxWatchRetries {
			return nil, fmt.Errorf("subscription: watch failed %d consecutive times: %w", failures, err)
		}
		r.logger.Debug("watch failed, retrying",
			"since", since,
			"attempt", failures,
			"max_attempts", maxWatchRetries,
			"error", err,
		)
	}
}
