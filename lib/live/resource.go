// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package live

import (
	"context"
	"sync"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/subscription"
)

// Status is the lifecycle position of a data-bearing component.
type Status int

const (
	// StatusLoading means no usable result has arrived yet.
	StatusLoading Status = iota

	// StatusNotFound means the backend reported the entity absent.
	StatusNotFound

	// StatusReady means a value is available.
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusNotFound:
		return "not-found"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// signal is a broadcast channel that is closed on every change and
// replaced.
type signal struct {
	ch chan struct{}
}

func newSignal() signal { return signal{ch: make(chan struct{})} }

func (s *signal) fire() {
	close(s.ch)
	s.ch = make(chan struct{})
}

// Resource is the live result of one query.
//
// Fetch errors other than not-found do not change the status: a
// resource that never loaded stays loading, and a ready resource keeps
// its last value. The error is kept and reported by State until the
// next successful delivery.
type Resource[T any] struct {
	mu      sync.Mutex
	status  Status
	value   T
	err     error
	changed signal
	closed  bool

	onUpdate func(value T, status Status, err error)

	subscription *subscription.Subscription
}

// Watch subscribes fetch on registry and returns the resource that
// tracks it.
func Watch[T any](registry *subscription.Registry, name string, topics []backend.Topic, fetch func(ctx context.Context) (T, error)) *Resource[T] {
	return WatchFunc(registry, name, topics, fetch, nil)
}

// WatchFunc is Watch with a callback that runs after every state
// change, on the registry's delivery goroutine and outside the
// resource's lock. The callback may call Close.
func WatchFunc[T any](registry *subscription.Registry, name string, topics []backend.Topic, fetch func(ctx context.Context) (T, error), onUpdate func(value T, status Status, err error)) *Resource[T] {
	resource := &Resource[T]{changed: newSignal(), onUpdate: onUpdate}
	resource.subscription = subscription.Subscribe(registry, name, topics, fetch, resource.deliver)
	return resource
}

func (r *Resource[T]) deliver(value T, err error) {
	if !r.apply(value, err) {
		return
	}
	if r.onUpdate != nil {
		value, status, err := r.State()
		r.onUpdate(value, status, err)
	}
}

// apply records a snapshot and reports whether it was taken. A closed
// resource ignores snapshots still in flight.
func (r *Resource[T]) apply(value T, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	switch {
	case err == nil:
		r.status = StatusReady
		r.value = value
		r.err = nil
	case backend.IsNotFound(err):
		var zero T
		r.status = StatusNotFound
		r.value = zero
		r.err = nil
	default:
		r.err = err
	}
	r.changed.fire()
	return true
}

// State returns the current value, status, and last fetch error.
func (r *Resource[T]) State() (T, Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.status, r.err
}

// Status returns the current status.
func (r *Resource[T]) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Changed returns a channel that is closed at the next state change.
func (r *Resource[T]) Changed() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changed.ch
}

// Wait blocks until the resource has left StatusLoading or ctx ends.
func (r *Resource[T]) Wait(ctx context.Context) (T, Status, error) {
	for {
		r.mu.Lock()
		value, status, err, changed := r.value, r.status, r.err, r.changed.ch
		r.mu.Unlock()
		if status != StatusLoading {
			return value, status, err
		}
		select {
		case <-changed:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
			return value, status, err
		}
	}
}

// Close unsubscribes. The resource keeps its last state.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.subscription.Close()
}
