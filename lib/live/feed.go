// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package live

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/subscription"
)

// FeedStatus is the pagination state of a Feed.
type FeedStatus int

const (
	// LoadingFirstPage: the newest page has not arrived.
	LoadingFirstPage FeedStatus = iota

	// CanLoadMore: every page is loaded and older messages exist.
	CanLoadMore

	// LoadingMore: an older page was requested and has not arrived.
	LoadingMore

	// Exhausted: every page is loaded and the oldest message is shown.
	Exhausted
)

func (s FeedStatus) String() string {
	switch s {
	case LoadingFirstPage:
		return "loading-first-page"
	case CanLoadMore:
		return "can-load-more"
	case LoadingMore:
		return "loading-more"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// ErrCannotLoadMore is returned by LoadMore outside CanLoadMore.
var ErrCannotLoadMore = errors.New("live: feed cannot load more now")

// MessageLister is the query a Feed pages through.
type MessageLister interface {
	GetMessages(ctx context.Context, query backend.MessagesQuery) (*backend.MessagePage, error)
}

// FeedTopics are the backend topics that affect a message feed.
var FeedTopics = []backend.Topic{
	backend.TopicMessages,
	backend.TopicReactions,
	backend.TopicMembers,
	backend.TopicUsers,
}

// Feed is a live, paginated, newest-first message stream.
//
// Page 0 is open-ended at the top so new messages appear in it. When
// LoadMore adds a page, the previous last page is pinned to the key
// range it covered at that moment: its lower bound becomes its current
// continue cursor and the new page starts strictly below that cursor.
// Messages therefore never appear in two pages and never fall between
// pages, however the stream changes.
type Feed struct {
	registry *subscription.Registry
	lister   MessageLister
	selector backend.MessagesQuery
	name     string

	mu      sync.Mutex
	pages   []*feedPage
	err     error
	closed  bool
	changed signal
}

type feedPage struct {
	// query is read by the subscription on every fetch, so pinning a
	// page takes effect at its next refetch.
	query        backend.MessagesQuery
	result       *backend.MessagePage
	subscription *subscription.Subscription
}

// NewFeed subscribes to the first page of the stream named by selector
// (exactly one of ChannelID, ConversationID, ParentMessageID).
// pageSize is the number of messages requested for the first page.
func NewFeed(registry *subscription.Registry, lister MessageLister, selector backend.MessagesQuery, pageSize int) *Feed {
	selector.Cursor = ""
	selector.EndCursor = ""
	selector.NumItems = 0
	feed := &Feed{
		registry: registry,
		lister:   lister,
		selector: selector,
		name:     feedName(selector),
		changed:  newSignal(),
	}
	feed.mu.Lock()
	feed.addPageLocked("", pageSize)
	feed.mu.Unlock()
	return feed
}

func feedName(selector backend.MessagesQuery) string {
	switch {
	case !selector.ChannelID.IsZero():
		return "messages:" + selector.ChannelID.String()
	case !selector.ConversationID.IsZero():
		return "messages:" + selector.ConversationID.String()
	default:
		return "messages:" + selector.ParentMessageID.String()
	}
}

// addPageLocked subscribes a new page below cursor. The subscription is
// created with feed.mu held; its deliveries run on the registry loop
// and take the lock themselves.
func (f *Feed) addPageLocked(cursor string, numItems int) {
	page := &feedPage{query: f.selector}
	page.query.Cursor = cursor
	page.query.NumItems = numItems
	index := len(f.pages)
	f.pages = append(f.pages, page)

	fetch := func(ctx context.Context) (*backend.MessagePage, error) {
		f.mu.Lock()
		query := page.query
		f.mu.Unlock()
		return f.lister.GetMessages(ctx, query)
	}
	page.subscription = subscription.Subscribe(f.registry,
		fmt.Sprintf("%s#%d", f.name, index), FeedTopics, fetch,
		func(result *backend.MessagePage, err error) {
			f.apply(page, result, err)
		})
}

func (f *Feed) apply(page *feedPage, result *backend.MessagePage, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if err != nil {
		f.err = err
	} else {
		page.result = result
		f.err = nil
	}
	f.changed.fire()
}

// Status reports the pagination state.
func (f *Feed) Status() FeedStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusLocked()
}

func (f *Feed) statusLocked() FeedStatus {
	if len(f.pages) == 0 || f.pages[0].result == nil {
		return LoadingFirstPage
	}
	last := f.pages[len(f.pages)-1]
	switch {
	case last.result == nil:
		return LoadingMore
	case last.result.IsDone:
		return Exhausted
	default:
		return CanLoadMore
	}
}

// Loaded reports whether the first page has arrived.
func (f *Feed) Loaded() bool {
	return f.Status() != LoadingFirstPage
}

// Err returns the most recent fetch error, cleared by the next
// successful page delivery.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Messages returns every loaded message, newest first.
func (f *Feed) Messages() []schema.MessageView {
	f.mu.Lock()
	defer f.mu.Unlock()
	var messages []schema.MessageView
	for _, page := range f.pages {
		if page.result == nil {
			break
		}
		messages = append(messages, page.result.Messages...)
	}
	return messages
}

// Pages returns the number of subscribed pages.
func (f *Feed) Pages() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pages)
}

// LoadMore requests numItems older messages. It acts only in
// CanLoadMore and returns ErrCannotLoadMore otherwise.
func (f *Feed) LoadMore(numItems int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.statusLocked() != CanLoadMore {
		return ErrCannotLoadMore
	}
	last := f.pages[len(f.pages)-1]
	boundary := last.result.ContinueCursor
	if boundary == "" {
		return ErrCannotLoadMore
	}
	last.query.EndCursor = boundary
	last.query.NumItems = 0
	f.addPageLocked(boundary, numItems)
	f.changed.fire()
	return nil
}

// Changed returns a channel that is closed at the next state change.
func (f *Feed) Changed() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.changed.ch
}

// WaitLoaded blocks until no page is outstanding or ctx ends.
func (f *Feed) WaitLoaded(ctx context.Context) error {
	for {
		f.mu.Lock()
		status, changed := f.statusLocked(), f.changed.ch
		f.mu.Unlock()
		if status == CanLoadMore || status == Exhausted {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close unsubscribes every page.
func (f *Feed) Close() {
	f.mu.Lock()
	pages := f.pages
	f.closed = true
	f.mu.Unlock()
	for _, page := range pages {
		page.subscription.Close()
	}
}
