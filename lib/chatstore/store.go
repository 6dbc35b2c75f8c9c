// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"zombiezen.com/go/sqlite"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/clock"
	"github.com/huddle-chat/huddle/lib/mediastore"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/sqlitepool"
)

// DefaultMediaURLPrefix is prepended to a media hash to form the URL
// returned by UploadMedia.
const DefaultMediaURLPrefix = "/v1/media/"

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the SQLite database file. Required.
	Path string

	// PoolSize is the number of SQLite connections. Defaults to the
	// pool's own default.
	PoolSize int

	// MediaURLPrefix forms media URLs. Defaults to
	// DefaultMediaURLPrefix. A server reachable at a known origin sets
	// this to "<origin>/v1/media/" so that URLs are absolute.
	MediaURLPrefix string

	// MaxMediaSize limits uploads. Defaults to mediastore.DefaultMaxSize.
	MaxMediaSize int

	// ChangeRetention is how many change versions Watch can replay
	// before clients are reset. Defaults to 4096.
	ChangeRetention int

	// PasswordCost is the bcrypt cost for new passwords. Defaults to
	// bcrypt.DefaultCost.
	PasswordCost int

	// Clock stamps every created row. Defaults to the real clock.
	Clock clock.Clock

	// Logger receives operational messages. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Store is the reference backend's persistent state.
type Store struct {
	pool           *sqlitepool.Pool
	media          *mediastore.Store
	feed           *changefeed
	clock          clock.Clock
	logger         *slog.Logger
	mediaURLPrefix string
	passwordCost   int
}

// Open opens (creating if necessary) the database at cfg.Path and
// applies pending migrations.
func Open(cfg Config) (*Store, error) {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mediaURLPrefix := cfg.MediaURLPrefix
	if mediaURLPrefix == "" {
		mediaURLPrefix = DefaultMediaURLPrefix
	}

	passwordCost := cfg.PasswordCost
	if passwordCost == 0 {
		passwordCost = bcrypt.DefaultCost
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:       cfg.Path,
		PoolSize:   cfg.PoolSize,
		Migrations: migrations,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("chatstore: %w", err)
	}

	media, err := mediastore.New(mediastore.Config{
		Pool:    pool,
		MaxSize: cfg.MaxMediaSize,
		Clock:   clk,
		Logger:  logger,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("chatstore: %w", err)
	}

	return &Store{
		pool:           pool,
		media:          media,
		feed:           newChangefeed(clk, cfg.ChangeRetention),
		clock:          clk,
		logger:         logger,
		mediaURLPrefix: mediaURLPrefix,
		passwordCost:   passwordCost,
	}, nil
}

// Close closes the database. Blocks until borrowed connections are
// returned.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Version returns the change feed's current version.
func (s *Store) Version() uint64 {
	return s.feed.current()
}

// As returns the backend as seen by userID. The user is not verified
// here; every operation fails with CodeUnauthorized if the user does
// not exist.
func (s *Store) As(userID ref.UserID) *Viewer {
	return &Viewer{store: s, userID: userID}
}

// Media returns the media store, for serving uploaded objects.
func (s *Store) Media() *mediastore.Store {
	return s.media
}

// write runs fn in an IMMEDIATE transaction and, on commit, publishes
// topics to the change feed.
func (s *Store) write(ctx context.Context, topics []backend.Topic, fn func(conn *sqlite.Conn) error) error {
	if err := s.pool.Write(ctx, fn); err != nil {
		return err
	}
	if len(topics) > 0 {
		version := s.feed.publish(topics...)
		s.logger.Debug("change published", "version", version, "topics", topics)
	}
	return nil
}

func (s *Store) read(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	return s.pool.Read(ctx, fn)
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

// Viewer is the backend as seen by one authenticated user. It
// implements backend.Backend.
type Viewer struct {
	store  *Store
	userID ref.UserID
}

var _ backend.Backend = (*Viewer)(nil)

// UserID returns the viewer's user.
func (v *Viewer) UserID() ref.UserID {
	return v.userID
}

// Watch implements backend.Watcher.
func (v *Viewer) Watch(ctx context.Context, since uint64, timeout time.Duration) (*backend.ChangeSet, error) {
	return v.store.feed.watch(ctx, since, timeout)
}

// normalizeName validates a workspace name: trimmed, 3 to 80
// characters.
func normalizeName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if length := len([]rune(name)); length < 3 || length > 80 {
		return "", backend.Errorf(backend.CodeInvalidParam, "%s name must be 3 to 80 characters", kind)
	}
	return name, nil
}

// normalizeChannelName lowercases a channel name and replaces spaces
// with dashes, then validates its length.
func normalizeChannelName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "-")
	return normalizeName("channel", name)
}
