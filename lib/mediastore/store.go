// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package mediastore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/huddle-chat/huddle/lib/clock"
	"github.com/huddle-chat/huddle/lib/sqlitepool"
)

// Schema creates the media table. Include it in the owning store's
// migrations.
const Schema = `
CREATE TABLE media (
	hash         TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	size         INTEGER NOT NULL,
	compression  INTEGER NOT NULL,
	data         BLOB NOT NULL,
	created_at   INTEGER NOT NULL
);
`

// DefaultMaxSize is the upload limit when Config.MaxSize is zero.
const DefaultMaxSize = 8 << 20

// ErrNotFound is returned by Get for an unknown hash.
var ErrNotFound = errors.New("mediastore: object not found")

// ErrTooLarge is returned by Put when data exceeds the size limit.
var ErrTooLarge = errors.New("mediastore: object too large")

// ErrUnsupportedType is returned by Put for content types that are not
// images.
var ErrUnsupportedType = errors.New("mediastore: unsupported content type")

// Config holds the parameters for a Store.
type Config struct {
	// Pool holds the media table. Required.
	Pool *sqlitepool.Pool

	// MaxSize limits uploads in bytes. Defaults to DefaultMaxSize.
	MaxSize int

	Clock  clock.Clock
	Logger *slog.Logger
}

// Store persists media objects.
type Store struct {
	pool    *sqlitepool.Pool
	maxSize int
	clock   clock.Clock
	logger  *slog.Logger
}

// Object is a stored media object.
type Object struct {
	Hash        Hash
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// New creates a Store.
func New(cfg Config) (*Store, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("mediastore: Pool is required")
	}
	store := &Store{
		pool:    cfg.Pool,
		maxSize: cfg.MaxSize,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
	}
	if store.maxSize <= 0 {
		store.maxSize = DefaultMaxSize
	}
	if store.clock == nil {
		store.clock = clock.Real()
	}
	if store.logger == nil {
		store.logger = slog.New(slog.DiscardHandler)
	}
	return store, nil
}

// Put stores data and returns its hash. Storing identical bytes again
// returns the same hash without writing.
func (s *Store) Put(ctx context.Context, contentType string, data []byte) (Hash, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(contentType, "image/") {
		return Hash{}, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if len(data) == 0 {
		return Hash{}, fmt.Errorf("mediastore: empty object")
	}
	if len(data) > s.maxSize {
		return Hash{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), s.maxSize)
	}

	hash := HashMedia(data)
	stored, compression, err := Compress(data, contentType)
	if err != nil {
		return Hash{}, err
	}

	err = s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `INSERT INTO media
			(hash, content_type, size, compression, data, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (hash) DO NOTHING`, &sqlitex.ExecOptions{
			Args: []any{
				hash.String(),
				contentType,
				len(data),
				int(compression),
				stored,
				s.clock.Now().UnixNano(),
			},
		})
	})
	if err != nil {
		return Hash{}, fmt.Errorf("mediastore: storing %s: %w", hash, err)
	}

	s.logger.Debug("media stored",
		"hash", hash.String(),
		"content_type", contentType,
		"size", len(data),
		"stored_size", len(stored),
		"compression", compression.String(),
	)
	return hash, nil
}

// Get returns the object with the given hash.
func (s *Store) Get(ctx context.Context, hash Hash) (*Object, error) {
	var (
		object      *Object
		stored      []byte
		size        int
		compression Compression
	)
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT content_type, size, compression, data, created_at
			FROM media WHERE hash = ?`, &sqlitex.ExecOptions{
			Args: []any{hash.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				object = &Object{
					Hash:        hash,
					ContentType: stmt.ColumnText(0),
					CreatedAt:   time.Unix(0, stmt.ColumnInt64(4)).UTC(),
				}
				size = stmt.ColumnInt(1)
				compression = Compression(stmt.ColumnInt(2))
				stored = make([]byte, stmt.ColumnLen(3))
				stmt.ColumnBytes(3, stored)
				return nil
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("mediastore: reading %s: %w", hash, err)
	}
	if object == nil {
		return nil, ErrNotFound
	}

	object.Data, err = Decompress(stored, compression, size)
	if err != nil {
		return nil, err
	}
	if HashMedia(object.Data) != hash {
		return nil, fmt.Errorf("mediastore: object %s failed hash verification", hash)
	}
	return object, nil
}

// Delete removes an object. Deleting an unknown hash is not an error.
func (s *Store) Delete(ctx context.Context, hash Hash) error {
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "DELETE FROM media WHERE hash = ?", &sqlitex.ExecOptions{
			Args: []any{hash.String()},
		})
	})
	if err != nil {
		return fmt.Errorf("mediastore: deleting %s: %w", hash, err)
	}
	return nil
}
