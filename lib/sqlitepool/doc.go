// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool behind the
// Huddle reference backend.
//
// It wraps zombiezen.com/go/sqlite with fixed pragmas: WAL journal
// mode, NORMAL synchronous, memory-mapped reads, and a busy timeout so
// that concurrent writers wait for the lock instead of failing.
//
// Callers [Pool.Take] a connection, do their work, and [Pool.Put] it
// back. Connections are not safe for concurrent use. For the common
// cases, [Pool.Read] and [Pool.Write] handle the take/put and, for
// writes, wrap the callback in an IMMEDIATE transaction so every write
// is serialized at BEGIN rather than upgraded mid-transaction.
//
// # Pragmas
//
//   - journal_mode=WAL: readers never block the writer.
//   - synchronous=NORMAL: survives process crashes, not power loss.
//   - busy_timeout=5000: wait up to 5 seconds for the write lock.
//   - foreign_keys=OFF: the store deletes dependent rows explicitly.
//   - cache_size=-8192: 8 MB page cache per connection.
//   - mmap_size=268435456: 256 MB memory-mapped I/O for reads.
//   - temp_store=MEMORY.
//
// # Migrations
//
// [Config.Migrations] is an ordered list of SQL scripts. Open applies
// every script whose index is at or beyond the database's
// PRAGMA user_version, each in its own transaction, and advances
// user_version as it goes. Scripts are append-only: never edit one
// that has shipped.
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:       "/var/lib/huddle/huddle.db",
//	    Logger:     logger,
//	    Migrations: migrations,
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	err = pool.Write(ctx, func(conn *sqlite.Conn) error {
//	    return sqlitex.Execute(conn, "INSERT ...", &sqlitex.ExecOptions{Args: args})
//	})
package sqlitepool
