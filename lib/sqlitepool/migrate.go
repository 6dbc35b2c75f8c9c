// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// migrate applies migrations[user_version:] in order.
func (p *Pool) migrate(ctx context.Context, migrations []string) error {
	conn, err := p.Take(ctx)
	if err != nil {
		return err
	}
	defer p.Put(conn)

	version, err := userVersion(conn)
	if err != nil {
		return err
	}
	if version > len(migrations) {
		return fmt.Errorf("sqlitepool: %s is at schema version %d, newer than this binary (%d)",
			p.path, version, len(migrations))
	}

	for index := version; index < len(migrations); index++ {
		if err := applyMigration(conn, index, migrations[index]); err != nil {
			return err
		}
		p.logger.Info("sqlite migration applied",
			"path", p.path,
			"version", index+1,
		)
	}
	return nil
}

func applyMigration(conn *sqlite.Conn, index int, script string) (err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("sqlitepool: migration %d: begin: %w", index+1, err)
	}
	defer endTransaction(&err)

	if err := sqlitex.ExecuteScript(conn, script, nil); err != nil {
		return fmt.Errorf("sqlitepool: migration %d: %w", index+1, err)
	}
	// PRAGMA does not accept bound parameters.
	if err := sqlitex.ExecuteTransient(conn, fmt.Sprintf("PRAGMA user_version=%d", index+1), nil); err != nil {
		return fmt.Errorf("sqlitepool: migration %d: setting user_version: %w", index+1, err)
	}
	return nil
}

// UserVersion reports the schema version recorded in the database.
func (p *Pool) UserVersion(ctx context.Context) (int, error) {
	conn, err := p.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer p.Put(conn)
	return userVersion(conn)
}

func userVersion(conn *sqlite.Conn) (int, error) {
	var version int
	err := sqlitex.ExecuteTransient(conn, "PRAGMA user_version", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("sqlitepool: reading user_version: %w", err)
	}
	return version, nil
}
