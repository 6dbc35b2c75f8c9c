// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"encoding"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
)

// row decodes typed columns from a result row, keeping the first error.
type row struct {
	stmt *sqlite.Stmt
	err  error
}

func (r *row) text(column int) string {
	return r.stmt.ColumnText(column)
}

// id decodes a ref ID column. The empty string decodes to the zero ID.
func (r *row) id(column int, destination encoding.TextUnmarshaler) {
	if r.err != nil {
		return
	}
	if err := destination.UnmarshalText([]byte(r.stmt.ColumnText(column))); err != nil {
		r.err = fmt.Errorf("column %s: %w", r.stmt.ColumnName(column), err)
	}
}

// time decodes a Unix-nanosecond column. 0 decodes to the zero time.
func (r *row) time(column int) time.Time {
	return fromNanos(r.stmt.ColumnInt64(column))
}

func fromNanos(nanos int64) time.Time {
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos).UTC()
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
