// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/huddle-chat/huddle/lib/codec"
	"github.com/huddle-chat/huddle/lib/ref"
)

// Session is the login state kept between CLI invocations. It is set
// up once by "huddle login" or "huddle register" and loaded by every
// command that needs an identity.
type Session struct {
	// Backend identifies where the token is valid: the backend URL in
	// remote mode, or "embedded:" followed by the store path.
	Backend string `cbor:"backend"`

	// Token is the bearer token issued at login.
	Token string `cbor:"token"`

	UserID ref.UserID `cbor:"user_id"`
	Name   string     `cbor:"name"`
	Email  string     `cbor:"email"`

	CreatedAt time.Time `cbor:"created_at"`
}

// ErrNoSession is returned by LoadSession when no session file exists.
var ErrNoSession = errors.New("not logged in")

// LoadSession reads the session file at path. A missing file returns
// a Forbidden error wrapping ErrNoSession with a hint to log in.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, (&CommandError{Category: CategoryForbidden, Err: ErrNoSession}).
				WithHint("run 'huddle login' or 'huddle register' first")
		}
		return nil, Internal("reading session file %s: %w", path, err)
	}

	var session Session
	if err := codec.Unmarshal(data, &session); err != nil {
		return nil, Internal("parsing session file %s: %w", path, err)
	}
	if session.Token == "" || session.UserID.IsZero() || session.Backend == "" {
		return nil, (&CommandError{Category: CategoryForbidden, Err: fmt.Errorf("session file %s is incomplete", path)}).
			WithHint("run 'huddle login' again")
	}
	return &session, nil
}

// SaveSession writes session to path with mode 0600, creating the
// parent directory with mode 0700. The file is replaced atomically.
func SaveSession(session *Session, path string) error {
	data, err := codec.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}
	temporary, err := os.CreateTemp(directory, ".session-*")
	if err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	defer os.Remove(temporary.Name())

	if err := temporary.Chmod(0o600); err != nil {
		temporary.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return fmt.Errorf("writing session file %s: %w", path, err)
	}
	return nil
}

// RemoveSession deletes the session file. A missing file is not an
// error.
func RemoveSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session file %s: %w", path, err)
	}
	return nil
}
