// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/bcrypt"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// sessionTokenBytes is the entropy of a session token.
const sessionTokenBytes = 32

// Registration holds the parameters of Register.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Image    string `json:"image,omitempty"`
}

// Register creates an account and returns it with a new session token.
func (s *Store) Register(ctx context.Context, registration Registration) (*schema.User, string, error) {
	name := strings.TrimSpace(registration.Name)
	if name == "" {
		return nil, "", backend.Errorf(backend.CodeInvalidParam, "name is required")
	}
	email, err := normalizeEmail(registration.Email)
	if err != nil {
		return nil, "", err
	}
	if len(registration.Password) < MinPasswordLength {
		return nil, "", backend.Errorf(backend.CodeInvalidParam, "password must be at least %d characters", MinPasswordLength)
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(registration.Password), s.passwordCost)
	if err != nil {
		return nil, "", fmt.Errorf("chatstore: hashing password: %w", err)
	}

	user := &schema.User{
		ID:    ref.NewUserID(),
		Name:  name,
		Email: email,
		Image: strings.TrimSpace(registration.Image),
	}
	token, tokenHash, err := newSessionToken()
	if err != nil {
		return nil, "", err
	}

	err = s.write(ctx, []backend.Topic{backend.TopicUsers}, func(conn *sqlite.Conn) error {
		taken, err := exists(conn, "SELECT 1 FROM users WHERE email = ?", email)
		if err != nil {
			return err
		}
		if taken {
			return backend.Errorf(backend.CodeConflict, "an account with this email already exists")
		}
		now := toNanos(s.now())
		if err := sqlitex.Execute(conn, `INSERT INTO users
			(id, name, email, image, password_hash, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
			Args: []any{user.ID.String(), user.Name, user.Email, user.Image, passwordHash, now},
		}); err != nil {
			return fmt.Errorf("chatstore: inserting user: %w", err)
		}
		return insertSession(conn, tokenHash, user.ID, now)
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", "user_id", user.ID.String())
	return user, token, nil
}

// Login verifies credentials and returns a new session token.
func (s *Store) Login(ctx context.Context, email, password string) (*schema.User, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	invalid := backend.Errorf(backend.CodeUnauthorized, "invalid email or password")

	var (
		user         *schema.User
		passwordHash []byte
	)
	err = s.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT id, name, email, image, password_hash FROM users WHERE email = ?", &sqlitex.ExecOptions{
			Args: []any{email},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				r := &row{stmt: stmt}
				user = &schema.User{Name: r.text(1), Email: r.text(2), Image: r.text(3)}
				r.id(0, &user.ID)
				passwordHash = make([]byte, stmt.ColumnLen(4))
				stmt.ColumnBytes(4, passwordHash)
				return r.err
			},
		})
	})
	if err != nil {
		return nil, "", fmt.Errorf("chatstore: looking up user: %w", err)
	}
	if user == nil {
		return nil, "", invalid
	}
	if err := bcrypt.CompareHashAndPassword(passwordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, "", invalid
		}
		return nil, "", fmt.Errorf("chatstore: comparing password: %w", err)
	}

	token, tokenHash, err := newSessionToken()
	if err != nil {
		return nil, "", err
	}
	err = s.write(ctx, nil, func(conn *sqlite.Conn) error {
		return insertSession(conn, tokenHash, user.ID, toNanos(s.now()))
	})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves a session token to its user.
func (s *Store) Authenticate(ctx context.Context, token string) (ref.UserID, error) {
	var userID ref.UserID
	found := false
	err := s.read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT user_id FROM sessions WHERE token_hash = ?", &sqlitex.ExecOptions{
			Args: []any{hashToken(token)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				r := &row{stmt: stmt}
				r.id(0, &userID)
				found = true
				return r.err
			},
		})
	})
	if err != nil {
		return ref.UserID{}, fmt.Errorf("chatstore: looking up session: %w", err)
	}
	if !found {
		return ref.UserID{}, backend.Errorf(backend.CodeUnauthorized, "invalid or expired session")
	}
	return userID, nil
}

// Logout invalidates a session token.
func (s *Store) Logout(ctx context.Context, token string) error {
	return s.write(ctx, nil, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "DELETE FROM sessions WHERE token_hash = ?", &sqlitex.ExecOptions{
			Args: []any{hashToken(token)},
		})
	})
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return "", backend.Errorf(backend.CodeInvalidParam, "invalid email address")
	}
	return email, nil
}

// newSessionToken returns a random bearer token and the hash stored in
// the sessions table. The token itself is never stored.
func newSessionToken() (token, tokenHash string, err error) {
	raw := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("chatstore: generating session token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(raw)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func insertSession(conn *sqlite.Conn, tokenHash string, userID ref.UserID, now int64) error {
	if err := sqlitex.Execute(conn, "INSERT INTO sessions (token_hash, user_id, created_at) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
		Args: []any{tokenHash, userID.String(), now},
	}); err != nil {
		return fmt.Errorf("chatstore: inserting session: %w", err)
	}
	return nil
}

// exists reports whether query returns at least one row.
func exists(conn *sqlite.Conn, query string, args ...any) (bool, error) {
	found := false
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(*sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("chatstore: %w", err)
	}
	return found, nil
}
