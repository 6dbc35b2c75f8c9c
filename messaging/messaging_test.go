// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huddle-chat/huddle/lib/backendserver"
	"github.com/huddle-chat/huddle/lib/chattest"
	"github.com/huddle-chat/huddle/lib/secret"
	"github.com/huddle-chat/huddle/lib/testutil"
)

// newTestBackend serves a fresh reference backend over HTTP and
// returns a client pointed at it.
func newTestBackend(t *testing.T) (*chattest.Fixture, *Client) {
	t.Helper()
	fixture := chattest.New(t)
	server := backendserver.New(backendserver.Config{
		Store:           fixture.Store,
		MaxWatchTimeout: 2 * time.Second,
		Logger:          slog.New(slog.DiscardHandler),
	})
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	client, err := NewClient(ClientConfig{
		BaseURL: httpServer.URL + "/",
		Logger:  slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(client.CloseIdleConnections)
	return fixture, client
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func password(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("secret.NewFromString: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

// register creates an account through the wire API and returns its
// session.
func register(t *testing.T, client *Client, name string) *Session {
	t.Helper()
	session, err := client.Register(testContext(t), name, testutil.UniqueEmail(name), password(t, chattest.Password))
	if err != nil {
		t.Fatalf("Register(%s): %v", name, err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}
