// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backendserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/chatstore"
	"github.com/huddle-chat/huddle/lib/chattest"
	"github.com/huddle-chat/huddle/lib/testutil"
)

func TestHTTPServerLifecycle(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.DiscardHandler)
	fixture := chattest.New(t)
	user, token, err := fixture.Store.Register(context.Background(), chatstore.Registration{
		Name:     "Ada",
		Email:    testutil.UniqueEmail("ada"),
		Password: chattest.Password,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	current, err := fixture.Store.As(user.ID).Watch(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	server := NewHTTPServer(HTTPServerConfig{
		Address:         "127.0.0.1:0",
		Handler:         New(Config{Store: fixture.Store, Logger: logger}).Handler(),
		ShutdownTimeout: 2 * time.Second,
		Logger:          logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()
	select {
	case <-server.Ready():
	case <-t.Context().Done():
		t.Fatal("server did not become ready before test deadline")
	}
	base := "http://" + server.Addr().String()

	response, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	io.Copy(io.Discard, response.Body)
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", response.StatusCode)
	}

	// A held watch must not stall shutdown: the request context derives
	// from ctx, so cancelling ctx releases it.
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		request, _ := http.NewRequest(http.MethodGet, base+backend.PathWatch+"?timeout=60000&since="+strconv.FormatUint(current.Version, 10), nil)
		request.Header.Set("Authorization", "Bearer "+token)
		if response, err := http.DefaultClient.Do(request); err == nil {
			response.Body.Close()
		}
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-serveDone:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-t.Context().Done():
		t.Fatal("server did not shut down before test deadline")
	}
	testutil.RequireClosed(t, watchDone, 5*time.Second, "watch request still open after shutdown")
}

func TestHTTPServerPanicsOnMissingConfig(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.DiscardHandler)
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	tests := []struct {
		name   string
		config HTTPServerConfig
	}{
		{"missing_address", HTTPServerConfig{Handler: handler, Logger: logger}},
		{"missing_handler", HTTPServerConfig{Address: ":0", Logger: logger}},
		{"missing_logger", HTTPServerConfig{Address: ":0", Handler: handler}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("NewHTTPServer did not panic")
				}
			}()
			NewHTTPServer(tt.config)
		})
	}
}
