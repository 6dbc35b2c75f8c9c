// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backendserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/chatstore"
	"github.com/huddle-chat/huddle/lib/mediastore"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/version"
)

const (
	// DefaultWatchTimeout applies when a watch request names none.
	DefaultWatchTimeout = 30 * time.Second

	// DefaultMaxWatchTimeout caps the timeout a client may ask for.
	DefaultMaxWatchTimeout = 60 * time.Second

	// DefaultJoinBurst is the number of join attempts a user may make
	// back to back.
	DefaultJoinBurst = 5

	// maxRequestBodySize bounds query and mutation arguments. Media
	// uploads have their own limit.
	maxRequestBodySize = 256 << 10
)

// DefaultJoinRate refills one join attempt every two seconds.
var DefaultJoinRate = rate.Every(2 * time.Second)

// Config holds the parameters of a Server.
type Config struct {
	// Store is the backing store. Required.
	Store *chatstore.Store

	// JoinRate and JoinBurst limit join attempts per user. Zero values
	// select DefaultJoinRate and DefaultJoinBurst.
	JoinRate  rate.Limit
	JoinBurst int

	// MaxWatchTimeout caps watch long-polls. Defaults to
	// DefaultMaxWatchTimeout.
	MaxWatchTimeout time.Duration

	// MaxMediaSize bounds upload bodies. Defaults to
	// mediastore.DefaultMaxSize.
	MaxMediaSize int64

	// Metrics receives the server's collectors and is served on
	// /metrics. A nil registry gets a private one.
	Metrics *prometheus.Registry

	// Logger is required.
	Logger *slog.Logger
}

// Server is the HTTP front of a chatstore.Store.
type Server struct {
	store           *chatstore.Store
	logger          *slog.Logger
	joins           *limiterPool
	maxWatchTimeout time.Duration
	maxMediaSize    int64
	registry        *prometheus.Registry
	metrics         *metrics

	queries   map[string]operation
	mutations map[string]operation
}

// New creates a server. It panics when Store or Logger is missing.
func New(config Config) *Server {
	if config.Store == nil {
		panic("backendserver: Store is required")
	}
	if config.Logger == nil {
		panic("backendserver: Logger is required")
	}
	joinRate := config.JoinRate
	if joinRate == 0 {
		joinRate = DefaultJoinRate
	}
	joinBurst := config.JoinBurst
	if joinBurst <= 0 {
		joinBurst = DefaultJoinBurst
	}
	maxWatchTimeout := config.MaxWatchTimeout
	if maxWatchTimeout <= 0 {
		maxWatchTimeout = DefaultMaxWatchTimeout
	}
	maxMediaSize := config.MaxMediaSize
	if maxMediaSize <= 0 {
		maxMediaSize = mediastore.DefaultMaxSize
	}
	registry := config.Metrics
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	server := &Server{
		store:           config.Store,
		logger:          config.Logger,
		joins:           newLimiterPool(joinRate, joinBurst),
		maxWatchTimeout: maxWatchTimeout,
		maxMediaSize:    maxMediaSize,
		registry:        registry,
		metrics:         newMetrics(registry),
		queries:         queryTable(),
	}
	server.mutations = server.mutationTable()
	return server
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+backend.PathRegister, s.handleRegister)
	mux.HandleFunc("POST "+backend.PathLogin, s.handleLogin)
	mux.HandleFunc("POST "+backend.PathLogout, s.handleLogout)
	mux.HandleFunc("GET "+backend.PathWhoAmI, s.authenticated(s.handleWhoAmI))
	mux.HandleFunc("POST "+backend.PathQuery+"{name}", s.authenticated(s.operationHandler("query", s.queries)))
	mux.HandleFunc("POST "+backend.PathMutation+"{name}", s.authenticated(s.operationHandler("mutation", s.mutations)))
	mux.HandleFunc("GET "+backend.PathWatch, s.authenticated(s.handleWatch))
	mux.HandleFunc("POST "+backend.PathMedia, s.authenticated(s.handleUpload))
	mux.HandleFunc("GET "+backend.PathMedia+"/{hash}", s.handleMedia)
	mux.HandleFunc("GET "+backend.PathHealth, s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, backend.HealthResult{Status: "ok", Version: version.Short()})
}

type viewerHandler func(w http.ResponseWriter, r *http.Request, viewer *chatstore.Viewer)

// authenticated resolves the bearer token before calling next.
func (s *Server) authenticated(next viewerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.respondError(w, backend.Errorf(backend.CodeUnauthorized, "missing bearer token"))
			return
		}
		userID, err := s.store.Authenticate(r.Context(), token)
		if err != nil {
			s.respondError(w, err)
			return
		}
		next(w, r, s.store.As(userID))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func (s *Server) operationHandler(kind string, table map[string]operation) viewerHandler {
	return func(w http.ResponseWriter, r *http.Request, viewer *chatstore.Viewer) {
		name := r.PathValue("name")
		start := time.Now()
		call, ok := table[name]
		if !ok {
			s.metrics.observe(kind, "unknown", backend.CodeNotFound, start)
			s.respondError(w, backend.Errorf(backend.CodeNotFound, "unknown %s %q", kind, name))
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
		if err != nil {
			s.metrics.observe(kind, name, backend.CodeInvalidParam, start)
			s.respondError(w, backend.Errorf(backend.CodeInvalidParam, "reading arguments: %v", err))
			return
		}
		result, err := call(r.Context(), viewer, body)
		s.metrics.observe(kind, name, errorCode(err), start)
		if err != nil {
			s.respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request, viewer *chatstore.Viewer) {
	query := r.URL.Query()
	var since uint64
	if raw := query.Get("since"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.respondError(w, backend.Errorf(backend.CodeInvalidParam, "invalid since %q", raw))
			return
		}
		since = parsed
	}
	timeout := DefaultWatchTimeout
	if raw := query.Get("timeout"); raw != "" {
		milliseconds, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || milliseconds < 0 {
			s.respondError(w, backend.Errorf(backend.CodeInvalidParam, "invalid timeout %q", raw))
			return
		}
		timeout = time.Duration(milliseconds) * time.Millisecond
	}
	timeout = min(timeout, s.maxWatchTimeout)

	s.metrics.watches.Inc()
	defer s.metrics.watches.Dec()
	changes, err := viewer.Watch(r.Context(), since, timeout)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// The client went away.
			return
		}
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, changes)
}

// respondJSON writes value as the JSON body.
func respondJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(value)
}

// respondError writes err in the wire error shape. Errors that are not
// a *backend.Error are logged and reported as internal.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	var backendErr *backend.Error
	if !errors.As(err, &backendErr) {
		s.logger.Error("request failed", "error", err)
		backendErr = backend.Errorf(backend.CodeInternal, "internal error")
	}
	status := backendErr.StatusCode
	if status == 0 {
		status = backend.StatusForCode(backendErr.Code)
	}
	respondJSON(w, status, backendErr)
}

func errorCode(err error) string {
	if err == nil {
		return "ok"
	}
	var backendErr *backend.Error
	if errors.As(err, &backendErr) {
		return backendErr.Code
	}
	return backend.CodeInternal
}

// limitedJoin applies the per-user join limiter.
func (s *Server) limitedJoin(ctx context.Context, viewer *chatstore.Viewer, args backend.JoinArgs) (ref.WorkspaceID, error) {
	userID := viewer.UserID()
	if !s.joins.allow(userID.String()) {
		s.metrics.joinsLimited.Inc()
		s.logger.Warn("join rate limited", "user_id", userID, "workspace_id", args.ID)
		return ref.WorkspaceID{}, backend.Errorf(backend.CodeRateLimited, "too many join attempts, try again later")
	}
	id, err := viewer.Join(ctx, args.ID, args.JoinCode)
	if err != nil {
		return ref.WorkspaceID{}, err
	}
	s.logger.Info("member joined", "user_id", userID, "workspace_id", id)
	return id, nil
}
