// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backendserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/chatstore"
)

func (s *Server) readCredentials(w http.ResponseWriter, r *http.Request) (backend.Credentials, bool) {
	var credentials backend.Credentials
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&credentials); err != nil {
		s.respondError(w, backend.Errorf(backend.CodeInvalidParam, "invalid credentials: %v", err))
		return backend.Credentials{}, false
	}
	return credentials, true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	credentials, ok := s.readCredentials(w, r)
	if !ok {
		return
	}
	user, token, err := s.store.Register(r.Context(), chatstore.Registration{
		Name:     credentials.Name,
		Email:    credentials.Email,
		Password: credentials.Password,
	})
	s.metrics.observe("auth", "register", errorCode(err), start)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Info("account registered", "user_id", user.ID)
	respondJSON(w, http.StatusOK, backend.AuthResult{User: *user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	credentials, ok := s.readCredentials(w, r)
	if !ok {
		return
	}
	user, token, err := s.store.Login(r.Context(), credentials.Email, credentials.Password)
	s.metrics.observe("auth", "login", errorCode(err), start)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, backend.AuthResult{User: *user, Token: token})
}

// handleLogout revokes the presented token. Unknown tokens are not an
// error.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		s.respondError(w, backend.Errorf(backend.CodeUnauthorized, "missing bearer token"))
		return
	}
	if err := s.store.Logout(r.Context(), token); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request, viewer *chatstore.Viewer) {
	user, err := viewer.CurrentUser(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
