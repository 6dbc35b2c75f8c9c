// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backendserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/chatstore"
	"github.com/huddle-chat/huddle/lib/mediastore"
	"github.com/huddle-chat/huddle/lib/netutil"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, viewer *chatstore.Viewer) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxMediaSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, backend.Errorf(backend.CodeInvalidParam, "attachment exceeds %d bytes", s.maxMediaSize))
			return
		}
		s.respondError(w, backend.Errorf(backend.CodeInvalidParam, "reading attachment: %v", err))
		return
	}
	url, err := viewer.UploadMedia(r.Context(), r.Header.Get("Content-Type"), data)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, backend.MediaResult{URL: url})
}

// handleMedia serves a stored object. Objects are content addressed, so
// responses never change and are cached indefinitely.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	hash, err := mediastore.ParseHash(r.PathValue("hash"))
	if err != nil {
		s.respondError(w, backend.Errorf(backend.CodeInvalidParam, "invalid media hash"))
		return
	}
	object, err := s.store.Media().Get(r.Context(), hash)
	if errors.Is(err, mediastore.ErrNotFound) {
		s.respondError(w, backend.NotFound("media", hash))
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", object.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(object.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(object.Data); err != nil && !netutil.IsExpectedCloseError(err) {
		s.logger.Warn("writing media response", "hash", hash, "error", err)
	}
}
