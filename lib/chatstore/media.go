// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"context"
	"errors"

	"zombiezen.com/go/sqlite"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/mediastore"
)

// UploadMedia implements backend.Mutations. Any authenticated user may
// upload; the returned URL is attached to a message by CreateMessage.
func (v *Viewer) UploadMedia(ctx context.Context, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", backend.Errorf(backend.CodeInvalidParam, "attachment is empty")
	}
	err := v.store.read(ctx, func(conn *sqlite.Conn) error {
		_, err := v.requireUser(conn)
		return err
	})
	if err != nil {
		return "", err
	}

	hash, err := v.store.media.Put(ctx, contentType, data)
	switch {
	case errors.Is(err, mediastore.ErrTooLarge):
		return "", backend.Errorf(backend.CodeInvalidParam, "attachment exceeds the size limit")
	case errors.Is(err, mediastore.ErrUnsupportedType):
		return "", backend.Errorf(backend.CodeInvalidParam, "attachments must be images")
	case err != nil:
		return "", err
	}
	return v.store.mediaURLPrefix + hash.String(), nil
}
