// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package mediastore stores message attachments for the reference
// backend.
//
// Media is content-addressed: an object's key is the BLAKE3 keyed hash
// of its uncompressed bytes in the "huddle.media" domain, so uploading
// the same image twice stores it once. Objects are compressed at rest
// with an algorithm chosen per content type: already-compressed image
// formats are stored as-is, text-like formats (SVG) use zstd, and
// anything else is probed.
//
// Objects live in the "media" table of a [sqlitepool.Pool]. The table
// is created by [Schema], which the owning store includes in its
// migrations.
package mediastore
