// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Huddle's standard CBOR encoding configuration.
//
// Huddle uses two serialization formats with a clear boundary:
//
//   - JSON for the backend's HTTP API and CLI --json output.
//   - CBOR for values the client keeps to itself: opaque pagination
//     cursors, snapshot fingerprints in the subscription registry, and
//     the CLI's saved session file.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes, which is what makes
// [Fingerprint] usable as an equality check.
//
// Types that only travel as CBOR use `cbor` struct tags. Types shared
// with the JSON API keep their `json` tags; fxamacker/cbor reads them as
// a fallback. Never put both tags on one field.
package codec
