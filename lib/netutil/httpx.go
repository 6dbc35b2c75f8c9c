// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides network and HTTP I/O utilities.
//
// ReadResponse bounds response body reads at MaxResponseSize so a
// misbehaving server cannot exhaust client memory. IsExpectedCloseError
// classifies errors caused by a peer hanging up, which servers should
// not log as failures.
package netutil

import "io"

// MaxResponseSize bounds backend response body reads. Media downloads
// are the largest legitimate responses; the limit sits well above the
// attachment size cap.
const MaxResponseSize int64 = 64 << 20

// ReadResponse reads a response body up to MaxResponseSize bytes. Use
// instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}
