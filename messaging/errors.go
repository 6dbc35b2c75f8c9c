// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/huddle-chat/huddle/lib/backend"
)

// decodeError rebuilds the server's *backend.Error from an error
// reply. A reply without the expected JSON shape is reported with its
// raw body.
func decodeError(status int, method, path string, body []byte) error {
	var backendErr backend.Error
	if err := json.Unmarshal(body, &backendErr); err != nil || backendErr.Code == "" {
		return fmt.Errorf("unexpected %d response from %s %s: %s", status, method, path, string(body))
	}
	backendErr.StatusCode = status
	return &backendErr
}
