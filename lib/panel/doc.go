// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package panel holds the client's behavioral components: joining a
// workspace by code, managing the invite code, the member profile,
// direct conversations and channels, the thread panel, and message and
// reaction rendering.
//
// Panels own no presentation. Each resolves its data through live
// resources, exposes a View snapshot for whatever surface draws it (the
// CLI or the terminal viewer), and performs mutations through the
// backend, reporting outcomes through the [Env] collaborators:
// confirmations, notifications, navigation, and the clipboard.
//
// Authorization is the backend's job. Panels only hide what the viewer
// cannot do; see [Capabilities].
package panel
