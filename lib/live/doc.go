// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package live turns subscribed backend queries into observable state.
//
// A [Resource] follows one query through loading, not-found, and ready.
// A [Feed] follows a reverse-chronological message stream as a list of
// pages that grows on demand. Both are fed by a subscription.Registry
// and signal every state change by closing the channel returned from
// Changed, which is then replaced.
package live
