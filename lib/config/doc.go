// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for Huddle
// binaries.
//
// Configuration is loaded from a single file named by either the
// HUDDLE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). [Resolve] picks between the two for commands that
// also run without any file, in which case [Default] applies. There is
// no ~/.config discovery and no automatic file search.
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production without an explicit section
// logs JSON.
//
// ${VAR} and ${VAR:-default} patterns are expanded in path and URL
// fields after loading. No environment variable overrides a config
// value directly.
//
// This package depends on no other Huddle packages.
package config
