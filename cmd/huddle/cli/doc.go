// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the huddle CLI.
//
// The central type is [Command], a named subcommand with optional nested
// [Command.Subcommands], a flag factory (either [Command.Flags] or a
// tagged params struct through [Command.Params]), and a Run function.
// [Command.Execute] parses flags, routes to subcommands, checks required
// flags, and prints structured help with examples.
//
// When a user types an unknown subcommand or flag, the closest known
// name by edit distance is suggested (at most 3 edits).
//
// Errors returned by commands are classified with the [Validation],
// [NotFound], [Forbidden], [Conflict], [Transient], and [Internal]
// constructors, or by [Classify] for errors coming back from the
// backend. [ExitCode] maps a classified error to the process exit
// status.
//
// Between invocations the bearer token lives in a CBOR session file
// managed by [LoadSession] and [SaveSession].
package cli
