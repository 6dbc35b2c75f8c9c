// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the huddle CLI command tree.
//
// Every command that touches workspace data goes through the same
// panels the terminal viewer uses, so joins, invite regeneration, role
// changes, removals, and leaving behave identically in both. Prompts
// that a panel raises are answered on the terminal, or accepted
// outright with --yes. Notifications print to stderr and, when a flow
// navigates, the final route is printed.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/version"
)

// IO holds the streams commands read from and write to.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StandardIO is the process's stdin, stdout, and stderr.
func StandardIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

type app struct {
	io IO
}

// Root builds the complete huddle command tree.
func Root(streams IO) *cli.Command {
	a := &app{io: streams}
	return &cli.Command{
		Name:   "huddle",
		Output: streams.Err,
		Description: `Huddle: workspaces, channels, direct messages, and threads.

Sign in with 'huddle register' or 'huddle login'. The session is kept in
the file named by client.session_file in the configuration, and every
other command acts as that user.`,
		Subcommands: []*cli.Command{
			a.registerCommand(),
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.workspaceCommand(),
			a.joinCommand(),
			a.inviteCommand(),
			a.channelCommand(),
			a.memberCommand(),
			a.conversationCommand(),
			a.threadCommand(),
			a.messageCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(context.Context, []string) error {
					fmt.Fprintf(streams.Out, "huddle %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

// requireArgs checks the positional argument count. A last name ending
// in "..." accepts any number of further arguments.
func requireArgs(args []string, names ...string) error {
	if len(args) == len(names) {
		return nil
	}
	if n := len(names); n > 0 && strings.HasSuffix(names[n-1], "...") && len(args) >= n {
		return nil
	}
	if len(args) < len(names) {
		return cli.Validation("missing %s", names[len(args)])
	}
	return cli.Validation("unexpected argument %q", args[len(names)])
}
