// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/cmd/huddle/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Root(commands.StandardIO()).Execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		// Commands that already reported the outcome (a declined
		// prompt, an empty search) return a bare exit code.
		if !cli.Silent(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			var commandErr *cli.CommandError
			if errors.As(err, &commandErr) && commandErr.Hint != "" {
				fmt.Fprintf(os.Stderr, "hint: %s\n", commandErr.Hint)
			}
		}
		os.Exit(cli.ExitCode(err))
	}
}
