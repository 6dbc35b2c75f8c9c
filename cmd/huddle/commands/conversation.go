// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/panel"
)

func (a *app) conversationCommand() *cli.Command {
	return &cli.Command{
		Name:    "conversation",
		Summary: "Direct messages with another member",
		Subcommands: []*cli.Command{
			a.conversationOpenCommand(),
			a.conversationShowCommand(),
		},
	}
}

func (a *app) conversationOpenCommand() *cli.Command {
	var params streamParams
	return &cli.Command{
		Name:    "open",
		Summary: "Start or resume a conversation with a member",
		Usage:   "huddle conversation open WORKSPACE MEMBER [--older N] [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE", "MEMBER"); err != nil {
				return err
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			memberID, err := parseMember(args[1])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params.connectionParams, "conversation/open")
			if err != nil {
				return err
			}
			defer conn.Close()

			view, err := panel.OpenConversation(ctx, conn.env, workspaceID, memberID)
			if err != nil {
				return cli.Classify(err)
			}
			defer view.Close()
			fmt.Fprintf(a.io.Out, "conversation: %s\n", view.ID())
			return a.printConversation(ctx, conn, view, params.Older)
		},
	}
}

func (a *app) conversationShowCommand() *cli.Command {
	var params streamParams
	return &cli.Command{
		Name:    "show",
		Summary: "Print a conversation's recent messages",
		Usage:   "huddle conversation show CONVERSATION [--older N] [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "CONVERSATION"); err != nil {
				return err
			}
			conversationID, err := parseConversation(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params.connectionParams, "conversation/show")
			if err != nil {
				return err
			}
			defer conn.Close()

			view, _, err := conn.openConversation(ctx, conversationID)
			if err != nil {
				return err
			}
			defer view.Close()
			return a.printConversation(ctx, conn, view, params.Older)
		},
	}
}

func (a *app) printConversation(ctx context.Context, conn *connection, view *panel.ConversationView, older int) error {
	state, err := conn.loadStream(ctx, view.Wait, view.Feed(), older)
	if err != nil {
		return err
	}
	if state.Status == live.StatusNotFound {
		return cli.NotFound("conversation %s not found", view.ID())
	}
	printStream(a.io.Out, "@ "+state.Name, state, conn.messageContext(state.Viewer))
	return nil
}
