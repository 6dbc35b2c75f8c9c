// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/ref"
)

func (a *app) threadCommand() *cli.Command {
	return &cli.Command{
		Name:    "thread",
		Summary: "Read and reply to message threads",
		Subcommands: []*cli.Command{
			a.threadShowCommand(),
			a.threadReplyCommand(),
		},
	}
}

func (a *app) threadShowCommand() *cli.Command {
	var params streamParams
	return &cli.Command{
		Name:    "show",
		Summary: "Print a message and its replies",
		Usage:   "huddle thread show MESSAGE [--older N] [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "MESSAGE"); err != nil {
				return err
			}
			messageID, err := parseMessage(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params.connectionParams, "thread/show")
			if err != nil {
				return err
			}
			defer conn.Close()

			message, err := conn.backend.GetMessage(ctx, messageID)
			if err != nil {
				return cli.Classify(err)
			}
			thread := panel.NewThreadPanel(conn.env, message.WorkspaceID, messageID, nil)
			defer thread.Close()

			view, err := thread.Wait(ctx)
			if err != nil {
				return cli.Classify(err)
			}
			if view.Status == live.StatusNotFound {
				fmt.Fprintln(a.io.Out, view.NotFound)
				return &cli.ExitError{Code: 3}
			}

			feed := thread.Feed()
			if err := feed.WaitLoaded(ctx); err != nil {
				return conn.feedError(feed, err)
			}
			if err := conn.loadOlder(ctx, feed, params.Older); err != nil {
				return err
			}

			var viewer ref.MemberID
			if self, err := conn.backend.GetCurrentMember(ctx, message.WorkspaceID); err == nil && self != nil {
				viewer = self.ID
			}
			options := conn.messageContext(viewer)
			root, ok := thread.Render(options)
			if !ok {
				return cli.NotFound("message %s not found", messageID)
			}
			view = thread.View()
			fmt.Fprintln(a.io.Out, view.Title)
			printMessage(a.io.Out, root)
			fmt.Fprintln(a.io.Out)
			if len(view.Replies) == 0 {
				fmt.Fprintln(a.io.Out, "No replies yet.")
				return nil
			}
			options.HideThreadButton = true
			printMessages(a.io.Out, view.Replies, options)
			return nil
		},
	}
}

func (a *app) threadReplyCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "reply",
		Summary: "Reply to a message in its thread",
		Usage:   "huddle thread reply MESSAGE BODY [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "MESSAGE", "BODY..."); err != nil {
				return err
			}
			messageID, err := parseMessage(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params, "thread/reply")
			if err != nil {
				return err
			}
			defer conn.Close()
			return a.reply(ctx, conn, messageID, strings.Join(args[1:], " "), "")
		},
	}
}

// reply posts a thread reply directly. The thread panel's composer does
// not submit replies.
func (a *app) reply(ctx context.Context, conn *connection, parent ref.MessageID, body, image string) error {
	replyID, err := conn.backend.CreateMessage(ctx, backend.CreateMessageRequest{
		ParentMessageID: parent,
		Body:            body,
		Image:           image,
	})
	if err != nil {
		return cli.Classify(err)
	}
	fmt.Fprintf(a.io.Out, "Replied: %s\n", replyID)
	return nil
}
