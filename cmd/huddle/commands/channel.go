// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/confirm"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/route"
)

func (a *app) channelCommand() *cli.Command {
	return &cli.Command{
		Name:    "channel",
		Summary: "Create, list, and read channels",
		Subcommands: []*cli.Command{
			a.channelCreateCommand(),
			a.channelListCommand(),
			a.channelShowCommand(),
			a.channelRenameCommand(),
			a.channelDeleteCommand(),
		},
	}
}

func (a *app) channelCreateCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "create",
		Summary: "Create a channel (admins only)",
		Description: `Create a channel. Names are lowercased and spaces become dashes, so
"Release Notes" becomes release-notes.`,
		Usage:  "huddle channel create WORKSPACE NAME [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE", "NAME"); err != nil {
				return err
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params, "channel/create")
			if err != nil {
				return err
			}
			defer conn.Close()

			channelID, err := conn.backend.CreateChannel(ctx, workspaceID, args[1])
			if err != nil {
				return cli.Classify(err)
			}
			channel, err := conn.backend.GetChannel(ctx, channelID)
			if err != nil {
				return cli.Classify(err)
			}
			fmt.Fprintf(a.io.Out, "Created channel # %s (%s)\n", channel.Name, channelID)
			conn.history.Push(route.Channel(workspaceID, channelID))
			conn.printRoute()
			return nil
		},
	}
}

type channelListParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *app) channelListCommand() *cli.Command {
	var params channelListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List a workspace's channels",
		Usage:   "huddle channel list WORKSPACE [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE"); err != nil {
				return err
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params.connectionParams, "channel/list")
			if err != nil {
				return err
			}
			defer conn.Close()

			channels, err := conn.backend.ListChannels(ctx, workspaceID)
			if err != nil {
				return cli.Classify(err)
			}
			if done, err := params.EmitJSON(a.io.Out, channels); done {
				return err
			}
			tw := tabwriter.NewWriter(a.io.Out, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, channel := range channels {
				fmt.Fprintf(tw, "%s\t# %s\n", channel.ID, channel.Name)
			}
			return tw.Flush()
		},
	}
}

type streamParams struct {
	connectionParams
	Older int `flag:"older" desc:"load this many extra pages of older messages"`
}

func (a *app) channelShowCommand() *cli.Command {
	var params streamParams
	return &cli.Command{
		Name:    "show",
		Summary: "Print a channel's recent messages",
		Usage:   "huddle channel show WORKSPACE CHANNEL [--older N] [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE", "CHANNEL"); err != nil {
				return err
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			channelID, err := parseChannel(args[1])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params.connectionParams, "channel/show")
			if err != nil {
				return err
			}
			defer conn.Close()

			view := panel.NewChannelView(conn.env, workspaceID, channelID)
			defer view.Close()
			state, err := conn.loadStream(ctx, view.Wait, view.Feed(), params.Older)
			if err != nil {
				return err
			}
			if state.Status == live.StatusNotFound {
				return cli.NotFound("channel %s not found", channelID)
			}
			conn.history.Push(route.Channel(workspaceID, channelID))
			printStream(a.io.Out, state.Name, state, conn.messageContext(state.Viewer))
			return nil
		},
	}
}

// loadStream waits for the first page and then for older additional
// pages, stopping early when history runs out.
func (c *connection) loadStream(ctx context.Context, wait func(context.Context) (panel.StreamView, error), feed *live.Feed, older int) (panel.StreamView, error) {
	view, err := wait(ctx)
	if err != nil {
		return view, c.feedError(feed, err)
	}
	if view.Status != live.StatusReady {
		return view, nil
	}
	if err := c.loadOlder(ctx, feed, older); err != nil {
		return view, err
	}
	return wait(ctx)
}

// loadOlder requests up to pages more pages of history.
func (c *connection) loadOlder(ctx context.Context, feed *live.Feed, pages int) error {
	for range pages {
		if err := feed.LoadMore(c.env.PageSize); err != nil {
			if errors.Is(err, live.ErrCannotLoadMore) {
				return nil
			}
			return cli.Classify(err)
		}
		if err := feed.WaitLoaded(ctx); err != nil {
			return c.feedError(feed, err)
		}
	}
	return nil
}

// feedError prefers the feed's last fetch error over a bare deadline.
func (c *connection) feedError(feed *live.Feed, err error) error {
	if fetchErr := feed.Err(); fetchErr != nil {
		return cli.Classify(fetchErr)
	}
	return cli.Classify(err)
}

func (a *app) channelRenameCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "rename",
		Summary: "Rename a channel (admins only)",
		Usage:   "huddle channel rename CHANNEL NAME [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "CHANNEL", "NAME"); err != nil {
				return err
			}
			channelID, err := parseChannel(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params, "channel/rename")
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.backend.UpdateChannel(ctx, channelID, args[1]); err != nil {
				return cli.Classify(err)
			}
			channel, err := conn.backend.GetChannel(ctx, channelID)
			if err != nil {
				return cli.Classify(err)
			}
			fmt.Fprintf(a.io.Out, "Channel renamed to # %s\n", channel.Name)
			return nil
		},
	}
}

func (a *app) channelDeleteCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a channel and its messages (admins only)",
		Usage:   "huddle channel delete CHANNEL [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "CHANNEL"); err != nil {
				return err
			}
			channelID, err := parseChannel(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params, "channel/delete")
			if err != nil {
				return err
			}
			defer conn.Close()

			channel, err := conn.backend.GetChannel(ctx, channelID)
			if err != nil {
				return cli.Classify(err)
			}
			accepted, err := conn.env.Confirmer.RequestConfirmation(ctx, confirm.Prompt{
				Title: "Delete channel",
				Body:  fmt.Sprintf("This permanently deletes # %s and all of its messages.", channel.Name),
			})
			if err != nil {
				return conn.finish(err)
			}
			if !accepted {
				return conn.finish(panel.ErrDeclined)
			}
			if _, err := conn.backend.RemoveChannel(ctx, channelID); err != nil {
				return cli.Classify(err)
			}
			fmt.Fprintf(a.io.Out, "Deleted channel # %s\n", channel.Name)
			conn.history.Replace(route.Workspace(channel.WorkspaceID))
			conn.printRoute()
			return nil
		},
	}
}
