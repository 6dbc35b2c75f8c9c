// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/ref"
)

func (a *app) inviteCommand() *cli.Command {
	return &cli.Command{
		Name:    "invite",
		Summary: "Show, share, or replace a workspace's join code",
		Subcommands: []*cli.Command{
			a.inviteShowCommand(),
			a.inviteLinkCommand(),
			a.inviteRegenerateCommand(),
		},
	}
}

// openInvite resolves the invite panel for the workspace in args[0].
func (a *app) openInvite(ctx context.Context, params connectionParams, command string, args []string) (context.Context, *connection, *panel.InvitePanel, error) {
	if err := requireArgs(args, "WORKSPACE"); err != nil {
		return nil, nil, nil, err
	}
	workspaceID, err := parseWorkspace(args[0])
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, conn, err := a.connect(ctx, params, command)
	if err != nil {
		return nil, nil, nil, err
	}
	invite := panel.NewInvitePanel(conn.env, workspaceID)
	workspace, status, err := await(ctx, invite.Resource())
	if err == nil && (status == live.StatusNotFound || workspace == nil) {
		err = cli.NotFound("workspace %s not found", workspaceID)
	}
	if err != nil {
		invite.Close()
		conn.Close()
		return nil, nil, nil, err
	}
	return ctx, conn, invite, nil
}

type inviteShowParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *app) inviteShowCommand() *cli.Command {
	var params inviteShowParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show the join code and invite link",
		Usage:   "huddle invite show WORKSPACE [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			_, conn, invite, err := a.openInvite(ctx, params.connectionParams, "invite/show", args)
			if err != nil {
				return err
			}
			defer conn.Close()
			defer invite.Close()

			view := invite.View()
			if done, err := params.EmitJSON(a.io.Out, view); done {
				return err
			}
			fmt.Fprintln(a.io.Out, view.Title)
			fmt.Fprintf(a.io.Out, "code: %s\n", view.JoinCode)
			if view.Link != "" {
				fmt.Fprintf(a.io.Out, "link: %s\n", view.Link)
			}
			return nil
		},
	}
}

type inviteLinkParams struct {
	connectionParams
	Copy bool `flag:"copy" desc:"also copy the link to the clipboard"`
}

func (a *app) inviteLinkCommand() *cli.Command {
	var params inviteLinkParams
	return &cli.Command{
		Name:    "link",
		Summary: "Print the invite link, optionally copying it",
		Usage:   "huddle invite link WORKSPACE [--copy] [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			ctx, conn, invite, err := a.openInvite(ctx, params.connectionParams, "invite/link", args)
			if err != nil {
				return err
			}
			defer conn.Close()
			defer invite.Close()

			if !params.Copy {
				link := invite.View().Link
				if link == "" {
					return cli.Validation("client.origin %q cannot form an invite link", conn.config.Client.Origin)
				}
				fmt.Fprintln(a.io.Out, link)
				return nil
			}
			link, err := invite.CopyLink(ctx)
			if link != "" {
				fmt.Fprintln(a.io.Out, link)
			}
			if err != nil {
				return cli.Transient("%w", err)
			}
			return nil
		},
	}
}

func (a *app) inviteRegenerateCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "regenerate",
		Summary: "Replace the join code (admins only)",
		Description: `Replace the workspace's join code. The old code stops working at
once. Asks for confirmation unless --yes is given.`,
		Usage:  "huddle invite regenerate WORKSPACE [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			ctx, conn, invite, err := a.openInvite(ctx, params, "invite/regenerate", args)
			if err != nil {
				return err
			}
			defer conn.Close()
			defer invite.Close()

			previous := invite.View().JoinCode
			if err := invite.Regenerate(ctx); err != nil {
				return conn.finish(err)
			}
			code, err := conn.joinCode(ctx, invite.ID(), previous)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.io.Out, "code: %s\n", code)
			return nil
		},
	}
}

// joinCode reads the join code after a regeneration.
func (c *connection) joinCode(ctx context.Context, workspaceID ref.WorkspaceID, previous string) (string, error) {
	workspace, err := c.backend.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return "", cli.Classify(err)
	}
	if workspace.JoinCode == previous {
		c.logger.Warn("join code unchanged after regeneration", "workspace_id", workspaceID)
	}
	return workspace.JoinCode, nil
}
