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
	"github.com/huddle-chat/huddle/lib/schema"
)

func (a *app) workspaceCommand() *cli.Command {
	return &cli.Command{
		Name:    "workspace",
		Summary: "Create, list, and manage workspaces",
		Subcommands: []*cli.Command{
			a.workspaceCreateCommand(),
			a.workspaceListCommand(),
			a.workspaceShowCommand(),
			a.workspaceRenameCommand(),
			a.workspaceDeleteCommand(),
		},
	}
}

func (a *app) workspaceCreateCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "create",
		Summary: "Create a workspace with a general channel",
		Usage:   "huddle workspace create NAME [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "NAME"); err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params, "workspace/create")
			if err != nil {
				return err
			}
			defer conn.Close()

			id, err := conn.backend.CreateWorkspace(ctx, args[0])
			if err != nil {
				return cli.Classify(err)
			}
			conn.logger.Info("workspace created", "workspace_id", id)
			fmt.Fprintf(a.io.Out, "Created workspace %s (%s)\n", args[0], id)
			conn.history.Push(route.Workspace(id))
			conn.printRoute()
			return nil
		},
	}
}

type workspaceListParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *app) workspaceListCommand() *cli.Command {
	var params workspaceListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List the workspaces you belong to",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args); err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params.connectionParams, "workspace/list")
			if err != nil {
				return err
			}
			defer conn.Close()

			workspaces, err := conn.backend.ListWorkspaces(ctx)
			if err != nil {
				return cli.Classify(err)
			}
			if done, err := params.EmitJSON(a.io.Out, workspaces); done {
				return err
			}
			if len(workspaces) == 0 {
				fmt.Fprintln(a.io.Out, "No workspaces yet. Create one with 'huddle workspace create NAME'.")
				return nil
			}
			tw := tabwriter.NewWriter(a.io.Out, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tOWNER")
			for _, workspace := range workspaces {
				owner := ""
				if workspace.UserID == conn.user.ID {
					owner = "you"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", workspace.ID, workspace.Name, owner)
			}
			return tw.Flush()
		},
	}
}

type workspaceShowParams struct {
	connectionParams
	cli.JSONOutput
}

type workspaceSummary struct {
	Workspace schema.Workspace `json:"workspace"`
	Role      schema.Role      `json:"role"`
	Channels  []schema.Channel `json:"channels"`
	Members   int              `json:"members"`
}

func (a *app) workspaceShowCommand() *cli.Command {
	var params workspaceShowParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show a workspace, its channels, and your role",
		Usage:   "huddle workspace show WORKSPACE [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE"); err != nil {
				return err
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params.connectionParams, "workspace/show")
			if err != nil {
				return err
			}
			defer conn.Close()

			workspace, err := conn.backend.GetWorkspace(ctx, workspaceID)
			if err != nil {
				return cli.Classify(err)
			}
			if workspace == nil {
				return cli.NotFound("workspace %s not found", workspaceID)
			}
			self, err := conn.backend.GetCurrentMember(ctx, workspaceID)
			if err != nil {
				return cli.Classify(err)
			}
			channels, err := conn.backend.ListChannels(ctx, workspaceID)
			if err != nil {
				return cli.Classify(err)
			}
			members, err := conn.backend.ListMembers(ctx, workspaceID)
			if err != nil {
				return cli.Classify(err)
			}

			summary := workspaceSummary{Workspace: *workspace, Channels: channels, Members: len(members)}
			if self != nil {
				summary.Role = self.Role
			}
			if done, err := params.EmitJSON(a.io.Out, summary); done {
				return err
			}
			fmt.Fprintf(a.io.Out, "%s (%s)\n", workspace.Name, workspace.ID)
			fmt.Fprintf(a.io.Out, "role:    %s\n", summary.Role)
			fmt.Fprintf(a.io.Out, "members: %d\n", summary.Members)
			if workspace.JoinCode != "" {
				fmt.Fprintf(a.io.Out, "code:    %s\n", workspace.JoinCode)
			}
			fmt.Fprintln(a.io.Out, "channels:")
			for _, channel := range channels {
				fmt.Fprintf(a.io.Out, "  # %s (%s)\n", channel.Name, channel.ID)
			}
			return nil
		},
	}
}

func (a *app) workspaceRenameCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "rename",
		Summary: "Rename a workspace (admins only)",
		Usage:   "huddle workspace rename WORKSPACE NAME [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE", "NAME"); err != nil {
				return err
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params, "workspace/rename")
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.backend.UpdateWorkspace(ctx, workspaceID, args[1]); err != nil {
				return cli.Classify(err)
			}
			fmt.Fprintf(a.io.Out, "Workspace renamed to %s\n", args[1])
			return nil
		},
	}
}

func (a *app) workspaceDeleteCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:        "delete",
		Summary:     "Delete a workspace and everything in it (admins only)",
		Description: "Delete a workspace with all of its channels, members, conversations,\nand messages. Asks for confirmation unless --yes is given.",
		Usage:       "huddle workspace delete WORKSPACE [flags]",
		Params:      func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE"); err != nil {
				return err
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params, "workspace/delete")
			if err != nil {
				return err
			}
			defer conn.Close()

			workspace, err := conn.backend.GetWorkspace(ctx, workspaceID)
			if err != nil {
				return cli.Classify(err)
			}
			accepted, err := conn.env.Confirmer.RequestConfirmation(ctx, confirm.Prompt{
				Title: "Delete workspace",
				Body:  fmt.Sprintf("This permanently deletes %s and all of its messages.", workspace.Name),
			})
			if err != nil {
				return conn.finish(err)
			}
			if !accepted {
				return conn.finish(panel.ErrDeclined)
			}
			if _, err := conn.backend.RemoveWorkspace(ctx, workspaceID); err != nil {
				return cli.Classify(err)
			}
			fmt.Fprintf(a.io.Out, "Deleted workspace %s\n", workspace.Name)
			conn.history.Replace(route.Root())
			conn.printRoute()
			return nil
		},
	}
}

func (a *app) joinCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "join",
		Summary: "Join a workspace with its code",
		Description: `Join a workspace with the 6-character code an admin shared. The
workspace may be given as an ID or as the invite link. Codes are not
case sensitive. If you are already a member, the workspace opens
without using the code.`,
		Usage:  "huddle join WORKSPACE CODE [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{Description: "Join from an invite link", Command: "huddle join http://localhost:8750/join/ws_... AB12CD"},
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE", "CODE"); err != nil {
				return err
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params, "join")
			if err != nil {
				return err
			}
			defer conn.Close()

			conn.history.Push(route.Join(workspaceID))
			flow := panel.NewJoinFlow(conn.env, workspaceID)
			defer flow.Close()

			info, status, err := await(ctx, flow.Resource())
			if err != nil {
				return err
			}
			if status == live.StatusNotFound || info == nil {
				return cli.NotFound("workspace %s not found", workspaceID)
			}
			fmt.Fprintln(a.io.Out, flow.View().Title)

			if info.IsMember {
				if err := conn.waitRoute(ctx, route.KindWorkspace); err != nil {
					return err
				}
				fmt.Fprintf(a.io.Out, "Already a member of %s\n", info.Name)
				conn.printRoute()
				return nil
			}

			if _, err := flow.Submit(ctx, args[1]); err != nil {
				if errors.Is(err, panel.ErrInvalidCode) {
					return cli.Validation("%w", err)
				}
				return conn.finish(err)
			}
			conn.printRoute()
			return nil
		},
	}
}
