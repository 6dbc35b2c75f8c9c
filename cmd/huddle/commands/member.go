// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/route"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/tui"
)

const memberNotFound = "Member not found."

func (a *app) memberCommand() *cli.Command {
	return &cli.Command{
		Name:    "member",
		Summary: "List, inspect, and manage workspace members",
		Subcommands: []*cli.Command{
			a.memberListCommand(),
			a.memberShowCommand(),
			a.memberRoleCommand(),
			a.memberRemoveCommand(),
			a.memberLeaveCommand(),
			a.memberFindCommand(),
		},
	}
}

type memberListParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *app) memberListCommand() *cli.Command {
	var params memberListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List a workspace's members",
		Usage:   "huddle member list WORKSPACE [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE"); err != nil {
				return err
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params.connectionParams, "member/list")
			if err != nil {
				return err
			}
			defer conn.Close()

			members, err := conn.backend.ListMembers(ctx, workspaceID)
			if err != nil {
				return cli.Classify(err)
			}
			if done, err := params.EmitJSON(a.io.Out, members); done {
				return err
			}
			a.printMembers(conn, members)
			return nil
		},
	}
}

func (a *app) printMembers(conn *connection, members []schema.Member) {
	tw := tabwriter.NewWriter(a.io.Out, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
	for _, member := range members {
		name := member.User.Name
		if member.UserID == conn.user.ID {
			name += " (you)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", member.ID, name, member.User.Email, member.Role)
	}
	tw.Flush()
}

// openProfile resolves the profile panel for memberID. A missing
// member prints the not-found state and fails with NotFound.
func (a *app) openProfile(ctx context.Context, conn *connection, workspaceID ref.WorkspaceID, memberID ref.MemberID) (*panel.ProfilePanel, panel.ProfileView, error) {
	conn.history.Push(route.Member(workspaceID, memberID))
	profile := panel.NewProfilePanel(conn.env, workspaceID, memberID, panel.AllCapabilities, nil)
	view, err := profile.Wait(ctx)
	if err != nil {
		profile.Close()
		return nil, view, cli.Classify(err)
	}
	if view.Status == live.StatusNotFound {
		profile.Close()
		fmt.Fprintln(a.io.Out, memberNotFound)
		return nil, view, &cli.ExitError{Code: 3}
	}
	return profile, view, nil
}

type memberShowParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *app) memberShowCommand() *cli.Command {
	var params memberShowParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show a member's profile and what you may do to them",
		Usage:   "huddle member show WORKSPACE MEMBER [flags]",
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
			ctx, conn, err := a.connect(ctx, params.connectionParams, "member/show")
			if err != nil {
				return err
			}
			defer conn.Close()

			profile, view, err := a.openProfile(ctx, conn, workspaceID, memberID)
			if err != nil {
				return err
			}
			defer profile.Close()

			if done, err := params.EmitJSON(a.io.Out, view); done {
				return err
			}
			fmt.Fprintf(a.io.Out, "[%s] %s\n", view.Initial, view.Name)
			fmt.Fprintf(a.io.Out, "email:   %s\n", view.Email)
			fmt.Fprintf(a.io.Out, "role:    %s\n", view.Role)
			fmt.Fprintf(a.io.Out, "actions: %s\n", view.Capabilities)
			return nil
		},
	}
}

func (a *app) memberRoleCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "role",
		Summary: "Change a member's role (admins only)",
		Usage:   "huddle member role WORKSPACE MEMBER admin|member [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE", "MEMBER", "ROLE"); err != nil {
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
			role, err := schema.ParseRole(args[2])
			if err != nil {
				return cli.Validation("%w", err)
			}
			ctx, conn, err := a.connect(ctx, params, "member/role")
			if err != nil {
				return err
			}
			defer conn.Close()

			profile, _, err := a.openProfile(ctx, conn, workspaceID, memberID)
			if err != nil {
				return err
			}
			defer profile.Close()
			if err := profile.UpdateRole(ctx, role); err != nil {
				return conn.finish(err)
			}
			return nil
		},
	}
}

func (a *app) memberRemoveCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "remove",
		Summary: "Remove a member from the workspace (admins only)",
		Description: `Remove a member along with their messages, reactions, and direct
conversations. Admins cannot be removed. Asks for confirmation unless
--yes is given.`,
		Usage:  "huddle member remove WORKSPACE MEMBER [flags]",
		Params: func() any { return &params },
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
			ctx, conn, err := a.connect(ctx, params, "member/remove")
			if err != nil {
				return err
			}
			defer conn.Close()

			profile, _, err := a.openProfile(ctx, conn, workspaceID, memberID)
			if err != nil {
				return err
			}
			defer profile.Close()
			if err := profile.Remove(ctx); err != nil {
				return conn.finish(err)
			}
			return nil
		},
	}
}

func (a *app) memberLeaveCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "leave",
		Summary: "Leave a workspace",
		Description: `Leave a workspace. Admins cannot leave; hand the admin role to
someone else first. Asks for confirmation unless --yes is given.`,
		Usage:  "huddle member leave WORKSPACE [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "WORKSPACE"); err != nil {
				return err
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			ctx, conn, err := a.connect(ctx, params, "member/leave")
			if err != nil {
				return err
			}
			defer conn.Close()

			self, err := conn.backend.GetCurrentMember(ctx, workspaceID)
			if err != nil {
				return cli.Classify(err)
			}
			if self == nil {
				return cli.NotFound("you are not a member of %s", workspaceID)
			}
			profile, view, err := a.openProfile(ctx, conn, workspaceID, self.ID)
			if err != nil {
				return err
			}
			defer profile.Close()
			if !view.Capabilities.Has(panel.Leave) {
				return cli.Forbidden("admins cannot leave a workspace").
					WithHint("make another member an admin and ask them to change your role first")
			}
			if err := profile.Leave(ctx); err != nil {
				return conn.finish(err)
			}
			conn.printRoute()
			return nil
		},
	}
}

type memberFindParams struct {
	connectionParams
	cli.JSONOutput
	Limit int `flag:"limit" desc:"show at most this many matches" default:"10"`
}

func (a *app) memberFindCommand() *cli.Command {
	var params memberFindParams
	return &cli.Command{
		Name:    "find",
		Summary: "Fuzzy-search members by name",
		Usage:   "huddle member find WORKSPACE QUERY [flags]",
		Params:  func() any { return &params },
		Examples: []cli.Example{
			{Description: "Find Grace Hopper", Command: "huddle member find ws_... grc"},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) < 2 {
				return requireArgs(args, "WORKSPACE", "QUERY")
			}
			workspaceID, err := parseWorkspace(args[0])
			if err != nil {
				return err
			}
			query := strings.Join(args[1:], " ")
			ctx, conn, err := a.connect(ctx, params.connectionParams, "member/find")
			if err != nil {
				return err
			}
			defer conn.Close()

			members, err := conn.backend.ListMembers(ctx, workspaceID)
			if err != nil {
				return cli.Classify(err)
			}
			ranked := tui.FuzzyFilter(members, func(member schema.Member) string { return member.User.Name }, query)
			matches := make([]schema.Member, 0, len(ranked))
			for _, match := range ranked {
				if params.Limit > 0 && len(matches) == params.Limit {
					break
				}
				matches = append(matches, match.Item)
			}
			if done, err := params.EmitJSON(a.io.Out, matches); done {
				return err
			}
			if len(matches) == 0 {
				fmt.Fprintf(a.io.Out, "No members match %q.\n", query)
				return &cli.ExitError{Code: 3}
			}
			a.printMembers(conn, matches)
			return nil
		},
	}
}
