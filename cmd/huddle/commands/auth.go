// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/config"
	"github.com/huddle-chat/huddle/lib/schema"
)

type registerParams struct {
	connectionParams
	Name         string `flag:"name" desc:"display name" required:"true"`
	Email        string `flag:"email" desc:"email address" required:"true"`
	PasswordFile string `flag:"password-file" desc:"read the password from this file, or '-' for stdin"`
}

func (a *app) registerCommand() *cli.Command {
	var params registerParams
	return &cli.Command{
		Name:    "register",
		Summary: "Create an account and sign in",
		Description: `Create an account on the configured backend and save the session.

The password is read from --password-file, prompted for on a terminal,
or read as one line of standard input.`,
		Usage:  "huddle register --name NAME --email EMAIL [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{Description: "Register interactively", Command: "huddle register --name Ada --email ada@example.com"},
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args); err != nil {
				return err
			}
			return a.authenticate(ctx, params.connectionParams, "register",
				func(ctx context.Context, accounts accounts) (*schema.User, string, error) {
					password, err := a.readPassword(params.PasswordFile)
					if err != nil {
						return nil, "", err
					}
					defer password.Close()
					return accounts.register(ctx, params.Name, params.Email, password)
				})
		},
	}
}

type loginParams struct {
	connectionParams
	Email        string `flag:"email" desc:"email address" required:"true"`
	PasswordFile string `flag:"password-file" desc:"read the password from this file, or '-' for stdin"`
}

func (a *app) loginCommand() *cli.Command {
	var params loginParams
	return &cli.Command{
		Name:    "login",
		Summary: "Sign in and save the session",
		Usage:   "huddle login --email EMAIL [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args); err != nil {
				return err
			}
			return a.authenticate(ctx, params.connectionParams, "login",
				func(ctx context.Context, accounts accounts) (*schema.User, string, error) {
					password, err := a.readPassword(params.PasswordFile)
					if err != nil {
						return nil, "", err
					}
					defer password.Close()
					return accounts.login(ctx, params.Email, password)
				})
		},
	}
}

// authenticate runs issue against the configured backend and saves the
// resulting session.
func (a *app) authenticate(ctx context.Context, params connectionParams, command string, issue func(context.Context, accounts) (*schema.User, string, error)) error {
	cfg, logger, err := a.settings(params, command)
	if err != nil {
		return err
	}
	if params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}
	accounts, err := openAccounts(cfg, logger)
	if err != nil {
		return err
	}
	defer accounts.close()

	user, token, err := issue(ctx, accounts)
	if err != nil {
		return cli.Classify(err)
	}
	if err := config.EnsureDir(cfg.Client.SessionFile); err != nil {
		return cli.Internal("%w", err)
	}
	session := &cli.Session{
		Backend:   accounts.location(),
		Token:     token,
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := cli.SaveSession(session, cfg.Client.SessionFile); err != nil {
		return cli.Internal("%w", err)
	}
	logger.Info("session saved", "user_id", user.ID, "backend", session.Backend)
	fmt.Fprintf(a.io.Out, "Signed in as %s <%s> (%s)\n", user.Name, user.Email, user.ID)
	return nil
}

func (a *app) logoutCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "logout",
		Summary: "Revoke the saved session",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args); err != nil {
				return err
			}
			cfg, logger, err := a.settings(params, "logout")
			if err != nil {
				return err
			}
			session, err := cli.LoadSession(cfg.Client.SessionFile)
			if err != nil {
				return err
			}
			accounts, err := openAccounts(cfg, logger)
			if err != nil {
				return err
			}
			defer accounts.close()
			if session.Backend == accounts.location() {
				if err := accounts.logout(ctx, session.Token); err != nil {
					logger.Warn("revoking token failed; removing the session anyway", "error", err)
				}
			}
			if err := cli.RemoveSession(cfg.Client.SessionFile); err != nil {
				return cli.Internal("%w", err)
			}
			fmt.Fprintln(a.io.Out, "Signed out.")
			return nil
		},
	}
}

type whoamiParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *app) whoamiCommand() *cli.Command {
	var params whoamiParams
	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the signed-in user",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args); err != nil {
				return err
			}
			_, conn, err := a.connect(ctx, params.connectionParams, "whoami")
			if err != nil {
				return err
			}
			defer conn.Close()
			if done, err := params.EmitJSON(a.io.Out, conn.user); done {
				return err
			}
			fmt.Fprintf(a.io.Out, "%s <%s>\n", conn.user.Name, conn.user.Email)
			fmt.Fprintf(a.io.Out, "user:    %s\n", conn.user.ID)
			fmt.Fprintf(a.io.Out, "backend: %s\n", conn.accounts.location())
			return nil
		},
	}
}
