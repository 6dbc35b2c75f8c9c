// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "huddle",
		Subcommands: []*Command{
			{
				Name: "member",
				Subcommands: []*Command{
					{
						Name: "show",
						Run: func(_ context.Context, args []string) error {
							called = "member show"
							receivedArgs = args
							return nil
						},
					},
				},
			},
			{
				Name: "whoami",
				Run: func(context.Context, []string) error {
					called = "whoami"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"member", "show", "mem_1"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "member show" {
		t.Errorf("dispatched to %q, want %q", called, "member show")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "mem_1" {
		t.Errorf("args = %v, want [mem_1]", receivedArgs)
	}
}

func TestCommand_Execute_Params(t *testing.T) {
	type params struct {
		JSONOutput
		Workspace string `flag:"workspace,w" desc:"workspace ID" required:"true"`
		Limit     int    `flag:"limit" desc:"page size" default:"20"`
	}
	var p params
	var ran bool
	command := &Command{
		Name:   "list",
		Params: func() any { return &p },
		Run: func(context.Context, []string) error {
			ran = true
			return nil
		},
	}

	t.Run("parsed", func(t *testing.T) {
		if err := command.Execute(context.Background(), []string{"-w", "ws_1", "--json"}); err != nil {
			t.Fatalf("Execute() error: %v", err)
		}
		if !ran || p.Workspace != "ws_1" || !p.OutputJSON || p.Limit != 20 {
			t.Errorf("params = %+v, ran = %v", p, ran)
		}
	})

	t.Run("missing required", func(t *testing.T) {
		ran = false
		err := command.Execute(context.Background(), []string{"--limit", "5"})
		if err == nil || !strings.Contains(err.Error(), "--workspace") {
			t.Fatalf("Execute() error = %v, want missing --workspace", err)
		}
		if ran {
			t.Error("Run was called despite the missing flag")
		}
		if ExitCode(err) != 2 {
			t.Errorf("ExitCode = %d, want 2", ExitCode(err))
		}
	})
}

func TestCommand_Execute_Suggestions(t *testing.T) {
	root := &Command{
		Name: "huddle",
		Subcommands: []*Command{
			{
				Name: "workspace",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("workspace", pflag.ContinueOnError)
					flagSet.String("config", "", "config file")
					return flagSet
				},
				Run: func(context.Context, []string) error { return nil },
			},
		},
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"command", []string{"worksapce"}, `did you mean "workspace"`},
		{"flag", []string{"workspace", "--confgi", "x"}, "did you mean --config"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := root.Execute(context.Background(), test.args)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("Execute(%v) error = %v, want it to contain %q", test.args, err, test.want)
			}
		})
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var out bytes.Buffer
	root := &Command{
		Name:    "huddle",
		Summary: "Chat from the terminal",
		Output:  &out,
		Subcommands: []*Command{
			{Name: "join", Summary: "Join a workspace with its code"},
			{Name: "whoami", Summary: "Show the logged-in user"},
		},
		Examples: []Example{{Description: "Join Acme", Command: "huddle join ws_1 ab12cd"}},
	}

	if err := root.Execute(context.Background(), []string{"--help"}); err != nil {
		t.Fatalf("Execute(--help) error: %v", err)
	}
	help := out.String()
	for _, want := range []string{"Chat from the terminal", "Usage:\n  huddle <command> [flags]", "join", "Join a workspace with its code", "# Join Acme", "huddle join ws_1 ab12cd"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var out bytes.Buffer
	root := &Command{
		Name:        "huddle",
		Output:      &out,
		Subcommands: []*Command{{Name: "whoami", Run: func(context.Context, []string) error { return nil }}},
	}
	err := root.Execute(context.Background(), nil)
	var commandError *CommandError
	if !errors.As(err, &commandError) || commandError.Category != CategoryValidation {
		t.Fatalf("Execute() error = %v, want a validation error", err)
	}
	if !strings.Contains(out.String(), "whoami") {
		t.Errorf("help was not printed: %q", out.String())
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"join", "", 4},
		{"member", "member", 0},
		{"membr", "member", 1},
		{"invite", "inivte", 2},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
