// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// huddle-viewer is the interactive terminal UI for one channel or
// direct conversation. It signs in with the session saved by
// "huddle login" and stays live through the backend's change feed.
//
// Background logging is routed to the viewer's notification line,
// since writing to stderr would corrupt the alt-screen display.
// --log-output additionally captures every record as JSON lines for
// post-mortem debugging.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/cmd/huddle/commands"
	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/chatui"
	"github.com/huddle-chat/huddle/lib/clipboard"
	"github.com/huddle-chat/huddle/lib/clock"
	"github.com/huddle-chat/huddle/lib/config"
	"github.com/huddle-chat/huddle/lib/notify"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/process"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/subscription"
	"github.com/huddle-chat/huddle/lib/version"
)

func main() {
	if err := run(); err != nil {
		if cli.Silent(err) {
			os.Exit(cli.ExitCode(err))
		}
		var commandErr *cli.CommandError
		if errors.As(err, &commandErr) {
			process.Report(os.Stderr, err)
			if commandErr.Hint != "" {
				fmt.Fprintf(os.Stderr, "hint: %s\n", commandErr.Hint)
			}
			os.Exit(commandErr.ExitCode())
		}
		process.Fatal(err)
	}
}

type options struct {
	config       string
	workspace    string
	channel      string
	member       string
	conversation string
	logOutput    string
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("huddle-viewer", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.config, "config", "c", "", "path to huddle.yaml (default: $HUDDLE_CONFIG, then built-in defaults)")
	flagSet.StringVar(&opts.workspace, "workspace", "", "workspace to open; its first channel is shown when no other target is given")
	flagSet.StringVar(&opts.channel, "channel", "", "channel to open")
	flagSet.StringVar(&opts.member, "member", "", "member to open a direct conversation with")
	flagSet.StringVar(&opts.conversation, "conversation", "", "direct conversation to open")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "write JSON log records to this file (in addition to the notification line)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("huddle-viewer")
		return nil
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return cli.Validation("%w", err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return cli.Validation("unexpected argument: %s", args[0])
	}
	targets := 0
	for _, value := range []string{opts.channel, opts.member, opts.conversation} {
		if value != "" {
			targets++
		}
	}
	if targets > 1 {
		return cli.Validation("give at most one of --channel, --member, or --conversation")
	}
	if targets == 0 && opts.workspace == "" {
		return cli.Validation("nothing to open").
			WithHint("pass --workspace, --channel, --member, or --conversation")
	}

	cfg, err := config.Resolve(opts.config)
	if err != nil {
		return cli.Validation("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Validation("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notes := notify.NewCenter(clock.Real(), 0)
	level, _ := cfg.Logging.SlogLevel()
	var handler slog.Handler = chatui.NewLogHandler(max(level, slog.LevelWarn), notes)
	if opts.logOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(opts.logOutput)
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", opts.logOutput, err)
		}
		defer closeFile()
		handler = fanoutHandler{handler, fileHandler}
	}
	logger := slog.New(handler)

	chat, user, closeBackend, err := commands.Dial(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()
	logger.Debug("viewer signed in", "user_id", user.ID)

	workspaceID, target, err := resolveTarget(ctx, chat, opts)
	if err != nil {
		return err
	}

	registry := subscription.New(subscription.Config{Watcher: chat, Logger: logger})
	registryDone := make(chan struct{})
	registryCtx, cancelRegistry := context.WithCancel(ctx)
	go func() {
		defer close(registryDone)
		if err := registry.Run(registryCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("live updates stopped", "error", err)
		}
	}()
	defer func() {
		cancelRegistry()
		<-registryDone
	}()

	model, err := chatui.New(chatui.Config{
		Env: panel.Env{
			Backend:   chat,
			Registry:  registry,
			Clipboard: clipboard.Fallback(clipboard.OSC52{Out: os.Stdout}, clipboard.System{}),
			Origin:    cfg.Client.Origin,
			PageSize:  cfg.Client.PageSize,
			Logger:    logger,
		},
		WorkspaceID: workspaceID,
		Target:      target,
		Notes:       notes,
		Profile:     termenv.NewOutput(os.Stdout).EnvColorProfile(),
	})
	if err != nil {
		return cli.Validation("%w", err)
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if model.Left() {
		fmt.Fprintln(os.Stdout, "You left the workspace.")
	}
	return nil
}

// resolveTarget turns the flags into the workspace and stream to open.
// The workspace is derived from the channel, member, or conversation
// when --workspace is not given.
func resolveTarget(ctx context.Context, chat backend.Backend, opts options) (ref.WorkspaceID, chatui.Target, error) {
	var workspaceID ref.WorkspaceID
	if opts.workspace != "" {
		id, err := ref.ParseWorkspaceID(opts.workspace)
		if err != nil {
			return workspaceID, chatui.Target{}, cli.Validation("--workspace: %w", err)
		}
		workspaceID = id
	}

	switch {
	case opts.channel != "":
		channelID, err := ref.ParseChannelID(opts.channel)
		if err != nil {
			return workspaceID, chatui.Target{}, cli.Validation("--channel: %w", err)
		}
		channel, err := chat.GetChannel(ctx, channelID)
		if err != nil {
			return workspaceID, chatui.Target{}, cli.Classify(err)
		}
		return channel.WorkspaceID, chatui.Target{ChannelID: channelID}, nil

	case opts.member != "":
		memberID, err := ref.ParseMemberID(opts.member)
		if err != nil {
			return workspaceID, chatui.Target{}, cli.Validation("--member: %w", err)
		}
		member, err := chat.GetMember(ctx, memberID)
		if err != nil {
			return workspaceID, chatui.Target{}, cli.Classify(err)
		}
		conversationID, err := chat.CreateOrGetConversation(ctx, member.WorkspaceID, memberID)
		if err != nil {
			return workspaceID, chatui.Target{}, cli.Classify(err)
		}
		return member.WorkspaceID, chatui.Target{ConversationID: conversationID, MemberID: memberID}, nil

	case opts.conversation != "":
		conversationID, err := ref.ParseConversationID(opts.conversation)
		if err != nil {
			return workspaceID, chatui.Target{}, cli.Validation("--conversation: %w", err)
		}
		conversation, err := chat.GetConversation(ctx, conversationID)
		if err != nil {
			return workspaceID, chatui.Target{}, cli.Classify(err)
		}
		self, err := chat.GetCurrentMember(ctx, conversation.WorkspaceID)
		if err != nil {
			return workspaceID, chatui.Target{}, cli.Classify(err)
		}
		if self == nil {
			return workspaceID, chatui.Target{}, cli.Forbidden("you are not a member of %s", conversation.WorkspaceID)
		}
		return conversation.WorkspaceID, chatui.Target{ConversationID: conversationID, MemberID: conversation.Other(self.ID)}, nil
	}

	channels, err := chat.ListChannels(ctx, workspaceID)
	if err != nil {
		return workspaceID, chatui.Target{}, cli.Classify(err)
	}
	if len(channels) == 0 {
		return workspaceID, chatui.Target{}, cli.NotFound("workspace %s has no channels", workspaceID).
			WithHint("create one with 'huddle channel create'")
	}
	return workspaceID, chatui.Target{ChannelID: channels[0].ID}, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Huddle viewer: live terminal UI for a channel or direct conversation.

Signs in with the session saved by "huddle login" against the backend
named in the configuration.

Usage:
  huddle-viewer [flags]

Examples:
  # Open a workspace's first channel
  huddle-viewer --workspace wsp_...

  # Open a channel
  huddle-viewer --channel chn_...

  # Message a member directly, logging to a file
  huddle-viewer --member mem_... --log-output /tmp/viewer.jsonl

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// openFileLogHandler creates a slog.JSONHandler writing to path. The
// file is created or truncated.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler sends each record to every handler enabled for its
// level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
