// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Huddle-backend runs the reference chat backend: the SQLite store
// behind the HTTP wire protocol the huddle CLI and viewer speak in
// remote mode.
//
//	huddle-backend serve [--config huddle.yaml] [--address 127.0.0.1:8750]
//
// Serving stops on SIGINT or SIGTERM after in-flight requests drain.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/backendserver"
	"github.com/huddle-chat/huddle/lib/chatstore"
	"github.com/huddle-chat/huddle/lib/config"
	"github.com/huddle-chat/huddle/lib/process"
	"github.com/huddle-chat/huddle/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root().Execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		if !cli.Silent(err) {
			process.Report(os.Stderr, err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func root() *cli.Command {
	return &cli.Command{
		Name:    "huddle-backend",
		Summary: "Reference Huddle chat backend",
		Subcommands: []*cli.Command{
			serveCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(context.Context, []string) error {
					version.Print("huddle-backend")
					return nil
				},
			},
		},
	}
}

type serveParams struct {
	Config  string `flag:"config,c" desc:"path to huddle.yaml (default: $HUDDLE_CONFIG, then built-in defaults)"`
	Address string `flag:"address" desc:"listen address (overrides server.address)"`
	Store   string `flag:"store" desc:"SQLite database path (overrides backend.store_path)"`
}

func serveCommand() *cli.Command {
	var params serveParams
	return &cli.Command{
		Name:    "serve",
		Summary: "Serve the backend over HTTP",
		Description: `Open the store and serve the chat protocol, media, and Prometheus
metrics on /metrics until interrupted.`,
		Usage:  "huddle-backend serve [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{Description: "Serve on all interfaces", Command: "huddle-backend serve --address :8750"},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			cfg, err := config.Resolve(params.Config)
			if err != nil {
				return cli.Validation("%w", err)
			}
			if params.Address != "" {
				cfg.Server.Address = params.Address
			}
			if params.Store != "" {
				cfg.Backend.StorePath = params.Store
			}
			if err := cfg.Validate(); err != nil {
				return cli.Validation("invalid configuration: %w", err)
			}
			level, _ := cfg.Logging.SlogLevel()
			logger := cli.NewCommandLogger(os.Stderr, level, cfg.Logging.Format)
			return serve(ctx, cfg, logger)
		},
	}
}

// serve runs until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := config.EnsureDir(cfg.Backend.StorePath); err != nil {
		return cli.Internal("%w", err)
	}
	mediaURLPrefix := cfg.Server.MediaURLPrefix
	if mediaURLPrefix != "" && !strings.HasSuffix(mediaURLPrefix, "/") {
		mediaURLPrefix += "/"
	}
	store, err := chatstore.Open(chatstore.Config{
		Path:           cfg.Backend.StorePath,
		MediaURLPrefix: mediaURLPrefix,
		MaxMediaSize:   int(cfg.Server.MaxMediaSize),
		Logger:         logger.With("component", "store"),
	})
	if err != nil {
		return cli.Internal("opening store %s: %w", cfg.Backend.StorePath, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	server := backendserver.New(backendserver.Config{
		Store:           store,
		JoinRate:        rate.Every(cfg.Server.JoinInterval),
		JoinBurst:       cfg.Server.JoinBurst,
		MaxWatchTimeout: cfg.Server.MaxWatchTimeout,
		MaxMediaSize:    cfg.Server.MaxMediaSize,
		Logger:          logger.With("component", "server"),
	})
	httpServer := backendserver.NewHTTPServer(backendserver.HTTPServerConfig{
		Address:         cfg.Server.Address,
		Handler:         server.Handler(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		WriteTimeout:    cfg.Server.MaxWatchTimeout + backendserver.DefaultWatchTimeout/2,
		Logger:          logger.With("component", "http"),
	})

	logger.Info("huddle-backend starting",
		"version", version.Info(),
		"store", cfg.Backend.StorePath,
		"media_url_prefix", orDefault(mediaURLPrefix, backend.PathMedia+"/"),
	)
	if err := httpServer.Serve(ctx); err != nil {
		return fmt.Errorf("huddle-backend: %w", err)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
