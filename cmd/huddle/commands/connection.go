// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/chatstore"
	"github.com/huddle-chat/huddle/lib/clipboard"
	"github.com/huddle-chat/huddle/lib/config"
	"github.com/huddle-chat/huddle/lib/confirm"
	"github.com/huddle-chat/huddle/lib/live"
	"github.com/huddle-chat/huddle/lib/notify"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/route"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/secret"
	"github.com/huddle-chat/huddle/lib/subscription"
	"github.com/huddle-chat/huddle/messaging"
)

// connectionParams are the flags shared by every command that talks to
// a backend.
type connectionParams struct {
	Config  string        `json:"-" flag:"config,c" desc:"path to huddle.yaml (default: $HUDDLE_CONFIG, then built-in defaults)"`
	Yes     bool          `json:"-" flag:"yes,y" desc:"accept confirmation prompts"`
	Timeout time.Duration `json:"-" flag:"timeout" desc:"give up waiting for the backend after this long" default:"30s"`
}

// settings loads the configuration and builds the command logger.
func (a *app) settings(params connectionParams, command string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Resolve(params.Config)
	if err != nil {
		return nil, nil, cli.Validation("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, cli.Validation("invalid configuration: %w", err)
	}
	level, _ := cfg.Logging.SlogLevel()
	logger := cli.NewCommandLogger(a.io.Err, level, cfg.Logging.Format).With("command", command)
	return cfg, logger, nil
}

// accounts issues and verifies bearer tokens against one backend.
type accounts interface {
	// location identifies the backend in the session file.
	location() string
	register(ctx context.Context, name, email string, password *secret.Buffer) (*schema.User, string, error)
	login(ctx context.Context, email string, password *secret.Buffer) (*schema.User, string, error)
	logout(ctx context.Context, token string) error
	// open returns a backend acting as the token's user.
	open(ctx context.Context, token string) (backend.Backend, error)
	close() error
}

func openAccounts(cfg *config.Config, logger *slog.Logger) (accounts, error) {
	if cfg.Backend.Mode == config.ModeEmbedded {
		if err := config.EnsureDir(cfg.Backend.StorePath); err != nil {
			return nil, cli.Internal("%w", err)
		}
		store, err := chatstore.Open(chatstore.Config{Path: cfg.Backend.StorePath, Logger: logger})
		if err != nil {
			return nil, cli.Internal("opening store: %w", err)
		}
		return &embeddedAccounts{store: store, path: cfg.Backend.StorePath}, nil
	}
	client, err := messaging.NewClient(messaging.ClientConfig{BaseURL: cfg.Backend.URL, Logger: logger})
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return &remoteAccounts{client: client}, nil
}

type remoteAccounts struct {
	client   *messaging.Client
	sessions []*messaging.Session
}

func (r *remoteAccounts) location() string { return r.client.BaseURL() }

func (r *remoteAccounts) register(ctx context.Context, name, email string, password *secret.Buffer) (*schema.User, string, error) {
	session, err := r.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, "", err
	}
	defer session.Close()
	user, _ := session.User()
	return user, session.Token(), nil
}

func (r *remoteAccounts) login(ctx context.Context, email string, password *secret.Buffer) (*schema.User, string, error) {
	session, err := r.client.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	defer session.Close()
	user, _ := session.User()
	return user, session.Token(), nil
}

func (r *remoteAccounts) logout(ctx context.Context, token string) error {
	session, err := r.client.SessionFromToken(token)
	if err != nil {
		return err
	}
	defer session.Close()
	return session.Logout(ctx)
}

func (r *remoteAccounts) open(ctx context.Context, token string) (backend.Backend, error) {
	session, err := r.client.SessionFromToken(token)
	if err != nil {
		return nil, err
	}
	if _, err := session.WhoAmI(ctx); err != nil {
		session.Close()
		return nil, err
	}
	r.sessions = append(r.sessions, session)
	return session, nil
}

func (r *remoteAccounts) close() error {
	var errs []error
	for _, session := range r.sessions {
		errs = append(errs, session.Close())
	}
	r.client.CloseIdleConnections()
	return errors.Join(errs...)
}

type embeddedAccounts struct {
	store *chatstore.Store
	path  string
}

func (e *embeddedAccounts) location() string { return "embedded:" + e.path }

func (e *embeddedAccounts) register(ctx context.Context, name, email string, password *secret.Buffer) (*schema.User, string, error) {
	return e.store.Register(ctx, chatstore.Registration{Name: name, Email: email, Password: password.String()})
}

func (e *embeddedAccounts) login(ctx context.Context, email string, password *secret.Buffer) (*schema.User, string, error) {
	return e.store.Login(ctx, email, password.String())
}

func (e *embeddedAccounts) logout(ctx context.Context, token string) error {
	return e.store.Logout(ctx, token)
}

func (e *embeddedAccounts) open(ctx context.Context, token string) (backend.Backend, error) {
	userID, err := e.store.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return e.store.As(userID), nil
}

func (e *embeddedAccounts) close() error { return e.store.Close() }

// connection is an authenticated backend with a running subscription
// registry and the collaborators panels need.
type connection struct {
	config   *config.Config
	logger   *slog.Logger
	accounts accounts
	backend  backend.Backend
	user     *schema.User
	history  *route.History
	env      panel.Env

	out     io.Writer
	profile termenv.Profile

	cancel   context.CancelFunc
	registry chan struct{}
}

// connect loads the session, verifies it, and starts the registry.
// The returned context carries the --timeout deadline. Close the
// connection when done.
func (a *app) connect(ctx context.Context, params connectionParams, command string) (context.Context, *connection, error) {
	cfg, logger, err := a.settings(params, command)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	if params.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, params.Timeout)
		previous := cancel
		cancel = func() { cancelTimeout(); previous() }
	}

	accounts, chat, user, err := dial(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	registry := subscription.New(subscription.Config{Watcher: chat, Logger: logger})
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := registry.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("subscription registry stopped", "error", err)
		}
	}()

	var confirmer confirm.Confirmer = &confirm.Terminal{In: a.io.In, Out: a.io.Err}
	if params.Yes {
		confirmer = confirm.Always(true)
	}
	history := route.NewHistory(route.Root())
	conn := &connection{
		config:   cfg,
		logger:   logger,
		accounts: accounts,
		backend:  chat,
		user:     user,
		history:  history,
		out:      a.io.Out,
		profile:  termenv.NewOutput(a.io.Out).EnvColorProfile(),
		cancel:   cancel,
		registry: done,
	}
	conn.env = panel.Env{
		Backend:   chat,
		Registry:  registry,
		Confirmer: confirmer,
		Notifier:  notify.NewWriter(a.io.Err),
		Navigator: history,
		Clipboard: clipboard.Fallback(clipboard.OSC52{Out: a.io.Out}, clipboard.System{}),
		Origin:    cfg.Client.Origin,
		PageSize:  cfg.Client.PageSize,
		Logger:    logger,
	}
	return ctx, conn, nil
}

// dial opens the configured backend as the saved session's user and
// verifies the session with CurrentUser.
func dial(ctx context.Context, cfg *config.Config, logger *slog.Logger) (accounts, backend.Backend, *schema.User, error) {
	session, err := cli.LoadSession(cfg.Client.SessionFile)
	if err != nil {
		return nil, nil, nil, err
	}
	accounts, err := openAccounts(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if session.Backend != accounts.location() {
		accounts.close()
		return nil, nil, nil, cli.Forbidden("the saved session belongs to %s, not %s", session.Backend, accounts.location()).
			WithHint("run 'huddle login' to sign in to this backend")
	}
	chat, err := accounts.open(ctx, session.Token)
	if err != nil {
		accounts.close()
		return nil, nil, nil, cli.Classify(err)
	}
	user, err := chat.CurrentUser(ctx)
	if err != nil {
		accounts.close()
		return nil, nil, nil, cli.Classify(err)
	}
	return accounts, chat, user, nil
}

// Dial opens the backend the configuration names, acting as the user
// of the session saved by 'huddle login'. Call close when done.
func Dial(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend.Backend, *schema.User, func() error, error) {
	accounts, chat, user, err := dial(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return chat, user, accounts.close, nil
}

// Close stops the registry and releases the backend.
func (c *connection) Close() {
	c.cancel()
	<-c.registry
	if err := c.accounts.close(); err != nil {
		c.logger.Warn("closing backend", "error", err)
	}
}

// printRoute reports where a navigation ended.
func (c *connection) printRoute() {
	fmt.Fprintf(c.out, "route: %s\n", c.history.Current().Path())
}

// waitRoute blocks until the history reaches kind. Panels navigate
// from the registry goroutine.
func (c *connection) waitRoute(ctx context.Context, kind route.Kind) error {
	for {
		changed := c.history.Changed()
		if c.history.Current().Kind == kind {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return cli.Classify(ctx.Err())
		}
	}
}

// await waits for resource to leave loading. A fetch error that
// persists until ctx ends is returned instead of the deadline.
func await[T any](ctx context.Context, resource *live.Resource[T]) (T, live.Status, error) {
	for {
		changed := resource.Changed()
		value, status, err := resource.State()
		if status != live.StatusLoading {
			return value, status, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
			return value, status, cli.Classify(err)
		}
	}
}

// finish turns a panel outcome into a command result. Declining a
// confirmation prints "Cancelled." and exits with status 1.
func (c *connection) finish(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, panel.ErrDeclined):
		fmt.Fprintln(c.out, "Cancelled.")
		return &cli.ExitError{Code: 1}
	case errors.Is(err, panel.ErrNotPermitted):
		return cli.Forbidden("you are not allowed to do that")
	case errors.Is(err, panel.ErrNotReady):
		return cli.Transient("%w", err)
	case errors.Is(err, confirm.ErrNoTerminal):
		return cli.Validation("%w", err)
	}
	return cli.Classify(err)
}

// readPassword reads from path when set, else prompts on a terminal,
// else reads one line of input.
func (a *app) readPassword(path string) (*secret.Buffer, error) {
	if path != "" {
		buffer, err := secret.ReadFromPath(path)
		if err != nil {
			return nil, cli.Validation("%w", err)
		}
		return buffer, nil
	}
	if file, ok := a.io.In.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(a.io.Err, "Password: ")
		data, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(a.io.Err)
		if err != nil {
			return nil, cli.Internal("reading password: %w", err)
		}
		defer secret.Zero(data)
		if strings.TrimSpace(string(data)) == "" {
			return nil, cli.Validation("password is empty")
		}
		buffer, err := secret.NewFromBytes(data)
		if err != nil {
			return nil, cli.Internal("%w", err)
		}
		return buffer, nil
	}
	buffer, err := secret.ReadLine(a.io.In)
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return buffer, nil
}
