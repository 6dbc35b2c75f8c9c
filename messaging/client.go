// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/netutil"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the backend's base URL, e.g. "http://localhost:8750".
	BaseURL string

	// HTTPClient is used for all requests. If nil, a client with no
	// overall timeout is used, since watch requests are long-polls.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is an unauthenticated backend client shared by Sessions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("messaging: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("messaging: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("messaging: BaseURL %q must be http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the backend URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CloseIdleConnections drops pooled connections so the next request
// dials afresh. The subscription registry calls it after a failed
// watch.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Register creates an account and returns a session for it. The
// password buffer is read but not closed.
func (c *Client) Register(ctx context.Context, name, email string, password *secret.Buffer) (*Session, error) {
	if password == nil {
		return nil, fmt.Errorf("messaging: password is required for registration")
	}
	var result backend.AuthResult
	err := c.doJSON(ctx, http.MethodPost, backend.PathRegister, nil, backend.Credentials{
		Name:     name,
		Email:    email,
		Password: password.String(),
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("messaging: register: %w", err)
	}
	c.logger.Info("registered account", "user_id", result.User.ID)
	return c.sessionFromAuth(result)
}

// Login authenticates with email and password. The password buffer is
// read but not closed.
func (c *Client) Login(ctx context.Context, email string, password *secret.Buffer) (*Session, error) {
	if password == nil {
		return nil, fmt.Errorf("messaging: password is required for login")
	}
	var result backend.AuthResult
	err := c.doJSON(ctx, http.MethodPost, backend.PathLogin, nil, backend.Credentials{
		Email:    email,
		Password: password.String(),
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("messaging: login: %w", err)
	}
	c.logger.Info("logged in", "user_id", result.User.ID)
	return c.sessionFromAuth(result)
}

// SessionFromToken wraps a previously issued token. The token is not
// checked; call WhoAmI to verify it.
func (c *Client) SessionFromToken(token string) (*Session, error) {
	buffer, err := secret.NewFromString(token)
	if err != nil {
		return nil, fmt.Errorf("messaging: protecting token: %w", err)
	}
	return &Session{client: c, token: buffer}, nil
}

func (c *Client) sessionFromAuth(result backend.AuthResult) (*Session, error) {
	session, err := c.SessionFromToken(result.Token)
	if err != nil {
		return nil, err
	}
	user := result.User
	session.user = &user
	return session, nil
}

// doJSON sends requestBody as JSON and decodes a 2xx reply into
// responseBody, which may be nil. Non-2xx replies become
// *backend.Error.
func (c *Client) doJSON(ctx context.Context, method, path string, token *secret.Buffer, requestBody, responseBody any, query ...url.Values) error {
	var reader io.Reader
	contentType := ""
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	body, err := c.do(ctx, method, path, token, contentType, reader, query...)
	if err != nil {
		return err
	}
	if responseBody == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, responseBody); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// do performs one request and returns the body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, path string, token *secret.Buffer, contentType string, body io.Reader, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && query[0] != nil {
		requestURL += "?" + query[0].Encode()
	}
	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if token != nil {
		request.Header.Set("Authorization", "Bearer "+token.String())
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}
	return nil, decodeError(response.StatusCode, method, path, responseBody)
}

// whoAmI returns the account a token belongs to.
func (c *Client) whoAmI(ctx context.Context, token *secret.Buffer) (*schema.User, error) {
	var user schema.User
	if err := c.doJSON(ctx, http.MethodGet, backend.PathWhoAmI, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
