// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "huddle.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Backend.Mode != ModeRemote {
		t.Errorf("expected backend.mode=remote, got %s", cfg.Backend.Mode)
	}
	if cfg.Client.PageSize != 20 {
		t.Errorf("expected page_size=20, got %d", cfg.Client.PageSize)
	}
	if cfg.Server.JoinBurst != 5 || cfg.Server.JoinInterval != 2*time.Second {
		t.Errorf("expected join limit 5 per 2s, got %d per %s", cfg.Server.JoinBurst, cfg.Server.JoinInterval)
	}
}

func TestLoad_RequiresHuddleConfig(t *testing.T) {
	t.Setenv(EnvVar, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when HUDDLE_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "HUDDLE_CONFIG environment variable not set") {
		t.Errorf("unexpected error message %q", err)
	}
}

func TestLoad_WithHuddleConfig(t *testing.T) {
	path := writeConfig(t, `
environment: staging
backend:
  url: https://chat.staging.example
server:
  max_watch_timeout: 45s
`)
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Backend.URL != "https://chat.staging.example" {
		t.Errorf("expected backend.url from file, got %s", cfg.Backend.URL)
	}
	if cfg.Server.MaxWatchTimeout != 45*time.Second {
		t.Errorf("expected max_watch_timeout=45s, got %s", cfg.Server.MaxWatchTimeout)
	}
	// Unset fields keep their defaults.
	if cfg.Client.PageSize != 20 {
		t.Errorf("expected default page_size, got %d", cfg.Client.PageSize)
	}
}

func TestResolve(t *testing.T) {
	flagPath := writeConfig(t, "backend:\n  url: http://from-flag:1\n")
	envPath := writeConfig(t, "backend:\n  url: http://from-env:1\n")

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(EnvVar, envPath)
		cfg, err := Resolve(flagPath)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if cfg.Backend.URL != "http://from-flag:1" {
			t.Errorf("backend.url = %s", cfg.Backend.URL)
		}
	})

	t.Run("environment variable", func(t *testing.T) {
		t.Setenv(EnvVar, envPath)
		cfg, err := Resolve("")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if cfg.Backend.URL != "http://from-env:1" {
			t.Errorf("backend.url = %s", cfg.Backend.URL)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvVar, "")
		t.Setenv("HOME", "/home/ada")
		cfg, err := Resolve("")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if cfg.Client.SessionFile != "/home/ada/.config/huddle/session" {
			t.Errorf("session_file = %s, want expanded default", cfg.Client.SessionFile)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Resolve(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("Resolve of a missing file succeeded")
		}
	})
}

func TestLoadFile_Malformed(t *testing.T) {
	path := writeConfig(t, "server:\n  join_burst: [not, a, number]\n")
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Fatalf("LoadFile error = %v, want a parse error", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Run("matching section applies", func(t *testing.T) {
		path := writeConfig(t, `
environment: staging
backend:
  url: http://base:1
client:
  page_size: 50
staging:
  backend:
    url: http://staging:1
  logging:
    level: debug
production:
  backend:
    url: http://production:1
`)
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		if cfg.Backend.URL != "http://staging:1" {
			t.Errorf("backend.url = %s, want staging override", cfg.Backend.URL)
		}
		if cfg.Client.PageSize != 50 {
			t.Errorf("page_size = %d, want base value kept", cfg.Client.PageSize)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("logging.level = %s, want debug", cfg.Logging.Level)
		}
	})

	t.Run("production default logs json", func(t *testing.T) {
		cfg, err := LoadFile(writeConfig(t, "environment: production\n"))
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		if cfg.Logging.Format != FormatJSON {
			t.Errorf("logging.format = %s, want json", cfg.Logging.Format)
		}
	})

	t.Run("explicit production section replaces the default", func(t *testing.T) {
		cfg, err := LoadFile(writeConfig(t, `
environment: production
production:
  server:
    address: 0.0.0.0:80
`))
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		if cfg.Server.Address != "0.0.0.0:80" {
			t.Errorf("server.address = %s", cfg.Server.Address)
		}
		if cfg.Logging.Format != FormatAuto {
			t.Errorf("logging.format = %s, want auto", cfg.Logging.Format)
		}
	})
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	// Only ${VAR} references expand; a variable never replaces a value
	// written in the file.
	t.Setenv("HUDDLE_BACKEND_URL", "http://env:1")
	t.Setenv("HUDDLE_ENVIRONMENT", "staging")

	cfg, err := LoadFile(writeConfig(t, `
environment: development
backend:
  url: http://file:1
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Environment != Development {
		t.Errorf("expected environment=development from file, got %s", cfg.Environment)
	}
	if cfg.Backend.URL != "http://file:1" {
		t.Errorf("expected backend.url from file, got %s", cfg.Backend.URL)
	}
}

func TestVariableExpansion(t *testing.T) {
	t.Setenv("HOME", "/home/ada")
	t.Setenv("HUDDLE_PORT", "9000")
	cfg, err := LoadFile(writeConfig(t, `
backend:
  url: http://localhost:${HUDDLE_PORT}
  store_path: ${HOME}/chat.db
client:
  origin: ${HUDDLE_ORIGIN:-https://huddle.example}
`))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Backend.URL != "http://localhost:9000" {
		t.Errorf("backend.url = %s", cfg.Backend.URL)
	}
	if cfg.Backend.StorePath != "/home/ada/chat.db" {
		t.Errorf("backend.store_path = %s", cfg.Backend.StorePath)
	}
	if cfg.Client.Origin != "https://huddle.example" {
		t.Errorf("client.origin = %s", cfg.Client.Origin)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{"${HOME}/huddle", map[string]string{"HOME": "/home/user"}, "/home/user/huddle"},
		{"${HUDDLE_TEST_MISSING:-default}", map[string]string{}, "default"},
		{"${PRESENT:-default}", map[string]string{"PRESENT": "value"}, "value"},
		{"${A}/${B}", map[string]string{"A": "first", "B": "second"}, "first/second"},
		{"no variables here", map[string]string{}, "no variables here"},
	}
	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid default config", func(c *Config) {}, ""},
		{"invalid environment", func(c *Config) { c.Environment = "invalid" }, "invalid environment"},
		{"unknown mode", func(c *Config) { c.Backend.Mode = "carrier-pigeon" }, "backend.mode"},
		{"remote without url", func(c *Config) { c.Backend.URL = "" }, "backend.url"},
		{"embedded without store", func(c *Config) {
			c.Backend.Mode = ModeEmbedded
			c.Backend.URL = ""
			c.Backend.StorePath = ""
		}, "backend.store_path"},
		{"relative origin", func(c *Config) { c.Client.Origin = "huddle.example" }, "client.origin"},
		{"zero page size", func(c *Config) { c.Client.PageSize = 0 }, "client.page_size"},
		{"huge page size", func(c *Config) { c.Client.PageSize = 1000 }, "client.page_size"},
		{"zero join burst", func(c *Config) { c.Server.JoinBurst = 0 }, "server.join_burst"},
		{"negative watch timeout", func(c *Config) { c.Server.MaxWatchTimeout = -time.Second }, "server.max_watch_timeout"},
		{"bad media prefix", func(c *Config) { c.Server.MediaURLPrefix = "/v1/media/" }, "server.media_url_prefix"},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	for input, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := LoggingConfig{Level: input}.SlogLevel()
		if err != nil || got != want {
			t.Errorf("SlogLevel(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "huddle", "session")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("directory not created: %v", err)
	}
	if !info.IsDir() || info.Mode().Perm() != 0o700 {
		t.Errorf("created %v, want a 0700 directory", info.Mode())
	}
}
