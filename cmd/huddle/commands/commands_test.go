// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/schema"
)

const testPassword = "correct horse battery"

// account is one user of a shared embedded store, with its own config
// and session file.
type account struct {
	config   string
	password string
}

func newAccount(t *testing.T, dir, name string) *account {
	t.Helper()
	store := filepath.Join(dir, "huddle.db")
	session := filepath.Join(dir, name, "session")
	config := filepath.Join(dir, name+".yaml")
	content := fmt.Sprintf(`backend:
  mode: embedded
  store_path: %s
client:
  origin: https://chat.example.com
  page_size: 20
  session_file: %s
logging:
  level: error
  format: text
`, store, session)
	if err := os.WriteFile(config, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	password := filepath.Join(dir, name+".password")
	if err := os.WriteFile(password, []byte(testPassword), 0o600); err != nil {
		t.Fatal(err)
	}
	return &account{config: config, password: password}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func (r result) code() int { return cli.ExitCode(r.err) }

// run executes one huddle invocation with stdin as its input.
func (a *account) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	streams := IO{In: strings.NewReader(stdin), Out: &stdout, Err: &stderr}
	args = append(args, "--config", a.config)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := Root(streams).Execute(ctx, args)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// must runs a command that has to succeed.
func (a *account) must(t *testing.T, args ...string) string {
	t.Helper()
	r := a.run(t, "", args...)
	if r.err != nil {
		t.Fatalf("huddle %s: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), r.err, r.stdout, r.stderr)
	}
	return r.stdout
}

func (a *account) register(t *testing.T, name, email string) {
	t.Helper()
	out := a.must(t, "register", "--name", name, "--email", email, "--password-file", a.password)
	if !strings.Contains(out, "Signed in as "+name) {
		t.Fatalf("register output = %q", out)
	}
}

func decode[T any](t *testing.T, data string) T {
	t.Helper()
	var value T
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		t.Fatalf("decoding %q: %v", data, err)
	}
	return value
}

// workspace creates a workspace as owner and returns its ID.
func (a *account) workspace(t *testing.T, name string) string {
	t.Helper()
	a.must(t, "workspace", "create", name)
	for _, workspace := range decode[[]schema.Workspace](t, a.must(t, "workspace", "list", "--json")) {
		if workspace.Name == name {
			return workspace.ID.String()
		}
	}
	t.Fatalf("workspace %q not listed", name)
	return ""
}

func (a *account) memberID(t *testing.T, workspaceID, name string) string {
	t.Helper()
	for _, member := range decode[[]schema.Member](t, a.must(t, "member", "list", workspaceID, "--json")) {
		if member.User.Name == name {
			return member.ID.String()
		}
	}
	t.Fatalf("member %q not listed", name)
	return ""
}

func TestAuth(t *testing.T) {
	dir := t.TempDir()
	ada := newAccount(t, dir, "ada")

	t.Run("no session", func(t *testing.T) {
		r := ada.run(t, "", "whoami")
		if r.code() != 4 {
			t.Fatalf("exit code = %d, want 4 (err %v)", r.code(), r.err)
		}
	})

	ada.register(t, "Ada", "ada@example.com")

	t.Run("whoami", func(t *testing.T) {
		user := decode[schema.User](t, ada.must(t, "whoami", "--json"))
		if user.Email != "ada@example.com" || user.Name != "Ada" {
			t.Errorf("whoami = %+v", user)
		}
	})

	t.Run("logout and login", func(t *testing.T) {
		if out := ada.must(t, "logout"); !strings.Contains(out, "Signed out.") {
			t.Errorf("logout output = %q", out)
		}
		if r := ada.run(t, "", "whoami"); r.code() != 4 {
			t.Fatalf("whoami after logout: exit code = %d, want 4", r.code())
		}
		out := ada.must(t, "login", "--email", "ada@example.com", "--password-file", ada.password)
		if !strings.Contains(out, "Signed in as Ada") {
			t.Errorf("login output = %q", out)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		r := ada.run(t, "", "register", "--name", "Ada", "--email", "ada@example.com", "--password-file", ada.password)
		if r.code() != 5 {
			t.Fatalf("exit code = %d, want 5 (err %v)", r.code(), r.err)
		}
	})
}

func TestJoinWithCode(t *testing.T) {
	dir := t.TempDir()
	ada := newAccount(t, dir, "ada")
	grace := newAccount(t, dir, "grace")
	ada.register(t, "Ada", "ada@example.com")
	grace.register(t, "Grace", "grace@example.com")

	workspaceID := ada.workspace(t, "Acme")
	invite := decode[panel.InviteView](t, ada.must(t, "invite", "show", workspaceID, "--json"))
	if len(invite.JoinCode) != 6 {
		t.Fatalf("join code = %q, want 6 characters", invite.JoinCode)
	}
	if invite.Link != "https://chat.example.com/join/"+workspaceID {
		t.Errorf("invite link = %q", invite.Link)
	}

	t.Run("wrong code", func(t *testing.T) {
		r := grace.run(t, "", "join", workspaceID, "zzzzzz")
		if r.code() != 2 {
			t.Fatalf("exit code = %d, want 2 (err %v)", r.code(), r.err)
		}
	})

	t.Run("code is case-insensitive", func(t *testing.T) {
		out := grace.must(t, "join", invite.Link, strings.ToUpper(invite.JoinCode))
		if !strings.Contains(out, "Join Acme") {
			t.Errorf("join output missing title: %q", out)
		}
		if !strings.Contains(out, "route: /workspace/"+workspaceID) {
			t.Errorf("join output missing route: %q", out)
		}
	})

	t.Run("already a member", func(t *testing.T) {
		out := grace.must(t, "join", workspaceID, invite.JoinCode)
		if !strings.Contains(out, "Already a member of Acme") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("regenerate", func(t *testing.T) {
		out := ada.must(t, "invite", "regenerate", workspaceID, "--yes")
		code := regexp.MustCompile(`code: ([0-9a-z]{6})`).FindStringSubmatch(out)
		if code == nil {
			t.Fatalf("regenerate output = %q", out)
		}
		if code[1] == invite.JoinCode {
			t.Errorf("regenerated code %q equals the previous one", code[1])
		}
	})

	t.Run("regenerate requires admin", func(t *testing.T) {
		r := grace.run(t, "", "invite", "regenerate", workspaceID, "--yes")
		if r.code() != 4 {
			t.Fatalf("exit code = %d, want 4 (err %v)", r.code(), r.err)
		}
	})
}

func TestMembers(t *testing.T) {
	dir := t.TempDir()
	ada := newAccount(t, dir, "ada")
	grace := newAccount(t, dir, "grace")
	ada.register(t, "Ada", "ada@example.com")
	grace.register(t, "Grace", "grace@example.com")
	workspaceID := ada.workspace(t, "Acme")
	code := decode[panel.InviteView](t, ada.must(t, "invite", "show", workspaceID, "--json")).JoinCode
	grace.must(t, "join", workspaceID, code)
	graceID := ada.memberID(t, workspaceID, "Grace")
	adaID := ada.memberID(t, workspaceID, "Ada")

	t.Run("show", func(t *testing.T) {
		out := ada.must(t, "member", "show", workspaceID, graceID)
		for _, want := range []string{"[G] Grace", "email:   grace@example.com", "role:    member"} {
			if !strings.Contains(out, want) {
				t.Errorf("member show missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("find", func(t *testing.T) {
		out := ada.must(t, "member", "find", workspaceID, "grc")
		if !strings.Contains(out, "Grace") {
			t.Errorf("find output = %q", out)
		}
		if r := ada.run(t, "", "member", "find", workspaceID, "xyz"); r.code() != 3 {
			t.Errorf("find with no matches: exit code = %d, want 3", r.code())
		}
	})

	t.Run("admin cannot leave", func(t *testing.T) {
		r := ada.run(t, "", "member", "leave", workspaceID, "--yes")
		if r.code() != 4 {
			t.Fatalf("exit code = %d, want 4 (err %v)", r.code(), r.err)
		}
	})

	t.Run("non-admin cannot change roles", func(t *testing.T) {
		r := grace.run(t, "", "member", "role", workspaceID, adaID, "member")
		if r.code() != 4 {
			t.Fatalf("exit code = %d, want 4 (err %v)", r.code(), r.err)
		}
	})

	t.Run("declined removal", func(t *testing.T) {
		r := ada.run(t, "n\n", "member", "remove", workspaceID, graceID)
		if r.code() != 1 {
			t.Fatalf("exit code = %d, want 1 (err %v)", r.code(), r.err)
		}
		if !strings.Contains(r.stdout, "Cancelled.") {
			t.Errorf("stdout = %q, want Cancelled.", r.stdout)
		}
		if cli.Silent(r.err) == false {
			t.Errorf("declined error should be silent: %v", r.err)
		}
		ada.memberID(t, workspaceID, "Grace")
	})

	t.Run("remove", func(t *testing.T) {
		ada.must(t, "member", "remove", workspaceID, graceID, "--yes")
		for _, member := range decode[[]schema.Member](t, ada.must(t, "member", "list", workspaceID, "--json")) {
			if member.ID.String() == graceID {
				t.Fatal("Grace is still a member")
			}
		}
		if r := grace.run(t, "", "workspace", "show", workspaceID); r.code() != 3 {
			t.Errorf("removed member: exit code = %d, want 3", r.code())
		}
	})

	t.Run("leave", func(t *testing.T) {
		code := decode[panel.InviteView](t, ada.must(t, "invite", "show", workspaceID, "--json")).JoinCode
		grace.must(t, "join", workspaceID, code)
		out := grace.must(t, "member", "leave", workspaceID, "--yes")
		if !strings.Contains(out, "route: /\n") {
			t.Errorf("leave output = %q, want route /", out)
		}
	})
}

func TestMessages(t *testing.T) {
	dir := t.TempDir()
	ada := newAccount(t, dir, "ada")
	grace := newAccount(t, dir, "grace")
	ada.register(t, "Ada", "ada@example.com")
	grace.register(t, "Grace", "grace@example.com")
	workspaceID := ada.workspace(t, "Acme")
	code := decode[panel.InviteView](t, ada.must(t, "invite", "show", workspaceID, "--json")).JoinCode
	grace.must(t, "join", workspaceID, code)

	channels := decode[[]schema.Channel](t, ada.must(t, "channel", "list", workspaceID, "--json"))
	if len(channels) != 1 || channels[0].Name != "general" {
		t.Fatalf("channels = %+v, want only general", channels)
	}
	channelID := channels[0].ID.String()
	sentID := regexp.MustCompile(`Sent: (msg_\S+)`)

	out := ada.must(t, "message", "send", "--channel", channelID, "hello", "**team**")
	match := sentID.FindStringSubmatch(out)
	if match == nil {
		t.Fatalf("send output = %q", out)
	}
	messageID := match[1]

	t.Run("channel show", func(t *testing.T) {
		out := grace.must(t, "channel", "show", workspaceID, channelID)
		for _, want := range []string{"# general", "Ada", "hello", messageID} {
			if !strings.Contains(out, want) {
				t.Errorf("channel show missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("react", func(t *testing.T) {
		grace.must(t, "message", "react", messageID, "🎉")
		out := ada.must(t, "channel", "show", workspaceID, channelID)
		if !strings.Contains(out, "🎉 1") {
			t.Errorf("reaction missing:\n%s", out)
		}
	})

	t.Run("thread", func(t *testing.T) {
		grace.must(t, "thread", "reply", messageID, "first", "reply")
		out := ada.must(t, "thread", "show", messageID)
		if !strings.Contains(out, "Thread") || !strings.Contains(out, "first reply") {
			t.Errorf("thread show:\n%s", out)
		}
		out = ada.must(t, "channel", "show", workspaceID, channelID)
		if !strings.Contains(out, "1 reply") {
			t.Errorf("thread summary missing:\n%s", out)
		}
		if strings.Contains(out, "first reply") {
			t.Errorf("replies must not appear in the channel:\n%s", out)
		}
	})

	t.Run("only the author edits", func(t *testing.T) {
		if r := grace.run(t, "", "message", "edit", messageID, "hijacked"); r.code() != 4 {
			t.Fatalf("exit code = %d, want 4 (err %v)", r.code(), r.err)
		}
		ada.must(t, "message", "edit", messageID, "hello", "again")
		out := grace.must(t, "channel", "show", workspaceID, channelID)
		if !strings.Contains(out, "again") || !strings.Contains(out, "(edited)") {
			t.Errorf("edited message:\n%s", out)
		}
	})

	t.Run("direct conversation", func(t *testing.T) {
		graceID := ada.memberID(t, workspaceID, "Grace")
		ada.must(t, "message", "send", "--member", graceID, "psst")
		out := ada.must(t, "conversation", "open", workspaceID, graceID)
		if !strings.Contains(out, "@ Grace") || !strings.Contains(out, "psst") {
			t.Errorf("conversation open:\n%s", out)
		}
		conversation := regexp.MustCompile(`conversation: (\S+)`).FindStringSubmatch(out)
		if conversation == nil {
			t.Fatalf("conversation ID missing:\n%s", out)
		}
		out = grace.must(t, "conversation", "show", conversation[1])
		if !strings.Contains(out, "@ Ada") || !strings.Contains(out, "psst") {
			t.Errorf("conversation show:\n%s", out)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if r := ada.run(t, "no\n", "message", "delete", messageID); r.code() != 1 {
			t.Fatalf("declined delete: exit code = %d, want 1", r.code())
		}
		ada.must(t, "message", "delete", messageID, "--yes")
		out := ada.must(t, "channel", "show", workspaceID, channelID)
		if !strings.Contains(out, "No messages yet.") {
			t.Errorf("channel after delete:\n%s", out)
		}
	})

	t.Run("send requires one target", func(t *testing.T) {
		r := ada.run(t, "", "message", "send", "--channel", channelID, "--member", "mem_x", "hi")
		if r.code() != 2 {
			t.Fatalf("exit code = %d, want 2", r.code())
		}
	})
}

func TestUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := Root(IO{In: strings.NewReader(""), Out: &stdout, Err: &stderr}).Execute(context.Background(), []string{"workspce"})
	if cli.ExitCode(err) != 2 {
		t.Fatalf("exit code = %d, want 2 (err %v)", cli.ExitCode(err), err)
	}
	if !strings.Contains(err.Error(), "workspace") {
		t.Errorf("error %q should suggest workspace", err)
	}
}
