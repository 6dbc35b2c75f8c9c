// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package clipboard

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestOSC52WritesEscapeSequence(t *testing.T) {
	var out bytes.Buffer
	link := "https://chat.example.com/join/ws_1"
	if err := (OSC52{Out: &out}).WriteText(context.Background(), link); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(link))
	if !strings.Contains(out.String(), "\x1b]52;c;"+encoded) {
		t.Errorf("output %q does not carry the OSC 52 payload", out.String())
	}
}

func TestOSC52RejectsNonTerminalFile(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "clipboard")
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := (OSC52{Out: file}).WriteText(context.Background(), "text"); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("WriteText to a regular file = %v, want ErrNotTerminal", err)
	}
}

func TestFallback(t *testing.T) {
	broken := &Memory{Err: errors.New("no display")}
	working := &Memory{}

	if err := Fallback(broken, working).WriteText(context.Background(), "copied"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if working.Text() != "copied" {
		t.Errorf("working clipboard = %q", working.Text())
	}

	err := Fallback(broken, &Memory{Err: errors.New("no terminal")}).WriteText(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "no display") || !strings.Contains(err.Error(), "no terminal") {
		t.Errorf("all failing = %v, want both errors", err)
	}
	if err := Fallback().WriteText(context.Background(), "x"); err == nil {
		t.Error("empty Fallback should fail")
	}
}
