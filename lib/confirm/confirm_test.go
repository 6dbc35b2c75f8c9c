// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package confirm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/huddle-chat/huddle/lib/testutil"
)

func TestTerminal(t *testing.T) {
	prompt := Prompt{Title: "Remove Member", Body: "Are you sure you want to remove this member?"}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"full word any case", "  YES \n", true},
		{"no", "n\n", false},
		{"empty line", "\n", false},
		{"other text", "sure\n", false},
		{"end of input", "", false},
		{"no trailing newline", "yes", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			terminal := &Terminal{In: strings.NewReader(test.input), Out: &out}
			got, err := terminal.RequestConfirmation(context.Background(), prompt)
			if err != nil {
				t.Fatalf("RequestConfirmation: %v", err)
			}
			if got != test.want {
				t.Errorf("got %v, want %v", got, test.want)
			}
			if !strings.Contains(out.String(), "Remove Member\n") || !strings.Contains(out.String(), prompt.Body+" [y/N]: ") {
				t.Errorf("prompt output = %q", out.String())
			}
		})
	}

	t.Run("assume yes", func(t *testing.T) {
		var out bytes.Buffer
		terminal := &Terminal{In: strings.NewReader(""), Out: &out, AssumeYes: true}
		got, err := terminal.RequestConfirmation(context.Background(), prompt)
		if err != nil || !got {
			t.Errorf("got %v, %v; want accepted", got, err)
		}
		if out.Len() != 0 {
			t.Errorf("AssumeYes printed %q", out.String())
		}
	})
}

func TestQueue(t *testing.T) {
	queue := NewQueue()
	prompt := Prompt{Title: "Leave Workspace", Body: "Are you sure you want to leave this workspace?"}

	result := make(chan bool, 1)
	go func() {
		accepted, err := queue.RequestConfirmation(context.Background(), prompt)
		if err != nil {
			t.Errorf("RequestConfirmation: %v", err)
		}
		result <- accepted
	}()

	request := testutil.RequireReceive(t, queue.Requests(), 5*time.Second, "pending prompt")
	if request.Prompt != prompt {
		t.Errorf("prompt = %+v, want %+v", request.Prompt, prompt)
	}
	request.Answer(true)
	request.Answer(false)
	if !testutil.RequireReceive(t, result, 5*time.Second, "answer") {
		t.Error("first answer should win")
	}

	t.Run("cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		errs := make(chan error, 1)
		go func() {
			_, err := queue.RequestConfirmation(ctx, prompt)
			errs <- err
		}()
		testutil.RequireReceive(t, queue.Requests(), 5*time.Second, "pending prompt")
		cancel()
		if err := testutil.RequireReceive(t, errs, 5*time.Second, "cancellation"); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestScript(t *testing.T) {
	script := NewScript(true, false)
	ctx := context.Background()
	for i, want := range []bool{true, false, false} {
		got, err := script.RequestConfirmation(ctx, Prompt{Body: "question"})
		if err != nil || got != want {
			t.Errorf("answer %d = %v, %v; want %v", i, got, err, want)
		}
	}
	if len(script.Prompts()) != 3 {
		t.Errorf("recorded %d prompts, want 3", len(script.Prompts()))
	}

	if accepted, _ := Always(true).RequestConfirmation(ctx, Prompt{}); !accepted {
		t.Error("Always(true) declined")
	}
}
