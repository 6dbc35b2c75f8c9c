// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "testing"

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		match   bool
	}{
		{"substring", "Grace Hopper", "hopper", true},
		{"non-contiguous", "Grace Hopper", "ghp", true},
		{"case-insensitive", "ADA LOVELACE", "ada", true},
		{"no match", "Grace Hopper", "xyz", false},
		{"empty pattern", "anyone", "", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := FuzzyMatch(test.text, []rune(test.pattern), nil)
			if (result.Score > 0) != test.match {
				t.Errorf("FuzzyMatch(%q, %q) score = %d, want match=%v", test.text, test.pattern, result.Score, test.match)
			}
			if test.match && test.pattern != "" && len(result.Positions) == 0 {
				t.Errorf("expected match positions")
			}
		})
	}
}

func TestFuzzyFilter(t *testing.T) {
	names := []string{"Linus", "Grace Hopper", "Ada Lovelace", "Gregory"}
	ranked := FuzzyFilter(names, func(name string) string { return name }, "gr")
	if len(ranked) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(ranked), ranked)
	}
	for _, entry := range ranked {
		if entry.Item != "Grace Hopper" && entry.Item != "Gregory" {
			t.Errorf("unexpected match %q", entry.Item)
		}
	}

	if all := FuzzyFilter(names, func(name string) string { return name }, "  "); len(all) != len(names) {
		t.Errorf("blank query matched %d of %d", len(all), len(names))
	}
}
