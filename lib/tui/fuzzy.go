// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var fuzzyInit sync.Once

// FuzzyResult is the outcome of matching one text against a pattern.
// Score is zero when the pattern does not match. Positions are rune
// offsets of the matched characters, for highlighting.
type FuzzyResult struct {
	Score     int
	Positions []int
}

// FuzzyMatch scores text against pattern with fzf's V2 algorithm,
// ignoring case. An empty pattern matches everything with score 1.
// slab may be nil; pass one to reuse scratch space across calls.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Score: 1}
	}
	fuzzyInit.Do(func() { algo.Init("default") })

	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Score <= 0 {
		return FuzzyResult{}
	}
	match := FuzzyResult{Score: result.Score}
	if positions != nil {
		match.Positions = slices.Clone(*positions)
		slices.Sort(match.Positions)
	}
	return match
}

// Ranked pairs an item with its match.
type Ranked[T any] struct {
	Item  T
	Match FuzzyResult
}

// FuzzyFilter returns the items whose label matches query, best match
// first. Ties keep input order.
func FuzzyFilter[T any](items []T, label func(T) string, query string) []Ranked[T] {
	pattern := []rune(strings.TrimSpace(query))
	slab := util.MakeSlab(100*1024, 2048)
	var ranked []Ranked[T]
	for _, item := range items {
		match := FuzzyMatch(label(item), pattern, slab)
		if match.Score > 0 {
			ranked = append(ranked, Ranked[T]{Item: item, Match: match})
		}
	}
	slices.SortStableFunc(ranked, func(a, b Ranked[T]) int {
		return cmp.Compare(b.Match.Score, a.Match.Score)
	})
	return ranked
}
