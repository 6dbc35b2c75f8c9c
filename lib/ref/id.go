// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// kind ties an ID type to its string prefix. Kind types are unexported
// so that the set of entity kinds is closed.
type kind interface {
	prefix() string
	name() string
}

// ID is a validated entity identifier of kind K.
//
// ID is an immutable value type. The zero value is not a valid
// identifier; use IsZero to check for "unset".
type ID[K kind] struct {
	id string
}

func newID[K kind]() ID[K] {
	var k K
	return ID[K]{id: k.prefix() + "_" + uuid.NewString()}
}

func parseID[K kind](raw string) (ID[K], error) {
	var k K
	if raw == "" {
		return ID[K]{}, fmt.Errorf("empty %s ID", k.name())
	}
	prefix, rest, found := strings.Cut(raw, "_")
	if !found {
		return ID[K]{}, fmt.Errorf("%s ID missing %q prefix: %q", k.name(), k.prefix()+"_", raw)
	}
	if prefix != k.prefix() {
		return ID[K]{}, fmt.Errorf("%s ID must start with %q: %q", k.name(), k.prefix()+"_", raw)
	}
	if _, err := uuid.Parse(rest); err != nil {
		return ID[K]{}, fmt.Errorf("%s ID has malformed body %q: %w", k.name(), rest, err)
	}
	return ID[K]{id: raw}, nil
}

func mustParseID[K kind](raw string) ID[K] {
	id, err := parseID[K](raw)
	if err != nil {
		panic(fmt.Sprintf("ref: %v", err))
	}
	return id
}

// String returns the canonical "<prefix>_<uuid>" form.
func (i ID[K]) String() string { return i.id }

// IsZero reports whether the ID is unset.
func (i ID[K]) IsZero() bool { return i.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (i ID[K]) MarshalText() ([]byte, error) {
	return []byte(i.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (i *ID[K]) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = ID[K]{}
		return nil
	}
	parsed, err := parseID[K](string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
