// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/huddle-chat/huddle/lib/ref"
)

type sampleCursor struct {
	CreatedAt time.Time     `cbor:"t"`
	ID        ref.MessageID `cbor:"id"`
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{"b": 2, "a": 1, "c": []string{"x"}}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestTokenRoundtrip(t *testing.T) {
	original := sampleCursor{
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC),
		ID:        ref.NewMessageID(),
	}

	token, err := EncodeToken(original)
	if err != nil {
		t.Fatalf("EncodeToken: %v", err)
	}
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("token %q is not URL-safe", token)
	}

	var decoded sampleCursor
	if err := DecodeToken(token, &decoded); err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", decoded.CreatedAt, original.CreatedAt)
	}
	if decoded.ID != original.ID {
		t.Errorf("ID = %v, want %v", decoded.ID, original.ID)
	}
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	var decoded sampleCursor
	if err := DecodeToken("%%%", &decoded); err == nil {
		t.Error("DecodeToken accepted non-base64 input")
	}
	if err := DecodeToken("AAAA", &decoded); err == nil {
		t.Error("DecodeToken accepted non-CBOR input")
	}
}

func TestFingerprint(t *testing.T) {
	type snapshot struct {
		Name  string   `json:"name"`
		Items []string `json:"items"`
	}

	a, err := Fingerprint(snapshot{Name: "general", Items: []string{"one"}})
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	b, _ := Fingerprint(snapshot{Name: "general", Items: []string{"one"}})
	c, _ := Fingerprint(snapshot{Name: "general", Items: []string{"one", "two"}})

	if a != b {
		t.Error("equal values produced different fingerprints")
	}
	if a == c {
		t.Error("different values produced equal fingerprints")
	}
}

func TestEncoderDecoderStream(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for i := 0; i < 3; i++ {
		if err := encoder.Encode(map[string]int{"n": i}); err != nil {
			t.Fatalf("Encode %d: %v", i, err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i := 0; i < 3; i++ {
		var value map[string]int
		if err := decoder.Decode(&value); err != nil {
			t.Fatalf("Decode %d: %v", i, err)
		}
		if value["n"] != i {
			t.Errorf("frame %d: n = %d", i, value["n"])
		}
	}
}
