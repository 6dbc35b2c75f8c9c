// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

// Package joincode generates and compares workspace join codes.
//
// A join code is six characters drawn from the digits and lowercase
// ASCII letters. Codes are compared case-insensitively after trimming
// surrounding whitespace, so "ABC123" entered by a user matches the
// stored "abc123".
package joincode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Length is the number of characters in a join code.
const Length = 6

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generate returns a fresh random join code.
func Generate() (string, error) {
	code := make([]byte, 0, Length)
	var raw [Length * 2]byte
	for len(code) < Length {
		if _, err := rand.Read(raw[:]); err != nil {
			return "", fmt.Errorf("joincode: reading random bytes: %w", err)
		}
		for _, b := range raw {
			// Rejection sampling: bytes at or above the largest
			// multiple of the alphabet size would skew the draw.
			if int(b) >= 256-256%len(alphabet) {
				continue
			}
			code = append(code, alphabet[int(b)%len(alphabet)])
			if len(code) == Length {
				break
			}
		}
	}
	return string(code), nil
}

// Regenerate returns a fresh code guaranteed to differ from previous
// (compared with Equal).
func Regenerate(previous string) (string, error) {
	for {
		code, err := Generate()
		if err != nil {
			return "", err
		}
		if !Equal(code, previous) {
			return code, nil
		}
	}
}

// Normalize trims whitespace and lowercases a user-entered code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Valid reports whether code, after normalization, has the shape of a
// join code: exactly Length characters from the alphabet.
func Valid(code string) bool {
	code = Normalize(code)
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// Equal compares two codes case-insensitively after trimming.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
