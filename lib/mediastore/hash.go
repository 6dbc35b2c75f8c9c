// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package mediastore

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is the 32-byte BLAKE3 digest addressing a media object.
type Hash [32]byte

// mediaDomainKey is the ASCII of "huddle.media", zero-padded to the 32
// bytes BLAKE3 keyed mode requires. Changing it invalidates every
// stored media address.
var mediaDomainKey = [32]byte{
	'h', 'u', 'd', 'd', 'l', 'e', '.', 'm', 'e', 'd', 'i', 'a',
}

// HashMedia computes the address of data.
func HashMedia(data []byte) Hash {
	hasher, err := blake3.NewKeyed(mediaDomainKey[:])
	if err != nil {
		panic("mediastore: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// String returns the lowercase hex form used in media URLs.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash parses a 64-character hex string.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("mediastore: parsing hash: %w", err)
	}
	if len(decoded) != len(hash) {
		return hash, fmt.Errorf("mediastore: hash is %d bytes, want %d", len(decoded), len(hash))
	}
	copy(hash[:], decoded)
	return hash, nil
}
