/*
 * Copyright 2024 The Lucid Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"github.com/HamiGames/Lucid-sub020/crypto/hash"
)

// Chunk is one compressed plaintext segment of a session stream.
// RawSize is 64-bit on purpose: a highly compressible chunk can carry
// far more plaintext than its compressed bound.
type Chunk struct {
	SessionID string
	Index     uint32
	RawSize   uint64
	Data      []byte
}

// CompressionRatio returns compressed/raw size of the chunk.
func (c *Chunk) CompressionRatio() float64 {
	if c.RawSize == 0 {
		return 1
	}
	return float64(len(c.Data)) / float64(c.RawSize)
}

// EncryptedChunk is the sealed form of a Chunk. CipherData is held only
// while the chunk is in flight, at rest the ciphertext lives in blob
// storage addressed by CipherDigest.
type EncryptedChunk struct {
	SessionID      string
	Index          uint32
	RawSize        uint64
	CompressedSize uint32
	Nonce          []byte
	CipherDigest   hash.Hash
	LeafHash       hash.Hash
	CipherData     []byte `codec:"-"`
}

// Meta strips the in-flight ciphertext for persistence.
func (c *EncryptedChunk) Meta() EncryptedChunk {
	meta := *c
	meta.CipherData = nil
	return meta
}

// Seal fills the digest fields from the ciphertext. CipherDigest is the
// blob storage address, LeafHash is what the Merkle tree is built over.
func (c *EncryptedChunk) Seal(cipherData, nonce []byte) {
	c.CipherData = cipherData
	c.Nonce = nonce
	c.CipherDigest = hash.SHA256H(cipherData)
	c.LeafHash = hash.THashH(c.CipherDigest[:])
}
