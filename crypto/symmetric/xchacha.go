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

package symmetric

import (
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/HamiGames/Lucid-sub020/crypto/hash"
)

const (
	// ChunkKeySize is the size of a derived per-session chunk key.
	ChunkKeySize = chacha20poly1305.KeySize
	// ChunkNonceSize is the extended nonce size used for chunk sealing.
	ChunkNonceSize = chacha20poly1305.NonceSizeX
)

var (
	// ErrKeySize indicates a chunk key of the wrong length.
	ErrKeySize = errors.New("chunk key size not match")
	// ErrAuthFailure indicates the ciphertext failed AEAD authentication.
	ErrAuthFailure = errors.New("ciphertext authentication failed")
)

// ChunkNonce derives the deterministic 24-byte nonce for a chunk. Nonce
// uniqueness per (session, index) holds as long as session ids are unique,
// which removes any external nonce bookkeeping. Deriving instead of drawing
// random bytes also keeps re-encryption of the same chunk byte-identical.
func ChunkNonce(sessionID string, index uint32) (nonce [ChunkNonceSize]byte) {
	var material = make([]byte, 0, len(sessionID)+8)
	material = append(material, sessionID...)
	material = binary.BigEndian.AppendUint64(material, uint64(index))
	copy(nonce[:], hash.THashB(material)[:ChunkNonceSize])
	return
}

// SealChunk encrypts a compressed chunk under the per-session key with the
// deterministic nonce for (sessionID, index). The Poly1305 tag is appended to
// the returned ciphertext.
func SealChunk(plain []byte, key []byte, sessionID string, index uint32) (cipherData []byte, nonce [ChunkNonceSize]byte, err error) {
	if len(key) != ChunkKeySize {
		err = ErrKeySize
		return
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return
	}
	nonce = ChunkNonce(sessionID, index)
	cipherData = aead.Seal(nil, nonce[:], plain, nil)
	return
}

// OpenChunk decrypts and authenticates a sealed chunk. Used on the
// verification/audit path; a wrong key or any ciphertext damage surfaces as
// ErrAuthFailure.
func OpenChunk(cipherData []byte, key []byte, sessionID string, index uint32) (plain []byte, err error) {
	if len(key) != ChunkKeySize {
		err = ErrKeySize
		return
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return
	}
	nonce := ChunkNonce(sessionID, index)
	if plain, err = aead.Open(nil, nonce[:], cipherData, nil); err != nil {
		err = ErrAuthFailure
		return
	}
	return
}
