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

package hash

import (
	"crypto/sha256"

	"github.com/zeebo/blake3"
)

// THashB calculates the chain hash (BLAKE3) of b and returns the resulting
// bytes. Every hash written to a merkle tree, a leader tie-break or a chunk
// nonce derivation goes through this function; swapping it is a protocol
// break.
func THashB(b []byte) []byte {
	h := blake3.Sum256(b)
	return h[:]
}

// THashH calculates the chain hash (BLAKE3) of b and returns the resulting
// bytes as a Hash.
func THashH(b []byte) Hash {
	return Hash(blake3.Sum256(b))
}

// SHA256B calculates sha256(b) and returns the resulting bytes. Ciphertext
// digests keep SHA-256 so that external auditors do not need a BLAKE3
// implementation to spot-check stored chunks.
func SHA256B(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}

// SHA256H calculates sha256(b) and returns the resulting bytes as a Hash.
func SHA256H(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// DoubleHashB calculates sha256(sha256(b)) and returns the resulting bytes.
// Used by the password-based keystore cipher.
func DoubleHashB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleHashH calculates sha256(sha256(b)) and returns the resulting bytes as
// a Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}
