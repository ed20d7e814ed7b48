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
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/HamiGames/Lucid-sub020/crypto/hash"
)

func testChunkKey(seed string) []byte {
	return hash.THashB([]byte(seed))
}

func TestChunkNonceDeterminism(t *testing.T) {
	Convey("Chunk nonces should be deterministic per (session, index)", t, func() {
		n1 := ChunkNonce("session-a", 0)
		n2 := ChunkNonce("session-a", 0)
		So(bytes.Equal(n1[:], n2[:]), ShouldBeTrue)

		Convey("and distinct across indexes and sessions", func() {
			n3 := ChunkNonce("session-a", 1)
			n4 := ChunkNonce("session-b", 0)
			So(bytes.Equal(n1[:], n3[:]), ShouldBeFalse)
			So(bytes.Equal(n1[:], n4[:]), ShouldBeFalse)
		})
	})
}

func TestSealOpenChunk(t *testing.T) {
	Convey("Given a chunk key and payload", t, func() {
		key := testChunkKey("session master")
		plain := bytes.Repeat([]byte("lucid chunk payload "), 1024)

		cipherData, nonce, err := SealChunk(plain, key, "session-a", 3)
		So(err, ShouldBeNil)
		So(len(cipherData), ShouldEqual, len(plain)+16)
		expected := ChunkNonce("session-a", 3)
		So(bytes.Equal(nonce[:], expected[:]), ShouldBeTrue)

		Convey("opening with the right key should round-trip", func() {
			out, err := OpenChunk(cipherData, key, "session-a", 3)
			So(err, ShouldBeNil)
			So(bytes.Equal(out, plain), ShouldBeTrue)
		})

		Convey("opening with a wrong key should fail authentication", func() {
			_, err := OpenChunk(cipherData, testChunkKey("other master"), "session-a", 3)
			So(err, ShouldEqual, ErrAuthFailure)
		})

		Convey("opening with a wrong index should fail authentication", func() {
			_, err := OpenChunk(cipherData, key, "session-a", 4)
			So(err, ShouldEqual, ErrAuthFailure)
		})

		Convey("flipping any ciphertext bit should fail authentication", func() {
			mutated := append([]byte(nil), cipherData...)
			mutated[10] ^= 0x01
			_, err := OpenChunk(mutated, key, "session-a", 3)
			So(err, ShouldEqual, ErrAuthFailure)
		})

		Convey("a short key should be rejected", func() {
			_, _, err := SealChunk(plain, key[:16], "session-a", 3)
			So(err, ShouldEqual, ErrKeySize)
		})
	})
}

func TestEncryptDecryptWithPassword(t *testing.T) {
	Convey("Password cipher should round-trip", t, func() {
		password := []byte("keystore password")
		salt := []byte("lucid")
		in := []byte("node private key material")

		enc, err := EncryptWithPassword(in, password, salt)
		So(err, ShouldBeNil)

		out, err := DecryptWithPassword(enc, password, salt)
		So(err, ShouldBeNil)
		So(bytes.Equal(out, in), ShouldBeTrue)

		Convey("and reject malformed input", func() {
			_, err := DecryptWithPassword(enc[:7], password, salt)
			So(err, ShouldEqual, ErrInputSize)
		})
	})
}
