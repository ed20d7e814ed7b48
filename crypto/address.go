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

package crypto

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"

	"github.com/HamiGames/Lucid-sub020/crypto/asymmetric"
	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/proto"
)

const (
	// MainNet is the address version byte for main net.
	MainNet byte = 0x0
	// TestNet is the address version byte for test net.
	TestNet byte = 0x6f
)

// PublicKeyToAddress is an alias to function crypto.PubKeyHash.
var PublicKeyToAddress = PubKeyHash

// PubKeyHash generates the account hash address for specified public key.
func PubKeyHash(pubKey *asymmetric.PublicKey) (addr proto.AccountAddress, err error) {
	if pubKey == nil {
		err = errors.New("nil public key")
		return
	}
	addr = proto.AccountAddress(hash.THashH(pubKey.Serialize()))
	return
}

// Hash2Addr renders an internal account address in base58check form.
func Hash2Addr(addr proto.AccountAddress, version byte) string {
	return base58.CheckEncode(addr[:], version)
}

// Addr2Hash parses a base58check address back to the internal hash form.
func Addr2Hash(addr string) (version byte, internalAddr proto.AccountAddress, err error) {
	var hashBytes []byte
	if hashBytes, version, err = base58.CheckDecode(addr); err != nil {
		err = errors.Wrap(err, "decode address failed")
		return
	}
	var h *hash.Hash
	if h, err = hash.NewHash(hashBytes); err != nil {
		return
	}
	internalAddr = proto.AccountAddress(*h)
	return
}
