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

// Package asymmetric wraps btcsuite's secp256k1 package, exporting only the
// key and signature types the node actually uses.
package asymmetric

import (
	ec "github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
)

// PrivateKeyBytesLen is the byte length of a serialized private key.
const PrivateKeyBytesLen = 32

// PrivateKey is a secp256k1 private key.
type PrivateKey ec.PrivateKey

// PublicKey is a secp256k1 public key.
type PublicKey ec.PublicKey

// GenSecp256k1KeyPair generates a new private/public key pair.
func GenSecp256k1KeyPair() (privateKey *PrivateKey, publicKey *PublicKey, err error) {
	var priv *ec.PrivateKey
	if priv, err = ec.NewPrivateKey(); err != nil {
		err = errors.Wrap(err, "generate private key failed")
		return
	}
	privateKey = (*PrivateKey)(priv)
	publicKey = privateKey.PubKey()
	return
}

// PubKey returns the public key corresponding to the private key.
func (p *PrivateKey) PubKey() *PublicKey {
	return (*PublicKey)((*ec.PrivateKey)(p).PubKey())
}

// Serialize returns the 32-byte big-endian binary form of the private key.
func (p *PrivateKey) Serialize() []byte {
	return (*ec.PrivateKey)(p).Serialize()
}

// PrivKeyFromBytes decodes a serialized private key.
func PrivKeyFromBytes(b []byte) (*PrivateKey, *PublicKey) {
	priv, _ := ec.PrivKeyFromBytes(b)
	wrapped := (*PrivateKey)(priv)
	return wrapped, wrapped.PubKey()
}

// Serialize returns the compressed binary form of the public key.
func (p *PublicKey) Serialize() []byte {
	return (*ec.PublicKey)(p).SerializeCompressed()
}

// IsEqual reports whether both keys describe the same point.
func (p *PublicKey) IsEqual(other *PublicKey) bool {
	return (*ec.PublicKey)(p).IsEqual((*ec.PublicKey)(other))
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *PublicKey) MarshalBinary() ([]byte, error) {
	return p.Serialize(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *PublicKey) UnmarshalBinary(b []byte) (err error) {
	pub, err := ParsePubKey(b)
	if err != nil {
		return
	}
	*p = *pub
	return
}

// ParsePubKey decodes a compressed or uncompressed public key.
func ParsePubKey(b []byte) (*PublicKey, error) {
	pub, err := ec.ParsePubKey(b)
	if err != nil {
		return nil, errors.Wrap(err, "parse public key failed")
	}
	return (*PublicKey)(pub), nil
}
