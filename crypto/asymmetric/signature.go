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

package asymmetric

import (
	ec "github.com/btcsuite/btcd/btcec/v2"
	ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/pkg/errors"
)

// Signature is an ECDSA signature over the secp256k1 curve.
type Signature ecdsa.Signature

// Serialize converts the signature to DER format.
func (s *Signature) Serialize() []byte {
	return (*ecdsa.Signature)(s).Serialize()
}

// ParseSignature recovers a signature from a DER byte string.
func ParseSignature(sigStr []byte) (*Signature, error) {
	sig, err := ecdsa.ParseDERSignature(sigStr)
	if err != nil {
		return nil, errors.Wrap(err, "parse signature failed")
	}
	return (*Signature)(sig), nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Signature) MarshalBinary() ([]byte, error) {
	return s.Serialize(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Signature) UnmarshalBinary(b []byte) (err error) {
	sig, err := ParseSignature(b)
	if err != nil {
		return
	}
	*s = *sig
	return
}

// IsEqual returns true if two signatures are identical.
func (s *Signature) IsEqual(signature *Signature) bool {
	return (*ecdsa.Signature)(s).IsEqual((*ecdsa.Signature)(signature))
}

// Sign generates an ECDSA signature for the provided hash (which should be the
// result of hashing a larger message) using the private key. Produced
// signature is deterministic (same message and same key yield the same
// signature) and canonical in accordance with RFC6979 and BIP0062.
func (p *PrivateKey) Sign(hash []byte) (*Signature, error) {
	return (*Signature)(ecdsa.Sign((*ec.PrivateKey)(p), hash)), nil
}

// Verify reports whether the signature is a valid signature of hash by signee.
func (s *Signature) Verify(hash []byte, signee *PublicKey) bool {
	if s == nil || signee == nil {
		return false
	}
	return (*ecdsa.Signature)(s).Verify(hash, (*ec.PublicKey)(signee))
}
