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

// Package proto contains the identity types shared by the pipeline and the
// consensus engine.
package proto

import (
	"github.com/HamiGames/Lucid-sub020/crypto/hash"
)

// NodeID is the node id of a participating node.
type NodeID string

// PoolID identifies a pool of nodes tallied as a single consensus entity.
// Empty means the node participates on its own.
type PoolID string

// EntityID is the consensus-facing identity a work tally is computed for:
// the pool id when the node belongs to a pool, the node id otherwise.
type EntityID string

// AccountAddress is the on-ledger owner address, generated from
// Hash(ownerPublicKey).
type AccountAddress hash.Hash

// IsEmpty test if a nodeID is empty.
func (id NodeID) IsEmpty() bool {
	return id == ""
}

// IsEqual returns if two node ids are equal.
func (id NodeID) IsEqual(target *NodeID) bool {
	return id == *target
}

// Entity returns the consensus entity for a node, honoring pool membership.
func (id NodeID) Entity(pool PoolID) EntityID {
	if pool != "" {
		return EntityID(pool)
	}
	return EntityID(id)
}

// String implements fmt.Stringer.
func (a AccountAddress) String() string {
	return hash.Hash(a).String()
}

// AsBytes returns the address content as a byte slice.
func (a AccountAddress) AsBytes() []byte {
	h := hash.Hash(a)
	return h.CloneBytes()
}

// MarshalYAML implements the yaml.Marshaler interface.
func (a AccountAddress) MarshalYAML() (interface{}, error) {
	return hash.Hash(a).MarshalYAML()
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (a *AccountAddress) UnmarshalYAML(unmarshal func(interface{}) error) error {
	return (*hash.Hash)(a).UnmarshalYAML(unmarshal)
}

// MarshalJSON implements the json.Marshaler interface.
func (a AccountAddress) MarshalJSON() ([]byte, error) {
	return hash.Hash(a).MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *AccountAddress) UnmarshalJSON(data []byte) error {
	return (*hash.Hash)(a).UnmarshalJSON(data)
}
