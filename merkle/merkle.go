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

// Package merkle implements the binary Merkle tree that summarizes a
// session's ordered chunk set.
//
// Padding rule: when a level has an odd node count, the last node is
// paired with itself, H(x || x). Implementations that instead promote
// the odd node unchanged produce different roots, so the rule is pinned
// by test vectors and must never change.
package merkle

import (
	"github.com/pkg/errors"

	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/utils"
)

// ErrIndexOutOfRange indicates a proof request for a leaf the tree
// does not contain.
var ErrIndexOutOfRange = errors.New("leaf index out of range")

// ProofStep is one element of an authentication path: the sibling hash
// and which side it sits on.
type ProofStep struct {
	Hash  hash.Hash
	Right bool
}

// Merkle is a binary Merkle tree held as per-level hash arenas, level 0
// being the leaves and the last level the root.
type Merkle struct {
	levels [][]hash.Hash
}

// MergeTwoHash computes the hash of the concatenation of two hashes.
func MergeTwoHash(l, r *hash.Hash) *hash.Hash {
	result := hash.THashH(utils.ConcatAll(l[:], r[:]))
	return &result
}

// NewMerkle builds a tree over the ordered leaf hashes. An empty leaf
// set yields a single zero-hash root so that every session has a
// well-defined root.
func NewMerkle(leaves []hash.Hash) *Merkle {
	if len(leaves) == 0 {
		leaves = []hash.Hash{{}}
	}

	m := &Merkle{}
	level := make([]hash.Hash, len(leaves))
	copy(level, leaves)
	m.levels = append(m.levels, level)

	for len(level) > 1 {
		next := make([]hash.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, *MergeTwoHash(&level[i], &level[i+1]))
			} else {
				// odd node, paired with itself
				next = append(next, *MergeTwoHash(&level[i], &level[i]))
			}
		}
		m.levels = append(m.levels, next)
		level = next
	}

	return m
}

// GetRoot returns the root of the tree.
func (m *Merkle) GetRoot() *hash.Hash {
	top := m.levels[len(m.levels)-1]
	return &top[0]
}

// LeafCount returns the number of leaves the tree was built over.
func (m *Merkle) LeafCount() int {
	return len(m.levels[0])
}

// Proof returns the authentication path of the leaf at index, ordered
// from the leaf level up. The path length is O(log n).
func (m *Merkle) Proof(index int) (steps []ProofStep, err error) {
	if index < 0 || index >= len(m.levels[0]) {
		err = ErrIndexOutOfRange
		return
	}

	pos := index
	for _, level := range m.levels[:len(m.levels)-1] {
		sibling := pos ^ 1
		if sibling >= len(level) {
			// odd node, its own sibling
			sibling = pos
		}
		steps = append(steps, ProofStep{
			Hash:  level[sibling],
			Right: sibling != pos && sibling > pos,
		})
		pos >>= 1
	}

	return
}

// Verify recomputes the path from leaf through steps and compares the
// result to root.
func Verify(leaf hash.Hash, steps []ProofStep, root *hash.Hash) bool {
	current := leaf
	for _, step := range steps {
		if step.Right {
			current = *MergeTwoHash(&current, &step.Hash)
		} else {
			current = *MergeTwoHash(&step.Hash, &current)
		}
	}
	return current.IsEqual(root)
}
