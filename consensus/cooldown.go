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

package consensus

import (
	"sync"

	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/types"
)

// CooldownSnapshot is an immutable view of the cooldown table, the form
// leader selection consumes and the store persists. Version increases
// with every recorded winner so divergent views are detectable.
type CooldownSnapshot struct {
	Version    uint64
	LastServed map[string]uint64 // entity -> slot last served as winner
}

// InCooldown reports whether the entity is still cooling down at slot.
func (c *CooldownSnapshot) InCooldown(entity proto.EntityID, slot uint64) bool {
	served, ok := c.LastServed[string(entity)]
	if !ok {
		return false
	}
	return slot > served && slot-served <= types.CooldownSlots
}

// Remaining returns how many slots of cooldown are left at slot, zero
// when the entity is eligible.
func (c *CooldownSnapshot) Remaining(entity proto.EntityID, slot uint64) uint64 {
	served, ok := c.LastServed[string(entity)]
	if !ok || slot <= served {
		return 0
	}
	if elapsed := slot - served; elapsed <= types.CooldownSlots {
		return types.CooldownSlots - elapsed + 1
	}
	return 0
}

// CooldownTable is the shared mutable cooldown state of the scheduler.
// All reads for selection go through Snapshot.
type CooldownTable struct {
	mu   sync.RWMutex
	snap CooldownSnapshot
}

// NewCooldownTable builds a table from a restored snapshot, or an empty
// table for nil.
func NewCooldownTable(restore *CooldownSnapshot) *CooldownTable {
	t := &CooldownTable{}
	t.snap.LastServed = make(map[string]uint64)
	if restore != nil {
		t.snap.Version = restore.Version
		for k, v := range restore.LastServed {
			t.snap.LastServed[k] = v
		}
	}
	return t
}

// Snapshot returns a copy safe to read concurrently with Record.
func (t *CooldownTable) Snapshot() *CooldownSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cp := &CooldownSnapshot{
		Version:    t.snap.Version,
		LastServed: make(map[string]uint64, len(t.snap.LastServed)),
	}
	for k, v := range t.snap.LastServed {
		cp.LastServed[k] = v
	}
	return cp
}

// Record notes the winner of a slot and returns the updated snapshot
// that must be persisted together with the slot result.
func (t *CooldownTable) Record(entity proto.EntityID, slot uint64) *CooldownSnapshot {
	t.mu.Lock()
	t.snap.Version++
	t.snap.LastServed[string(entity)] = slot
	t.mu.Unlock()
	return t.Snapshot()
}

// Status reports the cooldown standing of one entity at slot.
func (t *CooldownTable) Status(entity proto.EntityID, slot uint64) (remaining uint64, cooling bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	remaining = t.snap.Remaining(entity, slot)
	return remaining, remaining > 0
}
