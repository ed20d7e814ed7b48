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
	"time"

	"github.com/HamiGames/Lucid-sub020/types"
)

// SlotClock maps wall-clock time onto the strictly sequential slot
// numbering, anchored at a fixed genesis instant shared by all nodes.
type SlotClock struct {
	genesis time.Time
}

// NewSlotClock returns a clock anchored at genesis.
func NewSlotClock(genesis time.Time) *SlotClock {
	return &SlotClock{genesis: genesis.UTC()}
}

// Genesis returns the genesis instant.
func (c *SlotClock) Genesis() time.Time {
	return c.genesis
}

// SlotAt returns the slot containing t. Instants before genesis map to
// slot 0.
func (c *SlotClock) SlotAt(t time.Time) uint64 {
	d := t.Sub(c.genesis)
	if d < 0 {
		return 0
	}
	return uint64(d / types.SlotDuration)
}

// SlotStart returns the starting instant of a slot.
func (c *SlotClock) SlotStart(slot uint64) time.Time {
	return c.genesis.Add(time.Duration(slot) * types.SlotDuration)
}

// NextSlot returns the first slot starting strictly after t, and its
// starting instant.
func (c *SlotClock) NextSlot(t time.Time) (slot uint64, start time.Time) {
	slot = c.SlotAt(t) + 1
	if t.Before(c.genesis) {
		slot = 0
	}
	start = c.SlotStart(slot)
	return
}

// EpochAt returns the epoch containing t.
func (c *SlotClock) EpochAt(t time.Time) uint64 {
	return types.EpochOfSlot(c.SlotAt(t))
}
