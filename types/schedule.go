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

package types

import (
	"time"

	"github.com/HamiGames/Lucid-sub020/proto"
)

// SlotOutcome records how a slot concluded.
type SlotOutcome int32

const (
	// SlotScheduled means a schedule was computed, outcome still open.
	SlotScheduled SlotOutcome = iota
	// SlotPublished means the recorded leader published in time.
	SlotPublished
	// SlotTimedOut means every candidate missed its publish window.
	SlotTimedOut
	// SlotNoQuorum means no eligible entity existed for the slot, so no
	// anchor was possible.
	SlotNoQuorum
)

// String implements fmt.Stringer.
func (o SlotOutcome) String() string {
	switch o {
	case SlotScheduled:
		return "scheduled"
	case SlotPublished:
		return "published"
	case SlotTimedOut:
		return "timed_out"
	case SlotNoQuorum:
		return "no_quorum"
	default:
		return "unknown"
	}
}

// Reason strings recorded alongside a slot outcome. ReasonTimeout on a
// published slot means the primary missed its window and the winner is
// a promoted fallback.
const (
	ReasonTimeout  = "timeout"
	ReasonNoQuorum = "no_quorum"
)

// LeaderSchedule is the deterministic leader assignment of one slot:
// the primary publisher plus ordered fallbacks, and, once the slot has
// run, its outcome. Schedules are append-only historical records.
type LeaderSchedule struct {
	Slot       uint64
	Epoch      uint64
	Primary    proto.EntityID
	Fallbacks  []proto.EntityID
	Outcome    SlotOutcome
	Winner     proto.EntityID
	Reason     string
	ComputedAt time.Time
}

// IsNoQuorum reports whether the slot had no eligible leader at all.
func (s *LeaderSchedule) IsNoQuorum() bool {
	return s.Primary == ""
}

// Candidates returns primary plus fallbacks in promotion order.
func (s *LeaderSchedule) Candidates() []proto.EntityID {
	if s.IsNoQuorum() {
		return nil
	}
	out := make([]proto.EntityID, 0, len(s.Fallbacks)+1)
	out = append(out, s.Primary)
	out = append(out, s.Fallbacks...)
	return out
}
