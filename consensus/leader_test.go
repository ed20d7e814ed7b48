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
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/types"
)

func tallyOf(entries map[string]struct {
	credits uint64
	live    float64
}) map[proto.EntityID]*types.WorkTally {
	out := make(map[proto.EntityID]*types.WorkTally)
	for id, e := range entries {
		out[proto.EntityID(id)] = &types.WorkTally{
			Entity:    proto.EntityID(id),
			Credits:   e.credits,
			LiveScore: e.live,
		}
	}
	return out
}

func TestSelectLeaderRanking(t *testing.T) {
	Convey("Given entities with distinct credits", t, func() {
		tally := tallyOf(map[string]struct {
			credits uint64
			live    float64
		}{
			"a": {credits: 100, live: 1},
			"b": {credits: 200, live: 1},
			"c": {credits: 50, live: 1},
		})

		sched := SelectLeader(7, tally, nil)
		So(sched.Primary, ShouldEqual, proto.EntityID("b"))
		So(sched.Fallbacks, ShouldResemble, []proto.EntityID{"a", "c"})
		So(sched.Slot, ShouldEqual, 7)
		So(sched.IsNoQuorum(), ShouldBeFalse)
	})

	Convey("Live score breaks equal credits", t, func() {
		tally := tallyOf(map[string]struct {
			credits uint64
			live    float64
		}{
			"a": {credits: 100, live: 0.5},
			"b": {credits: 100, live: 0.9},
		})

		sched := SelectLeader(7, tally, nil)
		So(sched.Primary, ShouldEqual, proto.EntityID("b"))
	})

	Convey("Entities below the liveness floor are excluded", t, func() {
		tally := tallyOf(map[string]struct {
			credits uint64
			live    float64
		}{
			"a": {credits: 1000, live: 0.1}, // below floor
			"b": {credits: 10, live: 0.3},
		})

		sched := SelectLeader(7, tally, nil)
		So(sched.Primary, ShouldEqual, proto.EntityID("b"))
		So(sched.Fallbacks, ShouldBeEmpty)
	})

	Convey("A zero-credit entity is never selectable", t, func() {
		// an uptime-only reporter tallies live but creditless
		tally := tallyOf(map[string]struct {
			credits uint64
			live    float64
		}{
			"idle": {credits: 0, live: 1},
			"b":    {credits: 10, live: 0.3},
		})

		sched := SelectLeader(7, tally, nil)
		So(sched.Primary, ShouldEqual, proto.EntityID("b"))
		So(sched.Fallbacks, ShouldBeEmpty)
	})

	Convey("The fallback list is capped", t, func() {
		entries := make(map[string]struct {
			credits uint64
			live    float64
		})
		for i := 0; i < types.MaxFallbacks+4; i++ {
			entries[fmt.Sprintf("node-%02d", i)] = struct {
				credits uint64
				live    float64
			}{credits: uint64(100 + i), live: 1}
		}

		sched := SelectLeader(7, tallyOf(entries), nil)
		So(sched.Fallbacks, ShouldHaveLength, types.MaxFallbacks)
	})

	Convey("An empty or fully ineligible tally is no quorum", t, func() {
		So(SelectLeader(7, nil, nil).IsNoQuorum(), ShouldBeTrue)
		So(SelectLeader(7, nil, nil).Outcome, ShouldEqual, types.SlotNoQuorum)

		tally := tallyOf(map[string]struct {
			credits uint64
			live    float64
		}{
			"a": {credits: 1000, live: 0.0},
		})
		So(SelectLeader(7, tally, nil).IsNoQuorum(), ShouldBeTrue)
	})
}

func TestSelectLeaderDeterminism(t *testing.T) {
	Convey("Identical inputs give identical schedules on repeat", t, func() {
		tally := tallyOf(map[string]struct {
			credits uint64
			live    float64
		}{
			"a": {credits: 100, live: 1},
			"b": {credits: 100, live: 1},
			"c": {credits: 100, live: 1},
			"d": {credits: 100, live: 1},
		})
		cd := &CooldownSnapshot{LastServed: map[string]uint64{}}

		first := SelectLeader(42, tally, cd)
		for i := 0; i < 10; i++ {
			again := SelectLeader(42, tally, cd)
			So(again.Primary, ShouldEqual, first.Primary)
			So(again.Fallbacks, ShouldResemble, first.Fallbacks)
		}
	})

	Convey("The tie-break rotates with the slot", t, func() {
		tally := tallyOf(map[string]struct {
			credits uint64
			live    float64
		}{
			"a": {credits: 1, live: 1}, "b": {credits: 1, live: 1},
			"c": {credits: 1, live: 1}, "d": {credits: 1, live: 1},
			"e": {credits: 1, live: 1}, "f": {credits: 1, live: 1},
			"g": {credits: 1, live: 1}, "h": {credits: 1, live: 1},
		})

		// with 8 tied entities, at least two of 32 slots pick a
		// different primary unless the PRF ignores the slot
		seen := make(map[proto.EntityID]bool)
		for slot := uint64(0); slot < 32; slot++ {
			seen[SelectLeader(slot, tally, nil).Primary] = true
		}
		So(len(seen), ShouldBeGreaterThan, 1)
	})
}

func TestSelectLeaderCooldown(t *testing.T) {
	Convey("A cooling-down entity is skipped for the whole window", t, func() {
		tally := tallyOf(map[string]struct {
			credits uint64
			live    float64
		}{
			"a": {credits: 200, live: 1},
			"b": {credits: 100, live: 1},
		})

		const served = 100
		cd := &CooldownSnapshot{LastServed: map[string]uint64{"a": served}}

		for slot := uint64(served + 1); slot <= served+types.CooldownSlots; slot++ {
			sched := SelectLeader(slot, tally, cd)
			So(sched.Primary, ShouldEqual, proto.EntityID("b"))
			So(sched.Fallbacks, ShouldBeEmpty)
		}

		Convey("And becomes primary again right after", func() {
			sched := SelectLeader(served+types.CooldownSlots+1, tally, cd)
			So(sched.Primary, ShouldEqual, proto.EntityID("a"))
			So(sched.Fallbacks, ShouldResemble, []proto.EntityID{"b"})
		})
	})
}
