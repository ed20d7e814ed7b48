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
	"bytes"
	"encoding/binary"
	"sort"
	"time"

	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/types"
	"github.com/HamiGames/Lucid-sub020/utils"
)

// tieBreak is the PRF that orders entities with equal credits and live
// score: blake3(uint64_be(slot) || entity), compared lexicographically,
// lower first. Seeded by the slot so the ordering rotates per slot yet
// every observer computes it identically.
func tieBreak(slot uint64, entity proto.EntityID) hash.Hash {
	var slotBuf [8]byte
	binary.BigEndian.PutUint64(slotBuf[:], slot)
	return hash.THashH(utils.ConcatAll(slotBuf[:], []byte(entity)))
}

// SelectLeader computes the leader schedule of a slot from a work tally
// and a cooldown view.
//
// This is a pure function of its inputs: no hidden state, identical
// inputs produce identical schedules on every node. Ranking is credits
// desc, live score desc, tie-break asc. The primary is the top-ranked
// eligible entity, eligibility = live score >= types.MinLiveScore and
// not in cooldown; the fallbacks are the next eligible entities in rank
// order, at most types.MaxFallbacks of them. No eligible entity at all
// yields a no-quorum schedule.
//
// Entities in cooldown are dropped from the candidate list entirely,
// fallbacks included: a cooling entity never appears in a schedule, it
// re-enters the ranking once its cooldown lapses.
func SelectLeader(slot uint64, tally map[proto.EntityID]*types.WorkTally, cooldown *CooldownSnapshot) *types.LeaderSchedule {
	sched := &types.LeaderSchedule{
		Slot:       slot,
		Epoch:      types.EpochOfSlot(slot),
		ComputedAt: time.Now().UTC(),
	}

	type ranked struct {
		entity proto.EntityID
		tally  *types.WorkTally
		tie    hash.Hash
	}

	candidates := make([]ranked, 0, len(tally))
	for entity, t := range tally {
		if !t.Eligible() {
			continue
		}
		if cooldown != nil && cooldown.InCooldown(entity, slot) {
			continue
		}
		candidates = append(candidates, ranked{
			entity: entity,
			tally:  t,
			tie:    tieBreak(slot, entity),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.tally.Credits != b.tally.Credits {
			return a.tally.Credits > b.tally.Credits
		}
		if a.tally.LiveScore != b.tally.LiveScore {
			return a.tally.LiveScore > b.tally.LiveScore
		}
		return bytes.Compare(a.tie[:], b.tie[:]) < 0
	})

	if len(candidates) == 0 {
		sched.Outcome = types.SlotNoQuorum
		return sched
	}

	sched.Primary = candidates[0].entity
	for _, c := range candidates[1:] {
		if len(sched.Fallbacks) == types.MaxFallbacks {
			break
		}
		sched.Fallbacks = append(sched.Fallbacks, c.entity)
	}
	return sched
}
