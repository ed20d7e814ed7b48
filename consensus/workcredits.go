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
	"sort"
	"time"

	"github.com/HamiGames/Lucid-sub020/metric"
	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/types"
	"github.com/HamiGames/Lucid-sub020/utils/log"
)

// Collector ingests signed task proofs and aggregates them into
// per-entity work tallies over the sliding window.
type Collector struct {
	store *Store
	clock *SlotClock
}

// NewCollector returns a collector over the given store and slot clock.
func NewCollector(store *Store, clock *SlotClock) *Collector {
	return &Collector{store: store, clock: clock}
}

// Ingest validates and stores one proof. Invalid proofs are dropped
// silently: logged and reported in the return value, never an error —
// a malicious or malformed proof must not disturb the caller.
// Accepted proofs are idempotent on (slot, node, type).
func (c *Collector) Ingest(p *types.TaskProof) (accepted bool, err error) {
	le := log.WithFields(log.Fields{
		"slot": p.Slot,
		"node": p.NodeID,
		"type": p.Type.String(),
	})

	if !p.Type.IsValid() {
		le.Warning("dropping proof with unknown type")
		metric.ProofsRejected.WithLabelValues("unknown_type").Inc()
		return false, nil
	}
	if verr := p.Verify(); verr != nil {
		le.WithError(verr).Warning("dropping proof with invalid signature")
		metric.ProofsRejected.WithLabelValues("bad_signature").Inc()
		return false, nil
	}

	isNew, err := c.store.PutProof(p)
	if err != nil {
		return false, err
	}
	if !isNew {
		le.Debug("duplicate proof ignored")
	}
	metric.ProofsAccepted.WithLabelValues(p.Type.String()).Inc()
	return true, nil
}

// Tally aggregates the proof window ending at upTo into per-entity
// tallies for the epoch. Proofs outside the window or failing
// re-verification are skipped silently. The computed tallies are
// persisted, superseding the epoch's previous set.
func (c *Collector) Tally(epoch uint64, upTo time.Time) (tallies map[proto.EntityID]*types.WorkTally, err error) {
	windowStart := upTo.Add(-types.LeaderWindowDays * 24 * time.Hour)
	fromSlot := c.clock.SlotAt(windowStart)
	toSlot := c.clock.SlotAt(upTo) + 1

	proofs, err := c.store.ProofsBySlotRange(fromSlot, toSlot)
	if err != nil {
		return
	}

	var (
		credits = make(map[proto.EntityID]uint64)
		uptime  = make(map[proto.EntityID]uint64)
	)
	for _, p := range proofs {
		if p.Timestamp.Before(windowStart) || p.Timestamp.After(upTo) {
			log.WithFields(log.Fields{
				"slot": p.Slot,
				"node": p.NodeID,
			}).Warning("skipping out-of-window proof")
			continue
		}
		if verr := p.Verify(); verr != nil {
			log.WithFields(log.Fields{
				"slot": p.Slot,
				"node": p.NodeID,
			}).WithError(verr).Warning("skipping proof failing verification")
			continue
		}

		entity := p.Entity()
		credits[entity] += p.WorkValue()
		uptime[entity] += p.LiveSeconds()
	}

	windowSeconds := upTo.Sub(windowStart).Seconds()
	tallies = make(map[proto.EntityID]*types.WorkTally, len(credits))
	for entity := range credits {
		live := float64(uptime[entity]) / windowSeconds
		if live > 1 {
			live = 1
		}
		tallies[entity] = &types.WorkTally{
			Epoch:     epoch,
			Entity:    entity,
			Credits:   credits[entity],
			LiveScore: live,
		}
	}

	rank(tallies)

	for _, t := range tallies {
		if err = c.store.PutTally(t); err != nil {
			return
		}
	}

	log.WithFields(log.Fields{
		"epoch":    epoch,
		"entities": len(tallies),
		"proofs":   len(proofs),
	}).Debug("work tally computed")
	return
}

// rank assigns 1-based ranks by credits desc, live score desc, entity
// id asc.
func rank(tallies map[proto.EntityID]*types.WorkTally) {
	ordered := make([]*types.WorkTally, 0, len(tallies))
	for _, t := range tallies {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Credits != b.Credits {
			return a.Credits > b.Credits
		}
		if a.LiveScore != b.LiveScore {
			return a.LiveScore > b.LiveScore
		}
		return bytes.Compare([]byte(a.Entity), []byte(b.Entity)) < 0
	})
	for i, t := range ordered {
		t.Rank = uint32(i + 1)
	}
}
