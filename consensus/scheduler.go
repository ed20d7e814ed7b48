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
	"context"
	"sync"
	"time"

	"github.com/HamiGames/Lucid-sub020/bus"
	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/metric"
	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/types"
	"github.com/HamiGames/Lucid-sub020/utils/log"
)

type publishEvent struct {
	slot   uint64
	entity proto.EntityID
	root   hash.Hash
}

// Scheduler drives one slot at a time: on each boundary it tallies the
// proof window, computes the leader schedule, then awaits the leader's
// publish up to the per-candidate timeout, promoting fallbacks in
// order. Slots are strictly sequential, an in-flight slot can only time
// out, never cancel.
type Scheduler struct {
	store     *Store
	collector *Collector
	clock     *SlotClock
	cooldown  *CooldownTable
	eventBus  bus.Bus

	// publishTimeout is how long each candidate gets to publish.
	publishTimeout time.Duration

	publishCh chan publishEvent

	mu          sync.Mutex
	currentSlot uint64
	running     bool
}

// NewScheduler assembles a slot scheduler.
func NewScheduler(store *Store, collector *Collector, clock *SlotClock, cooldown *CooldownTable, eventBus bus.Bus) *Scheduler {
	return &Scheduler{
		store:          store,
		collector:      collector,
		clock:          clock,
		cooldown:       cooldown,
		eventBus:       eventBus,
		publishTimeout: types.SlotTimeout,
		publishCh:      make(chan publishEvent, 16),
	}
}

// Cooldown exposes the cooldown table for introspection.
func (s *Scheduler) Cooldown() *CooldownTable {
	return s.cooldown
}

// Run executes slots until the context ends.
func (s *Scheduler) Run(ctx context.Context) {
	log.WithField("genesis", s.clock.Genesis()).Info("slot scheduler started")
	for {
		slot, start := s.clock.NextSlot(time.Now())
		boundary := time.NewTimer(time.Until(start))
		select {
		case <-ctx.Done():
			boundary.Stop()
			log.Info("slot scheduler stopped")
			return
		case <-boundary.C:
		}
		s.runSlot(ctx, slot)
	}
}

// Publish notifies the scheduler that entity anchored root for slot.
// Only the slot currently in progress accepts publishes.
func (s *Scheduler) Publish(slot uint64, entity proto.EntityID, root hash.Hash) error {
	s.mu.Lock()
	ok := s.running && slot == s.currentSlot
	s.mu.Unlock()
	if !ok {
		return ErrNotCurrentSlot
	}
	s.publishCh <- publishEvent{slot: slot, entity: entity, root: root}
	return nil
}

// runSlot executes one full slot and returns its resolved schedule.
func (s *Scheduler) runSlot(ctx context.Context, slot uint64) (sched *types.LeaderSchedule) {
	le := log.WithField("slot", slot)

	// tally visibility boundary: proofs up to the slot start only
	slotStart := s.clock.SlotStart(slot)
	tally, err := s.collector.Tally(types.EpochOfSlot(slot), slotStart)
	if err != nil {
		le.WithError(err).Error("slot tally failed")
		return
	}

	sched = SelectLeader(slot, tally, s.cooldown.Snapshot())
	if err = s.store.PutSchedule(sched); err != nil {
		// ErrScheduleMismatch is a consensus disagreement, surfaced and
		// left unresolved on purpose
		le.WithError(err).Error("record leader schedule failed")
		return
	}

	if sched.IsNoQuorum() {
		sched.Outcome = types.SlotNoQuorum
		sched.Reason = types.ReasonNoQuorum
		s.resolve(le, sched, s.cooldown.Snapshot())
		return
	}

	s.drainStale()
	s.mu.Lock()
	s.currentSlot = slot
	s.running = true
	s.mu.Unlock()

	var winner proto.EntityID
	le.WithFields(log.Fields{
		"primary":   sched.Primary,
		"fallbacks": len(sched.Fallbacks),
	}).Info("awaiting leader publish")

	// a fallback may anchor before its window opens, such publishes are
	// held and honored when that candidate is promoted
	pending := make(map[proto.EntityID]struct{})

await:
	for _, cand := range sched.Candidates() {
		if _, early := pending[cand]; early {
			winner = cand
			break await
		}
		timer := time.NewTimer(s.publishTimeout)
		for {
			select {
			case ev := <-s.publishCh:
				if ev.slot != slot {
					le.WithFields(log.Fields{
						"entity": ev.entity,
						"for":    ev.slot,
					}).Debug("ignoring publish for non-current slot")
					continue
				}
				if ev.entity == cand {
					winner = cand
					timer.Stop()
					break await
				}
				pending[ev.entity] = struct{}{}
			case <-timer.C:
				le.WithField("entity", cand).Warning("candidate publish timeout, promoting next")
				continue await
			case <-ctx.Done():
				timer.Stop()
				s.mu.Lock()
				s.running = false
				s.mu.Unlock()
				return
			}
		}
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if winner != "" {
		sched.Winner = winner
		sched.Outcome = types.SlotPublished
		if winner != sched.Primary {
			sched.Reason = types.ReasonTimeout
		}
		snap := s.cooldown.Record(winner, slot)
		s.resolve(le, sched, snap)
	} else {
		sched.Outcome = types.SlotTimedOut
		sched.Reason = types.ReasonTimeout
		s.resolve(le, sched, s.cooldown.Snapshot())
	}
	return
}

// resolve persists the outcome together with the cooldown snapshot and
// hands the result to downstream consumers.
func (s *Scheduler) resolve(le *log.Entry, sched *types.LeaderSchedule, snap *CooldownSnapshot) {
	if err := s.store.CommitSlotResult(sched, snap); err != nil {
		le.WithError(err).Error("commit slot result failed")
		return
	}
	metric.SlotsResolved.WithLabelValues(sched.Outcome.String()).Inc()
	le.WithFields(log.Fields{
		"outcome": sched.Outcome.String(),
		"winner":  sched.Winner,
	}).Info("slot resolved")
	if s.eventBus != nil {
		s.eventBus.Publish(bus.TopicSlotResolved, sched)
	}
}

// drainStale discards publishes buffered for earlier slots.
func (s *Scheduler) drainStale() {
	for {
		select {
		case <-s.publishCh:
		default:
			return
		}
	}
}
