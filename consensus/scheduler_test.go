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
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/HamiGames/Lucid-sub020/bus"
	"github.com/HamiGames/Lucid-sub020/crypto/asymmetric"
	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/types"
)

func newTestScheduler(t *testing.T, eventBus bus.Bus) (sched *Scheduler, store *Store) {
	store = openTestStore(t)
	clock := NewSlotClock(testGenesis)
	collector := NewCollector(store, clock)
	sched = NewScheduler(store, collector, clock, NewCooldownTable(nil), eventBus)
	sched.publishTimeout = 50 * time.Millisecond
	return
}

// seedEntity ingests a validation proof worth 5*sessions credits plus an
// uptime beacon clearing the liveness floor.
func seedEntity(t *testing.T, s *Scheduler, node string, sessions uint64, ts time.Time) {
	priv, _, err := asymmetric.GenSecp256k1KeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	slot := s.clock.SlotAt(ts)
	for _, p := range []*types.TaskProof{
		signedProof(t, priv, node, slot, types.ProofValidationSignature,
			types.ProofValue{Sessions: sessions}, ts),
		signedProof(t, priv, node, slot, types.ProofUptimeBeacon,
			types.ProofValue{UptimeSeconds: 200000}, ts),
	} {
		accepted, err := s.collector.Ingest(p)
		if err != nil || !accepted {
			t.Fatalf("seed proof for %s: accepted=%v err=%v", node, accepted, err)
		}
	}
}

// publishUntilDone keeps offering a publish for (slot, entity) until the
// done channel closes, riding out the windows of earlier candidates.
func publishUntilDone(s *Scheduler, slot uint64, entity proto.EntityID, done <-chan struct{}) {
	root := hash.THashH([]byte("session-root"))
	for {
		select {
		case <-done:
			return
		default:
		}
		_ = s.Publish(slot, entity, root)
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSchedulerNoQuorum(t *testing.T) {
	Convey("Given a scheduler with no proofs at all", t, func() {
		s, store := newTestScheduler(t, nil)
		defer store.Close()

		sched := s.runSlot(context.Background(), 60)

		Convey("The slot resolves as no-quorum", func() {
			So(sched, ShouldNotBeNil)
			So(sched.Outcome, ShouldEqual, types.SlotNoQuorum)
			So(sched.Primary, ShouldEqual, proto.EntityID(""))
			So(sched.Winner, ShouldEqual, proto.EntityID(""))
			So(sched.Reason, ShouldEqual, types.ReasonNoQuorum)
		})

		Convey("The schedule is persisted with its outcome", func() {
			got, err := store.Schedule(60)
			So(err, ShouldBeNil)
			So(got.Outcome, ShouldEqual, types.SlotNoQuorum)
		})
	})
}

func TestSchedulerPrimaryPublish(t *testing.T) {
	Convey("Given one dominant entity and one fallback", t, func() {
		s, store := newTestScheduler(t, nil)
		defer store.Close()

		proofTime := testGenesis.Add(time.Hour)
		seedEntity(t, s, "node-a", 10, proofTime)
		seedEntity(t, s, "node-b", 2, proofTime)
		slot := s.clock.SlotAt(testGenesis.Add(2 * time.Hour))

		done := make(chan struct{})
		go publishUntilDone(s, slot, "node-a", done)
		sched := s.runSlot(context.Background(), slot)
		close(done)

		Convey("The primary wins the slot", func() {
			So(sched.Primary, ShouldEqual, proto.EntityID("node-a"))
			So(sched.Fallbacks, ShouldResemble, []proto.EntityID{"node-b"})
			So(sched.Outcome, ShouldEqual, types.SlotPublished)
			So(sched.Winner, ShouldEqual, proto.EntityID("node-a"))
			So(sched.Reason, ShouldBeEmpty)
		})

		Convey("The winner enters cooldown", func() {
			remaining, cooling := s.Cooldown().Status("node-a", slot+1)
			So(cooling, ShouldBeTrue)
			So(remaining, ShouldEqual, types.CooldownSlots)

			_, cooling = s.Cooldown().Status("node-b", slot+1)
			So(cooling, ShouldBeFalse)
		})

		Convey("The cooldown snapshot is committed with the result", func() {
			snap, err := store.LoadCooldown()
			So(err, ShouldBeNil)
			So(snap.LastServed["node-a"], ShouldEqual, slot)
		})

		Convey("The cooling winner is excluded from the next slot's schedule", func() {
			next := SelectLeader(slot+1, mustTally(t, s, slot+1), s.Cooldown().Snapshot())
			So(next.Primary, ShouldEqual, proto.EntityID("node-b"))
		})
	})
}

func TestSchedulerFallbackPromotion(t *testing.T) {
	Convey("Given a silent primary and a live fallback", t, func() {
		s, store := newTestScheduler(t, nil)
		defer store.Close()

		proofTime := testGenesis.Add(time.Hour)
		seedEntity(t, s, "node-a", 10, proofTime)
		seedEntity(t, s, "node-b", 2, proofTime)
		slot := s.clock.SlotAt(testGenesis.Add(2 * time.Hour))

		done := make(chan struct{})
		go publishUntilDone(s, slot, "node-b", done)
		sched := s.runSlot(context.Background(), slot)
		close(done)

		Convey("The fallback is promoted and wins, with the timeout recorded", func() {
			So(sched.Primary, ShouldEqual, proto.EntityID("node-a"))
			So(sched.Outcome, ShouldEqual, types.SlotPublished)
			So(sched.Winner, ShouldEqual, proto.EntityID("node-b"))
			So(sched.Reason, ShouldEqual, types.ReasonTimeout)
		})

		Convey("Only the actual winner cools down", func() {
			_, cooling := s.Cooldown().Status("node-a", slot+1)
			So(cooling, ShouldBeFalse)
			_, cooling = s.Cooldown().Status("node-b", slot+1)
			So(cooling, ShouldBeTrue)
		})
	})
}

func TestSchedulerEarlyFallbackPublish(t *testing.T) {
	Convey("Given a fallback that anchors once, before its window opens", t, func() {
		s, store := newTestScheduler(t, nil)
		defer store.Close()

		proofTime := testGenesis.Add(time.Hour)
		seedEntity(t, s, "node-a", 10, proofTime)
		seedEntity(t, s, "node-b", 2, proofTime)
		slot := s.clock.SlotAt(testGenesis.Add(2 * time.Hour))

		// exactly one publish, landing while the primary's window is
		// still open
		go func() {
			root := hash.THashH([]byte("session-root"))
			for s.Publish(slot, "node-b", root) != nil {
				time.Sleep(2 * time.Millisecond)
			}
		}()
		sched := s.runSlot(context.Background(), slot)

		Convey("The publish is held and honored on promotion", func() {
			So(sched.Primary, ShouldEqual, proto.EntityID("node-a"))
			So(sched.Outcome, ShouldEqual, types.SlotPublished)
			So(sched.Winner, ShouldEqual, proto.EntityID("node-b"))
			So(sched.Reason, ShouldEqual, types.ReasonTimeout)
		})
	})
}

func TestSchedulerAllTimeout(t *testing.T) {
	Convey("Given candidates that never publish", t, func() {
		s, store := newTestScheduler(t, nil)
		defer store.Close()

		proofTime := testGenesis.Add(time.Hour)
		seedEntity(t, s, "node-a", 10, proofTime)
		slot := s.clock.SlotAt(testGenesis.Add(2 * time.Hour))

		sched := s.runSlot(context.Background(), slot)

		Convey("The slot times out with no winner", func() {
			So(sched.Outcome, ShouldEqual, types.SlotTimedOut)
			So(sched.Winner, ShouldEqual, proto.EntityID(""))
			So(sched.Reason, ShouldEqual, types.ReasonTimeout)
		})

		Convey("No cooldown is recorded", func() {
			_, cooling := s.Cooldown().Status("node-a", slot+1)
			So(cooling, ShouldBeFalse)
		})
	})
}

func TestSchedulerPublishGate(t *testing.T) {
	Convey("Publishing outside the running slot is rejected", t, func() {
		s, store := newTestScheduler(t, nil)
		defer store.Close()

		err := s.Publish(42, "node-a", hash.THashH([]byte("x")))
		So(err, ShouldEqual, ErrNotCurrentSlot)
	})
}

func TestSchedulerBusEmission(t *testing.T) {
	Convey("Given a scheduler wired to an event bus", t, func() {
		eventBus := bus.New()
		s, store := newTestScheduler(t, eventBus)
		defer store.Close()

		resolved := make(chan *types.LeaderSchedule, 1)
		err := eventBus.Subscribe(bus.TopicSlotResolved, func(sched *types.LeaderSchedule) {
			resolved <- sched
		})
		So(err, ShouldBeNil)

		proofTime := testGenesis.Add(time.Hour)
		seedEntity(t, s, "node-a", 10, proofTime)
		slot := s.clock.SlotAt(testGenesis.Add(2 * time.Hour))

		done := make(chan struct{})
		go publishUntilDone(s, slot, "node-a", done)
		s.runSlot(context.Background(), slot)
		close(done)

		Convey("The resolved schedule is delivered to subscribers", func() {
			select {
			case sched := <-resolved:
				So(sched.Slot, ShouldEqual, slot)
				So(sched.Outcome, ShouldEqual, types.SlotPublished)
			case <-time.After(time.Second):
				So("timeout waiting for bus delivery", ShouldBeEmpty)
			}
		})
	})
}

func mustTally(t *testing.T, s *Scheduler, slot uint64) map[proto.EntityID]*types.WorkTally {
	tally, err := s.collector.Tally(types.EpochOfSlot(slot), s.clock.SlotStart(slot))
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	return tally
}
