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
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/HamiGames/Lucid-sub020/crypto/asymmetric"
	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/types"
)

var testGenesis = time.Unix(1700000000, 0).UTC()

func openTestStore(t *testing.T) *Store {
	s, err := OpenStore(filepath.Join(t.TempDir(), "consensus"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	return s
}

func signedProof(t *testing.T, priv *asymmetric.PrivateKey, node string, slot uint64, pt types.ProofType, v types.ProofValue, ts time.Time) *types.TaskProof {
	p := &types.TaskProof{
		TaskProofHeader: types.TaskProofHeader{
			NodeID:    proto.NodeID(node),
			Slot:      slot,
			Type:      pt,
			Value:     v,
			Timestamp: ts,
		},
	}
	if err := p.Sign(priv); err != nil {
		t.Fatalf("sign proof: %v", err)
	}
	return p
}

func TestStoreProofs(t *testing.T) {
	Convey("Given a store and a signed proof", t, func() {
		s := openTestStore(t)
		defer s.Close()
		priv, _, err := asymmetric.GenSecp256k1KeyPair()
		So(err, ShouldBeNil)

		p := signedProof(t, priv, "node-a", 10, types.ProofRelayBandwidth,
			types.ProofValue{Sessions: 2, Bytes: 6 << 20}, testGenesis)

		Convey("Puts are idempotent on (slot, node, type)", func() {
			isNew, err := s.PutProof(p)
			So(err, ShouldBeNil)
			So(isNew, ShouldBeTrue)

			isNew, err = s.PutProof(p)
			So(err, ShouldBeNil)
			So(isNew, ShouldBeFalse)

			proofs, err := s.ProofsBySlotRange(0, 100)
			So(err, ShouldBeNil)
			So(proofs, ShouldHaveLength, 1)
			So(proofs[0].Verify(), ShouldBeNil)
		})

		Convey("Range scans are slot-bounded and ordered", func() {
			for _, slot := range []uint64{30, 10, 20} {
				q := signedProof(t, priv, "node-b", slot, types.ProofUptimeBeacon,
					types.ProofValue{UptimeSeconds: 60}, testGenesis)
				_, err := s.PutProof(q)
				So(err, ShouldBeNil)
			}

			proofs, err := s.ProofsBySlotRange(10, 30)
			So(err, ShouldBeNil)
			So(proofs, ShouldHaveLength, 2)
			So(proofs[0].Slot, ShouldEqual, 10)
			So(proofs[1].Slot, ShouldEqual, 20)
		})

		Convey("ProofStats counts per type", func() {
			_, err := s.PutProof(p)
			So(err, ShouldBeNil)
			q := signedProof(t, priv, "node-a", 11, types.ProofUptimeBeacon,
				types.ProofValue{UptimeSeconds: 60}, testGenesis)
			_, err = s.PutProof(q)
			So(err, ShouldBeNil)

			stats, err := s.ProofStats()
			So(err, ShouldBeNil)
			So(stats["relay_bandwidth"], ShouldEqual, 1)
			So(stats["uptime_beacon"], ShouldEqual, 1)
		})
	})
}

func TestStoreTalliesAndSchedules(t *testing.T) {
	Convey("Given a store", t, func() {
		s := openTestStore(t)
		defer s.Close()

		Convey("Tallies group by epoch", func() {
			So(s.PutTally(&types.WorkTally{Epoch: 3, Entity: "a", Credits: 10, Rank: 1}), ShouldBeNil)
			So(s.PutTally(&types.WorkTally{Epoch: 3, Entity: "b", Credits: 5, Rank: 2}), ShouldBeNil)
			So(s.PutTally(&types.WorkTally{Epoch: 4, Entity: "a", Credits: 1, Rank: 1}), ShouldBeNil)

			tallies, err := s.TalliesByEpoch(3)
			So(err, ShouldBeNil)
			So(tallies, ShouldHaveLength, 2)
		})

		Convey("Schedule round-trip and history", func() {
			for slot := uint64(5); slot < 8; slot++ {
				So(s.PutSchedule(&types.LeaderSchedule{
					Slot:    slot,
					Primary: proto.EntityID("a"),
				}), ShouldBeNil)
			}

			sched, err := s.Schedule(6)
			So(err, ShouldBeNil)
			So(sched.Primary, ShouldEqual, proto.EntityID("a"))

			_, err = s.Schedule(99)
			So(err, ShouldEqual, ErrScheduleNotFound)

			history, err := s.Schedules(5, 7)
			So(err, ShouldBeNil)
			So(history, ShouldHaveLength, 2)
		})

		Convey("A differing schedule for a recorded slot is a disagreement", func() {
			So(s.PutSchedule(&types.LeaderSchedule{Slot: 9, Primary: "a"}), ShouldBeNil)
			So(s.PutSchedule(&types.LeaderSchedule{Slot: 9, Primary: "a"}), ShouldBeNil)
			So(s.PutSchedule(&types.LeaderSchedule{Slot: 9, Primary: "b"}), ShouldEqual, ErrScheduleMismatch)
		})

		Convey("Slot results commit schedule and cooldown atomically", func() {
			sched := &types.LeaderSchedule{
				Slot:    12,
				Primary: "a",
				Outcome: types.SlotPublished,
				Winner:  "a",
			}
			snap := &CooldownSnapshot{Version: 1, LastServed: map[string]uint64{"a": 12}}
			So(s.CommitSlotResult(sched, snap), ShouldBeNil)

			restored, err := s.LoadCooldown()
			So(err, ShouldBeNil)
			So(restored.Version, ShouldEqual, 1)
			So(restored.LastServed["a"], ShouldEqual, 12)

			got, err := s.Schedule(12)
			So(err, ShouldBeNil)
			So(got.Winner, ShouldEqual, proto.EntityID("a"))
			So(got.Outcome, ShouldEqual, types.SlotPublished)
		})

		Convey("A fresh store has an empty cooldown snapshot", func() {
			cd, err := s.LoadCooldown()
			So(err, ShouldBeNil)
			So(cd.LastServed, ShouldBeEmpty)
			So(cd.Version, ShouldEqual, 0)
		})

		Convey("A closed store refuses access", func() {
			So(s.Close(), ShouldBeNil)
			_, err := s.ProofsBySlotRange(0, 1)
			So(err, ShouldEqual, ErrStoreClosed)
			So(s.Close(), ShouldEqual, ErrStoreClosed)
		})
	})
}
