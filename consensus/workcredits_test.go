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
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/HamiGames/Lucid-sub020/crypto/asymmetric"
	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/types"
)

func TestCollectorIngest(t *testing.T) {
	Convey("Given a collector", t, func() {
		s := openTestStore(t)
		defer s.Close()
		clock := NewSlotClock(testGenesis)
		collector := NewCollector(s, clock)
		priv, _, err := asymmetric.GenSecp256k1KeyPair()
		So(err, ShouldBeNil)

		Convey("Valid proofs are accepted", func() {
			p := signedProof(t, priv, "node-a", 1, types.ProofRelayBandwidth,
				types.ProofValue{Sessions: 1}, testGenesis)
			accepted, err := collector.Ingest(p)
			So(err, ShouldBeNil)
			So(accepted, ShouldBeTrue)
		})

		Convey("A tampered proof is dropped silently, not errored", func() {
			p := signedProof(t, priv, "node-a", 1, types.ProofRelayBandwidth,
				types.ProofValue{Sessions: 1}, testGenesis)
			p.Value.Sessions = 999

			accepted, err := collector.Ingest(p)
			So(err, ShouldBeNil)
			So(accepted, ShouldBeFalse)

			proofs, err := s.ProofsBySlotRange(0, 10)
			So(err, ShouldBeNil)
			So(proofs, ShouldBeEmpty)
		})

		Convey("An unsigned proof is dropped silently", func() {
			p := &types.TaskProof{
				TaskProofHeader: types.TaskProofHeader{
					NodeID:    "node-a",
					Slot:      1,
					Type:      types.ProofUptimeBeacon,
					Timestamp: testGenesis,
				},
			}
			accepted, err := collector.Ingest(p)
			So(err, ShouldBeNil)
			So(accepted, ShouldBeFalse)
		})

		Convey("An unknown proof type is dropped silently", func() {
			p := signedProof(t, priv, "node-a", 1, types.NumberOfProofTypes,
				types.ProofValue{}, testGenesis)
			accepted, err := collector.Ingest(p)
			So(err, ShouldBeNil)
			So(accepted, ShouldBeFalse)
		})
	})
}

func TestCollectorTally(t *testing.T) {
	Convey("Given a window of signed proofs", t, func() {
		s := openTestStore(t)
		defer s.Close()
		clock := NewSlotClock(testGenesis)
		collector := NewCollector(s, clock)

		privA, _, err := asymmetric.GenSecp256k1KeyPair()
		So(err, ShouldBeNil)
		privB, _, err := asymmetric.GenSecp256k1KeyPair()
		So(err, ShouldBeNil)

		upTo := testGenesis.Add(6 * 24 * time.Hour)
		tallySlot := clock.SlotAt(upTo)
		inWindow := upTo.Add(-time.Hour)
		inWindowSlot := clock.SlotAt(inWindow)

		ingest := func(p *types.TaskProof) {
			accepted, err := collector.Ingest(p)
			So(err, ShouldBeNil)
			So(accepted, ShouldBeTrue)
		}

		// node-a: relay 21 MiB / 2 sessions -> 5, validation 4 sessions -> 20
		ingest(signedProof(t, privA, "node-a", inWindowSlot, types.ProofRelayBandwidth,
			types.ProofValue{Sessions: 2, Bytes: 21 << 20}, inWindow))
		ingest(signedProof(t, privA, "node-a", inWindowSlot, types.ProofValidationSignature,
			types.ProofValue{Sessions: 4}, inWindow))
		// node-b: storage 3 GiB + 7 chunks -> 44, uptime feeds liveness
		ingest(signedProof(t, privB, "node-b", inWindowSlot, types.ProofStorageAvailability,
			types.ProofValue{StoredBytes: 3 << 30, Chunks: 7}, inWindow))
		ingest(signedProof(t, privB, "node-b", inWindowSlot, types.ProofUptimeBeacon,
			types.ProofValue{UptimeSeconds: 3600}, inWindow))

		Convey("Credits follow the per-type formulas", func() {
			tallies, err := collector.Tally(types.EpochOfSlot(tallySlot), upTo)
			So(err, ShouldBeNil)
			So(tallies, ShouldHaveLength, 2)

			So(tallies["node-a"].Credits, ShouldEqual, 25)
			So(tallies["node-b"].Credits, ShouldEqual, 44)

			So(tallies["node-b"].LiveScore, ShouldAlmostEqual,
				3600/(float64(types.LeaderWindowDays)*24*3600), 1e-9)
			So(tallies["node-a"].LiveScore, ShouldEqual, 0)

			Convey("Ranks are 1-based by credits", func() {
				So(tallies["node-b"].Rank, ShouldEqual, 1)
				So(tallies["node-a"].Rank, ShouldEqual, 2)
			})

			Convey("Tallies are persisted for the epoch", func() {
				stored, err := s.TalliesByEpoch(types.EpochOfSlot(tallySlot))
				So(err, ShouldBeNil)
				So(stored, ShouldHaveLength, 2)
			})
		})

		Convey("Out-of-window proofs are skipped silently", func() {
			// timestamped before the window start
			stale := signedProof(t, privA, "node-stale", 1, types.ProofValidationSignature,
				types.ProofValue{Sessions: 100}, testGenesis.Add(-10*24*time.Hour))
			_, err := s.PutProof(stale)
			So(err, ShouldBeNil)

			tallies, err := collector.Tally(types.EpochOfSlot(tallySlot), upTo)
			So(err, ShouldBeNil)
			So(tallies["node-stale"], ShouldBeNil)
		})

		Convey("Pool proofs credit the pool entity", func() {
			p := &types.TaskProof{
				TaskProofHeader: types.TaskProofHeader{
					NodeID:    "node-c",
					PoolID:    "pool-1",
					Slot:      inWindowSlot,
					Type:      types.ProofValidationSignature,
					Value:     types.ProofValue{Sessions: 2},
					Timestamp: inWindow,
				},
			}
			So(p.Sign(privA), ShouldBeNil)
			ingest(p)

			tallies, err := collector.Tally(types.EpochOfSlot(tallySlot), upTo)
			So(err, ShouldBeNil)
			So(tallies[proto.EntityID("pool-1")].Credits, ShouldEqual, 10)
		})
	})
}
