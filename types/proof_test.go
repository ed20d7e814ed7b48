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
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/HamiGames/Lucid-sub020/crypto/asymmetric"
	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/utils"
)

func newTestProof(t ProofType, value ProofValue) *TaskProof {
	return &TaskProof{
		TaskProofHeader: TaskProofHeader{
			NodeID:    proto.NodeID("node-1"),
			Slot:      42,
			Type:      t,
			Value:     value,
			Timestamp: time.Unix(1700000000, 0).UTC(),
		},
	}
}

func TestTaskProofSignVerify(t *testing.T) {
	Convey("Given a task proof and a key pair", t, func() {
		priv, _, err := asymmetric.GenSecp256k1KeyPair()
		So(err, ShouldBeNil)
		proof := newTestProof(ProofRelayBandwidth, ProofValue{Sessions: 3, Bytes: 12 << 20})

		Convey("Sign then verify should succeed", func() {
			So(proof.Sign(priv), ShouldBeNil)
			So(proof.Verify(), ShouldBeNil)

			Convey("Tampering with the header should fail verification", func() {
				proof.Value.Sessions++
				So(proof.Verify(), ShouldNotBeNil)
			})

			Convey("The proof should survive a msgpack round-trip", func() {
				buf, err := utils.EncodeMsgPack(proof)
				So(err, ShouldBeNil)
				var decoded TaskProof
				So(utils.DecodeMsgPack(buf.Bytes(), &decoded), ShouldBeNil)
				So(decoded.Verify(), ShouldBeNil)
				So(decoded.Key(), ShouldEqual, proof.Key())
			})
		})

		Convey("Verify without a signature should fail", func() {
			So(proof.Verify(), ShouldNotBeNil)
		})
	})
}

func TestWorkValue(t *testing.T) {
	Convey("Relay work is max(sessions, ceil(bytes/BaseUnit))", t, func() {
		p := newTestProof(ProofRelayBandwidth, ProofValue{Sessions: 2, Bytes: 21 << 20})
		So(p.WorkValue(), ShouldEqual, 5) // ceil(21 MiB / 5 MiB)

		p = newTestProof(ProofRelayBandwidth, ProofValue{Sessions: 9, Bytes: 21 << 20})
		So(p.WorkValue(), ShouldEqual, 9)

		p = newTestProof(ProofRelayBandwidth, ProofValue{})
		So(p.WorkValue(), ShouldEqual, 0)
	})

	Convey("Storage work is 10*GiB + 2*chunks", t, func() {
		p := newTestProof(ProofStorageAvailability, ProofValue{StoredBytes: 3 << 30, Chunks: 7})
		So(p.WorkValue(), ShouldEqual, 10*3+2*7)
	})

	Convey("Validation work is 5*sessions", t, func() {
		p := newTestProof(ProofValidationSignature, ProofValue{Sessions: 4})
		So(p.WorkValue(), ShouldEqual, 20)
	})

	Convey("Uptime contributes liveness only", t, func() {
		p := newTestProof(ProofUptimeBeacon, ProofValue{UptimeSeconds: 7200})
		So(p.WorkValue(), ShouldEqual, 0)
		So(p.LiveSeconds(), ShouldEqual, 7200)
	})
}

func TestProofEntity(t *testing.T) {
	Convey("Pool membership redirects credit to the pool", t, func() {
		p := newTestProof(ProofRelayBandwidth, ProofValue{Sessions: 1})
		So(p.Entity(), ShouldEqual, proto.EntityID("node-1"))

		p.PoolID = proto.PoolID("pool-9")
		So(p.Entity(), ShouldEqual, proto.EntityID("pool-9"))
	})
}

func TestProofType(t *testing.T) {
	Convey("Proof type names and validity", t, func() {
		So(ProofRelayBandwidth.String(), ShouldEqual, "relay_bandwidth")
		So(ProofStorageAvailability.String(), ShouldEqual, "storage_availability")
		So(ProofValidationSignature.String(), ShouldEqual, "validation_signature")
		So(ProofUptimeBeacon.String(), ShouldEqual, "uptime_beacon")
		So(ProofUptimeBeacon.IsValid(), ShouldBeTrue)
		So(NumberOfProofTypes.IsValid(), ShouldBeFalse)
		So(ProofType(-1).IsValid(), ShouldBeFalse)
	})
}
