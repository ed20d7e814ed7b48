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
	"fmt"
	"time"

	"github.com/HamiGames/Lucid-sub020/crypto"
	"github.com/HamiGames/Lucid-sub020/crypto/asymmetric"
	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/utils"
)

// ProofType tags the kind of operational work a TaskProof attests to.
type ProofType int32

const (
	// ProofRelayBandwidth attests to session traffic relayed.
	ProofRelayBandwidth ProofType = iota
	// ProofStorageAvailability attests to chunk data held available.
	ProofStorageAvailability
	// ProofValidationSignature attests to sessions validated and signed.
	ProofValidationSignature
	// ProofUptimeBeacon attests to node liveness. It feeds the live
	// score only, never raw credits.
	ProofUptimeBeacon
	// NumberOfProofTypes bounds the valid ProofType values.
	NumberOfProofTypes
)

// String implements fmt.Stringer.
func (t ProofType) String() string {
	switch t {
	case ProofRelayBandwidth:
		return "relay_bandwidth"
	case ProofStorageAvailability:
		return "storage_availability"
	case ProofValidationSignature:
		return "validation_signature"
	case ProofUptimeBeacon:
		return "uptime_beacon"
	default:
		return "unknown"
	}
}

// IsValid reports whether the tag is a known proof type.
func (t ProofType) IsValid() bool {
	return t >= ProofRelayBandwidth && t < NumberOfProofTypes
}

// ProofValue carries the measured quantities of one proof. Which fields
// are meaningful depends on the proof type, unused fields stay zero.
type ProofValue struct {
	Sessions      uint64 // sessions relayed or validated
	Bytes         uint64 // bandwidth bytes relayed
	StoredBytes   uint64 // bytes held in storage
	Chunks        uint64 // chunks held in storage
	UptimeSeconds uint64 // seconds of continuous uptime
}

// TaskProofHeader is the signed portion of a TaskProof.
type TaskProofHeader struct {
	NodeID    proto.NodeID
	PoolID    proto.PoolID
	Slot      uint64
	Type      ProofType
	Value     ProofValue
	Timestamp time.Time
}

// TaskProof is a signed attestation of operational work performed by a
// node during a slot. It is immutable once signed and keyed uniquely by
// (slot, node_id, proof_type).
type TaskProof struct {
	TaskProofHeader
	crypto.DefaultHashSignVerifierImpl
}

// MarshalHash returns the stable binary form of the header for hashing.
func (h *TaskProofHeader) MarshalHash() (b []byte, err error) {
	buf, err := utils.EncodeMsgPack(h)
	if err != nil {
		return
	}
	b = buf.Bytes()
	return
}

// Entity returns the credited entity: the pool when the node relays for
// one, otherwise the node itself.
func (h *TaskProofHeader) Entity() proto.EntityID {
	return h.NodeID.Entity(h.PoolID)
}

// Key returns the uniqueness key of the proof.
func (h *TaskProofHeader) Key() string {
	return fmt.Sprintf("%020d/%s/%d", h.Slot, h.NodeID, h.Type)
}

// Sign computes the header hash and signs it with the node key.
func (p *TaskProof) Sign(signer *asymmetric.PrivateKey) error {
	return p.DefaultHashSignVerifierImpl.Sign(&p.TaskProofHeader, signer)
}

// Verify checks the header hash and its signature.
func (p *TaskProof) Verify() error {
	return p.DefaultHashSignVerifierImpl.Verify(&p.TaskProofHeader)
}

// WorkValue computes the credit contribution of the proof.
//
// relay_bandwidth:      max(sessions, ceil(bytes / BaseUnit))
// storage_availability: 10 * stored GiB + 2 * chunks
// validation_signature: 5 * sessions
// uptime_beacon:        0 (liveness only, see LiveSeconds)
func (h *TaskProofHeader) WorkValue() uint64 {
	switch h.Type {
	case ProofRelayBandwidth:
		bw := (h.Value.Bytes + BaseUnit - 1) / BaseUnit
		if h.Value.Sessions > bw {
			return h.Value.Sessions
		}
		return bw
	case ProofStorageAvailability:
		return 10*(h.Value.StoredBytes>>30) + 2*h.Value.Chunks
	case ProofValidationSignature:
		return 5 * h.Value.Sessions
	default:
		return 0
	}
}

// LiveSeconds returns the uptime contribution of the proof.
func (h *TaskProofHeader) LiveSeconds() uint64 {
	if h.Type == ProofUptimeBeacon {
		return h.Value.UptimeSeconds
	}
	return 0
}
