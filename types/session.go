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

	uuid "github.com/satori/go.uuid"

	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/proto"
)

// SessionStatus is the lifecycle state of a session manifest.
type SessionStatus int32

const (
	// SessionPending is the initial state, kept while chunks are being
	// produced and the anchor is in flight.
	SessionPending SessionStatus = iota
	// SessionAnchored is the terminal success state.
	SessionAnchored
	// SessionFailed is the terminal failure state, Reason holds the cause.
	SessionFailed
)

// String implements fmt.Stringer.
func (s SessionStatus) String() string {
	switch s {
	case SessionPending:
		return "pending"
	case SessionAnchored:
		return "anchored"
	case SessionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SessionManifest describes one recorded session: its ordered chunk set,
// the Merkle root that summarizes it, and its anchoring state.
type SessionManifest struct {
	SessionID       string
	Owner           proto.AccountAddress
	StartedAt       time.Time
	FinishedAt      time.Time
	ChunkCount      uint32
	TotalBytes      uint64
	CompressedBytes uint64
	MerkleRoot      hash.Hash
	Status          SessionStatus
	Reason          string
	AnchorTxID      string
}

// NewSessionManifest creates a pending manifest with a fresh session ID.
func NewSessionManifest(owner proto.AccountAddress, startedAt time.Time) *SessionManifest {
	return &SessionManifest{
		SessionID: uuid.Must(uuid.NewV4()).String(),
		Owner:     owner,
		StartedAt: startedAt,
		Status:    SessionPending,
	}
}

// MarkAnchored moves the manifest to its terminal anchored state.
func (m *SessionManifest) MarkAnchored(txID string, finishedAt time.Time) (err error) {
	if m.Status != SessionPending {
		return ErrInvalidStatusTransition
	}
	m.Status = SessionAnchored
	m.AnchorTxID = txID
	m.FinishedAt = finishedAt
	return
}

// MarkFailed moves the manifest to its terminal failed state with a
// reason code.
func (m *SessionManifest) MarkFailed(reason string) (err error) {
	if m.Status != SessionPending {
		return ErrInvalidStatusTransition
	}
	m.Status = SessionFailed
	m.Reason = reason
	return
}

// IsTerminal reports whether the manifest reached a final state.
func (m *SessionManifest) IsTerminal() bool {
	return m.Status == SessionAnchored || m.Status == SessionFailed
}

// CompressionRatio returns compressed/raw size, or 1 for an empty session.
func (m *SessionManifest) CompressionRatio() float64 {
	if m.TotalBytes == 0 {
		return 1
	}
	return float64(m.CompressedBytes) / float64(m.TotalBytes)
}
