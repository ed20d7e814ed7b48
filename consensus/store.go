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
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/HamiGames/Lucid-sub020/types"
	"github.com/HamiGames/Lucid-sub020/utils"
)

var (
	proofKeyPrefix    = []byte("p/")
	tallyKeyPrefix    = []byte("w/")
	scheduleKeyPrefix = []byte("l/")
	cooldownKey       = []byte("cd")
)

// Store is the consensus persistence layer: append-only task proofs,
// per-epoch work tallies, leader schedules and the cooldown table, all
// in one leveldb keyspace.
type Store struct {
	db     *leveldb.DB
	closed uint32
}

// OpenStore opens (or creates) the consensus store at path.
func OpenStore(path string) (s *Store, err error) {
	s = &Store{}
	if s.db, err = leveldb.OpenFile(path, nil); err != nil {
		err = errors.Wrap(err, "open consensus store failed")
		s = nil
	}
	return
}

// Close releases the store.
func (s *Store) Close() error {
	if !atomic.CompareAndSwapUint32(&s.closed, 0, 1) {
		return ErrStoreClosed
	}
	return s.db.Close()
}

func (s *Store) isClosed() bool {
	return atomic.LoadUint32(&s.closed) == 1
}

func proofKey(h *types.TaskProofHeader) []byte {
	return append(append([]byte(nil), proofKeyPrefix...), []byte(h.Key())...)
}

func tallyKey(epoch uint64, entity string) []byte {
	return append(append([]byte(nil), tallyKeyPrefix...),
		[]byte(fmt.Sprintf("%020d/%s", epoch, entity))...)
}

func scheduleKey(slot uint64) []byte {
	return append(append([]byte(nil), scheduleKeyPrefix...),
		[]byte(fmt.Sprintf("%020d", slot))...)
}

// PutProof stores a proof, idempotent on (slot, node, type). It reports
// whether the proof was new; a duplicate leaves the stored record
// untouched.
func (s *Store) PutProof(p *types.TaskProof) (isNew bool, err error) {
	if s.isClosed() {
		err = ErrStoreClosed
		return
	}

	key := proofKey(&p.TaskProofHeader)
	if _, err = s.db.Get(key, nil); err == nil {
		return false, nil
	} else if err != leveldb.ErrNotFound {
		err = errors.Wrap(err, "access consensus store failed")
		return
	}

	enc, err := utils.EncodeMsgPack(p)
	if err != nil {
		err = errors.Wrap(err, "encode task proof failed")
		return
	}
	if err = s.db.Put(key, enc.Bytes(), nil); err != nil {
		err = errors.Wrap(err, "write task proof failed")
		return
	}
	return true, nil
}

// ProofsBySlotRange returns all proofs with from <= slot < to, in slot
// order.
func (s *Store) ProofsBySlotRange(from, to uint64) (proofs []*types.TaskProof, err error) {
	if s.isClosed() {
		err = ErrStoreClosed
		return
	}

	rg := &util.Range{
		Start: append(append([]byte(nil), proofKeyPrefix...), []byte(fmt.Sprintf("%020d", from))...),
		Limit: append(append([]byte(nil), proofKeyPrefix...), []byte(fmt.Sprintf("%020d", to))...),
	}
	it := s.db.NewIterator(rg, nil)
	defer it.Release()

	for it.Next() {
		var p types.TaskProof
		if err = utils.DecodeMsgPack(it.Value(), &p); err != nil {
			err = errors.Wrap(err, "decode task proof failed")
			return
		}
		proofs = append(proofs, &p)
	}
	err = errors.Wrap(it.Error(), "iterate task proofs failed")
	return
}

// ProofStats counts stored proofs per type, for operator inspection.
func (s *Store) ProofStats() (stats map[string]uint64, err error) {
	if s.isClosed() {
		err = ErrStoreClosed
		return
	}

	stats = make(map[string]uint64)
	it := s.db.NewIterator(util.BytesPrefix(proofKeyPrefix), nil)
	defer it.Release()

	for it.Next() {
		var p types.TaskProof
		if err = utils.DecodeMsgPack(it.Value(), &p); err != nil {
			err = errors.Wrap(err, "decode task proof failed")
			return
		}
		stats[p.Type.String()]++
	}
	err = errors.Wrap(it.Error(), "iterate task proofs failed")
	return
}

// PutTally stores one entity tally for an epoch.
func (s *Store) PutTally(t *types.WorkTally) (err error) {
	if s.isClosed() {
		return ErrStoreClosed
	}

	enc, err := utils.EncodeMsgPack(t)
	if err != nil {
		return errors.Wrap(err, "encode work tally failed")
	}
	err = errors.Wrap(
		s.db.Put(tallyKey(t.Epoch, string(t.Entity)), enc.Bytes(), nil),
		"write work tally failed")
	return
}

// TalliesByEpoch returns the recorded tallies of one epoch.
func (s *Store) TalliesByEpoch(epoch uint64) (tallies []*types.WorkTally, err error) {
	if s.isClosed() {
		err = ErrStoreClosed
		return
	}

	prefix := append(append([]byte(nil), tallyKeyPrefix...), []byte(fmt.Sprintf("%020d/", epoch))...)
	it := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()

	for it.Next() {
		var t types.WorkTally
		if err = utils.DecodeMsgPack(it.Value(), &t); err != nil {
			err = errors.Wrap(err, "decode work tally failed")
			return
		}
		tallies = append(tallies, &t)
	}
	err = errors.Wrap(it.Error(), "iterate work tallies failed")
	return
}

// PutSchedule records the computed schedule of a slot. Re-recording an
// identical assignment is a no-op; a differing assignment for the same
// slot is a consensus disagreement and fails with ErrScheduleMismatch.
func (s *Store) PutSchedule(sched *types.LeaderSchedule) (err error) {
	if s.isClosed() {
		return ErrStoreClosed
	}

	existing, err := s.Schedule(sched.Slot)
	if err != nil && err != ErrScheduleNotFound {
		return
	}
	if existing != nil {
		if !sameAssignment(existing, sched) {
			return ErrScheduleMismatch
		}
	}
	err = nil

	enc, err := utils.EncodeMsgPack(sched)
	if err != nil {
		return errors.Wrap(err, "encode leader schedule failed")
	}
	err = errors.Wrap(
		s.db.Put(scheduleKey(sched.Slot), enc.Bytes(), nil),
		"write leader schedule failed")
	return
}

func sameAssignment(a, b *types.LeaderSchedule) bool {
	if a.Slot != b.Slot || a.Primary != b.Primary || len(a.Fallbacks) != len(b.Fallbacks) {
		return false
	}
	for i := range a.Fallbacks {
		if a.Fallbacks[i] != b.Fallbacks[i] {
			return false
		}
	}
	return true
}

// Schedule returns the recorded schedule of one slot.
func (s *Store) Schedule(slot uint64) (sched *types.LeaderSchedule, err error) {
	if s.isClosed() {
		err = ErrStoreClosed
		return
	}

	raw, err := s.db.Get(scheduleKey(slot), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrScheduleNotFound
	} else if err != nil {
		err = errors.Wrap(err, "access consensus store failed")
		return
	}

	sched = &types.LeaderSchedule{}
	if err = utils.DecodeMsgPack(raw, sched); err != nil {
		err = errors.Wrap(err, "decode leader schedule failed")
		sched = nil
	}
	return
}

// Schedules returns the recorded schedules with from <= slot < to, in
// slot order. This is the leader history query.
func (s *Store) Schedules(from, to uint64) (scheds []*types.LeaderSchedule, err error) {
	if s.isClosed() {
		err = ErrStoreClosed
		return
	}

	rg := &util.Range{
		Start: scheduleKey(from),
		Limit: scheduleKey(to),
	}
	it := s.db.NewIterator(rg, nil)
	defer it.Release()

	for it.Next() {
		var sched types.LeaderSchedule
		if err = utils.DecodeMsgPack(it.Value(), &sched); err != nil {
			err = errors.Wrap(err, "decode leader schedule failed")
			return
		}
		scheds = append(scheds, &sched)
	}
	err = errors.Wrap(it.Error(), "iterate leader schedules failed")
	return
}

// CommitSlotResult writes the resolved schedule and the updated
// cooldown snapshot in one batch, so a crash can not record a winner
// without their cooldown.
func (s *Store) CommitSlotResult(sched *types.LeaderSchedule, cd *CooldownSnapshot) (err error) {
	if s.isClosed() {
		return ErrStoreClosed
	}

	encSched, err := utils.EncodeMsgPack(sched)
	if err != nil {
		return errors.Wrap(err, "encode leader schedule failed")
	}
	encCd, err := utils.EncodeMsgPack(cd)
	if err != nil {
		return errors.Wrap(err, "encode cooldown snapshot failed")
	}

	batch := new(leveldb.Batch)
	batch.Put(scheduleKey(sched.Slot), encSched.Bytes())
	batch.Put(cooldownKey, encCd.Bytes())
	err = errors.Wrap(s.db.Write(batch, nil), "commit slot result failed")
	return
}

// LoadCooldown restores the persisted cooldown snapshot, or an empty
// one when none was recorded yet.
func (s *Store) LoadCooldown() (cd *CooldownSnapshot, err error) {
	if s.isClosed() {
		err = ErrStoreClosed
		return
	}

	raw, err := s.db.Get(cooldownKey, nil)
	if err == leveldb.ErrNotFound {
		return &CooldownSnapshot{LastServed: make(map[string]uint64)}, nil
	} else if err != nil {
		err = errors.Wrap(err, "access consensus store failed")
		return
	}

	cd = &CooldownSnapshot{}
	if err = utils.DecodeMsgPack(raw, cd); err != nil {
		err = errors.Wrap(err, "decode cooldown snapshot failed")
		cd = nil
		return
	}
	if cd.LastServed == nil {
		cd.LastServed = make(map[string]uint64)
	}
	return
}
