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

package kms

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"

	"github.com/HamiGames/Lucid-sub020/crypto/symmetric"
)

// SessionMasterSize is the byte length of a session master secret.
const SessionMasterSize = 32

// chunkKeyInfo is the HKDF info label of chunk keys. Changing it changes
// every derived key, existing sessions become undecryptable.
var chunkKeyInfo = []byte("lucid chunk key v1")

// SessionKeyStore holds the per-session master secrets of the sessions
// currently owned by this node. Secrets never leave the store, callers
// only obtain derived chunk keys.
type SessionKeyStore struct {
	masters map[string][]byte
	sync.RWMutex
}

// NewSessionKeyStore returns an empty session key store.
func NewSessionKeyStore() *SessionKeyStore {
	return &SessionKeyStore{
		masters: make(map[string][]byte),
	}
}

// Register stores the master secret of a session.
func (s *SessionKeyStore) Register(sessionID string, master []byte) (err error) {
	if len(master) != SessionMasterSize {
		return ErrSessionKeySize
	}
	s.Lock()
	defer s.Unlock()
	cp := make([]byte, SessionMasterSize)
	copy(cp, master)
	s.masters[sessionID] = cp
	return
}

// GenerateMaster creates, registers and returns a fresh random master
// secret for a session.
func (s *SessionKeyStore) GenerateMaster(sessionID string) (master []byte, err error) {
	master = make([]byte, SessionMasterSize)
	if _, err = rand.Read(master); err != nil {
		err = errors.Wrap(err, "generate session master failed")
		return
	}
	err = s.Register(sessionID, master)
	return
}

// DeriveChunkKey derives the symmetric key of one chunk of a session.
//
// Derivation is HKDF-SHA256 with the session ID as salt, so the same
// (session, index) pair always yields the same key while distinct
// sessions never share key material even for equal indexes.
func (s *SessionKeyStore) DeriveChunkKey(sessionID string, index uint32) (key []byte, err error) {
	s.RLock()
	master, ok := s.masters[sessionID]
	s.RUnlock()
	if !ok {
		err = ErrKeyUnavailable
		return
	}

	info := make([]byte, len(chunkKeyInfo)+4)
	copy(info, chunkKeyInfo)
	info[len(chunkKeyInfo)] = byte(index >> 24)
	info[len(chunkKeyInfo)+1] = byte(index >> 16)
	info[len(chunkKeyInfo)+2] = byte(index >> 8)
	info[len(chunkKeyInfo)+3] = byte(index)

	r := hkdf.New(sha256.New, master, []byte(sessionID), info)
	key = make([]byte, symmetric.ChunkKeySize)
	if _, err = io.ReadFull(r, key); err != nil {
		err = errors.Wrap(err, "derive chunk key failed")
		key = nil
	}
	return
}

// Forget drops the master secret of a session. Deriving keys for the
// session afterwards fails with ErrKeyUnavailable.
func (s *SessionKeyStore) Forget(sessionID string) {
	s.Lock()
	defer s.Unlock()
	delete(s.masters, sessionID)
}
