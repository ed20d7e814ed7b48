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
	"sync"

	"github.com/HamiGames/Lucid-sub020/crypto/asymmetric"
	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/proto"
)

// LocalKeyStore holds the local node private & public key.
type LocalKeyStore struct {
	isSet   bool
	private *asymmetric.PrivateKey
	public  *asymmetric.PublicKey
	nodeID  []byte
	sync.RWMutex
}

var (
	// localKey is the globally accessible local key pair.
	localKey *LocalKeyStore
	once     sync.Once
)

func init() {
	initLocalKeyStore()
}

func initLocalKeyStore() {
	once.Do(func() {
		localKey = &LocalKeyStore{}
	})
}

// ResetLocalKeyStore FOR UNIT TEST, DO NOT USE IT.
func ResetLocalKeyStore() {
	localKey = &LocalKeyStore{}
}

// SetLocalKeyPair sets private and public key, this is a one time thing.
func SetLocalKeyPair(private *asymmetric.PrivateKey, public *asymmetric.PublicKey) {
	localKey.Lock()
	defer localKey.Unlock()
	if localKey.isSet {
		return
	}
	localKey.isSet = true
	localKey.private = private
	localKey.public = public
	localKey.nodeID = hash.THashB(public.Serialize())
}

// GetLocalNodeID gets the current node ID in hash string format.
func GetLocalNodeID() (nodeID proto.NodeID, err error) {
	var rawNodeIDBytes []byte
	if rawNodeIDBytes, err = GetLocalNodeIDBytes(); err != nil {
		return
	}
	var h *hash.Hash
	if h, err = hash.NewHash(rawNodeIDBytes); err != nil {
		return
	}
	nodeID = proto.NodeID(h.String())

	return
}

// GetLocalNodeIDBytes gets a copy of the current raw node ID.
func GetLocalNodeIDBytes() (rawNodeID []byte, err error) {
	localKey.RLock()
	defer localKey.RUnlock()
	if localKey.nodeID == nil {
		err = ErrNilField
		return
	}
	rawNodeID = make([]byte, len(localKey.nodeID))
	copy(rawNodeID, localKey.nodeID)

	return
}

// GetLocalPrivateKey gets the local private key.
func GetLocalPrivateKey() (private *asymmetric.PrivateKey, err error) {
	localKey.RLock()
	defer localKey.RUnlock()
	if localKey.private == nil {
		err = ErrNilField
		return
	}
	private = localKey.private

	return
}

// GetLocalPublicKey gets the local public key.
func GetLocalPublicKey() (public *asymmetric.PublicKey, err error) {
	localKey.RLock()
	defer localKey.RUnlock()
	if localKey.public == nil {
		err = ErrNilField
		return
	}
	public = localKey.public

	return
}
