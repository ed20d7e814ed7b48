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

package sessions

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/types"
	"github.com/HamiGames/Lucid-sub020/utils"
)

var (
	manifestKeyPrefix = []byte("s/")
	chunkKeyPrefix    = []byte("c/")
)

// Store persists session manifests and chunk metadata in leveldb, and
// ciphertext blobs as flat files addressed by ciphertext digest.
// Ciphertext never goes through leveldb: blobs are written once, read
// many, and shared between sessions that produce identical ciphertext.
type Store struct {
	db      *leveldb.DB
	blobDir string
}

// OpenStore opens (or creates) the session store under dir.
func OpenStore(dir string) (s *Store, err error) {
	blobDir := filepath.Join(dir, "blobs")
	if err = os.MkdirAll(blobDir, 0700); err != nil {
		err = errors.Wrap(err, "create blob dir failed")
		return
	}
	s = &Store{blobDir: blobDir}
	if s.db, err = leveldb.OpenFile(filepath.Join(dir, "meta"), nil); err != nil {
		err = errors.Wrap(err, "open session store failed")
		s = nil
	}
	return
}

// Close releases the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func manifestKey(sessionID string) []byte {
	return append(append([]byte(nil), manifestKeyPrefix...), []byte(sessionID)...)
}

func chunkKey(sessionID string, index uint32) []byte {
	return append(append([]byte(nil), chunkKeyPrefix...),
		[]byte(fmt.Sprintf("%s/%010d", sessionID, index))...)
}

// PutManifest stores or overwrites a session manifest.
func (s *Store) PutManifest(m *types.SessionManifest) (err error) {
	enc, err := utils.EncodeMsgPack(m)
	if err != nil {
		return errors.Wrap(err, "encode session manifest failed")
	}
	if err = s.db.Put(manifestKey(m.SessionID), enc.Bytes(), nil); err != nil {
		err = errors.Wrap(err, "write session manifest failed")
	}
	return
}

// Manifest loads one session manifest.
func (s *Store) Manifest(sessionID string) (m *types.SessionManifest, err error) {
	raw, err := s.db.Get(manifestKey(sessionID), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "read session manifest failed")
	}
	m = &types.SessionManifest{}
	if err = utils.DecodeMsgPack(raw, m); err != nil {
		return nil, errors.Wrap(err, "decode session manifest failed")
	}
	return
}

// Manifests returns all stored manifests in session id order.
func (s *Store) Manifests() (ms []*types.SessionManifest, err error) {
	iter := s.db.NewIterator(util.BytesPrefix(manifestKeyPrefix), nil)
	defer iter.Release()
	for iter.Next() {
		m := &types.SessionManifest{}
		if err = utils.DecodeMsgPack(iter.Value(), m); err != nil {
			return nil, errors.Wrap(err, "decode session manifest failed")
		}
		ms = append(ms, m)
	}
	err = errors.Wrap(iter.Error(), "iterate session manifests failed")
	if err != nil {
		ms = nil
	}
	return
}

// PutChunks stores the metadata of a session's chunk set in one batch.
func (s *Store) PutChunks(chunks []*types.EncryptedChunk) (err error) {
	batch := &leveldb.Batch{}
	for _, c := range chunks {
		meta := c.Meta()
		enc, eerr := utils.EncodeMsgPack(&meta)
		if eerr != nil {
			return errors.Wrap(eerr, "encode chunk meta failed")
		}
		batch.Put(chunkKey(c.SessionID, c.Index), enc.Bytes())
	}
	if err = s.db.Write(batch, nil); err != nil {
		err = errors.Wrap(err, "write chunk metas failed")
	}
	return
}

// Chunk loads the metadata of one chunk.
func (s *Store) Chunk(sessionID string, index uint32) (c *types.EncryptedChunk, err error) {
	raw, err := s.db.Get(chunkKey(sessionID, index), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrChunkNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "read chunk meta failed")
	}
	c = &types.EncryptedChunk{}
	if err = utils.DecodeMsgPack(raw, c); err != nil {
		return nil, errors.Wrap(err, "decode chunk meta failed")
	}
	return
}

// Chunks returns a session's chunk metadata in index order.
func (s *Store) Chunks(sessionID string) (cs []*types.EncryptedChunk, err error) {
	prefix := append(append([]byte(nil), chunkKeyPrefix...), []byte(sessionID+"/")...)
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		c := &types.EncryptedChunk{}
		if err = utils.DecodeMsgPack(iter.Value(), c); err != nil {
			return nil, errors.Wrap(err, "decode chunk meta failed")
		}
		cs = append(cs, c)
	}
	err = errors.Wrap(iter.Error(), "iterate chunk metas failed")
	if err != nil {
		cs = nil
	}
	return
}

func (s *Store) blobPath(digest hash.Hash) string {
	return filepath.Join(s.blobDir, digest.String())
}

// WriteBlob stores ciphertext under its digest address. An existing
// blob is left untouched, identical ciphertext dedupes naturally.
func (s *Store) WriteBlob(digest hash.Hash, cipherData []byte) (err error) {
	path := s.blobPath(digest)
	if _, err = os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "stat blob failed")
	}

	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, cipherData, 0600); err != nil {
		return errors.Wrap(err, "write blob failed")
	}
	if err = os.Rename(tmp, path); err != nil {
		err = errors.Wrap(err, "commit blob failed")
	}
	return
}

// ReadBlob loads ciphertext by digest address and verifies it against
// the address before returning.
func (s *Store) ReadBlob(digest hash.Hash) (cipherData []byte, err error) {
	cipherData, err = os.ReadFile(s.blobPath(digest))
	if os.IsNotExist(err) {
		return nil, ErrChunkNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "read blob failed")
	}
	if hash.SHA256H(cipherData) != digest {
		return nil, ErrBlobCorrupted
	}
	return
}
