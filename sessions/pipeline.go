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
	"context"
	"io"
	"sync"
	"time"

	"github.com/ivpusic/grpool"
	"github.com/pkg/errors"

	"github.com/HamiGames/Lucid-sub020/anchor"
	"github.com/HamiGames/Lucid-sub020/bus"
	"github.com/HamiGames/Lucid-sub020/chunk"
	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/crypto/kms"
	"github.com/HamiGames/Lucid-sub020/crypto/symmetric"
	"github.com/HamiGames/Lucid-sub020/merkle"
	"github.com/HamiGames/Lucid-sub020/metric"
	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/types"
	"github.com/HamiGames/Lucid-sub020/utils/log"
)

// Pipeline drives a session end to end: split and compress the stream,
// seal each chunk under its derived key, build the Merkle tree over the
// sealed chunks, persist everything, then anchor the manifest on the
// ledger. Chunks are sealed in parallel, every other stage is
// sequential.
type Pipeline struct {
	engine  *chunk.Engine
	keys    *kms.SessionKeyStore
	store   *Store
	anchors *anchor.Client

	eventBus bus.Bus
	pool     *grpool.Pool
	poolOnce sync.Once
	workers  int
}

// NewPipeline assembles a session pipeline with the given number of
// sealing workers.
func NewPipeline(store *Store, keys *kms.SessionKeyStore, anchors *anchor.Client, eventBus bus.Bus, workers int) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		engine:   chunk.NewEngine(),
		keys:     keys,
		store:    store,
		anchors:  anchors,
		eventBus: eventBus,
		workers:  workers,
	}
}

func (p *Pipeline) jobs() *grpool.Pool {
	p.poolOnce.Do(func() {
		p.pool = grpool.NewPool(p.workers, p.workers*2)
	})
	return p.pool
}

// Release shuts down the sealing workers.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Record runs one session through the full pipeline and returns its
// terminal manifest. A failure past the pending stage still returns
// the manifest, marked failed with the cause, alongside the error.
func (p *Pipeline) Record(ctx context.Context, owner proto.AccountAddress, r io.Reader, declaredSize int64) (manifest *types.SessionManifest, err error) {
	manifest = types.NewSessionManifest(owner, time.Now().UTC())
	le := log.WithField("session", manifest.SessionID)

	if _, err = p.keys.GenerateMaster(manifest.SessionID); err != nil {
		return nil, errors.Wrap(err, "generate session master key failed")
	}

	chunks, err := p.engine.Split(manifest.SessionID, r, declaredSize)
	if err != nil {
		return p.fail(le, manifest, "chunking", err)
	}
	if len(chunks) == 0 {
		return p.fail(le, manifest, "chunking", ErrEmptySession)
	}

	sealed, err := p.sealAll(chunks)
	if err != nil {
		return p.fail(le, manifest, "encryption", err)
	}

	leaves := make([]hash.Hash, len(sealed))
	for i, c := range sealed {
		leaves[i] = c.LeafHash
		manifest.TotalBytes += c.RawSize
		manifest.CompressedBytes += uint64(c.CompressedSize)
	}
	manifest.ChunkCount = uint32(len(sealed))
	manifest.MerkleRoot = *merkle.NewMerkle(leaves).GetRoot()

	if err = p.persist(manifest, sealed); err != nil {
		return p.fail(le, manifest, "persistence", err)
	}

	le.WithFields(log.Fields{
		"chunks": manifest.ChunkCount,
		"raw":    manifest.TotalBytes,
		"root":   manifest.MerkleRoot.String(),
	}).Info("session sealed, anchoring")

	receipt, err := p.anchors.Anchor(ctx, manifest)
	if err != nil {
		return p.fail(le, manifest, "anchoring", err)
	}

	if err = manifest.MarkAnchored(receipt.TxID, time.Now().UTC()); err != nil {
		return
	}
	if err = p.store.PutManifest(manifest); err != nil {
		return manifest, errors.Wrap(err, "persist anchored manifest failed")
	}

	metric.SessionsAnchored.WithLabelValues(manifest.Status.String()).Inc()
	if p.eventBus != nil {
		p.eventBus.Publish(bus.TopicSessionAnchored, manifest)
	}
	le.WithField("tx", receipt.TxID).Info("session anchored")
	return
}

// sealAll encrypts the chunk set in parallel, preserving index order in
// the result.
func (p *Pipeline) sealAll(chunks []*types.Chunk) (sealed []*types.EncryptedChunk, err error) {
	var (
		pool = p.jobs()
		mu   sync.Mutex
		errs []error
	)
	sealed = make([]*types.EncryptedChunk, len(chunks))

	pool.WaitCount(len(chunks))
	for i, c := range chunks {
		i, c := i, c
		pool.JobQueue <- func() {
			defer pool.JobDone()
			ec, serr := p.seal(c)
			mu.Lock()
			defer mu.Unlock()
			if serr != nil {
				errs = append(errs, serr)
				return
			}
			sealed[i] = ec
		}
	}
	pool.WaitAll()

	if len(errs) > 0 {
		return nil, errs[0]
	}
	return
}

// seal encrypts one chunk under its derived key and fills the digests.
func (p *Pipeline) seal(c *types.Chunk) (ec *types.EncryptedChunk, err error) {
	key, err := p.keys.DeriveChunkKey(c.SessionID, c.Index)
	if err != nil {
		return nil, errors.Wrap(err, "derive chunk key failed")
	}
	cipherData, nonce, err := symmetric.SealChunk(c.Data, key, c.SessionID, c.Index)
	if err != nil {
		return nil, errors.Wrap(err, "seal chunk failed")
	}
	ec = &types.EncryptedChunk{
		SessionID:      c.SessionID,
		Index:          c.Index,
		RawSize:        c.RawSize,
		CompressedSize: uint32(len(c.Data)),
	}
	ec.Seal(cipherData, nonce[:])
	return
}

// persist writes the pending manifest, chunk metadata and ciphertext
// blobs. The manifest goes last so a partially persisted session is
// never listed.
func (p *Pipeline) persist(manifest *types.SessionManifest, sealed []*types.EncryptedChunk) (err error) {
	for _, c := range sealed {
		if err = p.store.WriteBlob(c.CipherDigest, c.CipherData); err != nil {
			return
		}
	}
	if err = p.store.PutChunks(sealed); err != nil {
		return
	}
	return p.store.PutManifest(manifest)
}

// fail marks the manifest failed, persists it if it ever reached the
// store, and notifies downstream.
func (p *Pipeline) fail(le *log.Entry, manifest *types.SessionManifest, stage string, cause error) (*types.SessionManifest, error) {
	le.WithError(cause).WithField("stage", stage).Error("session pipeline failed")
	if merr := manifest.MarkFailed(stage + ": " + cause.Error()); merr != nil {
		return manifest, cause
	}
	if perr := p.store.PutManifest(manifest); perr != nil {
		le.WithError(perr).Error("persist failed manifest failed")
	}
	p.keys.Forget(manifest.SessionID)
	metric.SessionsAnchored.WithLabelValues(manifest.Status.String()).Inc()
	if p.eventBus != nil {
		p.eventBus.Publish(bus.TopicSessionFailed, manifest)
	}
	return manifest, cause
}

// ReadChunk loads, verifies and opens one chunk, returning the original
// plaintext segment.
func (p *Pipeline) ReadChunk(sessionID string, index uint32) (plain []byte, err error) {
	meta, err := p.store.Chunk(sessionID, index)
	if err != nil {
		return
	}
	cipherData, err := p.store.ReadBlob(meta.CipherDigest)
	if err != nil {
		return
	}
	key, err := p.keys.DeriveChunkKey(sessionID, index)
	if err != nil {
		return nil, errors.Wrap(err, "derive chunk key failed")
	}
	compressed, err := symmetric.OpenChunk(cipherData, key, sessionID, index)
	if err != nil {
		return nil, errors.Wrap(err, "open chunk failed")
	}
	return chunk.Decompress(compressed)
}

// ChunkProof returns the Merkle inclusion proof of one chunk against
// the session's recorded root.
func (p *Pipeline) ChunkProof(sessionID string, index uint32) (leaf hash.Hash, steps []merkle.ProofStep, err error) {
	metas, err := p.store.Chunks(sessionID)
	if err != nil {
		return
	}
	if int(index) >= len(metas) {
		err = ErrChunkNotFound
		return
	}
	leaves := make([]hash.Hash, len(metas))
	for i, m := range metas {
		leaves[i] = m.LeafHash
	}
	steps, err = merkle.NewMerkle(leaves).Proof(int(index))
	leaf = leaves[index]
	return
}

// VerifySession recomputes the Merkle root from stored chunk metadata
// and checks it against the manifest.
func (p *Pipeline) VerifySession(sessionID string) (err error) {
	manifest, err := p.store.Manifest(sessionID)
	if err != nil {
		return
	}
	metas, err := p.store.Chunks(sessionID)
	if err != nil {
		return
	}
	if uint32(len(metas)) != manifest.ChunkCount {
		return errors.Errorf("chunk count mismatch: stored %d, manifest %d",
			len(metas), manifest.ChunkCount)
	}
	leaves := make([]hash.Hash, len(metas))
	for i, m := range metas {
		leaves[i] = m.LeafHash
	}
	if root := merkle.NewMerkle(leaves).GetRoot(); *root != manifest.MerkleRoot {
		return types.ErrHashVerification
	}
	return
}
