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

// Package chunk splits a session byte stream into size-bounded,
// independently compressed chunks.
package chunk

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/HamiGames/Lucid-sub020/types"
	"github.com/HamiGames/Lucid-sub020/utils/log"
)

const (
	// ChunkMin is the lower compressed-size bound of a non-final chunk.
	ChunkMin = 8 << 20
	// ChunkMax is the upper compressed-size bound of any chunk.
	ChunkMax = 16 << 20

	// readBlock is how much plaintext is fed to the encoder between
	// size checks. Keeping it small bounds the chunk overshoot above
	// ChunkMin well below ChunkMax.
	readBlock = 1 << 20
)

// Engine splits session streams into compressed chunks. Each chunk is
// a self-contained zstd frame so chunks stay independently decodable
// after per-chunk encryption.
type Engine struct {
	level zstd.EncoderLevel
}

// NewEngine returns an engine with the default compression level, a
// throughput/ratio balance suited to constrained hardware.
func NewEngine() *Engine {
	return &Engine{level: zstd.SpeedDefault}
}

// Split reads the whole session stream and returns its ordered chunks.
//
// declaredSize is the expected plaintext length; pass a negative value
// when the length is unknown. A stream that ends before declaredSize
// fails with ErrStreamTruncated. Every non-final chunk's compressed
// size lies within [ChunkMin, ChunkMax], the final chunk may be
// smaller. An empty stream yields no chunks.
func (e *Engine) Split(sessionID string, r io.Reader, declaredSize int64) (chunks []*types.Chunk, err error) {
	var (
		buf       bytes.Buffer
		enc       *zstd.Encoder
		chunkRaw  uint64
		totalRead int64
		index     uint32
		block     = make([]byte, readBlock)
	)

	if enc, err = zstd.NewWriter(&buf, zstd.WithEncoderLevel(e.level)); err != nil {
		err = errors.Wrap(err, "create zstd encoder failed")
		return
	}

	cut := func(final bool) error {
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "close zstd frame failed")
		}
		data := make([]byte, buf.Len())
		copy(data, buf.Bytes())
		buf.Reset()

		if len(data) > ChunkMax || (!final && len(data) < ChunkMin) {
			log.WithFields(log.Fields{
				"session": sessionID,
				"index":   index,
				"size":    len(data),
				"final":   final,
			}).Error("compressed chunk out of bounds")
			return ErrChunkSizeViolation
		}

		c := &types.Chunk{
			SessionID: sessionID,
			Index:     index,
			RawSize:   chunkRaw,
			Data:      data,
		}
		log.WithFields(log.Fields{
			"session": sessionID,
			"index":   index,
			"raw":     chunkRaw,
			"size":    len(data),
			"ratio":   c.CompressionRatio(),
		}).Debug("chunk produced")
		chunks = append(chunks, c)
		index++
		chunkRaw = 0
		return nil
	}

	for {
		var n int
		n, err = io.ReadFull(r, block)
		totalRead += int64(n)

		if n > 0 {
			chunkRaw += uint64(n)
			if _, werr := enc.Write(block[:n]); werr != nil {
				err = errors.Wrap(werr, "compress chunk failed")
				return
			}
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = nil
			break
		} else if err != nil {
			err = errors.Wrap(err, "read session stream failed")
			return
		}

		// flush so the buffered length reflects everything written
		if ferr := enc.Flush(); ferr != nil {
			err = errors.Wrap(ferr, "flush zstd frame failed")
			return
		}
		if buf.Len() >= ChunkMin {
			if err = cut(false); err != nil {
				return
			}
			enc.Reset(&buf)
		}
	}

	if declaredSize >= 0 && totalRead != declaredSize {
		log.WithFields(log.Fields{
			"session":  sessionID,
			"declared": declaredSize,
			"read":     totalRead,
		}).Error("session stream truncated")
		err = ErrStreamTruncated
		return
	}

	if chunkRaw > 0 {
		if err = cut(true); err != nil {
			return
		}
	}

	return
}

// Decompress restores the plaintext of one chunk frame.
func Decompress(data []byte) (plain []byte, err error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		err = errors.Wrap(err, "create zstd decoder failed")
		return
	}
	defer dec.Close()

	if plain, err = dec.DecodeAll(data, nil); err != nil {
		err = errors.Wrap(err, "decompress chunk failed")
	}
	return
}
