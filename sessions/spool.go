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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/utils/log"
)

// Spooler is the local session intake: finished recordings dropped into
// the spool directory are run through the pipeline and removed on
// success. Writers must stage under a .tmp suffix and rename into
// place, the spooler never picks up .tmp files.
type Spooler struct {
	pipeline *Pipeline
	dir      string
	owner    proto.AccountAddress
	interval time.Duration
}

// NewSpooler returns a spooler over dir, scanning at the given interval.
func NewSpooler(pipeline *Pipeline, dir string, owner proto.AccountAddress, interval time.Duration) *Spooler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Spooler{
		pipeline: pipeline,
		dir:      dir,
		owner:    owner,
		interval: interval,
	}
}

// Run scans the spool directory until the context ends.
func (s *Spooler) Run(ctx context.Context) (err error) {
	if err = os.MkdirAll(s.dir, 0700); err != nil {
		return
	}
	log.WithField("dir", s.dir).Info("session spooler started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("session spooler stopped")
			return nil
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Spooler) scan(ctx context.Context) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.WithError(err).Error("scan spool dir failed")
		return
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") || strings.HasSuffix(e.Name(), ".failed") {
			continue
		}
		s.ingest(ctx, filepath.Join(s.dir, e.Name()))
	}
}

func (s *Spooler) ingest(ctx context.Context, path string) {
	le := log.WithField("file", path)
	f, err := os.Open(path)
	if err != nil {
		le.WithError(err).Error("open spooled session failed")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		le.WithError(err).Error("stat spooled session failed")
		return
	}

	manifest, err := s.pipeline.Record(ctx, s.owner, f, info.Size())
	if err != nil {
		le.WithError(err).Error("record spooled session failed")
		// keep the file for inspection, rename so it is not retried hot
		if rerr := os.Rename(path, path+".failed"); rerr != nil {
			le.WithError(rerr).Error("quarantine spooled session failed")
		}
		return
	}

	le.WithFields(log.Fields{
		"session": manifest.SessionID,
		"tx":      manifest.AnchorTxID,
	}).Info("spooled session anchored")
	if err = os.Remove(path); err != nil {
		le.WithError(err).Error("remove spooled session failed")
	}
}
