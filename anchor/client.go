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

// Package anchor submits session manifests to the external ledger
// contract and tracks their confirmation.
package anchor

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"

	"github.com/HamiGames/Lucid-sub020/metric"
	"github.com/HamiGames/Lucid-sub020/types"
	"github.com/HamiGames/Lucid-sub020/utils/log"
)

// TxStatus is the ledger-side state of a submitted transaction.
type TxStatus int32

const (
	// TxPending means the transaction is not yet included in a block.
	TxPending TxStatus = iota
	// TxConfirmed means the transaction succeeded on the ledger.
	TxConfirmed
	// TxRejected means the ledger rejected the transaction.
	TxRejected
)

// Receipt is the confirmation record of an anchored session.
type Receipt struct {
	SessionID   string
	TxID        string
	BlockNumber uint64
	ConfirmedAt time.Time
}

// Ledger is the external contract boundary: a remote registerSession
// procedure plus transaction status lookup. The on-chain contract
// itself is an external collaborator.
type Ledger interface {
	RegisterSession(ctx context.Context, manifest *types.SessionManifest) (txID string, err error)
	TransactionStatus(ctx context.Context, txID string) (status TxStatus, blockNumber uint64, err error)
}

// Config tunes the anchor client.
type Config struct {
	// FailureThreshold is the consecutive-failure count that opens the
	// circuit breaker.
	FailureThreshold int
	// BreakerCooldown reopens submissions after this much time without
	// a manual Reset. Zero means manual reset only.
	BreakerCooldown time.Duration
	// SubmitAttempts bounds the backoff retry of one submission.
	SubmitAttempts int
	// ConfirmPolls bounds how many receipt polls are made before the
	// attempt times out.
	ConfirmPolls int
	// ConfirmInterval is the wait between receipt polls.
	ConfirmInterval time.Duration
}

// DefaultConfig returns the client defaults.
func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 3,
		BreakerCooldown:  10 * time.Minute,
		SubmitAttempts:   3,
		ConfirmPolls:     30,
		ConfirmInterval:  2 * time.Second,
	}
}

// Client anchors session manifests through a Ledger, guarding the
// ledger with bounded retries and a circuit breaker.
type Client struct {
	ledger  Ledger
	cfg     *Config
	breaker *CircuitBreaker

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewClient returns an anchor client over the given ledger.
func NewClient(ledger Ledger, cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Client{
		ledger:   ledger,
		cfg:      cfg,
		breaker:  NewCircuitBreaker(cfg.FailureThreshold, cfg.BreakerCooldown),
		inFlight: make(map[string]struct{}),
	}
}

// Breaker exposes the circuit breaker for operator reset and state
// inspection.
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

// Anchor submits the manifest and waits for ledger confirmation.
//
// Error contract: ErrCircuitOpen when the breaker is open (fatal until
// operator intervention), ErrConfirmationTimeout when the transaction
// was submitted but not confirmed within the polling bound (retryable),
// ErrLedgerRejected when the ledger rejected it (terminal for the
// session). Only one submission per session may be in flight.
func (c *Client) Anchor(ctx context.Context, manifest *types.SessionManifest) (receipt *Receipt, err error) {
	if c.breaker.IsOpen() {
		return nil, ErrCircuitOpen
	}

	c.mu.Lock()
	if _, busy := c.inFlight[manifest.SessionID]; busy {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	c.inFlight[manifest.SessionID] = struct{}{}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, manifest.SessionID)
		c.mu.Unlock()
	}()

	le := log.WithFields(log.Fields{
		"session": manifest.SessionID,
		"chunks":  manifest.ChunkCount,
		"root":    manifest.MerkleRoot.Short(8),
	})

	var txID string
	if txID, err = c.submit(ctx, manifest); err != nil {
		tripped := c.breaker.Failure()
		le.WithError(err).WithField("tripped", tripped).Error("anchor submission failed")
		return
	}
	metric.AnchorsSubmitted.Inc()
	le = le.WithField("tx", txID)
	le.Info("anchor submitted")

	if receipt, err = c.awaitConfirmation(ctx, manifest.SessionID, txID); err != nil {
		tripped := c.breaker.Failure()
		le.WithError(err).WithField("tripped", tripped).Error("anchor confirmation failed")
		return
	}

	c.breaker.Success()
	metric.AnchorsConfirmed.Inc()
	le.WithField("block", receipt.BlockNumber).Info("anchor confirmed")
	return
}

// submit sends registerSession with bounded exponential backoff on
// transient errors.
func (c *Client) submit(ctx context.Context, manifest *types.SessionManifest) (txID string, err error) {
	op := func() error {
		id, rerr := c.ledger.RegisterSession(ctx, manifest)
		if rerr != nil {
			log.WithField("session", manifest.SessionID).WithError(rerr).Warning("registerSession attempt failed")
			return rerr
		}
		txID = id
		return nil
	}

	if c.cfg.SubmitAttempts <= 1 {
		// backoff treats maxRetries=0 as unlimited, so a single
		// attempt bypasses the retry wrapper entirely
		err = op()
	} else {
		bo := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.SubmitAttempts-1)), ctx)
		err = backoff.Retry(op, bo)
	}
	if err != nil {
		err = errors.Wrap(err, "submit registerSession failed")
	}
	return
}

// awaitConfirmation polls the transaction status for a bounded number
// of rounds.
func (c *Client) awaitConfirmation(ctx context.Context, sessionID, txID string) (receipt *Receipt, err error) {
	for i := 0; i < c.cfg.ConfirmPolls; i++ {
		var (
			status   TxStatus
			blockNum uint64
		)
		if status, blockNum, err = c.ledger.TransactionStatus(ctx, txID); err != nil {
			log.WithField("tx", txID).WithError(err).Warning("receipt poll failed")
		} else {
			switch status {
			case TxConfirmed:
				receipt = &Receipt{
					SessionID:   sessionID,
					TxID:        txID,
					BlockNumber: blockNum,
					ConfirmedAt: time.Now().UTC(),
				}
				return
			case TxRejected:
				err = ErrLedgerRejected
				return
			}
		}

		select {
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "anchor confirmation cancelled")
			return
		case <-time.After(c.cfg.ConfirmInterval):
		}
	}

	err = ErrConfirmationTimeout
	return
}
