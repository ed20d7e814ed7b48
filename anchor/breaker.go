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

package anchor

import (
	"sync"
	"time"
)

// CircuitBreaker halts anchor submissions after a run of consecutive
// failures. A tripped breaker stays open until Reset is called or the
// cool-down elapses.
type CircuitBreaker struct {
	mu          sync.Mutex
	threshold   int
	cooldown    time.Duration
	consecutive int
	openedAt    time.Time
	now         func() time.Time
}

// NewCircuitBreaker returns a closed breaker that opens after threshold
// consecutive failures. A zero cooldown keeps the breaker open until a
// manual Reset.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// IsOpen reports whether submissions are currently halted.
func (b *CircuitBreaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.consecutive < b.threshold {
		return false
	}
	if b.cooldown > 0 && b.now().Sub(b.openedAt) >= b.cooldown {
		// cool-down elapsed, allow the next attempt through
		b.consecutive = b.threshold - 1
		return false
	}
	return true
}

// Failure records a failed submission. It returns true when this
// failure tripped the breaker open.
func (b *CircuitBreaker) Failure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutive++
	if b.consecutive == b.threshold {
		b.openedAt = b.now()
		return true
	}
	return false
}

// Success clears the failure run.
func (b *CircuitBreaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutive = 0
}

// Reset closes the breaker manually.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutive = 0
	b.openedAt = time.Time{}
}

// Failures returns the current consecutive failure count.
func (b *CircuitBreaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutive
}
