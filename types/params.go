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

import "time"

// Protocol parameters. These are consensus-critical: every participating
// node must run with identical values or leader schedules diverge.
const (
	// SlotDuration is the fixed wall-clock length of one consensus slot.
	SlotDuration = 120 * time.Second
	// SlotTimeout is how long a slot waits for the primary leader to
	// publish before promoting a fallback.
	SlotTimeout = 5 * time.Second
	// SlotsPerEpoch groups slots into daily epochs for tally bookkeeping.
	SlotsPerEpoch = 720
	// CooldownSlots is the number of slots an entity is ineligible for
	// primary leadership after having served as primary.
	CooldownSlots = 16
	// MaxFallbacks caps the fallback list of a schedule. With a 5s
	// publish window per candidate, an uncapped list could overrun the
	// slot itself.
	MaxFallbacks = 5
	// LeaderWindowDays is the sliding window of task proofs that feed
	// the work tally.
	LeaderWindowDays = 7
	// BaseUnit is the bandwidth normalization constant of relay proofs.
	BaseUnit = 5 << 20 // 5 MiB
	// MinLiveScore is the liveness floor below which an entity is not
	// eligible for leadership regardless of credits.
	MinLiveScore = 0.2
)

// EpochOfSlot returns the epoch a slot belongs to.
func EpochOfSlot(slot uint64) uint64 {
	return slot / SlotsPerEpoch
}

// EpochStartSlot returns the first slot of an epoch.
func EpochStartSlot(epoch uint64) uint64 {
	return epoch * SlotsPerEpoch
}
