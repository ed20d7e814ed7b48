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

package conf

import (
	"time"

	"github.com/HamiGames/Lucid-sub020/types"
)

// ConsensusParams echoes the compiled protocol constants. These must be
// kept consistent on all nodes, so they are never configurable: the
// echo exists for operator visibility and startup logs only.
type ConsensusParams struct {
	SlotDuration     time.Duration
	SlotTimeout      time.Duration
	SlotsPerEpoch    uint64
	CooldownSlots    uint64
	LeaderWindowDays int
	MinLiveScore     float64
}

// Params returns the protocol constant echo.
func Params() ConsensusParams {
	return ConsensusParams{
		SlotDuration:     types.SlotDuration,
		SlotTimeout:      types.SlotTimeout,
		SlotsPerEpoch:    types.SlotsPerEpoch,
		CooldownSlots:    types.CooldownSlots,
		LeaderWindowDays: types.LeaderWindowDays,
		MinLiveScore:     types.MinLiveScore,
	}
}
