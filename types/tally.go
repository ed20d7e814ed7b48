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

import (
	"github.com/HamiGames/Lucid-sub020/proto"
)

// WorkTally is the aggregated work standing of one entity for one epoch.
// Tallies are recomputed from the proof window each epoch and appended,
// never mutated in place.
type WorkTally struct {
	Epoch     uint64
	Entity    proto.EntityID
	Credits   uint64
	LiveScore float64
	Rank      uint32
}

// Eligible reports whether the entity may lead a slot: it must clear
// the liveness floor and hold at least one work credit, so an entity
// that only reported uptime cannot become primary.
func (t *WorkTally) Eligible() bool {
	return t.Credits > 0 && t.LiveScore >= MinLiveScore
}
