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

package consensus

import "github.com/pkg/errors"

var (
	// ErrStoreClosed indicates an access after the store was closed.
	ErrStoreClosed = errors.New("consensus store closed")
	// ErrScheduleMismatch indicates a schedule for a slot that differs
	// from the one already recorded. This is a consensus disagreement,
	// it is surfaced for reconciliation, never auto-resolved.
	ErrScheduleMismatch = errors.New("leader schedule mismatch for slot")
	// ErrScheduleNotFound indicates no recorded schedule for the slot.
	ErrScheduleNotFound = errors.New("leader schedule not found")
	// ErrNotCurrentSlot indicates a publish for a slot the scheduler is
	// not running.
	ErrNotCurrentSlot = errors.New("publish for a slot not in progress")
)
