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

import "github.com/pkg/errors"

var (
	// ErrCircuitOpen indicates the circuit breaker tripped, submissions
	// halt until Reset or the cool-down elapses.
	ErrCircuitOpen = errors.New("anchor circuit breaker open")
	// ErrConfirmationTimeout indicates the transaction was submitted but
	// not confirmed within the polling bound. Retryable.
	ErrConfirmationTimeout = errors.New("anchor confirmation timeout")
	// ErrLedgerRejected indicates the ledger rejected the transaction.
	// Terminal for the session.
	ErrLedgerRejected = errors.New("anchor rejected by ledger")
	// ErrSubmissionInFlight indicates a concurrent anchor attempt for
	// the same session.
	ErrSubmissionInFlight = errors.New("anchor submission already in flight")
)
