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

// Package metric exports the node's prometheus instrumentation.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AnchorsSubmitted counts registerSession submissions.
	AnchorsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lucid",
		Subsystem: "anchor",
		Name:      "submitted_total",
		Help:      "Anchor transactions submitted to the ledger.",
	})
	// AnchorsConfirmed counts confirmed anchors.
	AnchorsConfirmed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lucid",
		Subsystem: "anchor",
		Name:      "confirmed_total",
		Help:      "Anchor transactions confirmed on the ledger.",
	})
	// SlotsResolved counts resolved slots per outcome.
	SlotsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lucid",
		Subsystem: "consensus",
		Name:      "slots_resolved_total",
		Help:      "Slots resolved, labelled by outcome.",
	}, []string{"outcome"})
	// ProofsAccepted counts ingested task proofs per type.
	ProofsAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lucid",
		Subsystem: "consensus",
		Name:      "proofs_accepted_total",
		Help:      "Task proofs accepted into the store, labelled by type.",
	}, []string{"type"})
	// ProofsRejected counts dropped task proofs per cause.
	ProofsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lucid",
		Subsystem: "consensus",
		Name:      "proofs_rejected_total",
		Help:      "Task proofs dropped, labelled by cause.",
	}, []string{"cause"})
	// SessionsAnchored counts sessions by terminal status.
	SessionsAnchored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lucid",
		Subsystem: "sessions",
		Name:      "terminal_total",
		Help:      "Sessions reaching a terminal status.",
	}, []string{"status"})
)

// InitMetrics registers the node collectors with the default registry.
// Calling it twice is a programming error, prometheus panics on
// duplicate registration.
func InitMetrics() {
	prometheus.MustRegister(
		AnchorsSubmitted,
		AnchorsConfirmed,
		SlotsResolved,
		ProofsAccepted,
		ProofsRejected,
		SessionsAnchored,
	)
}
