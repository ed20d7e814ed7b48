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

import "github.com/pkg/errors"

var (
	// ErrSignVerification indicates a failed signature verification.
	ErrSignVerification = errors.New("signature verification failed")
	// ErrHashVerification indicates a failed hash verification.
	ErrHashVerification = errors.New("hash verification failed")
	// ErrInvalidProofType indicates an unknown task proof type.
	ErrInvalidProofType = errors.New("invalid task proof type")
	// ErrMissingSigner indicates a proof without signer public key.
	ErrMissingSigner = errors.New("missing signer public key")
	// ErrInvalidStatusTransition indicates an illegal manifest status change.
	ErrInvalidStatusTransition = errors.New("invalid manifest status transition")
)
