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

import "errors"

var (
	// ErrSessionNotFound indicates no manifest exists for the session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrChunkNotFound indicates no chunk record exists at the index.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrBlobCorrupted indicates blob content no longer matches its
	// ciphertext digest.
	ErrBlobCorrupted = errors.New("blob content digest mismatch")
	// ErrEmptySession indicates the input stream produced no chunks.
	ErrEmptySession = errors.New("session stream is empty")
)
