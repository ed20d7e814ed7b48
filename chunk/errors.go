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

package chunk

import "github.com/pkg/errors"

var (
	// ErrStreamTruncated indicates the source ended before the declared
	// stream length was read.
	ErrStreamTruncated = errors.New("session stream truncated")
	// ErrChunkSizeViolation indicates a non-final chunk outside the
	// size bounds. This is a buffering bug, fatal and never retried.
	ErrChunkSizeViolation = errors.New("chunk size out of bounds")
)
