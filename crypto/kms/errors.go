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

package kms

import "github.com/pkg/errors"

var (
	// ErrNilField indicates the field is nil.
	ErrNilField = errors.New("field is nil")
	// ErrNotKeyFile indicates that the file is not a valid key file.
	ErrNotKeyFile = errors.New("private key file empty or broken")
	// ErrHashNotMatch indicates that the key hash does not match the
	// decrypted content, usually caused by a wrong master key.
	ErrHashNotMatch = errors.New("private key hash not match")
	// ErrKeyUnavailable indicates that no master secret is registered
	// for the requested session.
	ErrKeyUnavailable = errors.New("session key unavailable")
	// ErrSessionKeySize indicates a session master secret of invalid length.
	ErrSessionKeySize = errors.New("session master secret size invalid")
)
