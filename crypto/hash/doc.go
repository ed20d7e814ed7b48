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

// Package hash provides abstracted hash functionality.
//
// This package provides a generic 32-byte hash type plus the two hash
// algorithms the protocol actually commits to: BLAKE3 for everything that
// feeds a merkle root, a nonce derivation or a leader tie-break (THashB /
// THashH), and SHA-256 for ciphertext digests that external parties verify
// with stock tooling (SHA256B / SHA256H). The double-SHA256 helpers exist
// for the password-based keystore cipher only.
package hash
