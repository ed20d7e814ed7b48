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

// Package crypto implements the shared signing, addressing and padding
// helpers used by the session pipeline and the consensus records.
package crypto

import (
	"bytes"
	"crypto/aes"
	"errors"
)

var errInvalidPadding = errors.New("invalid PKCS#7 padding")

// Implement PKCS#7 padding with block size of 16 (AES block size).

// AddPKCSPadding adds padding to a block of data.
func AddPKCSPadding(src []byte) []byte {
	padding := aes.BlockSize - len(src)%aes.BlockSize
	padtext := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(src, padtext...)
}

// RemovePKCSPadding removes padding from data that was added with
// AddPKCSPadding.
func RemovePKCSPadding(src []byte) ([]byte, error) {
	length := len(src)
	if length == 0 || length%aes.BlockSize != 0 {
		return nil, errInvalidPadding
	}
	padLen := int(src[length-1])
	if padLen > aes.BlockSize || padLen == 0 || padLen > length {
		return nil, errInvalidPadding
	}
	for _, v := range src[length-padLen:] {
		if int(v) != padLen {
			return nil, errInvalidPadding
		}
	}
	return src[:length-padLen], nil
}
