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

package utils

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type chunkRecordFixture struct {
	SessionID string
	Index     uint32
	Digest    [32]byte
}

func TestMsgPackEncodeDecode(t *testing.T) {
	Convey("Primitive values round-trip", t, func() {
		buf, err := EncodeMsgPack(uint64(42))
		So(err, ShouldBeNil)
		var value uint64
		So(DecodeMsgPack(buf.Bytes(), &value), ShouldBeNil)
		So(value, ShouldEqual, 42)
	})

	Convey("Record structs round-trip", t, func() {
		pre := &chunkRecordFixture{
			SessionID: "f2b4a1d0",
			Index:     7,
			Digest:    [32]byte{1, 2, 3},
		}
		buf, err := EncodeMsgPack(pre)
		So(err, ShouldBeNil)
		var post chunkRecordFixture
		So(DecodeMsgPack(buf.Bytes(), &post), ShouldBeNil)
		So(post, ShouldResemble, *pre)
	})

	Convey("Decoding into a mismatched type fails", t, func() {
		buf, err := EncodeMsgPack("not a number")
		So(err, ShouldBeNil)
		var value uint64
		So(DecodeMsgPack(buf.Bytes(), &value), ShouldNotBeNil)
	})
}
