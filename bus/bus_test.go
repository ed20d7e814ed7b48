/*
 * Copyright 2024 The Lucid Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package bus

import (
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEventBus(t *testing.T) {
	Convey("Given an event bus", t, func() {
		b := New()

		Convey("Subscribe requires a function", func() {
			So(b.Subscribe("t", "not a func"), ShouldNotBeNil)
			So(b.HasCallback("t"), ShouldBeFalse)
		})

		Convey("Publish reaches a subscriber with arguments", func() {
			var got uint64
			So(b.Subscribe(TopicSlotResolved, func(slot uint64) {
				got = slot
			}), ShouldBeNil)
			So(b.HasCallback(TopicSlotResolved), ShouldBeTrue)

			b.Publish(TopicSlotResolved, uint64(99))
			So(got, ShouldEqual, 99)
		})

		Convey("SubscribeOnce fires a single time", func() {
			var calls int32
			So(b.SubscribeOnce("once", func() {
				atomic.AddInt32(&calls, 1)
			}), ShouldBeNil)

			b.Publish("once")
			b.Publish("once")
			So(atomic.LoadInt32(&calls), ShouldEqual, 1)
		})

		Convey("Async subscribers complete by WaitAsync", func() {
			var calls int32
			So(b.SubscribeAsync("async", func() {
				atomic.AddInt32(&calls, 1)
			}, false), ShouldBeNil)

			b.Publish("async")
			b.Publish("async")
			b.WaitAsync()
			So(atomic.LoadInt32(&calls), ShouldEqual, 2)
		})

		Convey("Unsubscribe removes the handler", func() {
			var calls int32
			fn := func() { atomic.AddInt32(&calls, 1) }
			So(b.Subscribe("u", fn), ShouldBeNil)
			So(b.Unsubscribe("u", fn), ShouldBeNil)
			b.Publish("u")
			So(atomic.LoadInt32(&calls), ShouldEqual, 0)

			So(b.Unsubscribe("missing", fn), ShouldNotBeNil)
		})
	})
}
