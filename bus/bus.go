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

// Package bus provides the in-process event bus that decouples the
// consensus engine from downstream consumers: slot results and anchor
// confirmations are published here, the payout boundary and operator
// tooling subscribe.
package bus

import (
	"fmt"
	"reflect"
	"sync"
)

// Topics published by the node.
const (
	// TopicSlotResolved carries a *types.LeaderSchedule once a slot
	// reached its final outcome.
	TopicSlotResolved = "slot:resolved"
	// TopicSessionAnchored carries a *types.SessionManifest after a
	// confirmed anchor.
	TopicSessionAnchored = "session:anchored"
	// TopicSessionFailed carries a *types.SessionManifest after a
	// terminal pipeline failure.
	TopicSessionFailed = "session:failed"
)

// Subscriber defines subscribing-related bus behavior.
type Subscriber interface {
	Subscribe(topic string, handler interface{}) error
	SubscribeAsync(topic string, handler interface{}, transactional bool) error
	SubscribeOnce(topic string, handler interface{}) error
	Unsubscribe(topic string, handler interface{}) error
}

// Publisher defines publishing-related bus behavior.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Bus combines subscribe, publish and control behavior.
type Bus interface {
	Subscriber
	Publisher
	HasCallback(topic string) bool
	WaitAsync()
}

type eventHandler struct {
	callBack      reflect.Value
	flagOnce      bool
	async         bool
	transactional bool
	sync.Mutex
}

// EventBus is the in-memory Bus implementation.
type EventBus struct {
	handlers map[string][]*eventHandler
	lock     sync.Mutex
	wg       sync.WaitGroup
}

// New returns a new EventBus with empty handlers.
func New() Bus {
	return &EventBus{
		handlers: make(map[string][]*eventHandler),
	}
}

func (bus *EventBus) doSubscribe(topic string, fn interface{}, handler *eventHandler) error {
	bus.lock.Lock()
	defer bus.lock.Unlock()
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("%s is not of type reflect.Func", reflect.TypeOf(fn).Kind())
	}
	bus.handlers[topic] = append(bus.handlers[topic], handler)
	return nil
}

// Subscribe subscribes to a topic. Returns an error if fn is not a
// function.
func (bus *EventBus) Subscribe(topic string, fn interface{}) error {
	return bus.doSubscribe(topic, fn, &eventHandler{
		callBack: reflect.ValueOf(fn),
	})
}

// SubscribeAsync subscribes with an asynchronous callback. When
// transactional, callbacks for the topic run serially.
func (bus *EventBus) SubscribeAsync(topic string, fn interface{}, transactional bool) error {
	return bus.doSubscribe(topic, fn, &eventHandler{
		callBack:      reflect.ValueOf(fn),
		async:         true,
		transactional: transactional,
	})
}

// SubscribeOnce subscribes to a topic once, the handler is removed
// after its first execution.
func (bus *EventBus) SubscribeOnce(topic string, fn interface{}) error {
	return bus.doSubscribe(topic, fn, &eventHandler{
		callBack: reflect.ValueOf(fn),
		flagOnce: true,
	})
}

// HasCallback reports whether the topic has any subscriber.
func (bus *EventBus) HasCallback(topic string) bool {
	bus.lock.Lock()
	defer bus.lock.Unlock()
	return len(bus.handlers[topic]) > 0
}

// Unsubscribe removes the callback registered for a topic. Returns an
// error if the topic has no subscribed callback.
func (bus *EventBus) Unsubscribe(topic string, handler interface{}) error {
	bus.lock.Lock()
	defer bus.lock.Unlock()
	if len(bus.handlers[topic]) > 0 {
		bus.removeHandler(topic, bus.findHandlerIdx(topic, reflect.ValueOf(handler)))
		return nil
	}
	return fmt.Errorf("topic %s doesn't exist", topic)
}

// Publish executes every callback registered for the topic. Additional
// arguments are passed to the callback.
func (bus *EventBus) Publish(topic string, args ...interface{}) {
	bus.lock.Lock()
	defer bus.lock.Unlock()
	handlers, ok := bus.handlers[topic]
	if !ok || len(handlers) == 0 {
		return
	}

	// handlers may shrink during iteration, iterate a copy
	copyHandlers := make([]*eventHandler, 0, len(handlers))
	copyHandlers = append(copyHandlers, handlers...)
	for i, handler := range copyHandlers {
		if handler.flagOnce {
			bus.removeHandler(topic, i)
		}
		if !handler.async {
			bus.doPublish(handler, args...)
		} else {
			bus.wg.Add(1)
			if handler.transactional {
				handler.Lock()
			}
			go bus.doPublishAsync(handler, args...)
		}
	}
}

func (bus *EventBus) doPublish(handler *eventHandler, args ...interface{}) {
	passedArguments := make([]reflect.Value, len(args))
	for i, arg := range args {
		passedArguments[i] = reflect.ValueOf(arg)
	}
	handler.callBack.Call(passedArguments)
}

func (bus *EventBus) doPublishAsync(handler *eventHandler, args ...interface{}) {
	defer bus.wg.Done()
	if handler.transactional {
		defer handler.Unlock()
	}
	bus.doPublish(handler, args...)
}

func (bus *EventBus) removeHandler(topic string, idx int) {
	handlers, ok := bus.handlers[topic]
	if !ok || idx < 0 || idx >= len(handlers) {
		return
	}
	copy(handlers[idx:], handlers[idx+1:])
	handlers[len(handlers)-1] = nil
	bus.handlers[topic] = handlers[:len(handlers)-1]
}

func (bus *EventBus) findHandlerIdx(topic string, callback reflect.Value) int {
	if handlers, ok := bus.handlers[topic]; ok {
		for i, handler := range handlers {
			if handler.callBack.Type() == callback.Type() &&
				handler.callBack.Pointer() == callback.Pointer() {
				return i
			}
		}
	}
	return -1
}

// WaitAsync blocks until all async callbacks complete.
func (bus *EventBus) WaitAsync() {
	bus.wg.Wait()
}
