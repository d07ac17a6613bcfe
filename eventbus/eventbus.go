// Copyright (c) 2026, WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package eventbus is the single-writer-per-publication broadcast bus from
// spec.md §4.F: every successful store mutation publishes exactly one event,
// after it is durable, to every live subscriber. Adapted from
// websocket.Manager's connection registry, replacing outbound gateway dials
// with in-process bounded subscriber channels.
package eventbus

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType is the discriminant for Event's tagged-variant cases.
type EventType string

const (
	EventSpanCreated        EventType = "span_created"
	EventSpanCompleted      EventType = "span_completed"
	EventSpanFailed         EventType = "span_failed"
	EventSpanDeleted        EventType = "span_deleted"
	EventTraceCreated       EventType = "trace_created"
	EventTraceDeleted       EventType = "trace_deleted"
	EventFileVersionCreated EventType = "file_version_created"
	EventDatasetCreated     EventType = "dataset_created"
	EventDatasetDeleted     EventType = "dataset_deleted"
	EventDatapointCreated   EventType = "datapoint_created"
	EventQueueItemUpdated   EventType = "queue_item_updated"
	EventCleared            EventType = "cleared"
	eventResync             EventType = "resync"
)

// Event is the wire shape broadcast to subscribers (spec.md §4.F). Payload
// is the full post-image of the affected entity, except for deletions where
// only the identifier is carried.
type Event struct {
	Type      EventType       `json:"type"`
	ID        uuid.UUID       `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

const defaultBufferSize = 256

// Subscription is a single subscriber's bounded event channel.
type Subscription struct {
	id     uint64
	events chan Event
	bus    *Bus

	mu     sync.Mutex
	lagged bool
}

// Events returns the channel to range over for delivered events.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Lagged reports whether this subscriber has dropped events since it was
// created or since ClearLag was last called.
func (s *Subscription) Lagged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lagged
}

// Unsubscribe releases the subscription and its buffer immediately.
func (s *Subscription) Unsubscribe() {
	s.bus.remove(s.id)
}

// Bus is the broadcast hub. The zero value is not usable; use New.
type Bus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscription
	buffer int
	now    func() time.Time
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithBufferSize overrides the default 256-event per-subscriber buffer.
func WithBufferSize(n int) Option {
	return func(b *Bus) { b.buffer = n }
}

// WithClock overrides the time source used to stamp events (for tests).
func WithClock(now func() time.Time) Option {
	return func(b *Bus) { b.now = now }
}

// New constructs a Bus.
func New(logger *slog.Logger, opts ...Option) *Bus {
	b := &Bus{
		logger: logger,
		subs:   make(map[uint64]*Subscription),
		buffer: defaultBufferSize,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscriber with a bounded buffer.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		events: make(chan Event, b.buffer),
		bus:    b,
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		close(sub.events)
		delete(b.subs, id)
	}
}

// Publish broadcasts evt to every live subscriber. On a full buffer it
// drops the subscriber's oldest event, marks it lagged, and emits a resync
// marker in its place (spec.md §4.F).
func (b *Bus) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = b.now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		b.deliver(sub, evt)
	}
}

func (b *Bus) deliver(sub *Subscription, evt Event) {
	select {
	case sub.events <- evt:
		return
	default:
	}

	// Buffer full: drop the oldest queued event to make room for the resync
	// marker. The new event is delivered only if a slot is still free after
	// the marker (for instance because the subscriber read meanwhile).
	select {
	case <-sub.events:
	default:
	}
	sub.mu.Lock()
	sub.lagged = true
	sub.mu.Unlock()
	if b.logger != nil {
		b.logger.Warn("subscriber buffer full, dropping oldest event", "subscriptionID", sub.id)
	}

	select {
	case sub.events <- resyncMarker(b.now()):
	default:
	}
	select {
	case sub.events <- evt:
	default:
	}
}

func resyncMarker(now time.Time) Event {
	return Event{Type: eventResync, Timestamp: now}
}

// ClearLag resets the lagged flag once a subscriber has observed a resync
// marker and refetched its state.
func (s *Subscription) ClearLag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lagged = false
}
