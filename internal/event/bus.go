// Package event provides the in-process notification bus connecting the
// spectrum manager, history engine, and application shell.
//
// Delivery is synchronous and ordered: Publish invokes every handler before
// returning, so a foreground-change notification is always fully processed
// before the code that triggered it continues. Handler panics are recovered
// and reported in the per-handler Result rather than propagated.
package event

import (
	"sync"
	"time"
)

// Topic identifies a category of events.
type Topic string

// Topics used throughout the application.
const (
	// TopicForegroundChanged is published when the active (file, samples)
	// pair changes.
	TopicForegroundChanged Topic = "spectrum.foreground.changed"

	// TopicFileOpened is published when a spectrum file is registered.
	TopicFileOpened Topic = "spectrum.file.opened"

	// TopicFileClosed is published when a spectrum file is released.
	TopicFileClosed Topic = "spectrum.file.closed"

	// TopicConfigChanged is published when configuration is reloaded.
	TopicConfigChanged Topic = "config.changed"

	// TopicUserMessage is published for user-visible messages.
	TopicUserMessage Topic = "app.user.message"
)

// Handler processes a published event.
type Handler func(event any) error

// Result represents the outcome of one handler execution.
type Result struct {
	// Success is true if the handler completed without error or panic.
	Success bool

	// Err is the error returned by the handler, if any.
	Err error

	// Panicked is true if the handler panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// Duration is how long the handler took.
	Duration time.Duration
}

// Subscription is a handle for removing a handler.
type Subscription struct {
	topic Topic
	id    uint64
}

// Bus is a synchronous topic-keyed event bus.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]busEntry
}

type busEntry struct {
	id      uint64
	handler Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]busEntry)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic Topic, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[topic] = append(b.subs[topic], busEntry{id: b.nextID, handler: h})
	return Subscription{topic: topic, id: b.nextID}
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.subs[sub.topic]
	for i, e := range entries {
		if e.id == sub.id {
			b.subs[sub.topic] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Publish delivers an event to every handler of the topic, in subscription
// order, and returns one Result per handler. Panics are recovered.
func (b *Bus) Publish(topic Topic, event any) []Result {
	b.mu.RLock()
	entries := make([]busEntry, len(b.subs[topic]))
	copy(entries, b.subs[topic])
	b.mu.RUnlock()

	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		results = append(results, dispatch(e.handler, event))
	}
	return results
}

// SubscriberCount returns the number of handlers for a topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// dispatch runs one handler with panic recovery.
func dispatch(h Handler, event any) (res Result) {
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.Success = false
			res.Panicked = true
			res.PanicValue = r
		}
	}()

	if err := h(event); err != nil {
		return Result{Err: err}
	}
	return Result{Success: true}
}
