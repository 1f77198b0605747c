// Package notify carries user-facing editor notifications (the toasts of the
// admin UI) from use cases to whoever displays them.
package notify

import (
	"sync"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one transient message addressed to a draft's editor.
type Notification struct {
	DraftID     string    `json:"draft_id"`
	ComponentID string    `json:"component_id,omitempty"`
	Level       Level     `json:"level"`
	Message     string    `json:"message"`
	At          time.Time `json:"at"`
}

// Handler observes published notifications. Handlers run synchronously on
// the publishing goroutine and must not block.
type Handler func(Notification)

// Bus fans notifications out to subscribers. It is passed explicitly to the
// components that emit; there is no package-level instance.
type Bus struct {
	mu       sync.RWMutex
	handlers map[int]Handler
	nextID   int
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	if b == nil || h == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers n to every subscriber. A nil Bus drops the notification.
func (b *Bus) Publish(n Notification) {
	if b == nil {
		return
	}
	if n.At.IsZero() {
		n.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(n)
	}
}
