package notify

import (
	"sync"
	"time"
)

// Inbox keeps the most recent notifications per draft until they are drained
// by the editor's polling endpoint.
type Inbox struct {
	mu    sync.Mutex
	size  int
	items map[string][]Notification
}

// NewInbox creates an inbox retaining at most size notifications per draft.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = 20
	}
	return &Inbox{size: size, items: make(map[string][]Notification)}
}

// Attach subscribes the inbox to bus.
func (in *Inbox) Attach(bus *Bus) (detach func()) {
	return bus.Subscribe(in.Add)
}

func (in *Inbox) Add(n Notification) {
	if n.DraftID == "" {
		return
	}
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	in.mu.Lock()
	defer in.mu.Unlock()

	queue := append(in.items[n.DraftID], n)
	if over := len(queue) - in.size; over > 0 {
		queue = append([]Notification(nil), queue[over:]...)
	}
	in.items[n.DraftID] = queue
}

// Drain returns and forgets the pending notifications of a draft, oldest
// first.
func (in *Inbox) Drain(draftID string) []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()

	queue := in.items[draftID]
	delete(in.items, draftID)
	if queue == nil {
		return []Notification{}
	}
	return queue
}

// Forget drops everything queued for a draft.
func (in *Inbox) Forget(draftID string) {
	in.mu.Lock()
	delete(in.items, draftID)
	in.mu.Unlock()
}

// Prune drops the queues of drafts that received nothing since olderThan and
// returns how many were dropped. Drafts that expire or are abandoned without
// a final poll are reclaimed this way.
func (in *Inbox) Prune(olderThan time.Time) int {
	in.mu.Lock()
	defer in.mu.Unlock()

	removed := 0
	for draftID, queue := range in.items {
		if len(queue) == 0 || queue[len(queue)-1].At.Before(olderThan) {
			delete(in.items, draftID)
			removed++
		}
	}
	return removed
}

// Len returns the number of drafts with queued notifications.
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.items)
}
