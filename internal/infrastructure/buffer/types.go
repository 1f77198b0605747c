package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityReorder = "reorder"

	OperationReplace = "replace"
)

// Item is a write the backend rejected, kept until it can be replayed. Items
// are keyed by entity and page so a newer write for the same page replaces
// the pending one instead of queueing behind it.
type Item struct {
	ID        string          `json:"id"`
	PageID    string          `json:"page_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Retries   int             `json:"retries"`
	LastError string          `json:"last_error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Operation == "" {
		i.Operation = OperationReplace
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}

// Key is the bucket key of the item.
func (i Item) Key() []byte {
	return itemKey(i.Entity, i.PageID)
}

func itemKey(entity, pageID string) []byte {
	return []byte(entity + ":" + pageID)
}

// Entries is the number of elements in a list payload, or 0 when Data is not
// a JSON array.
func (i Item) Entries() int {
	var entries []json.RawMessage
	if err := json.Unmarshal(i.Data, &entries); err != nil {
		return 0
	}
	return len(entries)
}
