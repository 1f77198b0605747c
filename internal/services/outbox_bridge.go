package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/internal/infrastructure/buffer"
	"github.com/fastygo/pagecomposer/repository"
	"github.com/fastygo/pagecomposer/usecase"
)

// OutboxBridge lets use cases queue writes without knowing about BoltDB.
type OutboxBridge struct {
	store *buffer.Store
}

func NewOutboxBridge(store *buffer.Store) *OutboxBridge {
	return &OutboxBridge{store: store}
}

func (b *OutboxBridge) QueueReorder(_ context.Context, pageID string, order []repository.OrderEntry) error {
	if b == nil || b.store == nil || pageID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return b.store.Put(buffer.Item{
		PageID: pageID,
		Entity: buffer.EntityReorder,
		Data:   payload,
	})
}

// Supersede drops a pending reorder after a newer write for the page
// succeeded, so a replay cannot undo it.
func (b *OutboxBridge) Supersede(_ context.Context, pageID string) error {
	if b == nil || b.store == nil {
		return nil
	}
	return b.store.Discard(buffer.EntityReorder, pageID)
}

var _ usecase.ReorderOutbox = (*OutboxBridge)(nil)
