package usecase

import (
	"context"

	"github.com/fastygo/pagecomposer/repository"
)

// ReorderOutbox keeps reorder batches the gateway rejected so they can be
// replayed later. Use cases stay unaware of how the batches are stored.
type ReorderOutbox interface {
	QueueReorder(ctx context.Context, pageID string, order []repository.OrderEntry) error
	// Supersede forgets the pending batch of a page once a newer write for
	// it has been committed.
	Supersede(ctx context.Context, pageID string) error
}
