package repository

import "context"

// ComponentPayload is one component as sent to the backend on save. ID is
// empty for components the backend has never seen.
type ComponentPayload struct {
	ID            string `json:"id,omitempty"`
	ComponentType string `json:"component_type"`
	ComponentName string `json:"component_name"`
	ContentJSON   string `json:"content_json"`
	OrderIndex    int    `json:"order_index"`
	IsVisible     bool   `json:"is_visible"`
	Theme         string `json:"theme"`
}

// OrderEntry is the per-component payload of a reorder.
type OrderEntry struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"order_index"`
}

// PersistenceGateway commits component lists to the backend.
type PersistenceGateway interface {
	// SavePage replaces the page's component list with components.
	SavePage(ctx context.Context, pageID string, components []ComponentPayload) error
	// ReorderComponents updates order positions only.
	ReorderComponents(ctx context.Context, pageID string, order []OrderEntry) error
}
