package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/repository"
)

type componentGateway struct {
	pool DB
}

// NewComponentGateway returns the Postgres-backed PersistenceGateway.
func NewComponentGateway(pool DB) repository.PersistenceGateway {
	return &componentGateway{pool: pool}
}

// SavePage replaces the stored component list in one transaction. Rows whose
// id is absent from components are deleted.
func (g *componentGateway) SavePage(ctx context.Context, pageID string, components []repository.ComponentPayload) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE pages SET updated_at = NOW() WHERE id = $1`, pageID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPageNotFound
	}

	ids := make([]string, len(components))
	for i := range components {
		if components[i].ID == "" {
			components[i].ID = uuid.NewString()
		}
		ids[i] = components[i].ID
	}

	if _, err := tx.Exec(ctx, `DELETE FROM page_components WHERE page_id = $1 AND NOT (id = ANY($2))`, pageID, ids); err != nil {
		return err
	}

	const upsert = `
	INSERT INTO page_components (id, page_id, component_type, component_name, content, order_index, is_visible, theme, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	ON CONFLICT (id) DO UPDATE
	SET component_type = EXCLUDED.component_type,
		component_name = EXCLUDED.component_name,
		content = EXCLUDED.content,
		order_index = EXCLUDED.order_index,
		is_visible = EXCLUDED.is_visible,
		theme = EXCLUDED.theme,
		updated_at = NOW()
	WHERE page_components.page_id = EXCLUDED.page_id
	`
	for _, c := range components {
		tag, err := tx.Exec(ctx, upsert,
			c.ID,
			pageID,
			c.ComponentType,
			c.ComponentName,
			c.ContentJSON,
			c.OrderIndex,
			c.IsVisible,
			c.Theme,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.NewError(domain.ErrCodeConflict, fmt.Sprintf("component %s belongs to another page", c.ID))
		}
	}

	return tx.Commit(ctx)
}

// ReorderComponents updates positions only. Rows of the page missing from
// order keep their position.
func (g *componentGateway) ReorderComponents(ctx context.Context, pageID string, order []repository.OrderEntry) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const query = `
	UPDATE page_components
	SET order_index = $3,
		updated_at = NOW()
	WHERE id = $1 AND page_id = $2
	`
	for _, entry := range order {
		tag, err := tx.Exec(ctx, query, entry.ID, pageID, entry.OrderIndex)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.WrapError(domain.ErrCodeNotFound, "component not found", fmt.Errorf("component %s on page %s", entry.ID, pageID))
		}
	}

	return tx.Commit(ctx)
}
