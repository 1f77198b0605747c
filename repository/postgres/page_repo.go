package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/repository"
)

const pageColumns = `id, name, slug, meta_title, meta_description, COALESCE(category_id, ''), is_homepage, created_at, updated_at`

type pageRepository struct {
	pool DB
}

// NewPageRepository creates a Postgres-backed PageRepository implementation.
func NewPageRepository(pool DB) repository.PageRepository {
	return &pageRepository{pool: pool}
}

func (r *pageRepository) Get(ctx context.Context, id string) (*repository.StoredPage, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`
	return r.load(ctx, r.pool.QueryRow(ctx, query, id))
}

func (r *pageRepository) GetBySlug(ctx context.Context, slug string) (*repository.StoredPage, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE slug = $1`
	return r.load(ctx, r.pool.QueryRow(ctx, query, slug))
}

func (r *pageRepository) GetHomepage(ctx context.Context) (*repository.StoredPage, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE is_homepage ORDER BY updated_at DESC LIMIT 1`
	return r.load(ctx, r.pool.QueryRow(ctx, query))
}

func (r *pageRepository) List(ctx context.Context, filter repository.PageFilter) ([]domain.Page, error) {
	query := `
	SELECT ` + pageColumns + `
	FROM pages
	WHERE ($1 = '' OR category_id = $1)
	  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR slug ILIKE '%' || $2 || '%')
	ORDER BY is_homepage DESC, name ASC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.CategoryID, filter.Search, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
	}
	return pages, rows.Err()
}

func (r *pageRepository) UpdateMeta(ctx context.Context, id string, meta repository.PageMeta) (*domain.Page, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if meta.IsHomepage {
		if _, err := tx.Exec(ctx, `UPDATE pages SET is_homepage = FALSE, updated_at = NOW() WHERE is_homepage AND id <> $1`, id); err != nil {
			return nil, err
		}
	}

	query := `
	UPDATE pages
	SET name = $2,
		slug = $3,
		meta_title = $4,
		meta_description = $5,
		category_id = $6,
		is_homepage = $7,
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + pageColumns

	page, err := scanPage(tx.QueryRow(ctx, query,
		id,
		meta.Name,
		meta.Slug,
		meta.MetaTitle,
		meta.MetaDescription,
		nullString(meta.CategoryID),
		meta.IsHomepage,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewError(domain.ErrCodeConflict, "slug already in use")
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *pageRepository) load(ctx context.Context, row pgx.Row) (*repository.StoredPage, error) {
	page, err := scanPage(row)
	if err != nil {
		return nil, err
	}
	components, err := r.components(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	return &repository.StoredPage{Page: *page, Components: components}, nil
}

func (r *pageRepository) components(ctx context.Context, pageID string) ([]repository.StoredComponent, error) {
	const query = `
	SELECT id, component_type, component_name, content, order_index, is_visible, theme
	FROM page_components
	WHERE page_id = $1
	ORDER BY order_index ASC, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	components := []repository.StoredComponent{}
	for rows.Next() {
		var c repository.StoredComponent
		if err := rows.Scan(
			&c.ID,
			&c.ComponentType,
			&c.ComponentName,
			&c.ContentJSON,
			&c.OrderIndex,
			&c.IsVisible,
			&c.Theme,
		); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func scanPage(row scanner) (*domain.Page, error) {
	var page domain.Page
	if err := row.Scan(
		&page.ID,
		&page.Name,
		&page.Slug,
		&page.MetaTitle,
		&page.MetaDescription,
		&page.CategoryID,
		&page.IsHomepage,
		&page.CreatedAt,
		&page.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}
