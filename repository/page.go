package repository

import (
	"context"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/pkg/jsonvalue"
)

type PageFilter struct {
	CategoryID string
	Search     string
	Limit      int
	Offset     int
}

// StoredComponent is a component row as the backend keeps it: content is the
// serialized JSON string, never a parsed tree.
type StoredComponent struct {
	ID            string
	ComponentType string
	ComponentName string
	ContentJSON   string
	OrderIndex    int
	IsVisible     bool
	Theme         string
}

// Decode parses the stored content. When it is not valid JSON the component
// is returned with an empty object as content together with the parse error.
func (s StoredComponent) Decode() (domain.Component, error) {
	c := domain.Component{
		ID:            s.ID,
		ComponentType: s.ComponentType,
		ComponentName: s.ComponentName,
		OrderIndex:    s.OrderIndex,
		IsVisible:     s.IsVisible,
		Theme:         domain.ParseTheme(s.Theme),
	}
	content, err := jsonvalue.ParseString(s.ContentJSON)
	if err != nil {
		c.Content = jsonvalue.Object()
		return c, err
	}
	c.Content = content
	return c, nil
}

// Snapshot returns the row in its persisted form, content untouched.
func (s StoredComponent) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		ComponentType: s.ComponentType,
		ComponentName: s.ComponentName,
		ContentJSON:   s.ContentJSON,
		IsVisible:     s.IsVisible,
		Theme:         domain.ParseTheme(s.Theme),
	}
}

// StoredPage is a page with its component rows.
type StoredPage struct {
	Page       domain.Page
	Components []StoredComponent
}

// PageMeta carries the editable page-level fields.
type PageMeta struct {
	Name            string
	Slug            string
	MetaTitle       string
	MetaDescription string
	CategoryID      string
	IsHomepage      bool
}

type PageRepository interface {
	Get(ctx context.Context, id string) (*StoredPage, error)
	GetBySlug(ctx context.Context, slug string) (*StoredPage, error)
	GetHomepage(ctx context.Context) (*StoredPage, error)
	List(ctx context.Context, filter PageFilter) ([]domain.Page, error)
	UpdateMeta(ctx context.Context, id string, meta PageMeta) (*domain.Page, error)
}
