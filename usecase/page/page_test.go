package page

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/repository"
	"github.com/fastygo/pagecomposer/usecase/preview"
)

type stubPages struct {
	stored  map[string]*repository.StoredPage
	updated repository.PageMeta
}

func (s *stubPages) Get(_ context.Context, id string) (*repository.StoredPage, error) {
	if p, ok := s.stored[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPageNotFound
}

func (s *stubPages) GetBySlug(_ context.Context, slug string) (*repository.StoredPage, error) {
	for _, p := range s.stored {
		if p.Page.Slug == slug {
			return p, nil
		}
	}
	return nil, domain.ErrPageNotFound
}

func (s *stubPages) GetHomepage(_ context.Context) (*repository.StoredPage, error) {
	for _, p := range s.stored {
		if p.Page.IsHomepage {
			return p, nil
		}
	}
	return nil, domain.ErrPageNotFound
}

func (s *stubPages) List(context.Context, repository.PageFilter) ([]domain.Page, error) {
	var out []domain.Page
	for _, p := range s.stored {
		out = append(out, p.Page)
	}
	return out, nil
}

func (s *stubPages) UpdateMeta(_ context.Context, id string, meta repository.PageMeta) (*domain.Page, error) {
	p, ok := s.stored[id]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	s.updated = meta
	page := p.Page
	page.Name, page.Slug, page.IsHomepage = meta.Name, meta.Slug, meta.IsHomepage
	return &page, nil
}

func newUseCase() (*UseCase, *stubPages) {
	pages := &stubPages{stored: map[string]*repository.StoredPage{
		"p1": {
			Page: domain.Page{ID: "p1", Name: "Home", Slug: "home", IsHomepage: true, MetaTitle: "Acme"},
			Components: []repository.StoredComponent{
				{ID: "c2", ComponentType: preview.TypeCallToAction, ContentJSON: `{"title":"Hidden CTA"}`, OrderIndex: 2, IsVisible: false},
				{ID: "c1", ComponentType: preview.TypeHero, ContentJSON: `{"title":"Welcome"}`, OrderIndex: 1, IsVisible: true},
				{ID: "c3", ComponentType: "mystery", ContentJSON: `not json`, OrderIndex: 3, IsVisible: true},
			},
		},
		"p2": {Page: domain.Page{ID: "p2", Name: "Pricing", Slug: "pricing"}},
	}}
	return New(pages, preview.NewDefaultRegistry(nil), "/site.css", nil), pages
}

func TestGet_DecodesAndOrders(t *testing.T) {
	uc, _ := newUseCase()
	page, err := uc.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, page.Components, 3)
	assert.Equal(t, "c1", page.Components[0].ID)
	assert.Equal(t, "c2", page.Components[1].ID)
	assert.Equal(t, 0, page.Components[2].Content.Len())

	_, err = uc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
}

func TestGetBySlug_RejectsMalformedSlug(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.GetBySlug(context.Background(), "Not A Slug")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)

	page, err := uc.GetBySlug(context.Background(), "pricing")
	require.NoError(t, err)
	assert.Equal(t, "p2", page.ID)
}

func TestUpdateMeta_Validates(t *testing.T) {
	uc, pages := newUseCase()
	ctx := context.Background()

	_, err := uc.UpdateMeta(ctx, "p2", repository.PageMeta{Name: "Pricing", Slug: "Bad Slug"})
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)

	_, err = uc.UpdateMeta(ctx, "p2", repository.PageMeta{Name: "  ", Slug: "pricing"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	page, err := uc.UpdateMeta(ctx, "p2", repository.PageMeta{Name: " Plans ", Slug: "plans", IsHomepage: true})
	require.NoError(t, err)
	assert.Equal(t, "Plans", page.Name)
	assert.True(t, page.IsHomepage)
	assert.Equal(t, "plans", pages.updated.Slug)
}

func TestRenderPublic(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	html, err := uc.RenderPublic(ctx, "")
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "<title>Acme</title>")
	assert.Contains(t, out, "Welcome")
	assert.NotContains(t, out, "Hidden CTA")
	assert.Contains(t, out, "component-fallback")

	_, err = uc.RenderPublic(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
	_, err = uc.RenderPublic(ctx, "../etc")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
}
