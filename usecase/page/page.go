package page

import (
	"context"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/repository"
	"github.com/fastygo/pagecomposer/usecase/preview"
)

// DocumentRenderer renders a page as a standalone HTML document.
type DocumentRenderer interface {
	RenderDocument(page domain.Page, mode preview.Mode, stylesheetURL string) (template.HTML, error)
}

type UseCase struct {
	pages         repository.PageRepository
	renderer      DocumentRenderer
	stylesheetURL string
	logger        *zap.Logger
}

func New(pages repository.PageRepository, renderer DocumentRenderer, stylesheetURL string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		pages:         pages,
		renderer:      renderer,
		stylesheetURL: stylesheetURL,
		logger:        logger,
	}
}

func (uc *UseCase) List(ctx context.Context, filter repository.PageFilter) ([]domain.Page, error) {
	return uc.pages.List(ctx, filter)
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Page, error) {
	stored, err := uc.pages.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.decode(stored), nil
}

func (uc *UseCase) GetBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	if err := domain.ValidateSlug(slug); err != nil {
		return nil, domain.ErrPageNotFound
	}
	stored, err := uc.pages.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return uc.decode(stored), nil
}

// UpdateMeta changes the page-level fields. Marking a page as homepage takes
// the flag away from the previous one.
func (uc *UseCase) UpdateMeta(ctx context.Context, id string, meta repository.PageMeta) (*domain.Page, error) {
	meta.Name = strings.TrimSpace(meta.Name)
	meta.Slug = strings.TrimSpace(meta.Slug)
	if meta.Name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "page name is required")
	}
	if err := domain.ValidateSlug(meta.Slug); err != nil {
		return nil, err
	}
	page, err := uc.pages.UpdateMeta(ctx, id, meta)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("page metadata updated",
		zap.String("page_id", id),
		zap.String("slug", page.Slug),
		zap.Bool("homepage", page.IsHomepage))
	return page, nil
}

// RenderPublic renders the visible components of the page at slug, or of the
// homepage when slug is empty.
func (uc *UseCase) RenderPublic(ctx context.Context, slug string) (template.HTML, error) {
	var (
		stored *repository.StoredPage
		err    error
	)
	if slug == "" {
		stored, err = uc.pages.GetHomepage(ctx)
	} else {
		if domain.ValidateSlug(slug) != nil {
			return "", domain.ErrPageNotFound
		}
		stored, err = uc.pages.GetBySlug(ctx, slug)
	}
	if err != nil {
		return "", err
	}
	return uc.renderer.RenderDocument(*uc.decode(stored), preview.ModePublic, uc.stylesheetURL)
}

// decode parses component content. Unreadable content is rendered as an
// empty object and logged; the stored row is not touched.
func (uc *UseCase) decode(stored *repository.StoredPage) *domain.Page {
	page := stored.Page
	page.Components = make([]domain.Component, 0, len(stored.Components))
	for _, row := range stored.Components {
		c, err := row.Decode()
		if err != nil {
			uc.logger.Warn("component content is not valid JSON",
				zap.String("page_id", page.ID),
				zap.String("component_id", row.ID),
				zap.Error(err))
		}
		page.Components = append(page.Components, c)
	}
	page.SortByOrder()
	return &page
}
