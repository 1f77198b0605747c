package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/pagecomposer/api/transport"
	"github.com/fastygo/pagecomposer/pkg/httpcontext"
	"github.com/fastygo/pagecomposer/repository"
	pageUC "github.com/fastygo/pagecomposer/usecase/page"
)

type PageHandler struct {
	baseHandler
	uc *pageUC.UseCase
}

func NewPageHandler(uc *pageUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List pages
// @Tags pages
// @Router /api/v1/pages [get]
func (h *PageHandler) ListPages(ctx *fasthttp.RequestCtx) {
	filter := repository.PageFilter{
		CategoryID: string(ctx.QueryArgs().Peek("category_id")),
		Search:     string(ctx.QueryArgs().Peek("q")),
		Limit:      parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset:     parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pages, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(pages, len(pages), filter.Limit, filter.Offset))
}

// @Summary Get page with components
// @Tags pages
// @Router /api/v1/pages/{id} [get]
func (h *PageHandler) GetPage(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, page)
}

// @Summary Update page metadata
// @Tags pages
// @Router /api/v1/pages/{id}/meta [put]
func (h *PageHandler) UpdatePage(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	var req transport.PageMetaRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.UpdateMeta(stdCtx, id, repository.PageMeta{
		Name:            req.Name,
		Slug:            req.Slug,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		CategoryID:      req.CategoryID,
		IsHomepage:      req.IsHomepage,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, page)
}

// @Summary Render the homepage
// @Tags public
// @Router / [get]
func (h *PageHandler) Home(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "")
}

// @Summary Render a public page
// @Tags public
// @Router /p/{slug} [get]
func (h *PageHandler) Public(ctx *fasthttp.RequestCtx) {
	slug, _ := ctx.UserValue("slug").(string)
	if slug == "" {
		ctx.Error("page not found", http.StatusNotFound)
		return
	}
	h.render(ctx, slug)
}

func (h *PageHandler) render(ctx *fasthttp.RequestCtx, slug string) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	html, err := h.uc.RenderPublic(stdCtx, slug)
	if err != nil {
		status, _ := mapError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("public render failed", zap.String("slug", slug), zap.Error(err))
		}
		ctx.Error(http.StatusText(status), status)
		return
	}
	h.respondHTML(ctx, http.StatusOK, html)
}
