package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/pagecomposer/api/transport"
	"github.com/fastygo/pagecomposer/pkg/httpcontext"
	"github.com/fastygo/pagecomposer/pkg/notify"
	editorUC "github.com/fastygo/pagecomposer/usecase/editor"
)

type EditorHandler struct {
	baseHandler
	uc    *editorUC.UseCase
	inbox *notify.Inbox
}

func NewEditorHandler(uc *editorUC.UseCase, inbox *notify.Inbox, adapter *httpcontext.Adapter, logger *zap.Logger) *EditorHandler {
	return &EditorHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		inbox:       inbox,
	}
}

// @Summary Open a draft of a page
// @Tags drafts
// @Router /api/v1/pages/{id}/drafts [post]
func (h *EditorHandler) OpenDraft(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	pageID, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	draft, report, err := h.uc.Open(stdCtx, pageID, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.OpenDraftResponse{
		DraftResponse: transport.NewDraftResponse(draft),
		Report:        report,
	})
}

// @Summary Get draft and unsaved state
// @Tags drafts
// @Router /api/v1/drafts/{draft} [get]
func (h *EditorHandler) GetDraft(ctx *fasthttp.RequestCtx) {
	draftID, ok := h.pathParam(ctx, "draft")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	draft, err := h.uc.Get(stdCtx, draftID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewDraftResponse(draft))
}

// @Summary Discard a draft
// @Tags drafts
// @Router /api/v1/drafts/{draft} [delete]
func (h *EditorHandler) DiscardDraft(ctx *fasthttp.RequestCtx) {
	draftID, ok := h.pathParam(ctx, "draft")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Discard(stdCtx, draftID); err != nil {
		h.respondError(ctx, err)
		return
	}
	if h.inbox != nil {
		h.inbox.Forget(draftID)
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Move a component onto another's position
// @Tags drafts
// @Router /api/v1/drafts/{draft}/reorder [post]
func (h *EditorHandler) Reorder(ctx *fasthttp.RequestCtx) {
	draftID, ok := h.pathParam(ctx, "draft")
	if !ok {
		return
	}
	var req transport.ReorderRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.SourceID == "" || req.DestinationID == "" {
		h.respondInvalid(ctx, "source_id and destination_id are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Reorder(stdCtx, draftID, req.SourceID, req.DestinationID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Generated form for a component's content
// @Tags drafts
// @Router /api/v1/drafts/{draft}/components/{cid}/form [get]
func (h *EditorHandler) Form(ctx *fasthttp.RequestCtx) {
	draftID, componentID, ok := h.componentParams(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	form, err := h.uc.Form(stdCtx, draftID, componentID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, form)
}

// @Summary Edit one content field
// @Tags drafts
// @Router /api/v1/drafts/{draft}/components/{cid}/fields [patch]
func (h *EditorHandler) EditField(ctx *fasthttp.RequestCtx) {
	draftID, componentID, ok := h.componentParams(ctx)
	if !ok {
		return
	}
	var req transport.FieldEditRequest
	if !h.decode(ctx, &req) {
		return
	}
	value, present, err := req.Content()
	if err != nil {
		h.respondInvalid(ctx, "invalid value")
		return
	}
	if !present {
		h.respondInvalid(ctx, "value is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	component, err := h.uc.EditField(stdCtx, draftID, componentID, req.Path, value)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, component)
}

// @Summary Append an item to a content list
// @Tags drafts
// @Router /api/v1/drafts/{draft}/components/{cid}/items [post]
func (h *EditorHandler) AddItem(ctx *fasthttp.RequestCtx) {
	draftID, componentID, ok := h.componentParams(ctx)
	if !ok {
		return
	}
	var req transport.ItemRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	component, err := h.uc.AddItem(stdCtx, draftID, componentID, req.Path)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, component)
}

// @Summary Remove an item from a content list
// @Tags drafts
// @Router /api/v1/drafts/{draft}/components/{cid}/items [delete]
func (h *EditorHandler) RemoveItem(ctx *fasthttp.RequestCtx) {
	draftID, componentID, ok := h.componentParams(ctx)
	if !ok {
		return
	}
	var req transport.ItemRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	component, err := h.uc.RemoveItem(stdCtx, draftID, componentID, req.Path)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, component)
}

// @Summary Update component name, visibility or theme
// @Tags drafts
// @Router /api/v1/drafts/{draft}/components/{cid} [patch]
func (h *EditorHandler) UpdateComponent(ctx *fasthttp.RequestCtx) {
	draftID, componentID, ok := h.componentParams(ctx)
	if !ok {
		return
	}
	var req transport.ComponentPatchRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	component, err := h.uc.UpdateComponent(stdCtx, draftID, componentID, editorUC.ComponentPatch{
		ComponentName: req.ComponentName,
		IsVisible:     req.IsVisible,
		Theme:         req.Theme,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, component)
}

// @Summary Duplicate a component
// @Tags drafts
// @Router /api/v1/drafts/{draft}/components/{cid}/duplicate [post]
func (h *EditorHandler) Duplicate(ctx *fasthttp.RequestCtx) {
	draftID, componentID, ok := h.componentParams(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	component, err := h.uc.Duplicate(stdCtx, draftID, componentID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, component)
}

// @Summary Delete a component (requires ?confirm=true)
// @Tags drafts
// @Router /api/v1/drafts/{draft}/components/{cid} [delete]
func (h *EditorHandler) DeleteComponent(ctx *fasthttp.RequestCtx) {
	draftID, componentID, ok := h.componentParams(ctx)
	if !ok {
		return
	}
	confirm := ctx.QueryArgs().GetBool("confirm")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	draft, err := h.uc.Delete(stdCtx, draftID, componentID, confirm)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewDraftResponse(draft))
}

// @Summary Expand or collapse a component in the editor
// @Tags drafts
// @Router /api/v1/drafts/{draft}/components/{cid}/expanded [put]
func (h *EditorHandler) SetExpanded(ctx *fasthttp.RequestCtx) {
	draftID, componentID, ok := h.componentParams(ctx)
	if !ok {
		return
	}
	var req transport.ExpandedRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	draft, err := h.uc.SetExpanded(stdCtx, draftID, componentID, req.Expanded)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewDraftResponse(draft))
}

// @Summary Save one component
// @Tags drafts
// @Router /api/v1/drafts/{draft}/components/{cid}/save [post]
func (h *EditorHandler) SaveComponent(ctx *fasthttp.RequestCtx) {
	draftID, componentID, ok := h.componentParams(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.SaveOne(stdCtx, draftID, componentID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Save the whole page
// @Tags drafts
// @Router /api/v1/drafts/{draft}/save [post]
func (h *EditorHandler) SaveAll(ctx *fasthttp.RequestCtx) {
	draftID, ok := h.pathParam(ctx, "draft")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.SaveAll(stdCtx, draftID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Preview the draft page
// @Tags drafts
// @Router /api/v1/drafts/{draft}/preview [get]
func (h *EditorHandler) Preview(ctx *fasthttp.RequestCtx) {
	draftID, ok := h.pathParam(ctx, "draft")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	html, err := h.uc.Preview(stdCtx, draftID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondHTML(ctx, http.StatusOK, html)
}

// @Summary Preview one component
// @Tags drafts
// @Router /api/v1/drafts/{draft}/components/{cid}/preview [get]
func (h *EditorHandler) PreviewComponent(ctx *fasthttp.RequestCtx) {
	draftID, componentID, ok := h.componentParams(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	html, err := h.uc.PreviewComponent(stdCtx, draftID, componentID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondHTML(ctx, http.StatusOK, html)
}

// @Summary Pending editor notifications
// @Tags drafts
// @Router /api/v1/drafts/{draft}/notifications [get]
func (h *EditorHandler) Notifications(ctx *fasthttp.RequestCtx) {
	draftID, ok := h.pathParam(ctx, "draft")
	if !ok {
		return
	}
	items := []notify.Notification{}
	if h.inbox != nil {
		items = h.inbox.Drain(draftID)
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NotificationsResponse{Items: items})
}

func (h *EditorHandler) componentParams(ctx *fasthttp.RequestCtx) (string, string, bool) {
	draftID, ok := h.pathParam(ctx, "draft")
	if !ok {
		return "", "", false
	}
	componentID, ok := h.pathParam(ctx, "cid")
	if !ok {
		return "", "", false
	}
	return draftID, componentID, true
}
