package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/pagecomposer/api/handler"
	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/internal/infrastructure/buffer"
	"github.com/fastygo/pagecomposer/internal/infrastructure/monitor"
	"github.com/fastygo/pagecomposer/internal/middleware"
	"github.com/fastygo/pagecomposer/internal/services"
	"github.com/fastygo/pagecomposer/pkg/httpcontext"
	"github.com/fastygo/pagecomposer/pkg/notify"
	"github.com/fastygo/pagecomposer/repository"
	redisRepo "github.com/fastygo/pagecomposer/repository/redis"
	editorUC "github.com/fastygo/pagecomposer/usecase/editor"
	pageUC "github.com/fastygo/pagecomposer/usecase/page"
	"github.com/fastygo/pagecomposer/usecase/preview"
)

const secret = "test-secret"

type memPages struct {
	mu    sync.Mutex
	pages map[string]*repository.StoredPage
}

func (m *memPages) Get(_ context.Context, id string) (*repository.StoredPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[id]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	out := *p
	out.Components = append([]repository.StoredComponent(nil), p.Components...)
	return &out, nil
}

func (m *memPages) GetBySlug(ctx context.Context, slug string) (*repository.StoredPage, error) {
	for id, p := range m.pages {
		if p.Page.Slug == slug {
			return m.Get(ctx, id)
		}
	}
	return nil, domain.ErrPageNotFound
}

func (m *memPages) GetHomepage(ctx context.Context) (*repository.StoredPage, error) {
	for id, p := range m.pages {
		if p.Page.IsHomepage {
			return m.Get(ctx, id)
		}
	}
	return nil, domain.ErrPageNotFound
}

func (m *memPages) List(context.Context, repository.PageFilter) ([]domain.Page, error) {
	out := make([]domain.Page, 0, len(m.pages))
	for _, p := range m.pages {
		out = append(out, p.Page)
	}
	return out, nil
}

func (m *memPages) UpdateMeta(_ context.Context, id string, meta repository.PageMeta) (*domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[id]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	p.Page.Name, p.Page.Slug = meta.Name, meta.Slug
	page := p.Page
	return &page, nil
}

type recordingGateway struct {
	mu       sync.Mutex
	saves    [][]repository.ComponentPayload
	orderErr error
}

func (g *recordingGateway) SavePage(_ context.Context, _ string, components []repository.ComponentPayload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saves = append(g.saves, components)
	return nil
}

func (g *recordingGateway) ReorderComponents(context.Context, string, []repository.OrderEntry) error {
	return g.orderErr
}

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

type env struct {
	handler fasthttp.RequestHandler
	gateway *recordingGateway
	outbox  *buffer.Store
	token   string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := buffer.Open(filepath.Join(t.TempDir(), "outbox.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	pages := &memPages{pages: map[string]*repository.StoredPage{
		"p1": {
			Page: domain.Page{ID: "p1", Name: "Home", Slug: "home", IsHomepage: true},
			Components: []repository.StoredComponent{
				{ID: "c1", ComponentType: preview.TypeHero, ComponentName: "Hero", ContentJSON: `{"title":"Welcome","subtitle":"Hi"}`, OrderIndex: 1, IsVisible: true},
				{ID: "c2", ComponentType: preview.TypeFAQ, ComponentName: "FAQ", ContentJSON: `{"title":"Questions","faqs":[{"q":"Why?","a":"Because."}]}`, OrderIndex: 2, IsVisible: true},
				{ID: "c3", ComponentType: preview.TypeCallToAction, ComponentName: "CTA", ContentJSON: `{"title":"Hidden"}`, OrderIndex: 3, IsVisible: false},
			},
		},
	}}
	gateway := &recordingGateway{}
	bus := notify.NewBus()
	inbox := notify.NewInbox(10)
	inbox.Attach(bus)
	registry := preview.NewDefaultRegistry(nil)
	adapter := httpcontext.NewAdapter(time.Second)

	editor := editorUC.New(pages, gateway, redisRepo.NewDraftRepository(client, time.Hour), services.NewOutboxBridge(store), registry, bus, nil)
	page := pageUC.New(pages, registry, "/site.css", nil)

	r := New(Handlers{
		Page:   apiHandler.NewPageHandler(page, adapter, nil),
		Editor: apiHandler.NewEditorHandler(editor, inbox, adapter, nil),
		Health: apiHandler.NewHealthHandler(staticStatus{PostgreSQL: true, Redis: true, Outbox: true}, adapter, nil),
	}, middleware.JWTAuth(secret, "", nil))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &middleware.Claims{
		UserID:           "operator-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	return &env{handler: r.Handler, gateway: gateway, outbox: store, token: token}
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  interface{}     `json:"error"`
}

func (e *env) do(t *testing.T, method, uri, body string) (*fasthttp.RequestCtx, envelope) {
	t.Helper()
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.Set("Authorization", "Bearer "+e.token)
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBodyString(body)
	}
	e.handler(ctx)

	var out envelope
	if string(ctx.Response.Header.ContentType()) == "application/json" {
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	}
	return ctx, out
}

func (e *env) openDraft(t *testing.T) string {
	t.Helper()
	ctx, res := e.do(t, http.MethodPost, "/api/v1/pages/p1/drafts", "")
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	var payload struct {
		Draft domain.Draft `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &payload))
	assert.Equal(t, "operator-1", payload.Draft.OwnerID)
	return payload.Draft.ID
}

type draftPayload struct {
	Draft  domain.Draft         `json:"draft"`
	Status editorUC.DraftStatus `json:"status"`
}

func TestAdminRoutesRequireToken(t *testing.T) {
	e := newEnv(t)
	e.token = "garbage"
	ctx, _ := e.do(t, http.MethodGet, "/api/v1/pages", "")
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	ctx, res := e.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "success", res.Status)
}

func TestPublicPages(t *testing.T) {
	e := newEnv(t)

	ctx, _ := e.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, string(ctx.Response.Header.ContentType()), "text/html")
	assert.Contains(t, body, "Welcome")
	assert.NotContains(t, body, "Hidden")

	ctx, _ = e.do(t, http.MethodGet, "/p/missing", "")
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
}

func TestPageMeta(t *testing.T) {
	e := newEnv(t)

	ctx, res := e.do(t, http.MethodPut, "/api/v1/pages/p1/meta", `{"name":"Home","slug":"Not Valid"}`)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, string(domain.ErrCodeInvalid), res.Code)

	ctx, _ = e.do(t, http.MethodPut, "/api/v1/pages/p1/meta", `{"name":"Start","slug":"start"}`)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	ctx, _ = e.do(t, http.MethodPut, "/api/v1/pages/p1/meta", `{`)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestEditorFlow(t *testing.T) {
	e := newEnv(t)
	draft := e.openDraft(t)
	base := "/api/v1/drafts/" + draft

	ctx, res := e.do(t, http.MethodPatch, base+"/components/c2/fields", `{"path":"faqs[0].a","value":"Because we can."}`)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	var component domain.Component
	require.NoError(t, json.Unmarshal(res.Data, &component))
	text, err := component.Content.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "Because we can.")

	ctx, _ = e.do(t, http.MethodPost, base+"/components/c2/items", `{"path":["faqs"]}`)
	assert.Equal(t, http.StatusCreated, ctx.Response.StatusCode())

	ctx, res = e.do(t, http.MethodGet, base+"/components/c2/form", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var form editorUC.Field
	require.NoError(t, json.Unmarshal(res.Data, &form))
	assert.Equal(t, "Content", form.Label)

	ctx, res = e.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var got draftPayload
	require.NoError(t, json.Unmarshal(res.Data, &got))
	assert.Equal(t, []string{"c2"}, got.Status.DirtyIDs)
	assert.True(t, got.Status.Unsaved)

	ctx, _ = e.do(t, http.MethodGet, base+"/components/c2/preview", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "Because we can.")

	ctx, _ = e.do(t, http.MethodPost, base+"/components/c2/save", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	require.Len(t, e.gateway.saves, 1)
	assert.Len(t, e.gateway.saves[0], 3)

	ctx, res = e.do(t, http.MethodGet, base+"/notifications", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var feed struct {
		Items []notify.Notification `json:"items"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &feed))
	require.NotEmpty(t, feed.Items)
	assert.Equal(t, notify.LevelSuccess, feed.Items[len(feed.Items)-1].Level)
}

func TestEditorValidation(t *testing.T) {
	e := newEnv(t)
	draft := e.openDraft(t)
	base := "/api/v1/drafts/" + draft

	ctx, _ := e.do(t, http.MethodPatch, base+"/components/c1/fields", `{"path":"title"}`)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode(), "missing value")

	ctx, _ = e.do(t, http.MethodPost, base+"/components/c1/items", `{"path":"title"}`)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode(), "not a list")

	ctx, _ = e.do(t, http.MethodDelete, base+"/components/c1", "")
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode(), "unconfirmed delete")

	ctx, _ = e.do(t, http.MethodPatch, base+"/components/nope", `{"is_visible":false}`)
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())

	ctx, _ = e.do(t, http.MethodGet, "/api/v1/drafts/unknown", "")
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())

	ctx, _ = e.do(t, http.MethodPost, base+"/reorder", `{"source_id":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestEditFieldAcceptsNull(t *testing.T) {
	e := newEnv(t)
	draft := e.openDraft(t)
	base := "/api/v1/drafts/" + draft

	ctx, res := e.do(t, http.MethodPatch, base+"/components/c1/fields", `{"path":"title","value":null}`)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	var component domain.Component
	require.NoError(t, json.Unmarshal(res.Data, &component))
	title, ok := component.Content.Field("title")
	require.True(t, ok)
	assert.True(t, title.IsNull())

	ctx, _ = e.do(t, http.MethodPatch, base+"/components/c1/fields", `{"path":"title","value":{"a":}}`)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestReorderFailureIsQueued(t *testing.T) {
	e := newEnv(t)
	e.gateway.orderErr = errors.New("backend down")
	draft := e.openDraft(t)

	ctx, res := e.do(t, http.MethodPost, "/api/v1/drafts/"+draft+"/reorder", `{"source_id":"c3","destination_id":"c1"}`)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var result editorUC.ReorderResult
	require.NoError(t, json.Unmarshal(res.Data, &result))
	assert.True(t, result.Moved)
	assert.False(t, result.Persisted)
	assert.True(t, result.Queued)
	assert.Equal(t, "c3", result.Draft.Page.Components[0].ID)

	size, err := e.outbox.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestDuplicateDeleteAndDiscard(t *testing.T) {
	e := newEnv(t)
	draft := e.openDraft(t)
	base := "/api/v1/drafts/" + draft

	ctx, res := e.do(t, http.MethodPost, base+"/components/c1/duplicate", "")
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	var dup domain.Component
	require.NoError(t, json.Unmarshal(res.Data, &dup))
	assert.Equal(t, "Hero (Copy)", dup.ComponentName)
	assert.Equal(t, 4, dup.OrderIndex)

	ctx, res = e.do(t, http.MethodDelete, base+"/components/c2?confirm=true", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var got draftPayload
	require.NoError(t, json.Unmarshal(res.Data, &got))
	assert.Len(t, got.Draft.Page.Components, 3)
	assert.Equal(t, []string{"c2"}, got.Status.Removed)

	ctx, _ = e.do(t, http.MethodPut, base+"/components/c1/expanded", `{"expanded":true}`)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	ctx, _ = e.do(t, http.MethodPost, base+"/save", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	require.Len(t, e.gateway.saves, 1)
	assert.Len(t, e.gateway.saves[0], 3)

	ctx, _ = e.do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())
	ctx, _ = e.do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
}
