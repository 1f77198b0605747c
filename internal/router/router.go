package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/pagecomposer/api/handler"
)

type Handlers struct {
	Page   *apiHandler.PageHandler
	Editor *apiHandler.EditorHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Public site
	r.GET("/", handlers.Page.Home)
	r.GET("/p/{slug}", handlers.Page.Public)

	// Pages
	r.GET("/api/v1/pages", authMiddleware(handlers.Page.ListPages))
	r.GET("/api/v1/pages/{id}", authMiddleware(handlers.Page.GetPage))
	r.PUT("/api/v1/pages/{id}/meta", authMiddleware(handlers.Page.UpdatePage))
	r.POST("/api/v1/pages/{id}/drafts", authMiddleware(handlers.Editor.OpenDraft))

	// Drafts
	const draft = "/api/v1/drafts/{draft}"
	r.GET(draft, authMiddleware(handlers.Editor.GetDraft))
	r.DELETE(draft, authMiddleware(handlers.Editor.DiscardDraft))
	r.POST(draft+"/reorder", authMiddleware(handlers.Editor.Reorder))
	r.POST(draft+"/save", authMiddleware(handlers.Editor.SaveAll))
	r.GET(draft+"/preview", authMiddleware(handlers.Editor.Preview))
	r.GET(draft+"/notifications", authMiddleware(handlers.Editor.Notifications))

	const component = draft + "/components/{cid}"
	r.PATCH(component, authMiddleware(handlers.Editor.UpdateComponent))
	r.DELETE(component, authMiddleware(handlers.Editor.DeleteComponent))
	r.GET(component+"/form", authMiddleware(handlers.Editor.Form))
	r.PATCH(component+"/fields", authMiddleware(handlers.Editor.EditField))
	r.POST(component+"/items", authMiddleware(handlers.Editor.AddItem))
	r.DELETE(component+"/items", authMiddleware(handlers.Editor.RemoveItem))
	r.POST(component+"/duplicate", authMiddleware(handlers.Editor.Duplicate))
	r.PUT(component+"/expanded", authMiddleware(handlers.Editor.SetExpanded))
	r.POST(component+"/save", authMiddleware(handlers.Editor.SaveComponent))
	r.GET(component+"/preview", authMiddleware(handlers.Editor.PreviewComponent))

	return r
}
