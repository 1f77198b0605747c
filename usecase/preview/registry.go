// Package preview turns components into HTML. Renderers are looked up by
// component type in an open registry; unknown types and renderers that fail
// on their content fall back to a raw JSON dump.
package preview

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/pagecomposer/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Mode selects which components a page render includes.
type Mode int

const (
	// ModeEdit renders every component, hidden ones marked as such.
	ModeEdit Mode = iota
	// ModePublic skips components that are not visible.
	ModePublic
)

// Renderer draws the body of one component.
type Renderer interface {
	Render(c domain.Component) (template.HTML, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(c domain.Component) (template.HTML, error)

func (f RendererFunc) Render(c domain.Component) (template.HTML, error) { return f(c) }

type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	fallback  Renderer
	logger    *zap.Logger
}

// NewRegistry returns a registry holding only the fallback renderer.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		renderers: make(map[string]Renderer),
		fallback:  RendererFunc(renderRaw),
		logger:    logger,
	}
}

// NewDefaultRegistry returns a registry with the built-in marketing blocks.
func NewDefaultRegistry(logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	registerBuiltins(r)
	return r
}

// Register binds componentType to renderer, replacing any earlier binding.
// Type names are matched case-insensitively.
func (r *Registry) Register(componentType string, renderer Renderer) {
	if renderer == nil {
		return
	}
	r.mu.Lock()
	r.renderers[normalizeType(componentType)] = renderer
	r.mu.Unlock()
}

// Lookup returns the renderer for componentType, or the fallback.
func (r *Registry) Lookup(componentType string) Renderer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.renderers[normalizeType(componentType)]; ok {
		return renderer
	}
	return r.fallback
}

// Types lists the registered component types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.renderers))
	for t := range r.renderers {
		out = append(out, t)
	}
	return out
}

// RenderBody renders the component without its section wrapper. A renderer
// error is logged and answered with the fallback.
func (r *Registry) RenderBody(c domain.Component) (template.HTML, error) {
	body, err := r.Lookup(c.ComponentType).Render(c)
	if err == nil {
		return body, nil
	}
	r.logger.Warn("component renderer failed, using fallback",
		zap.String("component_id", c.ID),
		zap.String("component_type", c.ComponentType),
		zap.Error(err),
	)
	return r.fallback.Render(c)
}

// RenderComponent renders c inside its themed section.
func (r *Registry) RenderComponent(c domain.Component) (template.HTML, error) {
	body, err := r.RenderBody(c)
	if err != nil {
		return "", err
	}
	return execute("section.tmpl", sectionData{
		ID:      c.ID,
		Type:    cssToken(c.ComponentType),
		Theme:   string(domain.ParseTheme(string(c.Theme))),
		Order:   c.OrderIndex,
		Visible: c.IsVisible,
		Body:    body,
	})
}

// RenderPage renders the page's components in order.
func (r *Registry) RenderPage(page domain.Page, mode Mode) (template.HTML, error) {
	var b strings.Builder
	for _, c := range page.Components {
		if mode == ModePublic && !c.IsVisible {
			continue
		}
		html, err := r.RenderComponent(c)
		if err != nil {
			return "", err
		}
		b.WriteString(string(html))
		b.WriteByte('\n')
	}
	return template.HTML(b.String()), nil
}

// RenderDocument renders the page as a standalone HTML document.
func (r *Registry) RenderDocument(page domain.Page, mode Mode, stylesheetURL string) (template.HTML, error) {
	body, err := r.RenderPage(page, mode)
	if err != nil {
		return "", err
	}
	return execute("document.tmpl", documentData{
		ID:              page.ID,
		Name:            page.Name,
		MetaTitle:       page.MetaTitle,
		MetaDescription: page.MetaDescription,
		StylesheetURL:   stylesheetURL,
		Body:            body,
	})
}

type sectionData struct {
	ID      string
	Type    string
	Theme   string
	Order   int
	Visible bool
	Body    template.HTML
}

type documentData struct {
	ID              string
	Name            string
	MetaTitle       string
	MetaDescription string
	StylesheetURL   string
	Body            template.HTML
}

type fallbackData struct {
	Label string
	Type  string
	JSON  string
}

func renderRaw(c domain.Component) (template.HTML, error) {
	dump, err := c.Content.Indent()
	if err != nil {
		dump = "{}"
	}
	return execute("fallback.tmpl", fallbackData{
		Label: c.Label(),
		Type:  c.ComponentType,
		JSON:  dump,
	})
}

// typed builds a renderer that decodes content into V and executes the named
// template with it.
func typed[V any](name string) Renderer {
	return RendererFunc(func(c domain.Component) (template.HTML, error) {
		var view V
		raw, err := c.Content.MarshalJSON()
		if err != nil {
			return "", err
		}
		if !c.Content.IsNull() {
			if err := json.Unmarshal(raw, &view); err != nil {
				return "", err
			}
		}
		return execute(name, view)
	})
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "render "+name, err)
	}
	return template.HTML(buf.String()), nil
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// cssToken reduces a type name to characters safe in a class attribute.
func cssToken(t string) string {
	var b strings.Builder
	for _, r := range normalizeType(t) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
