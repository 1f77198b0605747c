package editor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/repository"
)

type fakePages struct {
	pages map[string]*repository.StoredPage
}

func (f *fakePages) Get(_ context.Context, id string) (*repository.StoredPage, error) {
	p, ok := f.pages[id]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	out := *p
	out.Components = append([]repository.StoredComponent(nil), p.Components...)
	return &out, nil
}

func (f *fakePages) GetBySlug(ctx context.Context, slug string) (*repository.StoredPage, error) {
	for id, p := range f.pages {
		if p.Page.Slug == slug {
			return f.Get(ctx, id)
		}
	}
	return nil, domain.ErrPageNotFound
}

func (f *fakePages) GetHomepage(ctx context.Context) (*repository.StoredPage, error) {
	for id, p := range f.pages {
		if p.Page.IsHomepage {
			return f.Get(ctx, id)
		}
	}
	return nil, domain.ErrPageNotFound
}

func (f *fakePages) List(context.Context, repository.PageFilter) ([]domain.Page, error) {
	out := make([]domain.Page, 0, len(f.pages))
	for _, p := range f.pages {
		out = append(out, p.Page)
	}
	return out, nil
}

func (f *fakePages) UpdateMeta(_ context.Context, id string, meta repository.PageMeta) (*domain.Page, error) {
	p, ok := f.pages[id]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	p.Page.Name = meta.Name
	p.Page.Slug = meta.Slug
	page := p.Page
	return &page, nil
}

type saveCall struct {
	pageID     string
	components []repository.ComponentPayload
}

type reorderCall struct {
	pageID string
	order  []repository.OrderEntry
}

type fakeGateway struct {
	mu       sync.Mutex
	saves    []saveCall
	reorders []reorderCall
	saveErr  error
	orderErr error
	// onSave runs before SavePage answers, outside any draft lock.
	onSave func()
}

func (g *fakeGateway) SavePage(_ context.Context, pageID string, components []repository.ComponentPayload) error {
	if g.onSave != nil {
		g.onSave()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saves = append(g.saves, saveCall{pageID: pageID, components: append([]repository.ComponentPayload(nil), components...)})
	return g.saveErr
}

func (g *fakeGateway) ReorderComponents(_ context.Context, pageID string, order []repository.OrderEntry) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reorders = append(g.reorders, reorderCall{pageID: pageID, order: append([]repository.OrderEntry(nil), order...)})
	return g.orderErr
}

func (g *fakeGateway) lastSave() saveCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves[len(g.saves)-1]
}

// memDrafts stores drafts as JSON so every read returns an independent copy,
// as the Redis store does.
type memDrafts struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemDrafts() *memDrafts { return &memDrafts{data: make(map[string][]byte)} }

func (m *memDrafts) Get(_ context.Context, id string) (*domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[id]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	var d domain.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (m *memDrafts) Save(_ context.Context, d *domain.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	d.ExpiresAt = now.Add(time.Hour)
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	m.data[d.ID] = raw
	return nil
}

func (m *memDrafts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memDrafts) Extend(_ context.Context, id string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return domain.ErrDraftNotFound
	}
	return nil
}

type fakeOutbox struct {
	mu         sync.Mutex
	queued     map[string][]repository.OrderEntry
	superseded []string
	err        error
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{queued: make(map[string][]repository.OrderEntry)}
}

func (o *fakeOutbox) QueueReorder(_ context.Context, pageID string, order []repository.OrderEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.queued[pageID] = order
	return nil
}

func (o *fakeOutbox) Supersede(_ context.Context, pageID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.queued, pageID)
	o.superseded = append(o.superseded, pageID)
	return nil
}

var errGatewayDown = errors.New("gateway down")
