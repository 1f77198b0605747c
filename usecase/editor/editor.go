// Package editor implements the page editor: drafts of a page's components
// that operators reorder, edit through generated forms, duplicate and delete,
// then commit to the backend one component or the whole page at a time.
//
// Drafts are serialized per id. Calls to the persistence gateway are made
// after the draft lock is released, so edits are never blocked on the
// network; the outcome is merged back into whatever the draft looks like by
// then.
package editor

import (
	"context"
	"html/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/pkg/jsonvalue"
	"github.com/fastygo/pagecomposer/pkg/notify"
	"github.com/fastygo/pagecomposer/repository"
	"github.com/fastygo/pagecomposer/usecase"
	"github.com/fastygo/pagecomposer/usecase/preview"
)

// Previewer renders draft content to HTML.
type Previewer interface {
	RenderPage(page domain.Page, mode preview.Mode) (template.HTML, error)
	RenderComponent(c domain.Component) (template.HTML, error)
}

type UseCase struct {
	pages   repository.PageRepository
	gateway repository.PersistenceGateway
	drafts  repository.DraftRepository
	outbox  usecase.ReorderOutbox
	preview Previewer
	bus     *notify.Bus
	logger  *zap.Logger

	locks *keyedMutex
	newID func() string
}

func New(
	pages repository.PageRepository,
	gateway repository.PersistenceGateway,
	drafts repository.DraftRepository,
	outbox usecase.ReorderOutbox,
	previewer Previewer,
	bus *notify.Bus,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		pages:   pages,
		gateway: gateway,
		drafts:  drafts,
		outbox:  outbox,
		preview: previewer,
		bus:     bus,
		logger:  logger,
		locks:   newKeyedMutex(),
		newID:   uuid.NewString,
	}
}

// LoadReport describes how a page was brought into a draft.
type LoadReport struct {
	PageID     string   `json:"page_id"`
	Components int      `json:"components"`
	Recovered  []string `json:"recovered,omitempty"`
}

// ComponentPatch changes a component's header fields. Nil fields are left
// alone.
type ComponentPatch struct {
	ComponentName *string
	IsVisible     *bool
	Theme         *string
}

// ReorderResult reports a move and whether the backend accepted it.
type ReorderResult struct {
	Draft     *domain.Draft `json:"draft"`
	Moved     bool          `json:"moved"`
	Persisted bool          `json:"persisted"`
	Queued    bool          `json:"queued"`
	Error     string        `json:"error,omitempty"`
}

// SaveResult reports a committed save.
type SaveResult struct {
	Draft   *domain.Draft `json:"draft"`
	Saved   []string      `json:"saved"`
	Cleared []string      `json:"cleared"`
}

// DraftStatus is the unsaved-state indicator of the editor.
type DraftStatus struct {
	DraftID    string    `json:"draft_id"`
	PageID     string    `json:"page_id"`
	DirtyCount int       `json:"dirty_count"`
	DirtyIDs   []string  `json:"dirty_ids"`
	Removed    []string  `json:"removed"`
	Unsaved    bool      `json:"unsaved"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Load converts a stored page into the editor's working copy and the
// baseline of what the backend holds. Components whose content does not
// parse get an empty object and are reported; their baseline keeps the raw
// stored text so saving other components does not overwrite it.
func Load(stored *repository.StoredPage) (domain.Page, map[string]domain.Snapshot, LoadReport) {
	page := stored.Page
	page.Components = make([]domain.Component, 0, len(stored.Components))
	baseline := make(map[string]domain.Snapshot, len(stored.Components))
	report := LoadReport{PageID: page.ID, Components: len(stored.Components)}

	for _, row := range stored.Components {
		c, err := row.Decode()
		if err != nil {
			report.Recovered = append(report.Recovered, row.ID)
		}
		page.Components = append(page.Components, c)
		baseline[row.ID] = row.Snapshot()
	}
	page.SortByOrder()
	return page, baseline, report
}

// Open starts a draft of the page for owner.
func (uc *UseCase) Open(ctx context.Context, pageID, ownerID string) (*domain.Draft, LoadReport, error) {
	stored, err := uc.pages.Get(ctx, pageID)
	if err != nil {
		return nil, LoadReport{}, err
	}

	page, baseline, report := Load(stored)
	draft := &domain.Draft{
		ID:        uc.newID(),
		PageID:    page.ID,
		OwnerID:   ownerID,
		Page:      page,
		Dirty:     []string{},
		Expanded:  []string{},
		Baseline:  baseline,
		Recovered: report.Recovered,
	}
	if err := uc.drafts.Save(ctx, draft); err != nil {
		return nil, LoadReport{}, err
	}

	for _, id := range report.Recovered {
		uc.logger.Warn("component content is not valid JSON, replaced with an empty object",
			zap.String("page_id", page.ID),
			zap.String("component_id", id))
		uc.notify(draft.ID, id, notify.LevelWarning, "Content could not be read and was reset to empty; saving this component will overwrite the stored content")
	}
	uc.logger.Info("draft opened",
		zap.String("draft_id", draft.ID),
		zap.String("page_id", page.ID),
		zap.Int("components", report.Components))
	return draft, report, nil
}

// Get returns the draft and extends its lifetime.
func (uc *UseCase) Get(ctx context.Context, draftID string) (*domain.Draft, error) {
	draft, err := uc.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := uc.drafts.Extend(ctx, draftID, 0); err != nil {
		uc.logger.Debug("draft ttl not extended", zap.String("draft_id", draftID), zap.Error(err))
	}
	return draft, nil
}

// Discard drops the draft and every unsaved change in it.
func (uc *UseCase) Discard(ctx context.Context, draftID string) error {
	unlock := uc.locks.Lock(draftID)
	defer unlock()
	if _, err := uc.drafts.Get(ctx, draftID); err != nil {
		return err
	}
	return uc.drafts.Delete(ctx, draftID)
}

// Reorder moves source to destination's position. The move is kept locally
// whatever the backend answers; a rejected order is queued for replay.
func (uc *UseCase) Reorder(ctx context.Context, draftID, sourceID, destinationID string) (ReorderResult, error) {
	var (
		result ReorderResult
		order  []repository.OrderEntry
	)
	draft, err := uc.mutate(ctx, draftID, func(d *domain.Draft, t *Tracker) error {
		// Unknown ids leave the order untouched, like a drop outside the list.
		before := d.Page.Components
		after := Reorder(before, sourceID, destinationID)
		changed := ChangedOrder(before, after)
		if len(changed) == 0 {
			return nil
		}
		d.Page.Components = after
		t.MarkDirty(changed...)
		result.Moved = true
		order = persistedOrder(d)
		return nil
	})
	if err != nil {
		return ReorderResult{}, err
	}
	result.Draft = draft
	if !result.Moved || len(order) == 0 {
		return result, nil
	}

	if err := uc.gateway.ReorderComponents(ctx, draft.PageID, order); err != nil {
		uc.logger.Error("reorder not persisted",
			zap.String("draft_id", draftID),
			zap.String("page_id", draft.PageID),
			zap.Error(err))
		result.Error = err.Error()
		if uc.outbox != nil {
			if qErr := uc.outbox.QueueReorder(ctx, draft.PageID, order); qErr != nil {
				uc.logger.Error("failed to queue reorder", zap.String("page_id", draft.PageID), zap.Error(qErr))
			} else {
				result.Queued = true
			}
		}
		msg := "Order could not be saved"
		if result.Queued {
			msg += "; it will be retried in the background"
		}
		uc.notify(draftID, sourceID, notify.LevelError, msg)
		return result, nil
	}

	result.Persisted = true
	uc.supersede(ctx, draft.PageID)
	uc.notify(draftID, sourceID, notify.LevelSuccess, "Order saved")
	return result, nil
}

// EditField replaces the value at path in a component's content.
func (uc *UseCase) EditField(ctx context.Context, draftID, componentID string, path jsonvalue.Path, value jsonvalue.Value) (*domain.Component, error) {
	return uc.editContent(ctx, draftID, componentID, func(content jsonvalue.Value) (jsonvalue.Value, error) {
		return EditField(content, path, value)
	})
}

// AddItem appends a blank element to the list at path.
func (uc *UseCase) AddItem(ctx context.Context, draftID, componentID string, path jsonvalue.Path) (*domain.Component, error) {
	return uc.editContent(ctx, draftID, componentID, func(content jsonvalue.Value) (jsonvalue.Value, error) {
		return AddItem(content, path)
	})
}

// RemoveItem deletes the list element at path.
func (uc *UseCase) RemoveItem(ctx context.Context, draftID, componentID string, path jsonvalue.Path) (*domain.Component, error) {
	return uc.editContent(ctx, draftID, componentID, func(content jsonvalue.Value) (jsonvalue.Value, error) {
		return RemoveItem(content, path)
	})
}

func (uc *UseCase) editContent(ctx context.Context, draftID, componentID string, edit func(jsonvalue.Value) (jsonvalue.Value, error)) (*domain.Component, error) {
	var updated domain.Component
	_, err := uc.mutate(ctx, draftID, func(d *domain.Draft, t *Tracker) error {
		c, err := d.Component(componentID)
		if err != nil {
			return err
		}
		content, err := edit(c.Content)
		if err != nil {
			return err
		}
		c.Content = content
		t.MarkDirty(componentID)
		updated = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateComponent applies a header patch.
func (uc *UseCase) UpdateComponent(ctx context.Context, draftID, componentID string, patch ComponentPatch) (*domain.Component, error) {
	var updated domain.Component
	_, err := uc.mutate(ctx, draftID, func(d *domain.Draft, t *Tracker) error {
		c, err := d.Component(componentID)
		if err != nil {
			return err
		}
		before := *c
		if patch.ComponentName != nil {
			c.ComponentName = *patch.ComponentName
		}
		if patch.IsVisible != nil {
			c.IsVisible = *patch.IsVisible
		}
		if patch.Theme != nil {
			c.Theme = domain.ParseTheme(*patch.Theme)
		}
		if c.ComponentName != before.ComponentName || c.IsVisible != before.IsVisible || c.Theme != before.Theme {
			t.MarkDirty(componentID)
		}
		updated = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Duplicate appends a copy of the component, marked dirty and expanded.
func (uc *UseCase) Duplicate(ctx context.Context, draftID, componentID string) (*domain.Component, error) {
	var dup domain.Component
	_, err := uc.mutate(ctx, draftID, func(d *domain.Draft, t *Tracker) error {
		components, created, err := Duplicate(d.Page.Components, componentID, uc.newID())
		if err != nil {
			return err
		}
		d.Page.Components = components
		t.MarkDirty(created.ID)
		d.Expanded = addID(d.Expanded, created.ID)
		dup = created.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notify(draftID, dup.ID, notify.LevelSuccess, "Component duplicated")
	return &dup, nil
}

// Delete removes the component from the draft. It refuses to act without
// confirm. Remaining components are renumbered and those that moved become
// dirty; the deletion reaches the backend with the next save.
func (uc *UseCase) Delete(ctx context.Context, draftID, componentID string, confirm bool) (*domain.Draft, error) {
	if !confirm {
		return nil, domain.ErrConfirmationRequired
	}
	draft, err := uc.mutate(ctx, draftID, func(d *domain.Draft, t *Tracker) error {
		before := d.Page.Components
		after, err := Remove(before, componentID)
		if err != nil {
			return err
		}
		d.Page.Components = after
		t.Clear(componentID)
		t.MarkDirty(ChangedOrder(before, after)...)
		d.Expanded = removeID(d.Expanded, componentID)
		d.Recovered = removeID(d.Recovered, componentID)
		if _, persisted := d.Baseline[componentID]; persisted {
			d.Removed = addID(d.Removed, componentID)
			delete(d.Baseline, componentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notify(draftID, componentID, notify.LevelInfo, "Component deleted; save to apply")
	return draft, nil
}

// SetExpanded records whether the component is open in the editor.
func (uc *UseCase) SetExpanded(ctx context.Context, draftID, componentID string, expanded bool) (*domain.Draft, error) {
	return uc.mutate(ctx, draftID, func(d *domain.Draft, _ *Tracker) error {
		if d.Page.Find(componentID) < 0 {
			return domain.ErrComponentNotFound
		}
		if expanded {
			d.Expanded = addID(d.Expanded, componentID)
		} else {
			d.Expanded = removeID(d.Expanded, componentID)
		}
		return nil
	})
}

// Form builds the editing form of a component.
func (uc *UseCase) Form(ctx context.Context, draftID, componentID string) (Field, error) {
	draft, err := uc.drafts.Get(ctx, draftID)
	if err != nil {
		return Field{}, err
	}
	c, err := draft.Component(componentID)
	if err != nil {
		return Field{}, err
	}
	return BuildForm(c.Content), nil
}

// Preview renders every component of the draft, hidden ones included.
func (uc *UseCase) Preview(ctx context.Context, draftID string) (template.HTML, error) {
	draft, err := uc.drafts.Get(ctx, draftID)
	if err != nil {
		return "", err
	}
	return uc.preview.RenderPage(draft.Page, preview.ModeEdit)
}

// PreviewComponent renders a single component of the draft.
func (uc *UseCase) PreviewComponent(ctx context.Context, draftID, componentID string) (template.HTML, error) {
	draft, err := uc.drafts.Get(ctx, draftID)
	if err != nil {
		return "", err
	}
	c, err := draft.Component(componentID)
	if err != nil {
		return "", err
	}
	return uc.preview.RenderComponent(*c)
}

// Status reports the draft's unsaved state.
func (uc *UseCase) Status(ctx context.Context, draftID string) (DraftStatus, error) {
	draft, err := uc.drafts.Get(ctx, draftID)
	if err != nil {
		return DraftStatus{}, err
	}
	return StatusOf(draft), nil
}

// StatusOf derives the unsaved-state indicator of d.
func StatusOf(d *domain.Draft) DraftStatus {
	dirty := NewTracker(d.Dirty...)
	removed := append([]string{}, d.Removed...)
	return DraftStatus{
		DraftID:    d.ID,
		PageID:     d.PageID,
		DirtyCount: dirty.DirtyCount(),
		DirtyIDs:   dirty.IDs(),
		Removed:    removed,
		Unsaved:    dirty.DirtyCount() > 0 || len(removed) > 0,
		ExpiresAt:  d.ExpiresAt,
	}
}

// mutate runs fn on the stored draft under the draft's lock and saves the
// result. Nothing is saved when fn fails.
func (uc *UseCase) mutate(ctx context.Context, draftID string, fn func(d *domain.Draft, t *Tracker) error) (*domain.Draft, error) {
	unlock := uc.locks.Lock(draftID)
	defer unlock()

	draft, err := uc.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Baseline == nil {
		draft.Baseline = make(map[string]domain.Snapshot)
	}
	tracker := NewTracker(draft.Dirty...)
	if err := fn(draft, tracker); err != nil {
		return nil, err
	}
	draft.Dirty = tracker.IDs()
	if err := uc.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// persistedOrder is the reorder payload: positions of the components the
// backend already holds.
func persistedOrder(d *domain.Draft) []repository.OrderEntry {
	order := make([]repository.OrderEntry, 0, len(d.Page.Components))
	for _, entry := range OrderOf(d.Page.Components) {
		if _, ok := d.Baseline[entry.ID]; ok {
			order = append(order, entry)
		}
	}
	return order
}

func (uc *UseCase) supersede(ctx context.Context, pageID string) {
	if uc.outbox == nil {
		return
	}
	if err := uc.outbox.Supersede(ctx, pageID); err != nil {
		uc.logger.Warn("failed to drop superseded reorder", zap.String("page_id", pageID), zap.Error(err))
	}
}

func (uc *UseCase) notify(draftID, componentID string, level notify.Level, message string) {
	uc.bus.Publish(notify.Notification{
		DraftID:     draftID,
		ComponentID: componentID,
		Level:       level,
		Message:     message,
	})
}
