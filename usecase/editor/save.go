package editor

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/pkg/notify"
	"github.com/fastygo/pagecomposer/repository"
)

type sentComponent struct {
	snapshot domain.Snapshot
	order    int
}

// savePlan is a save captured under the draft lock and sent without it.
type savePlan struct {
	pageID  string
	payload []repository.ComponentPayload
	sent    map[string]sentComponent
	removed []string
	// targets are the ids a successful save may clear from the dirty set.
	targets []string
	// checkOrder also requires the position to be unchanged before clearing.
	checkOrder bool
}

func (p *savePlan) add(id string, snap domain.Snapshot, order int) {
	p.payload = append(p.payload, repository.ComponentPayload{
		ID:            id,
		ComponentType: snap.ComponentType,
		ComponentName: snap.ComponentName,
		ContentJSON:   snap.ContentJSON,
		OrderIndex:    order,
		IsVisible:     snap.IsVisible,
		Theme:         string(snap.Theme),
	})
	p.sent[id] = sentComponent{snapshot: snap, order: order}
}

// planSaveOne sends the target as it is now and every other component the
// backend holds as it was last saved, in the draft's order. Components never
// saved are left out.
func planSaveOne(d *domain.Draft, componentID string) (*savePlan, error) {
	if d.Page.Find(componentID) < 0 {
		return nil, domain.ErrComponentNotFound
	}
	plan := &savePlan{
		pageID:  d.PageID,
		sent:    make(map[string]sentComponent, len(d.Page.Components)),
		removed: append([]string(nil), d.Removed...),
		targets: []string{componentID},
	}
	for _, c := range d.Page.Components {
		var snap domain.Snapshot
		if c.ID == componentID {
			current, err := c.Snapshot()
			if err != nil {
				return nil, err
			}
			snap = current
		} else {
			base, ok := d.Baseline[c.ID]
			if !ok {
				continue
			}
			snap = base
		}
		plan.add(c.ID, snap, len(plan.payload)+1)
	}
	return plan, nil
}

// planSaveAll sends the whole current list.
func planSaveAll(d *domain.Draft) (*savePlan, error) {
	plan := &savePlan{
		pageID:     d.PageID,
		sent:       make(map[string]sentComponent, len(d.Page.Components)),
		removed:    append([]string(nil), d.Removed...),
		checkOrder: true,
	}
	for _, c := range d.Page.Components {
		snap, err := c.Snapshot()
		if err != nil {
			return nil, err
		}
		plan.add(c.ID, snap, c.OrderIndex)
		plan.targets = append(plan.targets, c.ID)
	}
	return plan, nil
}

// SaveOne commits one component's current content. The backend replaces the
// whole list, so the others are resent as last saved.
func (uc *UseCase) SaveOne(ctx context.Context, draftID, componentID string) (SaveResult, error) {
	return uc.save(ctx, draftID, componentID, func(d *domain.Draft) (*savePlan, error) {
		return planSaveOne(d, componentID)
	})
}

// SaveAll commits every component of the draft, deletions included.
func (uc *UseCase) SaveAll(ctx context.Context, draftID string) (SaveResult, error) {
	return uc.save(ctx, draftID, "", planSaveAll)
}

func (uc *UseCase) save(ctx context.Context, draftID, componentID string, planFn func(*domain.Draft) (*savePlan, error)) (SaveResult, error) {
	plan, err := uc.capture(ctx, draftID, planFn)
	if err != nil {
		return SaveResult{}, err
	}

	if err := uc.gateway.SavePage(ctx, plan.pageID, plan.payload); err != nil {
		uc.logger.Error("save failed",
			zap.String("draft_id", draftID),
			zap.String("page_id", plan.pageID),
			zap.Int("components", len(plan.payload)),
			zap.Error(err))
		uc.notify(draftID, componentID, notify.LevelError, "Changes could not be saved; they are kept so you can retry")
		if domain.IsDomainError(err, domain.ErrCodeNotFound) || domain.IsDomainError(err, domain.ErrCodeConflict) {
			return SaveResult{}, err
		}
		return SaveResult{}, domain.WrapError(domain.ErrPersistenceFailed.Code, domain.ErrPersistenceFailed.Message, err)
	}
	uc.supersede(ctx, plan.pageID)

	result := SaveResult{Saved: make([]string, 0, len(plan.payload))}
	for _, p := range plan.payload {
		result.Saved = append(result.Saved, p.ID)
	}

	draft, err := uc.mutate(ctx, draftID, func(d *domain.Draft, t *Tracker) error {
		result.Cleared = applySaved(d, t, plan)
		return nil
	})
	if err != nil {
		// The backend has the data; only the draft bookkeeping is lost.
		uc.logger.Warn("saved but draft not updated", zap.String("draft_id", draftID), zap.Error(err))
		uc.notify(draftID, componentID, notify.LevelSuccess, "Saved")
		return result, nil
	}
	result.Draft = draft

	uc.logger.Info("draft saved",
		zap.String("draft_id", draftID),
		zap.String("page_id", plan.pageID),
		zap.Int("components", len(plan.payload)),
		zap.Int("cleared", len(result.Cleared)),
		zap.Int("dirty", len(draft.Dirty)))
	uc.notify(draftID, componentID, notify.LevelSuccess, "Saved")
	return result, nil
}

func (uc *UseCase) capture(ctx context.Context, draftID string, planFn func(*domain.Draft) (*savePlan, error)) (*savePlan, error) {
	unlock := uc.locks.Lock(draftID)
	defer unlock()

	draft, err := uc.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return planFn(draft)
}

// applySaved folds a committed plan back into the draft. A target is cleared
// only if it still matches what was sent, so edits made while the save was in
// flight stay dirty.
func applySaved(d *domain.Draft, t *Tracker, plan *savePlan) []string {
	for _, id := range plan.removed {
		d.Removed = removeID(d.Removed, id)
	}
	for id, s := range plan.sent {
		if d.Page.Find(id) < 0 {
			// Deleted while the save was in flight.
			d.Removed = addID(d.Removed, id)
			continue
		}
		d.Baseline[id] = s.snapshot
	}

	cleared := make([]string, 0, len(plan.targets))
	for _, id := range plan.targets {
		c, err := d.Component(id)
		if err != nil {
			continue
		}
		current, err := c.Snapshot()
		if err != nil || current != plan.sent[id].snapshot {
			continue
		}
		if plan.checkOrder && c.OrderIndex != plan.sent[id].order {
			continue
		}
		t.Clear(id)
		d.Recovered = removeID(d.Recovered, id)
		cleared = append(cleared, id)
	}
	return cleared
}
