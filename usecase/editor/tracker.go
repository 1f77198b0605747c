package editor

import "sort"

// Tracker is the set of component ids with unsaved edits.
type Tracker struct {
	ids map[string]struct{}
}

func NewTracker(ids ...string) *Tracker {
	t := &Tracker{ids: make(map[string]struct{}, len(ids))}
	t.MarkDirty(ids...)
	return t
}

func (t *Tracker) MarkDirty(ids ...string) {
	for _, id := range ids {
		if id != "" {
			t.ids[id] = struct{}{}
		}
	}
}

func (t *Tracker) Clear(id string) { delete(t.ids, id) }

func (t *Tracker) ClearAll() { t.ids = make(map[string]struct{}) }

func (t *Tracker) IsDirty(id string) bool {
	_, ok := t.ids[id]
	return ok
}

func (t *Tracker) DirtyCount() int { return len(t.ids) }

// IDs returns the dirty ids sorted, the form stored on a draft.
func (t *Tracker) IDs() []string {
	out := make([]string, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
