package domain

import "time"

// Snapshot is a component in its serialized, persisted form.
type Snapshot struct {
	ComponentType string `json:"component_type"`
	ComponentName string `json:"component_name"`
	ContentJSON   string `json:"content_json"`
	IsVisible     bool   `json:"is_visible"`
	Theme         Theme  `json:"theme"`
}

// Draft is an operator's in-progress edit of one page. It holds the working
// copy of the components together with the editor state that travels with it.
type Draft struct {
	ID      string `json:"id"`
	PageID  string `json:"page_id"`
	OwnerID string `json:"owner_id,omitempty"`
	Page    Page   `json:"page"`

	// Dirty lists components with edits not yet committed to the gateway.
	Dirty []string `json:"dirty"`
	// Expanded lists components open in the editor.
	Expanded []string `json:"expanded"`
	// Removed lists deleted components the backend still holds.
	Removed []string `json:"removed,omitempty"`
	// Baseline holds each component as last persisted, keyed by id.
	Baseline map[string]Snapshot `json:"baseline"`
	// Recovered lists components whose stored content failed to parse and was
	// replaced with an empty object on load.
	Recovered []string `json:"recovered,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Component returns a pointer into the working copy.
func (d *Draft) Component(id string) (*Component, error) {
	idx := d.Page.Find(id)
	if idx < 0 {
		return nil, ErrComponentNotFound
	}
	return &d.Page.Components[idx], nil
}
