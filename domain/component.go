package domain

import (
	"strings"

	"github.com/fastygo/pagecomposer/pkg/jsonvalue"
)

// Theme is a presentation-only flag on a component.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme normalizes user input; anything unrecognized is light.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Component is one typed, ordered block of free-form JSON content on a page.
type Component struct {
	ID            string          `json:"id"`
	ComponentType string          `json:"component_type"`
	ComponentName string          `json:"component_name"`
	Content       jsonvalue.Value `json:"content"`
	OrderIndex    int             `json:"order_index"`
	IsVisible     bool            `json:"is_visible"`
	Theme         Theme           `json:"theme"`
}

// Clone returns a copy sharing no content structure with c.
func (c Component) Clone() Component {
	c.Content = jsonvalue.Clone(c.Content)
	return c
}

// Label is the human-facing name, falling back to the type tag.
func (c Component) Label() string {
	if strings.TrimSpace(c.ComponentName) != "" {
		return c.ComponentName
	}
	return c.ComponentType
}

// Snapshot serializes c into the form the backend stores.
func (c Component) Snapshot() (Snapshot, error) {
	content := c.Content
	if content.IsNull() {
		content = jsonvalue.Object()
	}
	text, err := content.Text()
	if err != nil {
		return Snapshot{}, WrapError(ErrCodeInvalid, "content cannot be serialized", err)
	}
	return Snapshot{
		ComponentType: c.ComponentType,
		ComponentName: c.ComponentName,
		ContentJSON:   text,
		IsVisible:     c.IsVisible,
		Theme:         c.Theme,
	}, nil
}
