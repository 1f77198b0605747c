package domain

import (
	"regexp"
	"sort"
	"time"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Page is the aggregate root: page metadata plus the components it owns.
type Page struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	MetaTitle       string      `json:"meta_title,omitempty"`
	MetaDescription string      `json:"meta_description,omitempty"`
	CategoryID      string      `json:"category_id,omitempty"`
	IsHomepage      bool        `json:"is_homepage"`
	Components      []Component `json:"components"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ValidateSlug checks the URL-safe slug rule.
func ValidateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}

// Find returns the position of the component with the given id, or -1.
func (p *Page) Find(id string) int {
	for i := range p.Components {
		if p.Components[i].ID == id {
			return i
		}
	}
	return -1
}

// SortByOrder orders components by their stored OrderIndex, keeping the
// incoming order for ties, then renumbers so indices are contiguous.
func (p *Page) SortByOrder() {
	sort.SliceStable(p.Components, func(i, j int) bool {
		return p.Components[i].OrderIndex < p.Components[j].OrderIndex
	})
	Renumber(p.Components)
}

// Renumber sets OrderIndex to position+1 for every component.
func Renumber(components []Component) {
	for i := range components {
		components[i].OrderIndex = i + 1
	}
}
