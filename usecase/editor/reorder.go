package editor

import (
	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/repository"
)

// Reorder moves the source component to the destination's current position
// (list-move, not swap) and renumbers every component. The input is returned
// unchanged when the ids are equal or either is missing.
func Reorder(components []domain.Component, sourceID, destinationID string) []domain.Component {
	if sourceID == destinationID {
		return components
	}
	src, dst := -1, -1
	for i := range components {
		switch components[i].ID {
		case sourceID:
			src = i
		case destinationID:
			dst = i
		}
	}
	if src < 0 || dst < 0 {
		return components
	}

	out := make([]domain.Component, 0, len(components))
	out = append(out, components[:src]...)
	out = append(out, components[src+1:]...)

	out = append(out, domain.Component{})
	copy(out[dst+1:], out[dst:])
	out[dst] = components[src]

	domain.Renumber(out)
	return out
}

// ChangedOrder lists the ids present in both slices whose OrderIndex differs.
func ChangedOrder(before, after []domain.Component) []string {
	prev := make(map[string]int, len(before))
	for _, c := range before {
		prev[c.ID] = c.OrderIndex
	}
	var changed []string
	for _, c := range after {
		if idx, ok := prev[c.ID]; ok && idx != c.OrderIndex {
			changed = append(changed, c.ID)
		}
	}
	return changed
}

// OrderOf returns the reorder payload for components.
func OrderOf(components []domain.Component) []repository.OrderEntry {
	order := make([]repository.OrderEntry, len(components))
	for i, c := range components {
		order[i] = repository.OrderEntry{ID: c.ID, OrderIndex: c.OrderIndex}
	}
	return order
}
