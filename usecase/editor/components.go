package editor

import (
	"github.com/fastygo/pagecomposer/domain"
)

const copySuffix = " (Copy)"

// Duplicate appends a deep copy of the component id under newID. The copy is
// named "<original> (Copy)" and takes the last position.
func Duplicate(components []domain.Component, id, newID string) ([]domain.Component, domain.Component, error) {
	idx := indexOf(components, id)
	if idx < 0 {
		return components, domain.Component{}, domain.ErrComponentNotFound
	}

	dup := components[idx].Clone()
	dup.ID = newID
	dup.ComponentName = components[idx].ComponentName + copySuffix
	dup.OrderIndex = len(components) + 1

	out := make([]domain.Component, len(components), len(components)+1)
	copy(out, components)
	out = append(out, dup)
	return out, dup, nil
}

// Remove drops the component id and renumbers the rest so order indices stay
// contiguous.
func Remove(components []domain.Component, id string) ([]domain.Component, error) {
	idx := indexOf(components, id)
	if idx < 0 {
		return components, domain.ErrComponentNotFound
	}
	out := make([]domain.Component, 0, len(components)-1)
	out = append(out, components[:idx]...)
	out = append(out, components[idx+1:]...)
	domain.Renumber(out)
	return out, nil
}

func indexOf(components []domain.Component, id string) int {
	for i := range components {
		if components[i].ID == id {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func addID(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}
