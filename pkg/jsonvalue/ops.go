package jsonvalue

import (
	"errors"
	"fmt"
)

// ErrInvalidPath is wrapped by every PathError.
var ErrInvalidPath = errors.New("invalid path")

// PathError reports a path that cannot be written through.
type PathError struct {
	Path   Path
	At     int
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("jsonvalue: path %q at segment %d: %s", e.Path.String(), e.At, e.Reason)
}

func (e *PathError) Unwrap() error { return ErrInvalidPath }

// Get returns the value at p. A missing key, an out-of-range index or a
// segment of the wrong kind yields false.
func Get(v Value, p Path) (Value, bool) {
	cur := v
	for _, seg := range p {
		var ok bool
		if seg.isIndex {
			cur, ok = cur.Index(seg.index)
		} else {
			cur, ok = cur.Field(seg.key)
		}
		if !ok {
			return Value{}, false
		}
	}
	return cur, true
}

// Set returns a copy of v with the value at p replaced by nv. Missing object
// keys along the way are created as empty objects. Writing through a
// primitive, indexing a non-list or indexing past the end of a list fails
// with a *PathError and v is returned unchanged.
func Set(v Value, p Path, nv Value) (Value, error) {
	out, err := set(v, p, 0, nv)
	if err != nil {
		return v, err
	}
	return out, nil
}

func set(cur Value, p Path, at int, nv Value) (Value, error) {
	if at == len(p) {
		return nv, nil
	}
	seg := p[at]

	if seg.isIndex {
		if cur.kind != KindList {
			return Value{}, &PathError{Path: p, At: at, Reason: "index into " + cur.kind.String()}
		}
		if seg.index < 0 || seg.index >= len(cur.list) {
			return Value{}, &PathError{Path: p, At: at, Reason: fmt.Sprintf("index %d out of range (len %d)", seg.index, len(cur.list))}
		}
		child, err := set(cur.list[seg.index], p, at+1, nv)
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, len(cur.list))
		copy(items, cur.list)
		items[seg.index] = child
		return Value{kind: KindList, list: items}, nil
	}

	if cur.kind != KindObject {
		return Value{}, &PathError{Path: p, At: at, Reason: "key into " + cur.kind.String()}
	}
	child, ok := cur.Field(seg.key)
	if !ok {
		child = Object()
	}
	updated, err := set(child, p, at+1, nv)
	if err != nil {
		return Value{}, err
	}
	return cur.With(seg.key, updated), nil
}

// Append adds nv to the end of the list at p.
func Append(v Value, p Path, nv Value) (Value, error) {
	list, ok := Get(v, p)
	if !ok {
		return v, &PathError{Path: p, At: len(p), Reason: "no value"}
	}
	if list.kind != KindList {
		return v, &PathError{Path: p, At: len(p), Reason: "append to " + list.kind.String()}
	}
	items := make([]Value, len(list.list), len(list.list)+1)
	copy(items, list.list)
	items = append(items, nv)
	return Set(v, p, Value{kind: KindList, list: items})
}

// Delete removes the list item or object member addressed by p. Later list
// items shift down by one.
func Delete(v Value, p Path) (Value, error) {
	parentPath, last, ok := p.Parent()
	if !ok {
		return v, &PathError{Path: p, At: 0, Reason: "cannot delete the root"}
	}
	parent, ok := Get(v, parentPath)
	if !ok {
		return v, &PathError{Path: p, At: len(parentPath), Reason: "no value"}
	}

	var updated Value
	switch {
	case last.isIndex && parent.kind == KindList:
		if last.index < 0 || last.index >= len(parent.list) {
			return v, &PathError{Path: p, At: len(parentPath), Reason: fmt.Sprintf("index %d out of range (len %d)", last.index, len(parent.list))}
		}
		items := make([]Value, 0, len(parent.list)-1)
		items = append(items, parent.list[:last.index]...)
		items = append(items, parent.list[last.index+1:]...)
		updated = Value{kind: KindList, list: items}
	case !last.isIndex && parent.kind == KindObject:
		if _, ok := parent.Field(last.key); !ok {
			return v, &PathError{Path: p, At: len(parentPath), Reason: "no key " + last.key}
		}
		updated = parent.Without(last.key)
	default:
		return v, &PathError{Path: p, At: len(parentPath), Reason: "segment does not match " + parent.kind.String()}
	}
	return Set(v, parentPath, updated)
}
