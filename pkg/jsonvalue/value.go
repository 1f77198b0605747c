// Package jsonvalue models an arbitrary JSON document as an immutable tagged
// union and provides path-addressed reads and copy-on-write updates.
//
// Objects keep their keys in insertion order so content authored in the admin
// editor is written back in the shape it was read.
package jsonvalue

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON document. The zero value is null.
//
// Values never mutate in place: every update returns a new Value that shares
// untouched subtrees with the original.
type Value struct {
	kind Kind
	b    bool
	num  float64
	lit  string
	str  string
	list []Value
	obj  []Member
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func Int(i int) Value {
	return Value{kind: KindNumber, num: float64(i), lit: strconv.Itoa(i)}
}

func String(s string) Value { return Value{kind: KindString, str: s} }

// List builds a list value from items.
func List(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindList, list: out}
}

// Object builds an object value. A repeated key keeps its first position and
// its last value.
func Object(members ...Member) Value {
	out := make([]Member, len(members))
	copy(out, members)
	return Value{kind: KindObject, obj: dedupe(out)}
}

// dedupe collapses repeated keys in place: the first position wins, the last
// value wins.
func dedupe(members []Member) []Member {
	seen := make(map[string]int, len(members))
	out := members[:0]
	for _, m := range members {
		if i, ok := seen[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}
		seen[m.Key] = len(out)
		out = append(out, m)
	}
	return out
}

// M is shorthand for building a Member.
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsContainer reports whether v is a list or an object.
func (v Value) IsContainer() bool { return v.kind == KindList || v.kind == KindObject }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// Len returns the number of list items or object members, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindObject:
		return len(v.obj)
	}
	return 0
}

// Items returns a copy of the list items, nil for non-lists.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out
}

// Members returns a copy of the object members in order, nil for non-objects.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	out := make([]Member, len(v.obj))
	copy(out, v.obj)
	return out
}

// Keys returns the object keys in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.obj))
	for i, m := range v.obj {
		keys[i] = m.Key
	}
	return keys
}

// Index returns the list item at i.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Value{}, false
	}
	return v.list[i], true
}

// Field returns the object member named key.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// With returns a copy of object v with key set to nv. Existing keys keep their
// position, new keys are appended. Non-objects are treated as an empty object.
func (v Value) With(key string, nv Value) Value {
	var members []Member
	if v.kind == KindObject {
		members = v.obj
	}
	out := make([]Member, len(members), len(members)+1)
	copy(out, members)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = nv
			return Value{kind: KindObject, obj: out}
		}
	}
	out = append(out, Member{Key: key, Value: nv})
	return Value{kind: KindObject, obj: out}
}

// Without returns a copy of object v with key removed.
func (v Value) Without(key string) Value {
	if v.kind != KindObject {
		return v
	}
	out := make([]Member, 0, len(v.obj))
	for _, m := range v.obj {
		if m.Key != key {
			out = append(out, m)
		}
	}
	return Value{kind: KindObject, obj: out}
}

// Interface converts v into plain Go values (nil, bool, float64, string,
// []any, map[string]any). Key order is lost; html/template consumes this form.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for _, m := range v.obj {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// Clone returns a deep copy of v with no shared backing arrays.
func Clone(v Value) Value {
	switch v.kind {
	case KindList:
		out := make([]Value, len(v.list))
		for i, item := range v.list {
			out[i] = Clone(item)
		}
		return Value{kind: KindList, list: out}
	case KindObject:
		out := make([]Member, len(v.obj))
		for i, m := range v.obj {
			out[i] = Member{Key: m.Key, Value: Clone(m.Value)}
		}
		return Value{kind: KindObject, obj: out}
	default:
		return v
	}
}

// Equal reports deep equality. Object comparison ignores key order and numbers
// compare by value.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		index := make(map[string]int, len(b.obj))
		for i, m := range b.obj {
			index[m.Key] = i
		}
		for _, m := range a.obj {
			i, ok := index[m.Key]
			if !ok || !Equal(m.Value, b.obj[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// numberLiteral returns the text written for a number value.
func (v Value) numberLiteral() (string, error) {
	if v.lit != "" {
		return v.lit, nil
	}
	if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
		return "", &json.UnsupportedValueError{Str: strconv.FormatFloat(v.num, 'g', -1, 64)}
	}
	b, err := json.Marshal(v.num)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
