package editor

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/pkg/jsonvalue"
)

// FieldKind tells the admin UI which control renders a field.
type FieldKind string

const (
	FieldList     FieldKind = "list"
	FieldGroup    FieldKind = "group"
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldEmail    FieldKind = "email"
	FieldURL      FieldKind = "url"
	FieldNumber   FieldKind = "number"
	FieldCheckbox FieldKind = "checkbox"
)

// longTextThreshold is the string length above which a plain field becomes a
// textarea.
const longTextThreshold = 50

var urlKeyHints = []string{"url", "link", "image", "src"}

var longTextKeyHints = []string{"description", "content"}

// Field is one node of the form generated from a component's content.
// Lists carry an add-item control, list items a remove control; groups have
// neither since object keys are fixed by the existing content.
type Field struct {
	Path      jsonvalue.Path `json:"path" yaml:"-"`
	PathText  string         `json:"path_text" yaml:"path"`
	Key       string         `json:"key,omitempty" yaml:"key,omitempty"`
	Label     string         `json:"label" yaml:"label"`
	Kind      FieldKind      `json:"kind" yaml:"kind"`
	Value     any            `json:"value,omitempty" yaml:"value,omitempty"`
	Removable bool           `json:"removable,omitempty" yaml:"removable,omitempty"`
	Children  []Field        `json:"children,omitempty" yaml:"children,omitempty"`
}

// BuildForm walks content top-down and returns its field tree.
func BuildForm(content jsonvalue.Value) Field {
	root := buildField("", jsonvalue.Path{}, content)
	root.Label = "Content"
	return root
}

func buildField(key string, path jsonvalue.Path, v jsonvalue.Value) Field {
	f := Field{
		Path:     path,
		PathText: path.String(),
		Key:      key,
		Label:    Humanize(key),
	}

	switch v.Kind() {
	case jsonvalue.KindList:
		f.Kind = FieldList
		singular := Humanize(path.LastKey())
		for i, item := range v.Items() {
			child := buildField(key, path.Child(jsonvalue.Index(i)), item)
			child.Label = strings.TrimSpace(singular + " #" + strconv.Itoa(i+1))
			child.Removable = true
			f.Children = append(f.Children, child)
		}
	case jsonvalue.KindObject:
		f.Kind = FieldGroup
		for _, m := range v.Members() {
			f.Children = append(f.Children, buildField(m.Key, path.Child(jsonvalue.Key(m.Key)), m.Value))
		}
	default:
		f.Kind = LeafKind(path.LastKey(), v)
		f.Value = leafValue(v)
	}
	return f
}

// LeafKind picks the input for a primitive from its nearest key and value.
func LeafKind(key string, v jsonvalue.Value) FieldKind {
	k := strings.ToLower(key)
	if _, ok := v.AsBool(); ok {
		return FieldCheckbox
	}
	if strings.Contains(k, "email") {
		return FieldEmail
	}
	if containsAny(k, urlKeyHints) {
		return FieldURL
	}
	if _, ok := v.AsNumber(); ok {
		return FieldNumber
	}
	if containsAny(k, longTextKeyHints) {
		return FieldTextarea
	}
	if s, ok := v.AsString(); ok && utf8.RuneCountInString(s) > longTextThreshold {
		return FieldTextarea
	}
	return FieldText
}

func leafValue(v jsonvalue.Value) any {
	if v.IsNull() {
		return ""
	}
	return v.Interface()
}

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

// Humanize turns a content key into a label: "ctaLabel" and "cta_label"
// both become "Cta Label".
func Humanize(key string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	prevLower := false
	for _, r := range key {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
			prevLower = false
		case unicode.IsUpper(r) && prevLower:
			flush()
			cur = append(cur, r)
			prevLower = false
		default:
			cur = append(cur, r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	flush()
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// NewListItem returns the element appended by the add-item control: a copy of
// the first element's keys with every value reset to "" when that element is
// an object, otherwise "".
func NewListItem(list jsonvalue.Value) jsonvalue.Value {
	first, ok := list.Index(0)
	if !ok || first.Kind() != jsonvalue.KindObject {
		return jsonvalue.String("")
	}
	members := make([]jsonvalue.Member, 0, first.Len())
	for _, key := range first.Keys() {
		members = append(members, jsonvalue.M(key, jsonvalue.String("")))
	}
	return jsonvalue.Object(members...)
}

// EditField replaces the value at path. The root itself cannot be replaced.
func EditField(content jsonvalue.Value, path jsonvalue.Path, v jsonvalue.Value) (jsonvalue.Value, error) {
	if len(path) == 0 {
		return content, invalidPath(nil)
	}
	out, err := jsonvalue.Set(content, path, v)
	if err != nil {
		return content, invalidPath(err)
	}
	return out, nil
}

// AddItem appends NewListItem to the list at path.
func AddItem(content jsonvalue.Value, path jsonvalue.Path) (jsonvalue.Value, error) {
	list, ok := jsonvalue.Get(content, path)
	if !ok || list.Kind() != jsonvalue.KindList {
		return content, invalidPath(nil)
	}
	out, err := jsonvalue.Append(content, path, NewListItem(list))
	if err != nil {
		return content, invalidPath(err)
	}
	return out, nil
}

// RemoveItem deletes the list element addressed by path; later elements move
// up one index.
func RemoveItem(content jsonvalue.Value, path jsonvalue.Path) (jsonvalue.Value, error) {
	parentPath, last, ok := path.Parent()
	if !ok || !last.IsIndex() {
		return content, invalidPath(nil)
	}
	if parent, ok := jsonvalue.Get(content, parentPath); !ok || parent.Kind() != jsonvalue.KindList {
		return content, invalidPath(nil)
	}
	out, err := jsonvalue.Delete(content, path)
	if err != nil {
		return content, invalidPath(err)
	}
	return out, nil
}

func invalidPath(err error) error {
	return domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPath.Message, err)
}
