package jsonvalue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Segment addresses one step into a document: an object key or a list index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

func Key(k string) Segment { return Segment{key: k} }

func Index(i int) Segment { return Segment{index: i, isIndex: true} }

func (s Segment) IsIndex() bool { return s.isIndex }

func (s Segment) Key() string { return s.key }

func (s Segment) Index() int { return s.index }

// Path is an ordered list of segments, e.g. features[2].title.
type Path []Segment

// P builds a path from strings and ints.
func P(parts ...any) Path {
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		switch t := part.(type) {
		case string:
			p = append(p, Key(t))
		case int:
			p = append(p, Index(t))
		default:
			panic(fmt.Sprintf("jsonvalue: path part %T", part))
		}
	}
	return p
}

// Child returns a new path extended by seg; p is never modified.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Parent drops the last segment.
func (p Path) Parent() (Path, Segment, bool) {
	if len(p) == 0 {
		return nil, Segment{}, false
	}
	return p[:len(p)-1], p[len(p)-1], true
}

// LastKey returns the nearest object key on the path.
func (p Path) LastKey() string {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].isIndex {
			return p[i].key
		}
	}
	return ""
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch {
		case seg.isIndex:
			b.WriteString("[" + strconv.Itoa(seg.index) + "]")
		case plainKey(seg.key):
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.key)
		default:
			b.WriteString("[" + strconv.Quote(seg.key) + "]")
		}
	}
	return b.String()
}

func plainKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		if r == '.' || r == '[' || r == ']' || r == '"' || r == '\\' {
			return false
		}
	}
	return true
}

// MarshalJSON writes the path as an array of strings and integers.
func (p Path) MarshalJSON() ([]byte, error) {
	parts := make([]any, len(p))
	for i, seg := range p {
		if seg.isIndex {
			parts[i] = seg.index
		} else {
			parts[i] = seg.key
		}
	}
	return json.Marshal(parts)
}

// UnmarshalJSON accepts either the array form or the text form.
func (p *Path) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := ParsePath(text)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("jsonvalue: path must be a string or an array: %w", err)
	}
	out := make(Path, 0, len(parts))
	for _, raw := range parts {
		var key string
		if err := json.Unmarshal(raw, &key); err == nil {
			out = append(out, Key(key))
			continue
		}
		var idx int
		if err := json.Unmarshal(raw, &idx); err != nil || idx < 0 {
			return fmt.Errorf("jsonvalue: path segment %s is neither a key nor an index", string(raw))
		}
		out = append(out, Index(idx))
	}
	*p = out
	return nil
}

var errBadPath = errors.New("jsonvalue: malformed path")

// ParsePath reads the text form produced by Path.String:
// features[2].title, ["odd.key"].x, [0]. The empty string is the root.
func ParsePath(s string) (Path, error) {
	p := Path{}
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			// A dot must be followed by a plain key.
			if i == 0 || i == len(s)-1 || s[i+1] == '.' || s[i+1] == '[' {
				return nil, fmt.Errorf("%w: %q", errBadPath, s)
			}
			i++
		case '[':
			end := i + 1
			if end < len(s) && s[end] == '"' {
				j := end + 1
				for j < len(s) && s[j] != '"' {
					if s[j] == '\\' {
						j++
					}
					j++
				}
				if j+1 >= len(s) || s[j+1] != ']' {
					return nil, fmt.Errorf("%w: %q", errBadPath, s)
				}
				key, err := strconv.Unquote(s[end : j+1])
				if err != nil {
					return nil, fmt.Errorf("%w: %q", errBadPath, s)
				}
				p = append(p, Key(key))
				i = j + 2
				continue
			}
			closing := strings.IndexByte(s[i:], ']')
			if closing < 0 {
				return nil, fmt.Errorf("%w: %q", errBadPath, s)
			}
			idx, err := strconv.Atoi(s[i+1 : i+closing])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: %q", errBadPath, s)
			}
			p = append(p, Index(idx))
			i += closing + 1
		default:
			end := i
			for end < len(s) && s[end] != '.' && s[end] != '[' {
				end++
			}
			p = append(p, Key(s[i:end]))
			i = end
		}
	}
	return p, nil
}
