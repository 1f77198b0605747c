package jsonvalue

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesKeyOrder(t *testing.T) {
	v, err := ParseString(`{"zeta":1,"alpha":{"b":true,"a":null},"mid":[1,"two",3.5]}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Keys())

	text, err := v.Text()
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":{"b":true,"a":null},"mid":[1,"two",3.5]}`, text)
}

func TestParse_Rejects(t *testing.T) {
	cases := []string{``, `{`, `{"a":1}{"b":2}`, `[1,]`, `nope`}
	for _, in := range cases {
		_, err := ParseString(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParse_WideObject(t *testing.T) {
	const keys = 50000
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i < keys; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`"k` + strconv.Itoa(i) + `":` + strconv.Itoa(i))
	}
	b.WriteByte('}')

	start := time.Now()
	v, err := ParseString(b.String())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, keys, v.Len())
	assert.True(t, Equal(v, Clone(v)))

	last, ok := v.Field("k49999")
	require.True(t, ok)
	n, _ := last.AsNumber()
	assert.Equal(t, float64(49999), n)
}

func TestParse_DuplicateKeys(t *testing.T) {
	v, err := ParseString(`{"a":1,"b":2,"a":3}`)
	require.NoError(t, err)
	text, err := v.Text()
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"b":2}`, text)

	built := Object(M("x", Int(1)), M("y", Int(2)), M("x", Int(9)))
	assert.Equal(t, []string{"x", "y"}, built.Keys())
	x, _ := built.Field("x")
	assert.True(t, Equal(Int(9), x))
}

func TestParse_NumbersBeyondFloatRange(t *testing.T) {
	v, err := ParseString(`{"big":1e400,"tiny":-1e400,"small":1e-400}`)
	require.NoError(t, err)

	text, err := v.Text()
	require.NoError(t, err)
	assert.Equal(t, `{"big":1e400,"tiny":-1e400,"small":1e-400}`, text)

	_, err = ParseString(`{"n":1e}`)
	assert.Error(t, err)
}

func TestMarshal_DoesNotEscapeHTML(t *testing.T) {
	v := Object(M("html", String("<b>bold</b> & more")))
	text, err := v.Text()
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<b>bold</b> & more"}`, text)
}

func TestValue_EmbedsInStructs(t *testing.T) {
	type envelope struct {
		Content Value `json:"content"`
	}
	in := envelope{Content: MustParse(`{"b":1,"a":[true]}`)}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":{"b":1,"a":[true]}}`, string(raw))

	var out envelope
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, Equal(in.Content, out.Content))
	assert.Equal(t, []string{"b", "a"}, out.Content.Keys())
}

func TestNumberFormatting(t *testing.T) {
	text, err := Number(1000000).Text()
	require.NoError(t, err)
	assert.Equal(t, "1000000", text)

	text, err = Int(42).Text()
	require.NoError(t, err)
	assert.Equal(t, "42", text)

	_, err = Number(nan()).Text()
	assert.Error(t, err)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestClone_NoSharedStructure(t *testing.T) {
	orig := MustParse(`{"items":[{"q":"Q1"}]}`)
	dup := Clone(orig)

	dup, err := Set(dup, P("items", 0, "q"), String("changed"))
	require.NoError(t, err)

	q, ok := Get(orig, P("items", 0, "q"))
	require.True(t, ok)
	assert.Equal(t, "Q1", q.Interface())
}

func TestItems_ReturnsCopy(t *testing.T) {
	v := List(String("a"), String("b"))
	items := v.Items()
	items[0] = String("mutated")

	first, _ := v.Index(0)
	assert.Equal(t, "a", first.Interface())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(MustParse(`{"a":1,"b":2}`), MustParse(`{"b":2,"a":1.0}`)))
	assert.False(t, Equal(MustParse(`[1,2]`), MustParse(`[2,1]`)))
	assert.False(t, Equal(String("1"), Number(1)))
	assert.True(t, Equal(Null(), Value{}))
}

func TestFromInterface(t *testing.T) {
	v, err := FromInterface(map[string]any{"b": []any{1, "x"}, "a": nil})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.Keys())

	_, err = FromInterface(struct{}{})
	assert.Error(t, err)
}

func TestIndent(t *testing.T) {
	out, err := MustParse(`{"a":[1]}`).Indent()
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1\n  ]\n}", out)
}

func TestPathError_Unwraps(t *testing.T) {
	_, err := Set(String("leaf"), P("x"), Null())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPath))

	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 0, pe.At)
}
