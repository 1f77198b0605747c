package editor

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/pkg/jsonvalue"
)

func records(ids ...string) []domain.Component {
	out := make([]domain.Component, len(ids))
	for i, id := range ids {
		out[i] = domain.Component{ID: id, ComponentType: "hero", OrderIndex: i + 1, Content: jsonvalue.Object()}
	}
	return out
}

func idsOf(components []domain.Component) []string {
	out := make([]string, len(components))
	for i, c := range components {
		out[i] = c.ID
	}
	return out
}

func ordersOf(components []domain.Component) []int {
	out := make([]int, len(components))
	for i, c := range components {
		out[i] = c.OrderIndex
	}
	return out
}

func TestReorder_MovesToDestination(t *testing.T) {
	in := records("c1", "c2", "c3")
	out := Reorder(in, "c3", "c1")

	assert.Equal(t, []string{"c3", "c1", "c2"}, idsOf(out))
	assert.Equal(t, []int{1, 2, 3}, ordersOf(out))
	assert.Equal(t, []string{"c1", "c2", "c3"}, idsOf(in), "input must not be reordered")
	assert.Equal(t, []int{1, 2, 3}, ordersOf(in))

	assert.Equal(t, []string{"c2", "c3", "c1"}, idsOf(Reorder(in, "c1", "c3")))
	assert.Equal(t, []string{"c2", "c1", "c3"}, idsOf(Reorder(in, "c1", "c2")))
}

func TestReorder_NoOps(t *testing.T) {
	in := records("c1", "c2")
	assert.Equal(t, in, Reorder(in, "c1", "c1"))
	assert.Equal(t, in, Reorder(in, "c1", "missing"))
	assert.Equal(t, in, Reorder(in, "missing", "c2"))
	assert.Empty(t, Reorder(nil, "a", "b"))
}

func TestReorder_PermutationAndContiguity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n <= 12; n++ {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("c%d", i)
		}
		for trial := 0; trial < 20; trial++ {
			in := records(ids...)
			src, dst := "x", "y"
			if n > 0 {
				src, dst = ids[rng.Intn(n)], ids[rng.Intn(n)]
			}
			out := Reorder(in, src, dst)

			require.Len(t, out, n)
			assert.ElementsMatch(t, ids, idsOf(out))
			for i, c := range out {
				assert.Equal(t, i+1, c.OrderIndex)
			}
		}
	}
}

func TestChangedOrder(t *testing.T) {
	in := records("c1", "c2", "c3", "c4")
	out := Reorder(in, "c2", "c3")
	assert.ElementsMatch(t, []string{"c2", "c3"}, ChangedOrder(in, out))
	assert.Empty(t, ChangedOrder(in, in))
}

func TestTracker(t *testing.T) {
	tr := NewTracker("b")
	tr.MarkDirty("a", "", "b")
	assert.Equal(t, 2, tr.DirtyCount())
	assert.True(t, tr.IsDirty("a"))
	assert.Equal(t, []string{"a", "b"}, tr.IDs())

	tr.Clear("a")
	assert.False(t, tr.IsDirty("a"))
	tr.MarkDirty("c")
	tr.ClearAll()
	assert.Zero(t, tr.DirtyCount())
	assert.Equal(t, []string{}, tr.IDs())
}

func TestBuildForm_Kinds(t *testing.T) {
	content := jsonvalue.MustParse(`{
		"title": "Hi",
		"contactEmail": "a@b.c",
		"ctaUrl": "/go",
		"heroImage": "x.png",
		"price": 29,
		"description": "short",
		"body": "` + longText + `",
		"enabled": true,
		"faqs": [{"q": "Q1", "a": "A1"}],
		"meta": {"imageSrc": "y.png", "count": 3}
	}`)
	form := BuildForm(content)

	require.Equal(t, FieldGroup, form.Kind)
	kinds := map[string]FieldKind{}
	for _, f := range form.Children {
		kinds[f.Key] = f.Kind
	}
	assert.Equal(t, map[string]FieldKind{
		"title":        FieldText,
		"contactEmail": FieldEmail,
		"ctaUrl":       FieldURL,
		"heroImage":    FieldURL,
		"price":        FieldNumber,
		"description":  FieldTextarea,
		"body":         FieldTextarea,
		"enabled":      FieldCheckbox,
		"faqs":         FieldList,
		"meta":         FieldGroup,
	}, kinds)

	faqs := form.Children[8]
	require.Len(t, faqs.Children, 1)
	item := faqs.Children[0]
	assert.True(t, item.Removable)
	assert.Equal(t, "Faqs #1", item.Label)
	assert.Equal(t, "faqs[0]", item.PathText)
	require.Len(t, item.Children, 2)
	assert.Equal(t, jsonvalue.P("faqs", 0, "q"), item.Children[0].Path)
	assert.Equal(t, "Q1", item.Children[0].Value)

	meta := form.Children[9]
	assert.Equal(t, FieldURL, meta.Children[0].Kind)
	assert.Equal(t, FieldNumber, meta.Children[1].Kind)
}

const longText = "This sentence is deliberately longer than fifty characters in total."

func TestLeafKind_PrimitiveListItemsUseListKey(t *testing.T) {
	form := BuildForm(jsonvalue.MustParse(`{"images":["a.png"],"tags":["x"]}`))
	assert.Equal(t, FieldURL, form.Children[0].Children[0].Kind)
	assert.Equal(t, FieldText, form.Children[1].Children[0].Kind)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Cta Label", Humanize("ctaLabel"))
	assert.Equal(t, "Cta Label", Humanize("cta_label"))
	assert.Equal(t, "Faqs", Humanize("faqs"))
	assert.Equal(t, "", Humanize(""))
}

func TestAddItem_Scenarios(t *testing.T) {
	items := jsonvalue.MustParse(`{"title":"A","items":["x","y"]}`)
	out, err := AddItem(items, jsonvalue.P("items"))
	require.NoError(t, err)
	text, _ := out.Text()
	assert.Equal(t, `{"title":"A","items":["x","y",""]}`, text)

	faqs := jsonvalue.MustParse(`{"faqs":[{"q":"Q1","a":"A1"}]}`)
	out, err = AddItem(faqs, jsonvalue.P("faqs"))
	require.NoError(t, err)
	text, _ = out.Text()
	assert.Equal(t, `{"faqs":[{"q":"Q1","a":"A1"},{"q":"","a":""}]}`, text)

	empty := jsonvalue.MustParse(`{"list":[]}`)
	out, err = AddItem(empty, jsonvalue.P("list"))
	require.NoError(t, err)
	text, _ = out.Text()
	assert.Equal(t, `{"list":[""]}`, text)

	_, err = AddItem(items, jsonvalue.P("title"))
	assert.ErrorIs(t, err, domain.ErrInvalidPath)
}

func TestRemoveItem(t *testing.T) {
	content := jsonvalue.MustParse(`{"items":["a","b","c"],"meta":{"k":1}}`)
	out, err := RemoveItem(content, jsonvalue.P("items", 0))
	require.NoError(t, err)
	text, _ := out.Text()
	assert.Equal(t, `{"items":["b","c"],"meta":{"k":1}}`, text)

	for _, p := range []jsonvalue.Path{nil, jsonvalue.P("meta", "k"), jsonvalue.P("items", 9)} {
		out, err := RemoveItem(content, p)
		assert.ErrorIs(t, err, domain.ErrInvalidPath, "path %s", p)
		assert.True(t, jsonvalue.Equal(content, out))
	}
}

func TestEditField_InvalidPathLeavesContent(t *testing.T) {
	content := jsonvalue.MustParse(`{"title":"A"}`)
	out, err := EditField(content, jsonvalue.P("title", "deeper"), jsonvalue.String("x"))
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.True(t, jsonvalue.Equal(content, out))

	_, err = EditField(content, nil, jsonvalue.String("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidPath)
}

func TestDuplicate_IsIndependent(t *testing.T) {
	in := records("c1", "c2")
	in[0].ComponentName = "Hero"
	in[0].Content = jsonvalue.MustParse(`{"items":[{"q":"Q1"}]}`)

	out, dup, err := Duplicate(in, "c1", "c9")
	require.NoError(t, err)
	assert.Equal(t, "Hero (Copy)", dup.ComponentName)
	assert.Equal(t, 3, dup.OrderIndex)
	assert.Equal(t, []string{"c1", "c2", "c9"}, idsOf(out))

	edited, err := EditField(out[2].Content, jsonvalue.P("items", 0, "q"), jsonvalue.String("changed"))
	require.NoError(t, err)
	out[2].Content = edited

	q, _ := jsonvalue.Get(out[0].Content, jsonvalue.P("items", 0, "q"))
	assert.Equal(t, "Q1", q.Interface())

	_, _, err = Duplicate(in, "missing", "x")
	assert.ErrorIs(t, err, domain.ErrComponentNotFound)
}

func TestRemove_Renumbers(t *testing.T) {
	out, err := Remove(records("c1", "c2", "c3"), "c2")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c3"}, idsOf(out))
	assert.Equal(t, []int{1, 2}, ordersOf(out))

	_, err = Remove(records("c1"), "nope")
	assert.ErrorIs(t, err, domain.ErrComponentNotFound)
}
