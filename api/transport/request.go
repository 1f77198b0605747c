package transport

import (
	"encoding/json"

	"github.com/fastygo/pagecomposer/pkg/jsonvalue"
)

type PageMetaRequest struct {
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	CategoryID      string `json:"category_id"`
	IsHomepage      bool   `json:"is_homepage"`
}

type ReorderRequest struct {
	SourceID      string `json:"source_id"`
	DestinationID string `json:"destination_id"`
}

// FieldEditRequest replaces one value in a component's content. Path accepts
// either features[2].title or ["features",2,"title"]. Value is kept raw so an
// explicit null can be told apart from a missing value.
type FieldEditRequest struct {
	Path  jsonvalue.Path  `json:"path"`
	Value json.RawMessage `json:"value"`
}

// Content parses Value. ok is false when the request carried no value.
func (r FieldEditRequest) Content() (v jsonvalue.Value, ok bool, err error) {
	if len(r.Value) == 0 {
		return jsonvalue.Value{}, false, nil
	}
	v, err = jsonvalue.Parse(r.Value)
	return v, true, err
}

type ItemRequest struct {
	Path jsonvalue.Path `json:"path"`
}

type ComponentPatchRequest struct {
	ComponentName *string `json:"component_name"`
	IsVisible     *bool   `json:"is_visible"`
	Theme         *string `json:"theme"`
}

type ExpandedRequest struct {
	Expanded bool `json:"expanded"`
}
