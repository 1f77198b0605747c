package preview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// text accepts any JSON primitive and renders it as a string. Objects and
// lists are rejected so a renderer fails on content of the wrong shape.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*t = ""
	case string:
		*t = text(val)
	case bool:
		*t = text(strconv.FormatBool(val))
	case float64:
		*t = text(string(data))
	default:
		return fmt.Errorf("expected a primitive value, got %s", data)
	}
	return nil
}

type heroView struct {
	Title    text `json:"title"`
	Subtitle text `json:"subtitle"`
	CTALabel text `json:"ctaLabel"`
	CTAURL   text `json:"ctaUrl"`
	Image    text `json:"image"`
}

type faqEntry struct {
	Question text `json:"question"`
	Answer   text `json:"answer"`
}

type faqView struct {
	Title text `json:"title"`
	FAQs  []struct {
		Q text `json:"q"`
		A text `json:"a"`
	} `json:"faqs"`
	Items []faqEntry `json:"items"`
}

// Entries merges the short {q,a} form with the long {question,answer} form.
func (v faqView) Entries() []faqEntry {
	out := make([]faqEntry, 0, len(v.FAQs)+len(v.Items))
	for _, f := range v.FAQs {
		out = append(out, faqEntry{Question: f.Q, Answer: f.A})
	}
	return append(out, v.Items...)
}

type pricingView struct {
	Title text `json:"title"`
	Plans []struct {
		Name        text   `json:"name"`
		Price       text   `json:"price"`
		Period      text   `json:"period"`
		Features    []text `json:"features"`
		Highlighted bool   `json:"highlighted"`
		CTALabel    text   `json:"ctaLabel"`
		CTAURL      text   `json:"ctaUrl"`
	} `json:"plans"`
}

type featuresView struct {
	Title    text `json:"title"`
	Subtitle text `json:"subtitle"`
	Features []struct {
		Title       text `json:"title"`
		Description text `json:"description"`
		Icon        text `json:"icon"`
	} `json:"features"`
}

type ctaView struct {
	Title       text `json:"title"`
	Description text `json:"description"`
	ButtonText  text `json:"buttonText"`
	ButtonURL   text `json:"buttonUrl"`
}

type testimonialsView struct {
	Title        text `json:"title"`
	Testimonials []struct {
		Quote  text `json:"quote"`
		Author text `json:"author"`
		Role   text `json:"role"`
	} `json:"testimonials"`
}
