package crm

import (
	"encoding/json"
	"fmt"
)

// Page is the canonical pagination result. The upstream duck-types its
// envelopes: list endpoints answer either an offset/total "items" shape
// or a page-index/"last" boolean "content" shape, sometimes a bare
// array. All three normalize here, at the system boundary.
type Page struct {
	Items    []json.RawMessage
	IsLast   bool
	Total    int
	HasTotal bool
}

// envelope covers every observed response shape at once; absent fields
// stay nil.
type envelope struct {
	Items   []json.RawMessage `json:"items"`
	Content []json.RawMessage `json:"content"`
	Total   *int              `json:"total"`
	Last    *bool             `json:"last"`
}

// ParsePage normalizes a raw list response into a Page.
func ParsePage(raw []byte) (Page, error) {
	// A bare JSON array is its own complete page.
	var bare []json.RawMessage
	if err := json.Unmarshal(raw, &bare); err == nil {
		return Page{Items: bare, IsLast: true}, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Page{}, fmt.Errorf("parse pagination envelope: %w", err)
	}

	p := Page{Items: env.Items}
	if p.Items == nil {
		p.Items = env.Content
	}
	if env.Total != nil {
		p.Total = *env.Total
		p.HasTotal = true
	}
	switch {
	case env.Last != nil:
		p.IsLast = *env.Last
	default:
		// The items/total shape has no explicit last-page signal; an
		// empty page is the only terminator we can infer.
		p.IsLast = len(p.Items) == 0
	}
	return p, nil
}
