// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package present

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Card is one rendered paper. All text fields are sanitized and safe to
// insert as HTML; URL is empty unless it is an absolute http(s) link.
type Card struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Journal  string `json:"journal"`
	Year     string `json:"year"`
	Authors  string `json:"authors"`
	Abstract string `json:"abstract"`
}

// Sanitizer turns records into cards.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer returns a sanitizer that strips all markup.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Card renders p at position index of the result.
func (s *Sanitizer) Card(index int, p types.PaperRecord) Card {
	return Card{
		Index:    index,
		Title:    s.policy.Sanitize(p.Title),
		URL:      s.link(p.URL),
		Journal:  s.policy.Sanitize(p.Journal),
		Year:     s.policy.Sanitize(p.Year),
		Authors:  s.policy.Sanitize(p.Authors),
		Abstract: s.policy.Sanitize(p.Abstract),
	}
}

// Cards renders records whose first element sits at position start.
func (s *Sanitizer) Cards(start int, records []types.PaperRecord) []Card {
	cards := make([]Card, len(records))
	for i, p := range records {
		cards[i] = s.Card(start+i, p)
	}
	return cards
}

func (s *Sanitizer) link(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return s.policy.Sanitize(u.String())
}
