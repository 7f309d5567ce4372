// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query filters and orders paper records for a set of criteria.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pdiddy/paper-search/pkg/types"
)

// DefaultCollation is the language whose rules order titles.
const DefaultCollation = "zh-Hant"

// Engine evaluates filter criteria against records. Search has no side
// effects and returns the same result for the same input.
type Engine struct {
	tag language.Tag
}

// NewEngine returns an engine ordering titles by the collation rules of
// the BCP 47 tag collation. An empty or invalid tag falls back to
// DefaultCollation.
func NewEngine(collation string) *Engine {
	if collation == "" {
		collation = DefaultCollation
	}
	tag, err := language.Parse(collation)
	if err != nil {
		tag = language.MustParse(DefaultCollation)
	}
	return &Engine{tag: tag}
}

// Collation returns the tag used to order titles.
func (e *Engine) Collation() language.Tag {
	return e.tag
}

type candidate struct {
	rec  types.PaperRecord
	year int
}

// Search returns the records that satisfy c, ordered by year descending and
// then by title ascending.
//
// A record is kept when its year parses and lies in [YearFrom, YearTo], its
// journal is selected, and, when keywords are given, its search text contains
// every quoted phrase and every word. Records with an unparseable year never
// match.
func (e *Engine) Search(c types.FilterCriteria, records []types.PaperRecord) types.QueryResult {
	if c.YearFrom > c.YearTo || len(c.Journals) == 0 {
		return types.QueryResult{}
	}
	journals := make(map[string]bool, len(c.Journals))
	for _, j := range c.Journals {
		journals[j] = true
	}

	keywords := strings.TrimSpace(c.Keywords)
	tokens := Tokenize(keywords)
	filterKeywords := keywords != ""

	var hits []candidate
	for _, r := range records {
		y, ok := r.YearValue()
		if !ok || y < c.YearFrom || y > c.YearTo {
			continue
		}
		if !journals[r.Journal] {
			continue
		}
		if filterKeywords && !Matches(r.SearchText(), tokens) {
			continue
		}
		hits = append(hits, candidate{rec: r, year: y})
	}

	// A collator keeps scratch buffers, so each search gets its own.
	col := collate.New(e.tag)
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].year != hits[j].year {
			return hits[i].year > hits[j].year
		}
		return col.CompareString(hits[i].rec.Title, hits[j].rec.Title) < 0
	})

	out := make(types.QueryResult, len(hits))
	for i, h := range hits {
		out[i] = h.rec
	}
	return out
}
