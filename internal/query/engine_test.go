// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"

	"github.com/pdiddy/paper-search/pkg/types"
)

func paper(journal, year, title, abstract string) types.PaperRecord {
	return types.PaperRecord{Journal: journal, Year: year, Title: title, Authors: "Someone", Abstract: abstract}
}

func corpus() []types.PaperRecord {
	return []types.PaperRecord{
		paper("Econometrica", "2016", "Wage Dynamics", "the labor market and inflation expectations"),
		paper("Econometrica", "2019", "Search Frictions", "labor market search with inflation"),
		paper("Econometrica", "2021", "Late Paper", "labor market inflation"),
		paper("Econometrica", "2014", "Early Paper", "labor market inflation"),
		paper("Econometrica", "2018", "Only Inflation", "inflation targeting"),
		paper("Econometrica", "2017", "Market Labor", "market labor inflation"),
		paper("Journal of Econometrics", "2018", "Other Journal", "labor market inflation"),
		paper("Econometrica", "n.d.", "No Year", "labor market inflation"),
	}
}

func titles(r types.QueryResult) []string {
	out := make([]string, len(r))
	for i, p := range r {
		out[i] = p.Title
	}
	return out
}

func TestSearchExample(t *testing.T) {
	e := NewEngine("")
	c := types.FilterCriteria{
		Keywords: `"labor market" inflation`,
		YearFrom: 2015,
		YearTo:   2020,
		Journals: []string{"Econometrica"},
	}
	got := e.Search(c, corpus())
	assert.Equal(t, []string{"Search Frictions", "Wage Dynamics"}, titles(got))
}

func TestSearchYearFromAfterYearToIsEmpty(t *testing.T) {
	e := NewEngine("")
	for from := 2010; from <= 2025; from++ {
		for to := 2009; to < from; to++ {
			c := types.FilterCriteria{YearFrom: from, YearTo: to, Journals: []string{"Econometrica", "Journal of Econometrics"}}
			assert.Empty(t, e.Search(c, corpus()), "from=%d to=%d", from, to)
		}
	}
}

func TestSearchExcludesUnparseableYear(t *testing.T) {
	e := NewEngine("")
	c := types.NewFilterCriteria("", "Econometrica")
	for _, r := range e.Search(c, corpus()) {
		assert.NotEqual(t, "No Year", r.Title)
	}
}

func TestSearchDefaultBoundsKeepAllParsedYears(t *testing.T) {
	e := NewEngine("")
	got := e.Search(types.NewFilterCriteria("", "Econometrica", "Journal of Econometrics"), corpus())
	assert.Len(t, got, 7)
}

func TestSearchJournalMembership(t *testing.T) {
	e := NewEngine("")
	got := e.Search(types.NewFilterCriteria("", "Journal of Econometrics"), corpus())
	assert.Equal(t, []string{"Other Journal"}, titles(got))
	assert.Empty(t, e.Search(types.NewFilterCriteria(""), corpus()))
}

func TestSearchKeywordsMatchAcrossFields(t *testing.T) {
	e := NewEngine("")
	all := []string{"Econometrica", "Journal of Econometrics"}

	got := e.Search(types.NewFilterCriteria("journal of econometrics 2018", all...), corpus())
	assert.Equal(t, []string{"Other Journal"}, titles(got))

	got = e.Search(types.NewFilterCriteria("SOMEONE targeting", all...), corpus())
	assert.Equal(t, []string{"Only Inflation"}, titles(got))

	got = e.Search(types.NewFilterCriteria("   ", all...), corpus())
	assert.Len(t, got, 7, "blank keywords do not filter")
}

func TestSearchKeywordConjunctionProperty(t *testing.T) {
	e := NewEngine("")
	queries := []string{`"labor market"`, "inflation", `"labor market" inflation`, "market labor", `"market labor"`, "search frictions"}
	for _, q := range queries {
		tokens := Tokenize(q)
		got := e.Search(types.NewFilterCriteria(q, "Econometrica", "Journal of Econometrics"), corpus())
		in := make(map[string]bool)
		for _, r := range got {
			in[r.Title] = true
		}
		for _, r := range corpus() {
			if _, ok := r.YearValue(); !ok {
				continue
			}
			text := r.SearchText()
			want := true
			for _, p := range append(append([]string{}, tokens.Phrases...), tokens.Words...) {
				if !strings.Contains(text, p) {
					want = false
				}
			}
			assert.Equal(t, want, in[r.Title], "query %q record %q", q, r.Title)
		}
	}
}

func TestSearchOrdering(t *testing.T) {
	e := NewEngine("en")
	records := []types.PaperRecord{
		paper("J", "2020", "cherry", ""),
		paper("J", "2021", "zeta", ""),
		paper("J", "2020", "Banana", ""),
		paper("J", "2020", "apple", ""),
		paper("J", "2019", "alpha", ""),
	}
	got := e.Search(types.NewFilterCriteria("", "J"), records)
	assert.Equal(t, []string{"zeta", "apple", "Banana", "cherry", "alpha"}, titles(got))
}

func TestSearchSortedProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var records []types.PaperRecord
	for i := 0; i < 300; i++ {
		records = append(records, paper("J", fmt.Sprint(2015+rng.Intn(8)), fmt.Sprintf("Title %03d", rng.Intn(1000)), ""))
	}
	e := NewEngine("")
	got := e.Search(types.NewFilterCriteria("", "J"), records)
	require.Len(t, got, 300)

	col := collate.New(e.Collation())
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
		yi, _ := got[i].YearValue()
		yj, _ := got[j].YearValue()
		if yi != yj {
			return yi > yj
		}
		return col.CompareString(got[i].Title, got[j].Title) < 0
	}))
}

func TestSearchIsDeterministicAndPure(t *testing.T) {
	e := NewEngine("")
	records := corpus()
	before := append([]types.PaperRecord(nil), records...)
	c := types.NewFilterCriteria("inflation", "Econometrica")

	a := e.Search(c, records)
	b := e.Search(c, records)
	assert.Equal(t, a, b)
	assert.Equal(t, before, records, "input must not be reordered")
}

func TestNewEngineFallsBackOnBadTag(t *testing.T) {
	assert.Equal(t, DefaultCollation, NewEngine("not a tag!").Collation().String())
	assert.Equal(t, "en", NewEngine("en").Collation().String())
}
