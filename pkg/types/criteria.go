// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"
	"strings"
)

// FilterCriteria is the set of filters for one search. It is recomputed from
// user input on every search and never stored on its own.
type FilterCriteria struct {
	// Keywords is the raw keyword text; it may contain "quoted phrases".
	Keywords string `json:"keywords" yaml:"keywords"`

	// YearFrom is the inclusive lower year bound (default 0).
	YearFrom int `json:"year_from" yaml:"year_from"`

	// YearTo is the inclusive upper year bound (default YearUnbounded).
	YearTo int `json:"year_to" yaml:"year_to"`

	// Journals lists the selected journal display names.
	Journals []string `json:"journals" yaml:"journals"`
}

// NewFilterCriteria returns criteria with the default year bounds.
func NewFilterCriteria(keywords string, journals ...string) FilterCriteria {
	return FilterCriteria{
		Keywords: keywords,
		YearFrom: 0,
		YearTo:   YearUnbounded,
		Journals: journals,
	}
}

// HasJournal reports whether name is among the selected journals.
func (c FilterCriteria) HasJournal(name string) bool {
	for _, j := range c.Journals {
		if j == name {
			return true
		}
	}
	return false
}

// ParseYearBound interprets a year input field. Empty, non-numeric and zero
// input all yield fallback, matching how the search form treats them.
func ParseYearBound(text string, fallback int) int {
	y, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || y == 0 {
		return fallback
	}
	return y
}
