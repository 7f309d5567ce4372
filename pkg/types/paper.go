// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the loader, the query
// engine, the result cache, the presentation layer and the CLI.
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// YearUnbounded is the upper year bound used when no "to" year is given.
const YearUnbounded = math.MaxInt

// PaperRecord is one row of a journal/year data file. Records are immutable
// once loaded; duplicates across overlapping loads are kept as-is.
type PaperRecord struct {
	// Journal is the display name of the journal (e.g. "AEJ: Applied Economics").
	Journal string `json:"journal" yaml:"journal"`

	// Year is the publication year exactly as it appears in the file.
	// Use YearValue to interpret it.
	Year string `json:"year" yaml:"year"`

	Title    string `json:"title" yaml:"title"`
	Authors  string `json:"authors" yaml:"authors"`
	Abstract string `json:"abstract" yaml:"abstract"`

	// URL links to the publisher page. Optional.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// YearValue parses Year as an integer. Surrounding spaces are ignored; any
// other non-digit content makes the year unparseable.
func (p PaperRecord) YearValue() (int, bool) {
	y, err := strconv.Atoi(strings.TrimSpace(p.Year))
	if err != nil {
		return 0, false
	}
	return y, true
}

// IsEmpty reports whether every field of the record is blank.
func (p PaperRecord) IsEmpty() bool {
	for _, f := range []string{p.Journal, p.Year, p.Title, p.Authors, p.Abstract, p.URL} {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// SearchText returns the lowercased text that keyword filters match against:
// journal, year, title, authors and abstract joined by single spaces.
func (p PaperRecord) SearchText() string {
	return strings.ToLower(p.Journal + " " + p.Year + " " + p.Title + " " + p.Authors + " " + p.Abstract)
}

// QueryResult is an ordered list of records: year descending, then title
// ascending. Cached results are shared and must not be modified.
type QueryResult []PaperRecord

// LoadState tracks the loading progress of one journal.
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "not_loaded"
	}
}

// MarshalText renders the state as its string form in JSON and YAML.
func (s LoadState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the string form written by MarshalText.
func (s *LoadState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "not_loaded":
		*s = NotLoaded
	case "loading":
		*s = Loading
	case "loaded":
		*s = Loaded
	default:
		return fmt.Errorf("unknown load state %q", b)
	}
	return nil
}
