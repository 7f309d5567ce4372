// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paper-search/pkg/types"
)

// FormatTable writes up to limit results as a human-readable table to w.
// A limit of zero or less writes every result.
func FormatTable(w io.Writer, result types.QueryResult, limit int) {
	if len(result) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	shown := len(result)
	if limit > 0 && limit < shown {
		shown = limit
	}

	fmt.Fprintf(w, "%-4s  %-4s  %-28s  %-60s  %s\n", "#", "Year", "Journal", "Title", "Authors")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for i, r := range result[:shown] {
		fmt.Fprintf(w, "%-4d  %-4s  %-28s  %-60s  %s\n",
			i+1, r.Year, truncate(r.Journal, 28), truncate(r.Title, 60), truncate(r.Authors, 24))
	}

	fmt.Fprintf(w, "\n%d papers found", len(result))
	if shown < len(result) {
		fmt.Fprintf(w, ", showing first %d", shown)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(w io.Writer, result types.QueryResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if result == nil {
		result = types.QueryResult{}
	}
	return enc.Encode(result)
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
