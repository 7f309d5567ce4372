// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results. A
// saved search can be reopened later without loading any journal.
type QueryFile struct {
	Query   QueryParams       `yaml:"query"`
	Results types.QueryResult `yaml:"results"`
	Summary QuerySummary      `yaml:"summary"`
}

// QueryParams stores the criteria in a serializable form. Unbounded years
// are left out.
type QueryParams struct {
	Keywords string   `yaml:"keywords,omitempty"`
	YearFrom int      `yaml:"year_from,omitempty"`
	YearTo   int      `yaml:"year_to,omitempty"`
	Journals []string `yaml:"journals"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves criteria and their result to a YAML file.
func WriteQueryFile(path string, c types.FilterCriteria, result types.QueryResult) error {
	qf := QueryFile{
		Query: QueryParams{
			Keywords: c.Keywords,
			YearFrom: c.YearFrom,
			Journals: c.Journals,
		},
		Results: result,
		Summary: QuerySummary{
			Total:     len(result),
			Timestamp: time.Now().UTC(),
		},
	}
	if c.YearTo != types.YearUnbounded {
		qf.Query.YearTo = c.YearTo
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToCriteria converts stored parameters back into FilterCriteria.
func (p QueryParams) ToCriteria() types.FilterCriteria {
	c := types.NewFilterCriteria(p.Keywords, p.Journals...)
	c.YearFrom = p.YearFrom
	if p.YearTo != 0 {
		c.YearTo = p.YearTo
	}
	return c
}
