// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/query"
	"github.com/pdiddy/paper-search/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [keywords...]",
	Short: "Search journals once and print the results",
	Long: `Search loads the selected journals, filters their papers by year range and
keywords, and prints the matches newest first. Keywords are matched as
case-insensitive substrings; "quoted phrases" must appear verbatim.

Use --save to write the query and its results to a YAML file, and --load to
print a saved file again without fetching any data.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")

	if loadPath, _ := cmd.Flags().GetString("load"); loadPath != "" {
		qf, err := query.ReadQueryFile(loadPath)
		if err != nil {
			return err
		}
		return printResult(w, qf.Results, limit, jsonOutput)
	}

	criteria, err := criteriaFromFlags(cmd, args)
	if err != nil {
		return err
	}

	c, err := newComponents(nil)
	if err != nil {
		return err
	}
	if err := c.loader.EnsureLoaded(context.Background(), criteria.Journals...); err != nil {
		return err
	}
	for _, r := range c.loader.Reports() {
		if r.TotalFailure() {
			fmt.Fprintf(os.Stderr, "warning: no data could be loaded for %s\n", r.Journal)
		}
	}

	records, gen := c.store.SnapshotAt()
	result := c.cache.GetOrComputeAt(criteria, records, gen)

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := query.WriteQueryFile(savePath, criteria, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d results to %s\n", len(result), savePath)
	}
	return printResult(w, result, limit, jsonOutput)
}

func criteriaFromFlags(cmd *cobra.Command, args []string) (types.FilterCriteria, error) {
	keywords, _ := cmd.Flags().GetString("keywords")
	if keywords == "" && len(args) > 0 {
		keywords = strings.Join(args, " ")
	}
	journalFlags, _ := cmd.Flags().GetStringSlice("journal")
	journals, err := resolveJournals(journalFlags)
	if err != nil {
		return types.FilterCriteria{}, err
	}

	c := types.NewFilterCriteria(keywords, journalNames(journals)...)
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	for _, y := range []string{from, to} {
		if y == "" {
			continue
		}
		if _, err := strconv.Atoi(y); err != nil {
			return types.FilterCriteria{}, fmt.Errorf("invalid year %q", y)
		}
	}
	c.YearFrom = types.ParseYearBound(from, 0)
	c.YearTo = types.ParseYearBound(to, types.YearUnbounded)
	return c, nil
}

func printResult(w io.Writer, result types.QueryResult, limit int, jsonOutput bool) error {
	if jsonOutput {
		return query.FormatJSON(w, result)
	}
	query.FormatTable(w, result, limit)
	return nil
}

func init() {
	searchCmd.Flags().String("keywords", "", `keywords and "quoted phrases"; all must match`)
	searchCmd.Flags().String("from", "", "first publication year")
	searchCmd.Flags().String("to", "", "last publication year")
	searchCmd.Flags().StringSlice("journal", nil, `journal name, repeatable or comma-separated (default "all")`)
	searchCmd.Flags().Int("limit", 50, "number of results to print in table mode (0 = all)")
	searchCmd.Flags().Bool("json", false, "output all results as JSON")
	searchCmd.Flags().String("save", "", "write the query and results to a YAML file")
	searchCmd.Flags().String("load", "", "print results from a saved YAML query file")

	rootCmd.AddCommand(searchCmd)
}
