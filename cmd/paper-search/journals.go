// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/catalog"
	"github.com/pdiddy/paper-search/internal/dataset"
)

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "List the journal catalog and its data files",
	Long: `Journals prints every journal in the catalog with the data files it is
loaded from. With --check each journal is loaded and a report of found,
missing and unreadable files is printed.`,
	RunE: runJournals,
}

func runJournals(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	check, _ := cmd.Flags().GetBool("check")
	years := catalog.Years(cfg.Data.Years)

	if !check {
		for _, j := range catalog.Journals {
			files := make([]string, len(years))
			for i, y := range years {
				files[i] = catalog.FileName(j.Name, y)
			}
			fmt.Fprintf(w, "%s\n  %s\n", j.Name, strings.Join(files, " "))
		}
		return nil
	}

	c, err := newComponents(nil)
	if err != nil {
		return err
	}
	names := catalog.Names()
	if err := c.loader.EnsureLoaded(context.Background(), names...); err != nil {
		return err
	}

	fmt.Fprintf(w, "Data root: %s (years %d-%d)\n\n", cfg.Data.Root, years[0], years[len(years)-1])
	var failed int
	for _, r := range c.loader.Reports() {
		printReport(cmd, r)
		if r.TotalFailure() {
			failed++
		}
	}
	fmt.Fprintf(w, "\n%d records loaded from %d journals", c.store.Len(), len(names)-failed)
	if failed > 0 {
		fmt.Fprintf(w, ", %d journals without data", failed)
	}
	fmt.Fprintln(w)
	return nil
}

func printReport(cmd *cobra.Command, r dataset.LoadReport) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-8s %-40s %5d records  %d/%d files",
		r.Outcome(), r.Journal, r.Records, r.Files-r.Missing-r.Failed, r.Files)
	if r.Missing > 0 {
		fmt.Fprintf(w, ", %d missing", r.Missing)
	}
	if r.Failed > 0 {
		fmt.Fprintf(w, ", %d unreadable", r.Failed)
	}
	fmt.Fprintln(w)
}

func init() {
	journalsCmd.Flags().Bool("check", false, "load every journal and report missing or unreadable files")

	rootCmd.AddCommand(journalsCmd)
}
