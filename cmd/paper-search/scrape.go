// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Build the data files from econpapers.repec.org",
	Long: `Scrape reads the econpapers volume listings of the selected journals and
writes one CSV file per journal and year, fetching each paper page for its
abstract and download link. Requests are rate limited.

Finished files and paper pages are remembered in a SQLite ledger so an
interrupted run resumes where it stopped; --force rewrites finished files.`,
	RunE: runScrape,
}

func runScrape(cmd *cobra.Command, args []string) error {
	sc := cfg.Scrape
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		sc.OutDir = out
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		sc.LedgerPath = db
	}
	force, _ := cmd.Flags().GetBool("force")
	years, _ := cmd.Flags().GetIntSlice("year")
	journalFlags, _ := cmd.Flags().GetStringSlice("journal")

	journals, err := resolveJournals(journalFlags)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(sc.LedgerPath), 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	ledger, err := scrape.OpenLedger(sc.LedgerPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	s := scrape.New(sc, ledger,
		scrape.WithForce(force),
		scrape.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum := s.Run(ctx, journals, years, cmd.OutOrStdout())
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scrape interrupted: %w", err)
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d year(s) failed", sum.Failed)
	}
	return nil
}

func init() {
	scrapeCmd.Flags().StringSlice("journal", nil, `journal name, repeatable or comma-separated (default "all")`)
	scrapeCmd.Flags().IntSlice("year", nil, "years to scrape (default: every year listed)")
	scrapeCmd.Flags().String("out", "", "output directory for CSV files (default from config, data)")
	scrapeCmd.Flags().String("db", "", "SQLite ledger path (default from config, .cache/scrape.db)")
	scrapeCmd.Flags().Bool("force", false, "rewrite files the ledger marks as finished")

	rootCmd.AddCommand(scrapeCmd)
}
