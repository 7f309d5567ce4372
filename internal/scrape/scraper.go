// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape builds the per-journal-per-year data files from the
// econpapers listing pages.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-search/internal/catalog"
	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/internal/observability"
	"github.com/pdiddy/paper-search/pkg/types"
)

// DefaultRequestsPerSecond throttles requests when none is configured.
const DefaultRequestsPerSecond = 2

// ErrYearUnavailable is returned when a journal lists no page for a year.
var ErrYearUnavailable = errors.New("year not available")

// YearResult is the outcome of scraping one journal year.
type YearResult struct {
	Journal string
	Year    int
	Path    string
	Papers  int
	Skipped bool
	// DetailFailures counts paper pages that could not be read; their
	// records are written without abstract and link.
	DetailFailures int
}

// Summary totals a scrape run.
type Summary struct {
	Written int
	Skipped int
	Empty   int
	Failed  int
	Papers  int
}

// Total returns the number of journal years processed.
func (s Summary) Total() int {
	return s.Written + s.Skipped + s.Empty + s.Failed
}

// Scraper fetches listing and paper pages politely and writes data files.
type Scraper struct {
	client  *http.Client
	limiter *rate.Limiter
	ledger  *Ledger
	outDir  string
	opts    httputil.RequestOptions
	force   bool
	log     zerolog.Logger
	metrics *observability.Metrics
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithForce rescrapes years the ledger marks as written.
func WithForce(force bool) Option {
	return func(s *Scraper) { s.force = force }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scraper) { s.log = observability.Component(log, "scrape") }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scraper) { s.metrics = m }
}

// WithClient replaces the HTTP client built from configuration.
func WithClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// New returns a scraper writing under cfg.OutDir. ledger may be nil, in
// which case nothing is remembered between runs.
func New(cfg types.ScrapeConfig, ledger *Ledger, opts ...Option) *Scraper {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	out := cfg.OutDir
	if out == "" {
		out = "data"
	}
	s := &Scraper{
		client:  httputil.NewClient(cfg.HTTPConfig),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		ledger:  ledger,
		outDir:  out,
		opts:    httputil.RequestOptions{UserAgent: cfg.UserAgent, MaxRetries: cfg.MaxRetries},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// fetch waits for the rate limiter and parses the page at rawURL.
func (s *Scraper) fetch(ctx context.Context, kind, rawURL string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := httputil.Get(ctx, s.client, rawURL, s.opts)
	if err != nil {
		s.metrics.RecordPage(kind, "error")
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		s.metrics.RecordPage(kind, "parse_error")
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	s.metrics.RecordPage(kind, "ok")
	return doc, nil
}

// journalRun caches the pages of one journal during a run.
type journalRun struct {
	journal catalog.Journal
	years   map[int]string
	pages   map[string]*goquery.Document
}

func (s *Scraper) openJournal(ctx context.Context, j catalog.Journal) (*journalRun, error) {
	base, err := url.Parse(j.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("listing URL of %s: %w", j.Name, err)
	}
	doc, err := s.fetch(ctx, "listing", j.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("fetching listing of %s: %w", j.Name, err)
	}
	return &journalRun{
		journal: j,
		years:   YearPages(doc, base),
		pages:   map[string]*goquery.Document{base.String(): doc},
	}, nil
}

// AvailableYears lists the years a journal has listing pages for, newest first.
func (s *Scraper) AvailableYears(ctx context.Context, j catalog.Journal) ([]int, error) {
	run, err := s.openJournal(ctx, j)
	if err != nil {
		return nil, err
	}
	return run.availableYears(), nil
}

func (r *journalRun) availableYears() []int {
	years := make([]int, 0, len(r.years))
	for y := range r.years {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// ScrapeYear writes the data file of one journal year.
func (s *Scraper) ScrapeYear(ctx context.Context, j catalog.Journal, year int) (YearResult, error) {
	if done, err := s.fileDone(ctx, j.Name, year); err != nil || done {
		return YearResult{Journal: j.Name, Year: year, Skipped: done}, err
	}
	run, err := s.openJournal(ctx, j)
	if err != nil {
		return YearResult{Journal: j.Name, Year: year}, err
	}
	return s.scrapeYear(ctx, run, year)
}

func (s *Scraper) fileDone(ctx context.Context, journal string, year int) (bool, error) {
	if s.force || s.ledger == nil {
		return false, nil
	}
	return s.ledger.FileDone(ctx, journal, year)
}

func (s *Scraper) scrapeYear(ctx context.Context, run *journalRun, year int) (YearResult, error) {
	name := run.journal.Name
	res := YearResult{Journal: name, Year: year}

	pageURL, ok := run.years[year]
	if !ok {
		return res, fmt.Errorf("%s %d: %w", name, year, ErrYearUnavailable)
	}
	doc, ok := run.pages[pageURL]
	if !ok {
		var err error
		doc, err = s.fetch(ctx, "listing", pageURL)
		if err != nil {
			return res, fmt.Errorf("fetching %s %d: %w", name, year, err)
		}
		run.pages[pageURL] = doc
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return res, fmt.Errorf("page URL %s: %w", pageURL, err)
	}

	listings := PapersForYear(doc, year, base)
	records := make([]types.PaperRecord, 0, len(listings))
	for _, l := range listings {
		d, err := s.detail(ctx, l.PageURL)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.DetailFailures++
			s.log.Warn().Err(err).Str("page", l.PageURL).Msg("paper page unavailable")
		}
		records = append(records, types.PaperRecord{
			Journal:  name,
			Year:     strconv.Itoa(year),
			Title:    l.Title,
			Authors:  l.Authors,
			Abstract: d.Abstract,
			URL:      d.Link,
		})
	}
	res.Papers = len(records)
	if len(records) == 0 {
		return res, nil
	}

	res.Path = filepath.Join(s.outDir, catalog.FileName(name, year))
	if err := WriteCSV(res.Path, records); err != nil {
		return res, err
	}
	if s.ledger != nil {
		if err := s.ledger.MarkFile(ctx, FileEntry{Journal: name, Year: year, Path: res.Path, Papers: len(records)}); err != nil {
			return res, err
		}
	}
	return res, nil
}

// detail returns a paper page's detail, from the ledger when known.
func (s *Scraper) detail(ctx context.Context, pageURL string) (Detail, error) {
	if s.ledger != nil {
		d, ok, err := s.ledger.Detail(ctx, pageURL)
		if err != nil {
			return Detail{}, err
		}
		if ok {
			return d, nil
		}
	}
	doc, err := s.fetch(ctx, "paper", pageURL)
	if err != nil {
		return Detail{}, err
	}
	d := PaperDetail(doc)
	if s.ledger != nil {
		if err := s.ledger.SaveDetail(ctx, pageURL, d); err != nil {
			return d, err
		}
	}
	return d, nil
}

// Run scrapes the given years of every journal, printing one line per year
// to w. A nil or empty years list means every available year. Failures are
// reported and the run continues.
func (s *Scraper) Run(ctx context.Context, journals []catalog.Journal, years []int, w io.Writer) Summary {
	var sum Summary
	for _, j := range journals {
		if ctx.Err() != nil {
			break
		}
		wanted := years
		var run *journalRun
		if len(wanted) == 0 {
			var err error
			run, err = s.openJournal(ctx, j)
			if err != nil {
				fmt.Fprintf(w, "failed:  %s (%v)\n", j.Name, err)
				sum.Failed++
				continue
			}
			wanted = run.availableYears()
			fmt.Fprintf(w, "%s: years %v\n", j.Name, wanted)
		}

		for i, year := range wanted {
			if done, err := s.fileDone(ctx, j.Name, year); err == nil && done {
				fmt.Fprintf(w, "skipped: %s %d (already written)\n", j.Name, year)
				sum.Skipped++
				continue
			}
			if run == nil {
				var err error
				run, err = s.openJournal(ctx, j)
				if err != nil {
					fmt.Fprintf(w, "failed:  %s (%v)\n", j.Name, err)
					sum.Failed += len(wanted) - i
					break
				}
			}

			res, err := s.scrapeYear(ctx, run, year)
			switch {
			case err != nil:
				fmt.Fprintf(w, "failed:  %s %d (%v)\n", j.Name, year, err)
				sum.Failed++
			case res.Papers == 0:
				fmt.Fprintf(w, "empty:   %s %d (no papers found)\n", j.Name, year)
				sum.Empty++
			default:
				fmt.Fprintf(w, "saved:   %s (%d papers", res.Path, res.Papers)
				if res.DetailFailures > 0 {
					fmt.Fprintf(w, ", %d without details", res.DetailFailures)
				}
				fmt.Fprintln(w, ")")
				sum.Written++
				sum.Papers += res.Papers
			}
		}
	}
	fmt.Fprintf(w, "\nScrape summary: %d written, %d skipped, %d empty, %d failed (total: %d)\n",
		sum.Written, sum.Skipped, sum.Empty, sum.Failed, sum.Total())
	return sum
}
