// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset fetches and parses the per-journal-per-year data files and
// feeds their records into the record store.
package dataset

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-search/internal/catalog"
	"github.com/pdiddy/paper-search/internal/observability"
	"github.com/pdiddy/paper-search/internal/store"
	"github.com/pdiddy/paper-search/pkg/types"
)

// LoadReport summarizes one journal load.
type LoadReport struct {
	Journal  string        `json:"journal"`
	Files    int           `json:"files"`
	Missing  int           `json:"missing"`
	Failed   int           `json:"failed"`
	Records  int           `json:"records"`
	Duration time.Duration `json:"duration"`
}

// TotalFailure reports whether no file of the journal could be loaded.
func (r LoadReport) TotalFailure() bool {
	return r.Files > 0 && r.Missing+r.Failed == r.Files
}

// Outcome classifies the load for logs and metrics: ok, partial or failed.
func (r LoadReport) Outcome() string {
	switch {
	case r.TotalFailure():
		return "failed"
	case r.Missing+r.Failed > 0:
		return "partial"
	default:
		return "ok"
	}
}

type journalState struct {
	state  types.LoadState
	done   chan struct{}
	report LoadReport
}

// Loader loads journals into a store, each at most once. It is safe for
// concurrent use; a journal that is loading or loaded is never fetched again.
type Loader struct {
	source   Source
	store    *store.Store
	years    []int
	limit    int
	log      zerolog.Logger
	metrics  *observability.Metrics
	onLoaded func(LoadReport)

	mu       sync.Mutex
	journals map[string]*journalState
}

// Option configures a Loader.
type Option func(*Loader)

// WithYears sets the supported year range.
func WithYears(years []int) Option {
	return func(l *Loader) { l.years = catalog.Years(years) }
}

// WithConcurrency limits in-flight file fetches per journal. Zero or less
// means no limit.
func WithConcurrency(n int) Option {
	return func(l *Loader) { l.limit = n }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) { l.log = observability.Component(log, "loader") }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithOnLoaded registers a hook called after each journal load finishes.
func WithOnLoaded(fn func(LoadReport)) Option {
	return func(l *Loader) { l.onLoaded = fn }
}

// NewLoader returns a Loader reading from src into st.
func NewLoader(src Source, st *store.Store, opts ...Option) *Loader {
	l := &Loader{
		source:   src,
		store:    st,
		years:    catalog.Years(nil),
		log:      zerolog.Nop(),
		journals: make(map[string]*journalState),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// entry returns the state for journal, creating it. Callers hold l.mu.
func (l *Loader) entry(journal string) *journalState {
	js, ok := l.journals[journal]
	if !ok {
		js = &journalState{done: make(chan struct{})}
		l.journals[journal] = js
	}
	return js
}

// Load loads journal unless it is already loading or loaded, in which case
// it returns false immediately. See LoadWithReport.
func (l *Loader) Load(ctx context.Context, journal string) bool {
	_, started := l.LoadWithReport(ctx, journal)
	return started
}

// LoadWithReport fetches every year file of journal concurrently and appends
// the parsed records to the store. A file that cannot be fetched or parsed
// contributes no records and does not stop the others. The journal ends up
// Loaded even when every file failed, so it is never retried.
//
// Once started a load runs to completion: cancelling ctx does not abort it.
func (l *Loader) LoadWithReport(ctx context.Context, journal string) (LoadReport, bool) {
	l.mu.Lock()
	js := l.entry(journal)
	if js.state != types.NotLoaded {
		l.mu.Unlock()
		return LoadReport{}, false
	}
	js.state = types.Loading
	l.mu.Unlock()

	report := l.fetchAll(context.WithoutCancel(ctx), journal)

	l.mu.Lock()
	js.state = types.Loaded
	js.report = report
	close(js.done)
	l.mu.Unlock()

	l.metrics.RecordJournalLoad(journal, report.Outcome(), report.Records, report.Duration.Seconds())
	ev := l.log.Info()
	if report.TotalFailure() {
		ev = l.log.Warn()
	}
	ev.Str("journal", journal).
		Int("files", report.Files).
		Int("missing", report.Missing).
		Int("failed", report.Failed).
		Int("records", report.Records).
		Dur("took", report.Duration).
		Msg("journal loaded")

	if l.onLoaded != nil {
		l.onLoaded(report)
	}
	return report, true
}

func (l *Loader) fetchAll(ctx context.Context, journal string) LoadReport {
	start := time.Now()
	report := LoadReport{Journal: journal, Files: len(l.years)}

	var mu sync.Mutex
	var g errgroup.Group
	if l.limit > 0 {
		g.SetLimit(l.limit)
	}
	for _, year := range l.years {
		name := catalog.FileName(journal, year)
		g.Go(func() error {
			records, err := l.fetchFile(ctx, name)
			// One append per file keeps each file's records contiguous.
			l.store.Append(records...)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrNotFound):
				report.Missing++
			case err != nil:
				report.Failed++
			}
			report.Records += len(records)
			return nil
		})
	}
	g.Wait()

	report.Duration = time.Since(start)
	return report
}

func (l *Loader) fetchFile(ctx context.Context, name string) ([]types.PaperRecord, error) {
	rc, err := l.source.Open(ctx, name)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrNotFound) {
			outcome = "missing"
		}
		l.metrics.RecordFileFetch(outcome)
		l.log.Debug().Err(err).Str("file", name).Msg("data file unavailable")
		return nil, err
	}
	defer rc.Close()

	records, err := Parse(rc)
	if err != nil {
		l.metrics.RecordFileFetch("parse_error")
		l.log.Debug().Err(err).Str("file", name).Msg("data file unreadable")
		return nil, err
	}
	l.metrics.RecordFileFetch("ok")
	return records, nil
}

// State returns the load state of journal.
func (l *Loader) State(journal string) types.LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	if js, ok := l.journals[journal]; ok {
		return js.state
	}
	return types.NotLoaded
}

// States returns the load state of every journal the loader has seen.
func (l *Loader) States() map[string]types.LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]types.LoadState, len(l.journals))
	for name, js := range l.journals {
		out[name] = js.state
	}
	return out
}

// Report returns the report of a finished load.
func (l *Loader) Report(journal string) (LoadReport, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	js, ok := l.journals[journal]
	if !ok || js.state != types.Loaded {
		return LoadReport{}, false
	}
	return js.report, true
}

// Done returns a channel closed once journal is Loaded.
func (l *Loader) Done(journal string) <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entry(journal).done
}

// Wait blocks until every journal is Loaded or ctx ends. It does not start
// loads; see EnsureLoaded.
func (l *Loader) Wait(ctx context.Context, journals ...string) error {
	for _, j := range journals {
		select {
		case <-l.Done(j):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// EnsureLoaded starts loads for journals that have not been requested yet and
// waits until all of them are Loaded.
func (l *Loader) EnsureLoaded(ctx context.Context, journals ...string) error {
	for _, j := range journals {
		if l.State(j) == types.NotLoaded {
			go l.Load(ctx, j)
		}
	}
	return l.Wait(ctx, journals...)
}

// Reports returns the reports of all finished loads sorted by journal.
func (l *Loader) Reports() []LoadReport {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LoadReport
	for _, js := range l.journals {
		if js.state == types.Loaded {
			out = append(out, js.report)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Journal < out[j].Journal })
	return out
}
