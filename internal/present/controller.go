// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package present drives one search session: it turns user input into
// searches and searches into view updates.
//
// Each Controller runs a single event loop goroutine. Input, timers and load
// completions are all delivered to that loop as events, so session state is
// only ever touched from one goroutine and needs no locking.
package present

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-search/internal/dataset"
	"github.com/pdiddy/paper-search/pkg/types"
)

// Default timings.
const (
	DefaultDebounce         = 300 * time.Millisecond
	DefaultStatusClearDelay = 3 * time.Second
)

var (
	// ErrClosed is returned for events sent to a closed controller.
	ErrClosed = errors.New("session closed")

	// ErrNoCard is returned when toggling the abstract of a card that is not rendered.
	ErrNoCard = errors.New("no such card")
)

// View receives rendering updates. Calls are made from the controller's
// event loop, one at a time.
type View interface {
	// Status replaces the status line.
	Status(msg string)

	// Replace renders a new result list; more reports whether the load-more
	// sentinel follows the cards.
	Replace(cards []Card, more bool)

	// Append adds cards below the rendered ones and updates the sentinel.
	Append(cards []Card, more bool)

	// Abstract shows or hides the abstract of the card at index.
	Abstract(index int, visible bool)
}

// Records exposes the record store to the controller.
type Records interface {
	SnapshotAt() ([]types.PaperRecord, uint64)
}

// Loader starts and observes journal loads.
type Loader interface {
	State(journal string) types.LoadState
	Load(ctx context.Context, journal string) bool
	Done(journal string) <-chan struct{}
	Report(journal string) (dataset.LoadReport, bool)
}

// Searcher answers criteria against a store snapshot, usually through the
// result cache.
type Searcher interface {
	GetOrComputeAt(c types.FilterCriteria, records []types.PaperRecord, gen uint64) types.QueryResult
}

// Settings holds controller timings and sizes. Zero values use the defaults.
type Settings struct {
	Debounce         time.Duration
	StatusClearDelay time.Duration
	InitialWindow    int
	WindowStep       int
	Locale           string
}

// SettingsFrom converts UI configuration.
func SettingsFrom(cfg types.UIConfig) Settings {
	return Settings{
		Debounce:         cfg.Debounce,
		StatusClearDelay: cfg.StatusClearDelay,
		InitialWindow:    cfg.InitialWindow,
		WindowStep:       cfg.WindowStep,
		Locale:           cfg.Locale,
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(ctl *Controller) { ctl.log = log }
}

// Controller is the state machine of one session.
type Controller struct {
	records   Records
	loader    Loader
	searcher  Searcher
	view      View
	messages  Messages
	sanitizer *Sanitizer
	clock     Clock
	log       zerolog.Logger

	debounce   time.Duration
	clearDelay time.Duration

	events    chan func() error
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the event loop.
	keywords      string
	yearFrom      string
	yearTo        string
	selected      map[string]bool
	pending       map[string]bool
	window        *Window
	abstracts     map[int]bool
	debounceTimer Timer
	debounceSeq   int
	clearTimer    Timer
	clearSeq      int
	flashing      bool
	status        string
}

// NewController returns a controller rendering to view. Call Run to start
// its event loop.
func NewController(records Records, loader Loader, searcher Searcher, view View, s Settings, opts ...Option) *Controller {
	c := &Controller{
		records:    records,
		loader:     loader,
		searcher:   searcher,
		view:       view,
		messages:   MessagesFor(s.Locale),
		sanitizer:  NewSanitizer(),
		clock:      RealClock,
		log:        zerolog.Nop(),
		debounce:   s.Debounce,
		clearDelay: s.StatusClearDelay,
		events:     make(chan func() error),
		done:       make(chan struct{}),
		selected:   make(map[string]bool),
		pending:    make(map[string]bool),
		window:     NewWindow(s.InitialWindow, s.WindowStep),
		abstracts:  make(map[int]bool),
	}
	if c.debounce <= 0 {
		c.debounce = DefaultDebounce
	}
	if c.clearDelay <= 0 {
		c.clearDelay = DefaultStatusClearDelay
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run renders the initial empty state and processes events until ctx ends
// or Close is called.
func (c *Controller) Run(ctx context.Context) {
	defer func() {
		c.Close()
		if c.debounceTimer != nil {
			c.debounceTimer.Stop()
		}
		if c.clearTimer != nil {
			c.clearTimer.Stop()
		}
	}()

	c.search()
	for {
		select {
		case fn := <-c.events:
			if err := fn(); err != nil {
				c.log.Debug().Err(err).Msg("event rejected")
			}
		case <-ctx.Done():
			return
		case <-c.done:
			return
		}
	}
}

// Close stops the event loop. It is safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the controller is closed.
func (c *Controller) Done() <-chan struct{} { return c.done }

// post runs fn on the event loop and waits for it to finish.
func (c *Controller) post(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case c.events <- func() error {
		err := fn()
		errc <- err
		return err
	}:
	case <-c.done:
		return ErrClosed
	}
	select {
	case err := <-errc:
		return err
	case <-c.done:
		return ErrClosed
	}
}

// Input records new keyword and year field values and schedules a search
// once input has been quiet for the debounce period.
func (c *Controller) Input(keywords, yearFrom, yearTo string) error {
	return c.post(func() error {
		c.keywords, c.yearFrom, c.yearTo = keywords, yearFrom, yearTo
		c.armDebounce()
		return nil
	})
}

// ToggleJournal selects or deselects a journal and searches immediately.
// Selecting a journal that is not loaded starts its load; the controller
// searches again once the load finishes.
func (c *Controller) ToggleJournal(name string, checked bool) error {
	return c.post(func() error {
		if !checked {
			delete(c.selected, name)
			c.search()
			return nil
		}
		c.selected[name] = true
		if c.loader.State(name) != types.Loaded && !c.pending[name] {
			c.pending[name] = true
			done := c.loader.Done(name)
			if c.loader.State(name) == types.NotLoaded {
				go c.loader.Load(context.Background(), name)
			}
			go c.awaitLoad(name, done)
		}
		c.search()
		return nil
	})
}

// LoadMore reveals the next step of the current result.
func (c *Controller) LoadMore() error {
	return c.post(func() error {
		if !c.window.HasMore() {
			return nil
		}
		start := c.window.Shown()
		added := c.window.Expand()
		c.view.Append(c.sanitizer.Cards(start, added), c.window.HasMore())
		c.showStatus()
		return nil
	})
}

// ToggleAbstract flips the abstract visibility of a rendered card.
func (c *Controller) ToggleAbstract(index int) error {
	return c.post(func() error {
		if index < 0 || index >= c.window.Shown() {
			return ErrNoCard
		}
		visible := !c.abstracts[index]
		c.abstracts[index] = visible
		c.view.Abstract(index, visible)
		return nil
	})
}

// Criteria returns the criteria the next search would use.
func (c *Controller) Criteria() (types.FilterCriteria, error) {
	var crit types.FilterCriteria
	err := c.post(func() error {
		crit = c.criteria()
		return nil
	})
	return crit, err
}

func (c *Controller) awaitLoad(name string, done <-chan struct{}) {
	select {
	case <-done:
	case <-c.done:
		return
	}
	_ = c.post(func() error {
		c.loadFinished(name)
		return nil
	})
}

func (c *Controller) loadFinished(name string) {
	delete(c.pending, name)
	if !c.selected[name] {
		c.showStatus()
		return
	}
	c.search()
	if report, ok := c.loader.Report(name); ok && report.TotalFailure() {
		c.flash(c.messages.LoadFailed(name))
	}
}

func (c *Controller) armDebounce() {
	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
	c.debounceSeq++
	seq := c.debounceSeq
	c.debounceTimer = c.clock.AfterFunc(c.debounce, func() {
		_ = c.post(func() error {
			// A stopped timer may still have fired.
			if seq == c.debounceSeq {
				c.search()
			}
			return nil
		})
	})
}

func (c *Controller) criteria() types.FilterCriteria {
	journals := make([]string, 0, len(c.selected))
	for j := range c.selected {
		journals = append(journals, j)
	}
	sort.Strings(journals)
	crit := types.NewFilterCriteria(c.keywords, journals...)
	crit.YearFrom = types.ParseYearBound(c.yearFrom, 0)
	crit.YearTo = types.ParseYearBound(c.yearTo, types.YearUnbounded)
	return crit
}

func (c *Controller) search() {
	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
		c.debounceTimer = nil
		c.debounceSeq++
	}

	crit := c.criteria()
	records, gen := c.records.SnapshotAt()
	result := c.searcher.GetOrComputeAt(crit, records, gen)

	visible := c.window.Reset(result)
	clear(c.abstracts)
	c.view.Replace(c.sanitizer.Cards(0, visible), c.window.HasMore())
	c.showStatus()

	c.log.Debug().
		Str("keywords", crit.Keywords).
		Strs("journals", crit.Journals).
		Int("results", len(result)).
		Msg("search")
}

func (c *Controller) showStatus() {
	c.status = c.statusLine()
	if !c.flashing {
		c.view.Status(c.status)
	}
}

func (c *Controller) statusLine() string {
	if len(c.selected) == 0 {
		return c.messages.NoJournal()
	}
	var loading []string
	for j := range c.pending {
		if c.selected[j] {
			loading = append(loading, j)
		}
	}
	if len(loading) > 0 {
		sort.Strings(loading)
		return c.messages.Loading(loading...)
	}
	if c.window.Total() == 0 {
		return c.messages.NoResults()
	}
	return c.messages.Found(c.window.Total(), c.window.Shown())
}

// flash shows msg until the clear delay passes, then restores the status line.
func (c *Controller) flash(msg string) {
	c.flashing = true
	if c.clearTimer != nil {
		c.clearTimer.Stop()
	}
	c.clearSeq++
	seq := c.clearSeq
	c.clearTimer = c.clock.AfterFunc(c.clearDelay, func() {
		_ = c.post(func() error {
			if seq == c.clearSeq {
				c.flashing = false
				c.clearTimer = nil
				c.view.Status(c.status)
			}
			return nil
		})
	})
	c.view.Status(msg)
}
