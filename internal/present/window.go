// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package present

import "github.com/pdiddy/paper-search/pkg/types"

// Default window sizes.
const (
	DefaultInitialWindow = 50
	DefaultWindowStep    = 25
)

// Window tracks how much of a result is rendered. It is reset to the
// initial size for every new result and grows by a fixed step.
type Window struct {
	all     types.QueryResult
	shown   int
	initial int
	step    int
}

// NewWindow returns an empty window. Sizes of zero or less use the defaults.
func NewWindow(initial, step int) *Window {
	if initial <= 0 {
		initial = DefaultInitialWindow
	}
	if step <= 0 {
		step = DefaultWindowStep
	}
	return &Window{initial: initial, step: step}
}

// Reset replaces the result and returns the initially visible records.
func (w *Window) Reset(result types.QueryResult) []types.PaperRecord {
	w.all = result
	w.shown = min(w.initial, len(result))
	return w.all[:w.shown]
}

// Expand reveals up to one more step and returns only the newly revealed
// records. It returns nil once everything is shown.
func (w *Window) Expand() []types.PaperRecord {
	start := w.shown
	w.shown = min(w.shown+w.step, len(w.all))
	if start == w.shown {
		return nil
	}
	return w.all[start:w.shown]
}

// Visible returns the records rendered so far.
func (w *Window) Visible() []types.PaperRecord { return w.all[:w.shown] }

// Shown returns the number of rendered records.
func (w *Window) Shown() int { return w.shown }

// Total returns the size of the whole result.
func (w *Window) Total() int { return len(w.all) }

// HasMore reports whether the load-more sentinel should be rendered.
func (w *Window) HasMore() bool { return w.shown < len(w.all) }
