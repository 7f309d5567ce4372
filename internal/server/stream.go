// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/paper-search/internal/present"
)

// keepAliveInterval spaces SSE comments that keep proxies from closing the stream.
const keepAliveInterval = 15 * time.Second

// viewUpdate is one rendering instruction sent to the page.
type viewUpdate struct {
	Type    string         `json:"type"`
	Status  string         `json:"status,omitempty"`
	Cards   []present.Card `json:"cards,omitempty"`
	More    bool           `json:"more"`
	Index   int            `json:"index"`
	Visible bool           `json:"visible"`
}

// streamView queues view updates for the session's event stream. Pending
// updates are coalesced instead of dropped, so the queue never holds more than
// one list update, one status and one abstract update per card. It also keeps
// the rendered state so a newly attached stream starts from a full replace.
type streamView struct {
	mu      sync.Mutex
	pending []viewUpdate
	ready   chan struct{}

	rendered bool
	cards    []present.Card
	more     bool
	status   string
	open     map[int]bool
}

func newStreamView() *streamView {
	return &streamView{ready: make(chan struct{}, 1), open: make(map[int]bool)}
}

// enqueue adds u to the pending queue, merging it with queued updates it
// supersedes. Callers hold v.mu.
func (v *streamView) enqueue(u viewUpdate) {
	switch u.Type {
	case "replace":
		v.pending = v.pending[:0]
	case "append":
		for i := len(v.pending) - 1; i >= 0; i-- {
			p := &v.pending[i]
			if p.Type == "replace" || p.Type == "append" {
				p.Cards = append(p.Cards[:len(p.Cards):len(p.Cards)], u.Cards...)
				p.More = u.More
				v.signal()
				return
			}
		}
	case "status":
		v.remove(func(p viewUpdate) bool { return p.Type == "status" })
	case "abstract":
		v.remove(func(p viewUpdate) bool { return p.Type == "abstract" && p.Index == u.Index })
	}
	v.pending = append(v.pending, u)
	v.signal()
}

func (v *streamView) remove(match func(viewUpdate) bool) {
	kept := v.pending[:0]
	for _, p := range v.pending {
		if !match(p) {
			kept = append(kept, p)
		}
	}
	v.pending = kept
}

func (v *streamView) signal() {
	select {
	case v.ready <- struct{}{}:
	default:
	}
}

// drain returns and clears the pending updates.
func (v *streamView) drain() []viewUpdate {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.pending
	v.pending = nil
	return out
}

// resync replaces the pending queue with the full rendered state. A stream
// calls it when it attaches, since the page behind it starts empty.
func (v *streamView) resync() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.rendered {
		return
	}
	v.pending = v.pending[:0]
	v.pending = append(v.pending, viewUpdate{Type: "replace", Cards: slices.Clone(v.cards), More: v.more})
	if v.status != "" {
		v.pending = append(v.pending, viewUpdate{Type: "status", Status: v.status})
	}
	for _, i := range slices.Sorted(maps.Keys(v.open)) {
		v.pending = append(v.pending, viewUpdate{Type: "abstract", Index: i, Visible: true})
	}
	v.signal()
}

func (v *streamView) Status(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = msg
	v.enqueue(viewUpdate{Type: "status", Status: msg})
}

func (v *streamView) Replace(cards []present.Card, more bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rendered = true
	v.cards = slices.Clone(cards)
	v.more = more
	clear(v.open)
	v.enqueue(viewUpdate{Type: "replace", Cards: slices.Clone(cards), More: more})
}

func (v *streamView) Append(cards []present.Card, more bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cards = append(v.cards, cards...)
	v.more = more
	v.enqueue(viewUpdate{Type: "append", Cards: slices.Clone(cards), More: more})
}

func (v *streamView) Abstract(index int, visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if visible {
		v.open[index] = true
	} else {
		delete(v.open, index)
	}
	v.enqueue(viewUpdate{Type: "abstract", Index: index, Visible: visible})
}

// streamEvents handles GET /api/sessions/{sessionID}/events (SSE).
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sess.streams.Add(1)
	sess.view.resync()
	defer func() {
		sess.streams.Add(-1)
		sess.touch()
	}()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sess.ctl.Done():
			fmt.Fprint(w, "event: closed\ndata: {}\n\n")
			flusher.Flush()
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-sess.view.ready:
			for _, u := range sess.view.drain() {
				sendSSEEvent(w, flusher, u)
			}
		}
	}
}

// sendSSEEvent writes a single SSE event to the response writer.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, u viewUpdate) {
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", u.Type, data)
	flusher.Flush()
}
