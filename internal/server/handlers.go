// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/paper-search/internal/catalog"
	"github.com/pdiddy/paper-search/internal/present"
	"github.com/pdiddy/paper-search/pkg/types"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type journalResponse struct {
	Name       string          `json:"name"`
	FilePrefix string          `json:"file_prefix"`
	State      types.LoadState `json:"state"`
	Records    int             `json:"records"`
	Missing    int             `json:"missing_files,omitempty"`
	Failed     int             `json:"failed_files,omitempty"`
}

type searchResponse struct {
	Total  int                 `json:"total"`
	Offset int                 `json:"offset"`
	Papers []types.PaperRecord `json:"papers"`
}

type sessionResponse struct {
	ID string `json:"id"`
}

type inputRequest struct {
	Keywords string `json:"keywords"`
	YearFrom string `json:"year_from"`
	YearTo   string `json:"year_to"`
}

type journalToggleRequest struct {
	Journal string `json:"journal"`
	Checked bool   `json:"checked"`
}

// listJournals handles GET /api/journals.
func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	out := make([]journalResponse, 0, len(catalog.Journals))
	for _, j := range catalog.Journals {
		resp := journalResponse{
			Name:       j.Name,
			FilePrefix: catalog.Normalize(j.Name),
			State:      s.deps.Loader.State(j.Name),
			Records:    s.deps.Store.Count(j.Name),
		}
		if report, ok := s.deps.Loader.Report(j.Name); ok {
			resp.Missing = report.Missing
			resp.Failed = report.Failed
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

// resolveJournals maps journal parameters to catalog names. "all" selects
// the whole catalog.
func resolveJournals(params []string) ([]string, error) {
	var names []string
	for _, p := range params {
		for _, name := range strings.Split(p, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if strings.EqualFold(name, "all") {
				return catalog.Names(), nil
			}
			j, err := catalog.Lookup(name)
			if err != nil {
				return nil, err
			}
			names = append(names, j.Name)
		}
	}
	return names, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

// search handles GET /api/search. It loads the requested journals first, so
// the answer always covers every selected journal.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	journals, err := resolveJournals(q["journal"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intParam(r, "limit", defaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit = min(limit, maxPageSize)

	criteria := types.NewFilterCriteria(q.Get("keywords"), journals...)
	criteria.YearFrom = types.ParseYearBound(q.Get("from"), 0)
	criteria.YearTo = types.ParseYearBound(q.Get("to"), types.YearUnbounded)

	if err := s.deps.Loader.EnsureLoaded(r.Context(), journals...); err != nil {
		writeError(w, http.StatusServiceUnavailable, "journals still loading")
		return
	}
	records, gen := s.deps.Store.SnapshotAt()
	result := s.deps.Cache.GetOrComputeAt(criteria, records, gen)

	start := min(offset, len(result))
	end := min(start+limit, len(result))
	papers := result[start:end]
	if papers == nil {
		papers = types.QueryResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Total: len(result), Offset: start, Papers: papers})
}

// createSession handles POST /api/sessions.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.create()
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.id})
}

// withSession resolves the session of the request and writes 404 when absent.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

// writeEventResult maps a controller error to a response.
func writeEventResult(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, present.ErrClosed):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, present.ErrNoCard):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// sessionInput handles POST /api/sessions/{sessionID}/input.
func (s *Server) sessionInput(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeEventResult(w, sess.ctl.Input(req.Keywords, req.YearFrom, req.YearTo))
}

// sessionJournal handles POST /api/sessions/{sessionID}/journals.
func (s *Server) sessionJournal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req journalToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	j, err := catalog.Lookup(req.Journal)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeEventResult(w, sess.ctl.ToggleJournal(j.Name, req.Checked))
}

// sessionMore handles POST /api/sessions/{sessionID}/more.
func (s *Server) sessionMore(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeEventResult(w, sess.ctl.LoadMore())
}

// sessionAbstract handles POST /api/sessions/{sessionID}/abstract/{index}.
func (s *Server) sessionAbstract(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	writeEventResult(w, sess.ctl.ToggleAbstract(index))
}

// deleteSession handles DELETE /api/sessions/{sessionID}.
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.close(chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
