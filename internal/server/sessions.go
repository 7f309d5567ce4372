// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-search/internal/present"
	"github.com/pdiddy/paper-search/pkg/types"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

const (
	defaultIdleTimeout = 30 * time.Minute
	janitorInterval    = time.Minute
)

type session struct {
	id       string
	ctl      *present.Controller
	view     *streamView
	cancel   context.CancelFunc
	lastSeen atomic.Int64
	streams  atomic.Int32
}

func (s *session) touch() { s.lastSeen.Store(time.Now().UnixNano()) }

func (s *session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

type sessionManager struct {
	deps     Deps
	settings present.Settings
	idle     time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionManager(deps Deps, ui types.UIConfig, logger zerolog.Logger) *sessionManager {
	idle := ui.SessionIdleTimeout
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	return &sessionManager{
		deps:     deps,
		settings: present.SettingsFrom(ui),
		idle:     idle,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// create starts a new session with its own controller loop.
func (m *sessionManager) create() *session {
	id := uuid.NewString()
	log := m.logger.With().Str("session_id", id).Logger()
	view := newStreamView()
	ctl := present.NewController(m.deps.Store, m.deps.Loader, m.deps.Cache, view, m.settings,
		present.WithLogger(log))

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{id: id, ctl: ctl, view: view, cancel: cancel}
	s.touch()

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.deps.Metrics.SessionOpened()

	go func() {
		ctl.Run(ctx)
		m.remove(id)
	}()
	log.Debug().Msg("session opened")
	return s
}

// get returns a live session and marks it active.
func (m *sessionManager) get(id string) (*session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

// close ends a session. Unknown ids return ErrSessionNotFound.
func (m *sessionManager) close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.cancel()
	m.remove(id)
	return nil
}

func (m *sessionManager) remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.cancel()
		m.deps.Metrics.SessionClosed()
		m.logger.Debug().Str("session_id", id).Msg("session closed")
	}
}

func (m *sessionManager) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *sessionManager) closeAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.remove(id)
	}
}

// expire closes sessions idle for longer than the idle timeout. Sessions
// with an open event stream are never idle.
func (m *sessionManager) expire(now time.Time) int {
	m.mu.Lock()
	var stale []string
	for id, s := range m.sessions {
		if s.streams.Load() == 0 && s.idleSince(now) > m.idle {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()
	for _, id := range stale {
		m.remove(id)
	}
	return len(stale)
}

func (m *sessionManager) janitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.expire(now); n > 0 {
				m.logger.Info().Int("expired", n).Msg("idle sessions closed")
			}
		}
	}
}
