// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/paper-search/internal/cache"
	"github.com/pdiddy/paper-search/internal/catalog"
	"github.com/pdiddy/paper-search/internal/dataset"
	"github.com/pdiddy/paper-search/internal/observability"
	"github.com/pdiddy/paper-search/internal/query"
	"github.com/pdiddy/paper-search/internal/secrets"
	"github.com/pdiddy/paper-search/internal/store"
)

const metricsNamespace = "paper_search"

// components are the shared search pieces every command builds the same way.
type components struct {
	store   *store.Store
	loader  *dataset.Loader
	engine  *query.Engine
	cache   *cache.Cache
	metrics *observability.Metrics
}

func newComponents(reg prometheus.Registerer) (*components, error) {
	src, err := dataset.NewSource(cfg.Data, loadedSecrets.Get(secrets.DataToken))
	if err != nil {
		return nil, fmt.Errorf("data source: %w", err)
	}

	var m *observability.Metrics
	if reg != nil {
		m = observability.NewMetrics(metricsNamespace, reg)
	}

	st := store.New()
	engine := query.NewEngine(cfg.Search.Collation)
	return &components{
		store: st,
		loader: dataset.NewLoader(src, st,
			dataset.WithYears(cfg.Data.Years),
			dataset.WithConcurrency(cfg.Data.MaxConcurrentFetches),
			dataset.WithLogger(logger),
			dataset.WithMetrics(m),
		),
		engine:  engine,
		cache:   cache.New(engine, cfg.Search.CacheCapacity, m),
		metrics: m,
	}, nil
}

// resolveJournals expands repeated or comma-separated --journal values to
// catalog names. "all" or no value selects every journal.
func resolveJournals(values []string) ([]catalog.Journal, error) {
	var out []catalog.Journal
	seen := make(map[string]bool)
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if strings.EqualFold(name, "all") {
				return catalog.Journals, nil
			}
			j, err := catalog.Lookup(name)
			if err != nil {
				return nil, err
			}
			if !seen[j.Name] {
				seen[j.Name] = true
				out = append(out, j)
			}
		}
	}
	if len(out) == 0 {
		return catalog.Journals, nil
	}
	return out, nil
}

func journalNames(js []catalog.Journal) []string {
	names := make([]string, len(js))
	for i, j := range js {
		names[i] = j.Name
	}
	return names
}
