// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/gi-cli/gi/internal/catalog"
	"github.com/gi-cli/gi/internal/metrics"
	"github.com/gi-cli/gi/internal/names"
)

const (
	// DefaultTTL is how long a cached template is served without a refresh.
	DefaultTTL = 24 * time.Hour
	// DefaultWorkers bounds concurrent template downloads.
	DefaultWorkers = 4
)

type (
	// Engine resolves and retrieves templates for one invocation.
	Engine struct {
		source  Source
		store   Store
		aliases map[string]string
		logger  *log.Logger
		metrics *metrics.Recorder

		ttl            time.Duration
		catalogTTL     time.Duration
		workers        int
		offline        bool
		noCache        bool
		refreshCatalog bool
	}

	// Option configures an Engine during construction.
	Option func(*Engine)
)

// WithTTL sets the template cache TTL. Non-positive values keep the default.
func WithTTL(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.ttl = d
		}
	}
}

// WithCatalogTTL sets the catalog cache TTL. Non-positive values keep the default.
func WithCatalogTTL(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.catalogTTL = d
		}
	}
}

// WithWorkers bounds concurrent downloads. Values below 1 keep the default.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.workers = n
		}
	}
}

// WithAliases sets the alias table used for resolution.
func WithAliases(aliases map[string]string) Option {
	return func(e *Engine) {
		e.aliases = aliases
	}
}

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithOffline disables all network access. Cached records of any age are
// served; anything not cached fails.
func WithOffline(offline bool) Option {
	return func(e *Engine) {
		e.offline = offline
	}
}

// WithNoCache skips the fresh-cache shortcut so every template is
// downloaded. Cached copies are still used as a fallback and refreshed on
// success.
func WithNoCache(noCache bool) Option {
	return func(e *Engine) {
		e.noCache = noCache
	}
}

// WithRefreshCatalog forces a network attempt for the catalog.
func WithRefreshCatalog(refresh bool) Option {
	return func(e *Engine) {
		e.refreshCatalog = refresh
	}
}

// NewEngine creates an Engine over the given source and store. The default
// alias table is names.DefaultAliases().
func NewEngine(source Source, store Store, opts ...Option) *Engine {
	e := &Engine{
		source:     source,
		store:      store,
		aliases:    names.DefaultAliases(),
		logger:     log.New(io.Discard),
		ttl:        DefaultTTL,
		catalogTTL: DefaultTTL,
		workers:    DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog to resolve against: the cached one while
// fresh, otherwise a freshly downloaded one, falling back to a stale cached
// copy when the download fails.
func (e *Engine) Catalog(ctx context.Context) (CatalogInfo, error) {
	rec, cached := e.store.GetCatalog()

	switch {
	case cached && e.offline:
		return CatalogInfo{Catalog: rec.Catalog, Origin: OriginCache, Stale: e.store.IsStale(rec.FetchedAt, e.catalogTTL)}, nil
	case e.offline:
		return CatalogInfo{}, &CatalogUnavailableError{Err: ErrOffline}
	case cached && !e.refreshCatalog && !e.store.IsStale(rec.FetchedAt, e.catalogTTL):
		return CatalogInfo{Catalog: rec.Catalog, Origin: OriginCache}, nil
	}

	start := time.Now()
	cat, err := e.source.FetchCatalog(ctx)
	e.metrics.ObserveRequest(metrics.KindCatalog, time.Since(start), err)
	if err == nil {
		if putErr := e.store.PutCatalog(cat, e.source.Source()); putErr != nil {
			e.logger.Warn("could not cache template list", "err", putErr)
		}
		return CatalogInfo{Catalog: cat, Origin: OriginNetwork}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return CatalogInfo{}, fmt.Errorf("loading template list: %w", ctxErr)
	}
	if !cached {
		return CatalogInfo{}, &CatalogUnavailableError{Err: err}
	}

	e.logger.Warn("could not refresh template list, using cached copy; it may be outdated",
		"fetched_at", rec.FetchedAt.Format(time.RFC3339), "err", err)
	e.metrics.ObserveFallback(metrics.KindCatalog)
	return CatalogInfo{Catalog: rec.Catalog, Origin: OriginCache, Stale: true}, nil
}

// FetchAll resolves and retrieves every raw input and returns one Result per
// input in input order. Inputs that resolve to the same canonical name share
// a single retrieval. The error is non-nil only when the catalog is unusable
// or ctx is canceled; in both cases no results are returned.
func (e *Engine) FetchAll(ctx context.Context, rawInputs []string) ([]Result, error) {
	info, err := e.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	resolver := names.NewResolver(info.Catalog, e.aliases)

	requests := make([]Request, len(rawInputs))
	slots := make([]int, len(rawInputs))
	var unique []catalog.Entry
	seen := make(map[string]int)

	for i, raw := range rawInputs {
		canonical, ok := resolver.Resolve(raw)
		requests[i] = Request{RawInput: raw, Canonical: canonical, Resolved: ok}
		if !ok {
			slots[i] = -1
			continue
		}
		j, dup := seen[canonical]
		if !dup {
			entry, _ := info.Catalog.Lookup(canonical)
			j = len(unique)
			seen[canonical] = j
			unique = append(unique, entry)
		}
		slots[i] = j
	}

	fetched := make([]Result, len(unique))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for j, entry := range unique {
		g.Go(func() error {
			fetched[j] = e.fetchOne(ctx, entry)
			return nil
		})
	}
	_ = g.Wait() // workers report failures in their Result

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching templates: %w", err)
	}

	results := make([]Result, len(rawInputs))
	for i, req := range requests {
		if slots[i] < 0 {
			results[i] = Result{Request: req, Err: &UnresolvedError{Input: req.RawInput}}
		} else {
			results[i] = fetched[slots[i]]
			results[i].Request = req
		}
		e.metrics.ObserveResult(string(results[i].Origin), results[i].Err)
	}
	return results, nil
}

// fetchOne retrieves a single catalog entry following the cache policy.
func (e *Engine) fetchOne(ctx context.Context, entry catalog.Entry) Result {
	if err := ctx.Err(); err != nil {
		return Result{Name: entry.Name, Err: err}
	}

	rec, cached := e.store.Get(entry.Name)
	if cached {
		stale := e.store.IsStale(rec.FetchedAt, e.ttl)
		if e.offline || (!stale && !e.noCache) {
			return Result{Name: entry.Name, Content: rec.Content, Origin: OriginCache, Stale: stale}
		}
	}
	if e.offline {
		return Result{Name: entry.Name, Err: &catalog.NetworkError{URL: entry.Locator, Err: ErrOffline}}
	}

	start := time.Now()
	body, err := e.source.FetchTemplate(ctx, entry.Locator)
	e.metrics.ObserveRequest(metrics.KindTemplate, time.Since(start), err)
	if err == nil {
		if putErr := e.store.Put(entry.Name, body, entry.Locator); putErr != nil {
			e.logger.Warn("could not cache template", "template", entry.Name, "err", putErr)
		}
		return Result{Name: entry.Name, Content: body, Origin: OriginNetwork}
	}

	// The remote saying "no such template" is definitive; anything else is
	// treated as the network being unavailable.
	if cached && !errors.Is(err, catalog.ErrNotFound) {
		e.logger.Warn("could not download template, using cached copy; it may be outdated",
			"template", entry.Name, "fetched_at", rec.FetchedAt.Format(time.RFC3339), "err", err)
		e.metrics.ObserveFallback(metrics.KindTemplate)
		return Result{Name: entry.Name, Content: rec.Content, Origin: OriginCache, Stale: true}
	}
	return Result{Name: entry.Name, Err: err}
}
