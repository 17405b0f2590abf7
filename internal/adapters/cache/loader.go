package cache

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/okian/courtview/internal/adapters/datasource"
	"github.com/okian/courtview/internal/domain/table"
	"github.com/okian/courtview/pkg/logger"
	"github.com/okian/courtview/pkg/metrics"
)

// Loader returns the cached table for a query, executing it at most once per
// key while it stays cached. Concurrent misses on one key share a single
// execution. Failed executions are never stored.
type Loader struct {
	exec   datasource.Executor
	store  Store
	group  singleflight.Group
	logger logger.Logger

	hits       atomic.Int64
	misses     atomic.Int64
	shared     atomic.Int64
	executions atomic.Int64
	storeErrs  atomic.Int64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the logger.
func WithLoaderLogger(l logger.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// NewLoader creates a loader over exec. A nil store falls back to an
// unbounded, non-expiring MemoryStore.
func NewLoader(exec datasource.Executor, store Store, opts ...LoaderOption) *Loader {
	if store == nil {
		store = NewMemoryStore(0, 0)
	}
	l := &Loader{exec: exec, store: store}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Named("cache")
	}
	return l
}

// Load returns the table for q. A store failure degrades to a direct
// execution. On a data source failure it returns an empty table and the
// *datasource.Error.
func (l *Loader) Load(ctx context.Context, q datasource.Query) (table.Table, error) {
	if t, ok := l.lookup(ctx, q); ok {
		l.hits.Add(1)
		metrics.RecordCacheHit(q.Name)
		return t, nil
	}
	l.misses.Add(1)
	metrics.RecordCacheMiss(q.Name)

	// The flight outlives a cancelled first caller; the executor's own
	// timeout still bounds it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := l.group.Do(q.Text, func() (any, error) {
		// Another flight may have filled the key since our lookup.
		if t, ok := l.lookup(flightCtx, q); ok {
			return t, nil
		}
		l.executions.Add(1)
		t, err := l.exec.Execute(flightCtx, q)
		if err != nil {
			return table.Empty(), err
		}
		if err := l.store.Set(flightCtx, q.Text, t); err != nil {
			l.storeFailed(flightCtx, "set", q, err)
		}
		l.updateEntries(flightCtx)
		return t, nil
	})
	if shared {
		l.shared.Add(1)
		metrics.RecordCacheShared(q.Name)
	}
	t, _ := v.(table.Table)
	if err != nil {
		return table.Empty(), err
	}
	return t, nil
}

// Invalidate drops the cached result of q.
func (l *Loader) Invalidate(ctx context.Context, q datasource.Query) error {
	l.group.Forget(q.Text)
	if err := l.store.Delete(ctx, q.Text); err != nil {
		l.storeFailed(ctx, "delete", q, err)
		return err
	}
	metrics.RecordCacheInvalidation()
	l.updateEntries(ctx)
	l.logger.Info(ctx, "cache entry invalidated", logger.String("query", q.Name))
	return nil
}

// Purge drops every cached result.
func (l *Loader) Purge(ctx context.Context) error {
	if err := l.store.Purge(ctx); err != nil {
		l.storeFailed(ctx, "purge", datasource.Query{}, err)
		return err
	}
	metrics.RecordCacheInvalidation()
	l.updateEntries(ctx)
	l.logger.Info(ctx, "cache purged")
	return nil
}

// Refresh re-executes qs and replaces each cached result on success. A
// failed execution leaves the previous entry in place, so an outage keeps
// serving the last good table. The first error is returned after every
// query has been attempted.
func (l *Loader) Refresh(ctx context.Context, qs ...datasource.Query) error {
	var first error
	outcome := "ok"
	for _, q := range qs {
		err := l.refresh(ctx, q)
		if err == nil {
			continue
		}
		if first == nil {
			first = err
		}
		if errors.Is(err, ErrStore) {
			outcome = "store_error"
		} else {
			outcome = "error"
		}
	}
	metrics.RecordCacheRefresh(outcome)
	l.updateEntries(ctx)
	return first
}

func (l *Loader) refresh(ctx context.Context, q datasource.Query) error {
	l.executions.Add(1)
	t, err := l.exec.Execute(ctx, q)
	if err != nil {
		l.logger.Warn(ctx, "refresh failed; keeping cached result",
			logger.String("query", q.Name),
			logger.Error(err),
		)
		return err
	}
	if err := l.store.Set(ctx, q.Text, t); err != nil {
		l.storeFailed(ctx, "set", q, err)
		return err
	}
	return nil
}

// Stats is a point-in-time view of loader counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Shared      int64 `json:"shared"`
	Executions  int64 `json:"executions"`
	StoreErrors int64 `json:"storeErrors"`
	Entries     int   `json:"entries"`
}

// Stats reports counters. Entries is -1 when the store cannot be reached.
func (l *Loader) Stats(ctx context.Context) Stats {
	n, err := l.store.Len(ctx)
	if err != nil {
		n = -1
	}
	return Stats{
		Hits:        l.hits.Load(),
		Misses:      l.misses.Load(),
		Shared:      l.shared.Load(),
		Executions:  l.executions.Load(),
		StoreErrors: l.storeErrs.Load(),
		Entries:     n,
	}
}

// Close releases the store if it holds resources.
func (l *Loader) Close() error {
	if c, ok := l.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (l *Loader) lookup(ctx context.Context, q datasource.Query) (table.Table, bool) {
	t, ok, err := l.store.Get(ctx, q.Text)
	if err != nil {
		l.storeFailed(ctx, "get", q, err)
		return table.Table{}, false
	}
	return t, ok
}

func (l *Loader) storeFailed(ctx context.Context, op string, q datasource.Query, err error) {
	l.storeErrs.Add(1)
	metrics.RecordCacheStoreError(op)
	l.logger.Warn(ctx, "cache store failed",
		logger.String("op", op),
		logger.String("query", q.Name),
		logger.Error(err),
	)
}

func (l *Loader) updateEntries(ctx context.Context) {
	if n, err := l.store.Len(ctx); err == nil {
		metrics.UpdateCacheEntries(n)
	}
}
