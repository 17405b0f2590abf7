// Package service loads the cached rankings and venues and serves the
// dashboard operations required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/okian/courtview/internal/adapters/cache"
	"github.com/okian/courtview/internal/adapters/datasource"
	"github.com/okian/courtview/internal/domain/rankings"
	"github.com/okian/courtview/internal/domain/table"
	"github.com/okian/courtview/internal/domain/types"
	"github.com/okian/courtview/internal/domain/venues"
	"github.com/okian/courtview/pkg/logger"
	"github.com/okian/courtview/pkg/metrics"
)

// refreshTimeout bounds one scheduled cache refresh.
const refreshTimeout = 30 * time.Second

// scheduleParser accepts five-field crontab lines, an optional leading
// seconds field, and descriptors such as "@every 1h".
var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Loader is the cached access to the data source.
type Loader interface {
	Load(ctx context.Context, q datasource.Query) (table.Table, error)
	Invalidate(ctx context.Context, q datasource.Query) error
	Purge(ctx context.Context) error
	Refresh(ctx context.Context, qs ...datasource.Query) error
	Stats(ctx context.Context) cache.Stats
}

// Pinger reports data source reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service implements the API dependencies for the rankings dashboard.
type Service struct {
	mu sync.RWMutex

	loader Loader
	pinger Pinger

	// Configuration
	years        []int
	defaultRange rankings.Range
	bins         int
	warmup       bool
	refreshSpec  string

	// State
	started bool
	cron    *cron.Cron
	decoded rankingsMemo

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithYears sets the closed set of selectable years.
func WithYears(years ...int) Option {
	return func(s *Service) {
		if len(years) > 0 {
			s.years = slices.Clone(years)
		}
	}
}

// WithDefaultRange sets the rank range used when a request names none.
func WithDefaultRange(low, high int) Option {
	return func(s *Service) {
		r := rankings.Range{Low: low, High: high}
		if r.Validate() == nil {
			s.defaultRange = r
		}
	}
}

// WithHistogramBins sets the distribution bin count.
func WithHistogramBins(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bins = n
		}
	}
}

// WithWarmup loads both result sets during Start.
func WithWarmup(enabled bool) Option {
	return func(s *Service) {
		s.warmup = enabled
	}
}

// WithRefreshSchedule reloads the cached queries on a cron spec with an
// optional seconds field. Empty disables it.
func WithRefreshSchedule(spec string) Option {
	return func(s *Service) {
		s.refreshSpec = spec
	}
}

// WithPinger sets the data source health probe. It is closed on Stop when
// it implements io.Closer.
func WithPinger(p Pinger) Option {
	return func(s *Service) {
		s.pinger = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over loader.
func New(loader Loader, opts ...Option) *Service {
	s := &Service{
		loader:       loader,
		years:        []int{2024},
		defaultRange: rankings.Range{Low: 1, High: 24},
		bins:         20,
		warmup:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start warms the cache and schedules refreshes. Warmup failures are logged,
// not returned: the dashboard renders warnings until the store recovers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.logger.Info(ctx, "starting dashboard service...")

	if s.refreshSpec != "" {
		c := cron.New(cron.WithParser(scheduleParser), cron.WithChain(cron.Recover(cronLogger{s.logger})))
		if _, err := c.AddFunc(s.refreshSpec, s.scheduledRefresh); err != nil {
			return fmt.Errorf("schedule cache refresh %q: %w", s.refreshSpec, err)
		}
		s.cron = c
	}

	if s.warmup {
		s.warm(ctx)
	}
	if s.cron != nil {
		s.cron.Start()
	}

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.Bool("warmup", s.warmup),
		logger.String("refresh", s.refreshSpec),
		logger.Int("bins", s.bins),
	)
	return nil
}

func (s *Service) warm(ctx context.Context) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, q := range datasource.Queries() {
		q := q
		g.Go(func() error {
			if _, err := s.loader.Load(gctx, q); err != nil {
				s.logger.Warn(gctx, "warmup failed", logger.String("query", q.Name), logger.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
	s.logger.Info(ctx, "cache warmed", logger.Duration("took", time.Since(start)))
}

func (s *Service) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := s.loader.Refresh(ctx, datasource.Queries()...); err != nil {
		s.logger.Warn(ctx, "scheduled cache refresh failed", logger.Error(err))
		return
	}
	s.logger.Info(ctx, "cache refreshed")
}

// Stop halts scheduled refreshes and releases the cache and data source.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping dashboard service...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
	if c, ok := s.loader.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.logger.Warn(ctx, "closing cache failed", logger.Error(err))
		}
	}
	if c, ok := s.pinger.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.logger.Warn(ctx, "closing data source failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "dashboard service stopped")
}

// DashboardQuery selects one dashboard state. Zero fields take defaults.
type DashboardQuery struct {
	Year  int
	Week  int
	Range *rankings.Range
	Name  string
}

// Dashboard renders every section for q.
func (s *Service) Dashboard(ctx context.Context, q DashboardQuery) (types.Dashboard, error) {
	rng, err := s.rangeOrDefault(q.Range)
	if err != nil {
		return types.Dashboard{}, err
	}
	year, week := q.Year, q.Week
	if year == 0 {
		year = s.years[0]
	}
	if week == 0 {
		week = 1
	}
	v, err := NewView(s.loadRankings(ctx), s.loadVenues(ctx), s.years, s.bins, rng)
	if err != nil {
		return types.Dashboard{}, err
	}
	if err := v.SetPeriod(year, week); err != nil {
		return types.Dashboard{}, err
	}
	v.SetSearch(q.Name)
	metrics.RecordDashboardBuild()
	return v.Snapshot(), nil
}

// Rankings returns the rankings narrowed to r.
func (s *Service) Rankings(ctx context.Context, r *rankings.Range) (types.Section[rankings.Table], error) {
	v, err := s.rankingsView(ctx, r)
	if err != nil {
		return types.Section[rankings.Table]{}, err
	}
	return v.RankingsSection(), nil
}

// Countries returns the per-country summary of the rankings inside r.
func (s *Service) Countries(ctx context.Context, r *rankings.Range) (types.Section[[]rankings.CountrySummary], error) {
	v, err := s.rankingsView(ctx, r)
	if err != nil {
		return types.Section[[]rankings.CountrySummary]{}, err
	}
	return v.CountriesSection(), nil
}

// Charts returns the visualizations of the rankings inside r.
func (s *Service) Charts(ctx context.Context, r *rankings.Range) (types.Charts, error) {
	v, err := s.rankingsView(ctx, r)
	if err != nil {
		return types.Charts{}, err
	}
	return v.ChartsSection(), nil
}

// Search finds competitors by name inside r. An empty name performs no search.
func (s *Service) Search(ctx context.Context, name string, r *rankings.Range) (types.SearchResult, error) {
	v, err := s.rankingsView(ctx, r)
	if err != nil {
		return types.SearchResult{}, err
	}
	v.SetSearch(name)
	res := v.SearchResult()
	switch {
	case !res.Performed:
		metrics.RecordSearch("skipped")
	case len(res.Rows) == 0:
		metrics.RecordSearch("not_found")
	default:
		metrics.RecordSearch("found")
	}
	return res, nil
}

// Venues returns every venue with its complex.
func (s *Service) Venues(ctx context.Context) types.Section[[]venues.Record] {
	return venuesSection(s.loadVenues(ctx))
}

// Filters reports the selectable values and their defaults.
func (s *Service) Filters() types.Filters {
	weeks := make([]int, 52)
	for i := range weeks {
		weeks[i] = i + 1
	}
	return types.Filters{
		Years:        slices.Clone(s.years),
		Weeks:        weeks,
		MinRank:      rankings.MinRank,
		MaxRank:      rankings.MaxRank,
		DefaultRange: s.defaultRange,
		Default:      types.Period{Year: s.years[0], Week: 1},
	}
}

// Invalidate drops the cached result of the named query, or every result
// when name is empty.
func (s *Service) Invalidate(ctx context.Context, name string) error {
	if name == "" {
		return s.loader.Purge(ctx)
	}
	q, ok := datasource.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}
	return s.loader.Invalidate(ctx, q)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"years":        s.years,
		"defaultRange": s.defaultRange,
		"bins":         s.bins,
		"refresh":      s.refreshSpec,
		"cache":        s.loader.Stats(ctx),
	}
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			stats["dataSource"] = err.Error()
		} else {
			stats["dataSource"] = "ok"
		}
	}
	return stats
}

// rangeOrDefault validates r, or returns the default range when r is nil.
func (s *Service) rangeOrDefault(r *rankings.Range) (rankings.Range, error) {
	rng := s.defaultRange
	if r != nil {
		rng = *r
	}
	if err := rng.Validate(); err != nil {
		return rankings.Range{}, err
	}
	return rng, nil
}

// rankingsView derives the state for r from the rankings alone. Endpoints
// that render no venues never load them.
func (s *Service) rankingsView(ctx context.Context, r *rankings.Range) (*View, error) {
	rng, err := s.rangeOrDefault(r)
	if err != nil {
		return nil, err
	}
	return NewView(s.loadRankings(ctx), Source[[]venues.Record]{}, s.years, s.bins, rng)
}

func (s *Service) loadRankings(ctx context.Context) Source[rankings.Table] {
	t, err := s.loader.Load(ctx, datasource.RankingsQuery)
	if err != nil {
		return Source[rankings.Table]{Data: rankings.Table{}, Err: err}
	}
	if recs, ok := s.decoded.get(t); ok {
		return Source[rankings.Table]{Data: recs}
	}
	recs, dropped, err := rankings.FromTable(t)
	if err != nil {
		s.log().Error(ctx, "decode rankings", logger.Error(err))
		return Source[rankings.Table]{Data: rankings.Table{}, Err: err}
	}
	if dropped > 0 {
		metrics.RecordRowsDropped(SectionRankings, dropped)
		s.log().Warn(ctx, "dropped ranking rows without a valid rank", logger.Int("dropped", dropped))
	}
	s.decoded.put(t, recs)
	return Source[rankings.Table]{Data: recs}
}

func (s *Service) loadVenues(ctx context.Context) Source[[]venues.Record] {
	t, err := s.loader.Load(ctx, datasource.VenuesQuery)
	if err != nil {
		return Source[[]venues.Record]{Data: []venues.Record{}, Err: err}
	}
	recs, err := venues.FromTable(t)
	if err != nil {
		s.log().Error(ctx, "decode venues", logger.Error(err))
		return Source[[]venues.Record]{Data: []venues.Record{}, Err: err}
	}
	return Source[[]venues.Record]{Data: recs}
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Named("service")
	}
	return l
}

// rankingsMemo keeps the records decoded from the last rankings table, so a
// cached result is decoded and its dropped rows reported once per fill.
type rankingsMemo struct {
	mu   sync.Mutex
	raw  table.Table
	recs rankings.Table
	set  bool
}

func (m *rankingsMemo) get(t table.Table) (rankings.Table, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set || !sameTable(m.raw, t) {
		return nil, false
	}
	return m.recs, true
}

func (m *rankingsMemo) put(t table.Table, recs rankings.Table) {
	m.mu.Lock()
	m.raw, m.recs, m.set = t, recs, true
	m.mu.Unlock()
}

// sameTable reports whether b is the table a was decoded from. The memory
// store hands out the same rows; the redis store decodes a fresh copy on
// every read, which is compared by value.
func sameTable(a, b table.Table) bool {
	if len(a.Rows) != len(b.Rows) {
		return false
	}
	if len(a.Rows) > 0 && &a.Rows[0] == &b.Rows[0] {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// cronLogger adapts the service logger to cron's logger.
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Debug(context.Background(), "cron: "+msg, logger.Any("details", kv))
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error(context.Background(), "cron: "+msg, logger.Error(err), logger.Any("details", kv))
}
