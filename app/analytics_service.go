package app

import (
	"context"
	"errors"

	"safetyhub/domain/analytics"
	"safetyhub/domain/table"
	"safetyhub/internal"
	"safetyhub/internal/safety"
	"safetyhub/ports"

	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds concurrent collection reads.
const DefaultFetchConcurrency = 4

// AnalyticsService loads the safety collections, runs the analytics engine
// and keeps the latest report in the cache.
type AnalyticsService struct {
	store       ports.DocumentStore
	cache       ports.AnalyticsCache
	engine      *safety.Engine
	logger      *internal.Logger
	concurrency int
}

// NewAnalyticsService creates an analytics service. A nil engine uses safety.NewEngine.
func NewAnalyticsService(store ports.DocumentStore, cache ports.AnalyticsCache, engine *safety.Engine) *AnalyticsService {
	if engine == nil {
		engine = safety.NewEngine()
	}
	return &AnalyticsService{
		store:       store,
		cache:       cache,
		engine:      engine,
		logger:      internal.DefaultLogger.With("analytics"),
		concurrency: DefaultFetchConcurrency,
	}
}

// LoadDataset reads every core and extended collection. A collection that
// cannot be read is analyzed as empty.
func (s *AnalyticsService) LoadDataset(ctx context.Context) (*safety.Dataset, error) {
	names := analytics.AllCollections()
	tables := make([]*table.Table, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			t, err := s.store.Stream(gctx, name)
			if err != nil {
				s.logger.Warn("Error fetching data from %s: %v", name, err)
				t = table.New()
			}
			s.logger.Debug("Fetched %d records from %s", t.NumRows(), name)
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds := safety.NewDataset()
	for i, name := range names {
		ds.Put(name, tables[i])
	}
	return ds, nil
}

// Run performs a full analytics run and caches the report. A cache write
// failure is logged and the report is still returned.
func (s *AnalyticsService) Run(ctx context.Context) (*analytics.Report, error) {
	ds, err := s.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	report := s.engine.RunAll(ds)
	if s.cache != nil {
		if err := s.cache.Store(ctx, report); err != nil {
			s.logger.Error("Error saving analytics results: %v", err)
		}
	}
	return report, nil
}

// Dashboard returns the cached report, running the analytics when nothing is cached.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*analytics.Report, error) {
	if s.cache == nil {
		return s.Run(ctx)
	}
	report, err := s.cache.Load(ctx)
	if errors.Is(err, ports.ErrCacheMiss) {
		s.logger.Info("No cached analytics, running now")
		return s.Run(ctx)
	}
	if err != nil {
		s.logger.Error("Error loading analytics results: %v", err)
		return nil, err
	}
	return report, nil
}
