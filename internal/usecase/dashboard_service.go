package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pichpich13/user-dashboard/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ReportObserver is notified each time a report is rebuilt from fresh lookups
type ReportObserver interface {
	ObserveReportBuild()
}

// DashboardServiceConfig holds configuration for the dashboard service
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	CacheKey string
	Observer ReportObserver
}

// DashboardService builds the dashboard report: load barcodes -> fetch -> aggregate -> cache
type DashboardService struct {
	source     domain.BarcodeSource
	fetcher    *ScoreFetcher
	aggregator *Aggregator
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	cacheKey   string
	observer   ReportObserver
	builds     singleflight.Group
}

// NewDashboardService creates a new dashboard service with dependencies
func NewDashboardService(
	source domain.BarcodeSource,
	fetcher *ScoreFetcher,
	aggregator *Aggregator,
	cache domain.CacheRepository,
	config DashboardServiceConfig,
) *DashboardService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}
	cacheKey := config.CacheKey
	if cacheKey == "" {
		cacheKey = "report:default"
	}

	return &DashboardService{
		source:     source,
		fetcher:    fetcher,
		aggregator: aggregator,
		cache:      cache,
		cacheTTL:   cacheTTL,
		cacheKey:   cacheKey,
		observer:   config.Observer,
	}
}

// Report returns the cached report, building it when absent or expired.
// Concurrent callers share one build.
func (s *DashboardService) Report(ctx context.Context) (*domain.Report, error) {
	if report, err := s.getFromCache(ctx); err == nil {
		return report, nil
	}

	// The build outlives any single caller's request
	buildCtx := context.WithoutCancel(ctx)
	value, err, _ := s.builds.Do(s.cacheKey, func() (interface{}, error) {
		// A build that finished between our miss and Do already cached its report
		if report, err := s.getFromCache(buildCtx); err == nil {
			return report, nil
		}
		return s.build(buildCtx)
	})
	if err != nil {
		return nil, err
	}

	return value.(*domain.Report), nil
}

// Refresh drops the cached report so the next Report call refetches
func (s *DashboardService) Refresh(ctx context.Context) error {
	return s.cache.Delete(ctx, s.cacheKey)
}

// BuildReport runs the whole pipeline over the given records without touching the cache
func (s *DashboardService) BuildReport(records []domain.ProductScoreRecord) *domain.Report {
	return &domain.Report{
		Records:      records,
		Distribution: s.aggregator.SummarizeDistribution(records),
		Categories:   s.aggregator.SummarizeByCategory(records),
	}
}

func (s *DashboardService) build(ctx context.Context) (*domain.Report, error) {
	barcodes, err := s.source.Barcodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load barcodes: %w", err)
	}

	start := time.Now()
	records := s.fetcher.FetchScores(ctx, barcodes)
	report := s.BuildReport(records)
	log.Printf("[Dashboard] Built report for %d barcodes in %s (%d categories)",
		len(barcodes), time.Since(start).Round(time.Millisecond), len(report.Categories.Rows))

	if s.observer != nil {
		s.observer.ObserveReportBuild()
	}

	// Log but don't fail if caching fails
	if err := s.cache.Set(ctx, s.cacheKey, report, s.cacheTTL); err != nil {
		log.Printf("[Dashboard] Failed to cache report: %v", err)
	}

	return report, nil
}

func (s *DashboardService) getFromCache(ctx context.Context) (*domain.Report, error) {
	value, err := s.cache.Get(ctx, s.cacheKey)
	if err != nil {
		return nil, err
	}

	report, ok := value.(*domain.Report)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return report, nil
}
