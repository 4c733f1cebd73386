package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pichpich13/user-dashboard/internal/domain"
	"github.com/pichpich13/user-dashboard/internal/infrastructure/metrics"
	"github.com/pichpich13/user-dashboard/internal/infrastructure/openfoodfacts"
	"golang.org/x/sync/errgroup"
)

// LookupObserver receives one call per finished barcode lookup
type LookupObserver interface {
	ObserveLookup(outcome string, elapsed time.Duration)
}

// FetcherConfig holds configuration for the score fetcher
type FetcherConfig struct {
	// Concurrency bounds in-flight lookups; 1 (or less) looks barcodes up one after another
	Concurrency        int
	Observer           LookupObserver
	EnableDebugLogging bool
}

// ScoreFetcher turns barcodes into ProductScoreRecords, one lookup per barcode
type ScoreFetcher struct {
	client      domain.ProductClient
	concurrency int
	observer    LookupObserver
	debug       bool
}

// NewScoreFetcher creates a new score fetcher
func NewScoreFetcher(client domain.ProductClient, config FetcherConfig) *ScoreFetcher {
	concurrency := config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &ScoreFetcher{
		client:      client,
		concurrency: concurrency,
		observer:    config.Observer,
		debug:       config.EnableDebugLogging,
	}
}

// FetchScores returns exactly one record per barcode, in input order.
// A failed lookup degrades to a sentineled record and never stops the batch.
func (f *ScoreFetcher) FetchScores(ctx context.Context, barcodes []string) []domain.ProductScoreRecord {
	records := make([]domain.ProductScoreRecord, len(barcodes))

	if f.concurrency == 1 {
		for i, barcode := range barcodes {
			records[i] = f.fetchOne(ctx, barcode)
		}
		return records
	}

	// Each goroutine owns records[i]
	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, barcode := range barcodes {
		g.Go(func() error {
			records[i] = f.fetchOne(ctx, barcode)
			return nil
		})
	}
	_ = g.Wait()

	return records
}

// fetchOne classifies a single lookup by the client's error
func (f *ScoreFetcher) fetchOne(ctx context.Context, barcode string) domain.ProductScoreRecord {
	start := time.Now()
	product, err := f.client.GetProduct(ctx, barcode)

	var (
		record  domain.ProductScoreRecord
		outcome string
	)
	switch {
	case err == nil:
		record = openfoodfacts.MapToRecord(barcode, product)
		outcome = metrics.OutcomeFound
	case errors.Is(err, domain.ErrProductNotFound):
		record = domain.FailedRecord(barcode, domain.SentinelNotFound)
		outcome = metrics.OutcomeNotFound
	default:
		record = domain.FailedRecord(barcode, domain.SentinelRequestError)
		outcome = metrics.OutcomeRequestError
	}

	if f.debug {
		log.Printf("[Fetcher] barcode=%q outcome=%s elapsed=%s", barcode, outcome, time.Since(start))
	}
	if f.observer != nil {
		f.observer.ObserveLookup(outcome, time.Since(start))
	}

	return record
}
