package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pichpich13/user-dashboard/config"
	httpDelivery "github.com/pichpich13/user-dashboard/internal/delivery/http"
	"github.com/pichpich13/user-dashboard/internal/infrastructure/barcodes"
	"github.com/pichpich13/user-dashboard/internal/infrastructure/cache"
	"github.com/pichpich13/user-dashboard/internal/infrastructure/metrics"
	"github.com/pichpich13/user-dashboard/internal/infrastructure/openfoodfacts"
	"github.com/pichpich13/user-dashboard/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting User Dashboard v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// A missing or malformed barcode file is fatal, as it would be on every page load
	source := barcodes.NewFileSource(cfg.Input.Path)
	codes, err := barcodes.LoadFile(cfg.Input.Path)
	if err != nil {
		log.Fatalf("Failed to load barcodes: %v", err)
	}
	log.Printf("Input: %s (%d barcodes)", cfg.Input.Path, len(codes))

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	defer memoryCache.Close()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	offClient := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent)
	offClient.SetRequestTimeout(cfg.OpenFoodFacts.RequestTimeout)
	offClient.SetRateLimit(cfg.OpenFoodFacts.RequestsPerSecond, cfg.OpenFoodFacts.Burst)

	// Enable debug mode in development environment
	debug := cfg.Server.Environment == "development"
	if debug {
		offClient.SetDebug(true)
		log.Printf("Open Food Facts client debug mode enabled")
	}
	log.Printf("Open Food Facts API: %s (timeout=%s, rps=%.1f)",
		cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.RequestTimeout, cfg.OpenFoodFacts.RequestsPerSecond)

	serviceMetrics := metrics.New()

	policy, err := usecase.ParseMissingScorePolicy(cfg.Aggregation.MissingScore)
	if err != nil {
		log.Fatalf("Invalid aggregation config: %v", err)
	}

	// Initialize usecase layer
	fetcher := usecase.NewScoreFetcher(offClient, usecase.FetcherConfig{
		Concurrency:        cfg.Fetch.Concurrency,
		Observer:           serviceMetrics,
		EnableDebugLogging: debug,
	})
	aggregator := usecase.NewAggregator(usecase.AggregatorConfig{
		MissingScore:         policy,
		ExcludeFailedLookups: cfg.Aggregation.ExcludeFailedLookups,
	})
	dashboard := usecase.NewDashboardService(source, fetcher, aggregator, memoryCache,
		usecase.DashboardServiceConfig{
			CacheTTL: cfg.Cache.TTL,
			CacheKey: "report:" + cfg.Input.Path,
			Observer: serviceMetrics,
		},
	)

	log.Printf("Fetch: concurrency=%d, missing_score=%s, exclude_failed_lookups=%v",
		cfg.Fetch.Concurrency, cfg.Aggregation.MissingScore, cfg.Aggregation.ExcludeFailedLookups)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(dashboard)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, serviceMetrics.Handler())

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
