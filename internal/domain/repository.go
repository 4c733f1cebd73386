package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductClient defines the interface for looking up a product by barcode.
// Implementations return ErrRequestFailed or ErrProductNotFound (possibly wrapped)
// for whole-lookup failures.
type ProductClient interface {
	GetProduct(ctx context.Context, barcode string) (*OFFProduct, error)
}

// BarcodeSource supplies the barcodes the dashboard reports on
type BarcodeSource interface {
	Barcodes(ctx context.Context) ([]string, error)
}
