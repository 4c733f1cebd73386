package domain

import "errors"

var (
	// ErrProductNotFound is returned when Open Food Facts reports the barcode as unknown
	ErrProductNotFound = errors.New("product not found in Open Food Facts database")

	// ErrRequestFailed is returned when a product lookup fails at the transport or HTTP level
	ErrRequestFailed = errors.New("Open Food Facts request failed")

	// ErrInvalidInput is returned when the barcode input cannot be interpreted
	ErrInvalidInput = errors.New("invalid barcode input")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrNoData is returned when a chart is requested for an empty summary
	ErrNoData = errors.New("no data to render")
)
