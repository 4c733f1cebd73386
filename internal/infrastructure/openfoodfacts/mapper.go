package openfoodfacts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pichpich13/user-dashboard/internal/domain"
)

var jsonNull = []byte("null")

// MapToRecord converts a found Open Food Facts product to a ProductScoreRecord.
// Missing, null or unusable fields become SentinelNotAvailable.
func MapToRecord(barcode string, product *domain.OFFProduct) domain.ProductScoreRecord {
	if product == nil {
		product = &domain.OFFProduct{}
	}

	return domain.ProductScoreRecord{
		Barcode:  barcode,
		Score:    extractScore(product.EcoscoreScore),
		Grade:    extractString(product.EcoscoreGrade),
		Category: extractString(product.Categories),
	}
}

// extractScore accepts a JSON number or a numeric string
func extractScore(raw json.RawMessage) domain.Field[float64] {
	if isAbsent(raw) {
		return domain.Missing[float64](domain.SentinelNotAvailable)
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return domain.ValueOf(n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return domain.ValueOf(v)
		}
	}

	return domain.Missing[float64](domain.SentinelNotAvailable)
}

// extractString accepts only JSON strings; empty strings are kept as values
func extractString(raw json.RawMessage) domain.Field[string] {
	if isAbsent(raw) {
		return domain.Missing[string](domain.SentinelNotAvailable)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Missing[string](domain.SentinelNotAvailable)
	}
	return domain.ValueOf(s)
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull)
}
