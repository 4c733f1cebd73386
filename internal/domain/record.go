package domain

// Sentinel records why a field of a ProductScoreRecord carries no value
type Sentinel int

const (
	// SentinelNone marks a populated field
	SentinelNone Sentinel = iota
	// SentinelNotAvailable marks a field absent from a product that was found
	SentinelNotAvailable
	// SentinelNotFound marks every field of a barcode the service does not know
	SentinelNotFound
	// SentinelRequestError marks every field of a lookup that failed in transport
	SentinelRequestError
)

// Sentinel display labels, as they appear in grade counts and category keys
const (
	LabelNotAvailable = "not available"
	LabelNotFound     = "product not found"
	LabelRequestError = "request error"
)

// String returns the display label of the sentinel
func (s Sentinel) String() string {
	switch s {
	case SentinelNotAvailable:
		return LabelNotAvailable
	case SentinelNotFound:
		return LabelNotFound
	case SentinelRequestError:
		return LabelRequestError
	default:
		return ""
	}
}

// MarshalText lets sentinels appear by label in JSON output
func (s Sentinel) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Field holds either a value or a sentinel, never both
type Field[T any] struct {
	Value    T        `json:"value"`
	Sentinel Sentinel `json:"sentinel,omitempty"`
}

// Valid reports whether the field carries a real value
func (f Field[T]) Valid() bool {
	return f.Sentinel == SentinelNone
}

// ValueOf returns a populated field
func ValueOf[T any](v T) Field[T] {
	return Field[T]{Value: v}
}

// Missing returns a field carrying only the given sentinel
func Missing[T any](s Sentinel) Field[T] {
	return Field[T]{Sentinel: s}
}

// ProductScoreRecord is the normalized Ecoscore lookup result for one barcode
type ProductScoreRecord struct {
	Barcode  string         `json:"barcode"`
	Score    Field[float64] `json:"score"`
	Grade    Field[string]  `json:"grade"`
	Category Field[string]  `json:"category"`
}

// FailedRecord builds a record whose three fields share one sentinel.
// Used for whole-lookup failures (not found, request error).
func FailedRecord(barcode string, s Sentinel) ProductScoreRecord {
	return ProductScoreRecord{
		Barcode:  barcode,
		Score:    Missing[float64](s),
		Grade:    Missing[string](s),
		Category: Missing[string](s),
	}
}

// Label returns the field's string value or, when missing, its sentinel label
func (f Field[T]) Label() string {
	if !f.Valid() {
		return f.Sentinel.String()
	}
	if s, ok := any(f.Value).(string); ok {
		return s
	}
	return ""
}
