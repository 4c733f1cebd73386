package domain

import "encoding/json"

// OFFProductResponse represents the body of the Open Food Facts v0 product endpoint
type OFFProductResponse struct {
	Code          string      `json:"code"`
	Status        int         `json:"status"`
	StatusVerbose string      `json:"status_verbose,omitempty"`
	Product       *OFFProduct `json:"product,omitempty"`
}

// OFFProduct is the subset of an Open Food Facts product carrying Ecoscore data.
// Fields stay raw because the API mixes numbers, strings and nulls for them.
type OFFProduct struct {
	Code          string          `json:"code,omitempty"`
	ProductName   string          `json:"product_name,omitempty"`
	EcoscoreScore json.RawMessage `json:"ecoscore_score,omitempty"`
	EcoscoreGrade json.RawMessage `json:"ecoscore_grade,omitempty"`
	Categories    json.RawMessage `json:"categories,omitempty"`
}
