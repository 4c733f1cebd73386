// Package barcodes reads the dashboard's barcode list from a JSON document.
//
// The document is read as a table and the first column is used. Accepted layouts:
//
//	["3017620422003", 5449000000996]          array of scalars
//	[["3017620422003", "nutella"], [...]]     array of rows
//	[{"code": "3017620422003", ...}, {...}]   array of records (first key)
//	{"0": {"0": "3017620422003", "1": ...}}   column oriented (first column)
//
// Numeric barcodes keep their literal digits.
package barcodes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pichpich13/user-dashboard/internal/domain"
)

// FileSource reads barcodes from a JSON file on each call
type FileSource struct {
	Path string
}

// NewFileSource creates a barcode source backed by path
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Barcodes implements domain.BarcodeSource
func (s *FileSource) Barcodes(ctx context.Context) ([]string, error) {
	return LoadFile(s.Path)
}

// LoadFile reads and parses a barcode file
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read barcode file: %w", err)
	}

	barcodes, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return barcodes, nil
}

// Parse extracts the first column of a JSON table
func Parse(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}

	switch trimmed[0] {
	case '[':
		return parseRows(trimmed)
	case '{':
		return parseColumns(trimmed)
	default:
		return nil, fmt.Errorf("%w: document must be a JSON array or object", domain.ErrInvalidInput)
	}
}

func parseRows(data []byte) ([]string, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	barcodes := make([]string, 0, len(rows))
	for i, row := range rows {
		cell, err := firstCell(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		barcode, err := cellString(cell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		barcodes = append(barcodes, barcode)
	}
	return barcodes, nil
}

// parseColumns handles {"column": {"rowIndex": value}} and {"column": [values]}
func parseColumns(data []byte) ([]string, error) {
	columns, err := objectEntries(data)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return []string{}, nil
	}

	column := bytes.TrimSpace(columns[0].value)
	if len(column) > 0 && column[0] == '[' {
		var cells []json.RawMessage
		if err := json.Unmarshal(column, &cells); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return cellStrings(cells)
	}

	entries, err := objectEntries(column)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", columns[0].key, err)
	}
	sortByRowIndex(entries)

	cells := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		cells[i] = e.value
	}
	return cellStrings(cells)
}

func cellStrings(cells []json.RawMessage) ([]string, error) {
	barcodes := make([]string, 0, len(cells))
	for i, cell := range cells {
		barcode, err := cellString(cell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		barcodes = append(barcodes, barcode)
	}
	return barcodes, nil
}

func firstCell(row json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(row)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty row", domain.ErrInvalidInput)
	}

	switch trimmed[0] {
	case '[':
		var cells []json.RawMessage
		if err := json.Unmarshal(trimmed, &cells); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if len(cells) == 0 {
			return nil, fmt.Errorf("%w: empty row", domain.ErrInvalidInput)
		}
		return cells[0], nil
	case '{':
		entries, err := objectEntries(trimmed)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: empty record", domain.ErrInvalidInput)
		}
		return entries[0].value, nil
	default:
		return trimmed, nil
	}
}

type entry struct {
	key   string
	value json.RawMessage
}

// objectEntries decodes a JSON object keeping document key order
func objectEntries(data []byte) ([]entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", domain.ErrInvalidInput)
	}

	var entries []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		key, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		entries = append(entries, entry{key: key, value: value})
	}
	return entries, nil
}

// sortByRowIndex orders entries by integer key; any non-integer key keeps document order
func sortByRowIndex(entries []entry) {
	indexes := make(map[string]int, len(entries))
	for _, e := range entries {
		n, err := strconv.Atoi(e.key)
		if err != nil {
			return
		}
		indexes[e.key] = n
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return indexes[entries[i].key] < indexes[entries[j].key]
	})
}

func cellString(cell json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(cell))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: barcode must be a string or number, got %s", domain.ErrInvalidInput, bytes.TrimSpace(cell))
	}
}
