// Package csvio reads menu logs and nutrition reference tables from CSV and
// prepares the clean reference table from the raw nutrition dataset.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/messlens/backend/internal/domain"
)

// columnIndex maps required column names to their position in the header.
// Header names are compared trimmed and case-insensitively; a UTF-8 BOM on the
// first column is ignored.
func columnIndex(header []string, required []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	index := make(map[string]int, len(required))
	for _, col := range required {
		pos, ok := positions[strings.ToLower(col)]
		if !ok {
			return nil, domain.NewMissingColumnError(col)
		}
		index[col] = pos
	}
	return index, nil
}

// newReader configures a csv.Reader that tolerates ragged rows; row width is
// checked against the header explicitly
func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

// readHeader reads the first record or reports an empty file
func readHeader(reader *csv.Reader, what string) ([]string, error) {
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s file is empty", domain.ErrMalformedInput, what)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s header: %v", domain.ErrMalformedInput, what, err)
	}
	return header, nil
}

// field returns the trimmed value of column col, or "" when the row is short
func field(record []string, index map[string]int, col string) string {
	pos := index[col]
	if pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

// parseNumber parses a decimal value, rejecting NaN and infinities
func parseNumber(row int, col, value string) (float64, error) {
	if value == "" {
		return 0, &domain.InputError{Row: row, Column: col, Reason: "value is missing"}
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &domain.InputError{Row: row, Column: col, Value: value, Reason: "value is not a number"}
	}
	return v, nil
}

// isBlank reports whether every field of a record is empty
func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
