package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/messlens/backend/internal/domain"
)

// Columns of the raw Indian food nutrition dataset
const (
	RawColumnDish     = "Dish Name"
	RawColumnCalories = "Calories (kcal)"
	RawColumnCarbs    = "Carbohydrates (g)"
	RawColumnProtein  = "Protein (g)"
	RawColumnFat      = "Fats (g)"
)

var rawColumns = []string{RawColumnDish, RawColumnCalories, RawColumnCarbs, RawColumnProtein, RawColumnFat}

// PrepareStats counts what happened to the raw rows
type PrepareStats struct {
	Read       int
	Missing    int
	Duplicates int
	OutOfRange int
	Written    int
}

// PrepareReference turns the raw nutrition dataset into the clean reference
// table: it keeps and renames the five relevant columns, lowercases and trims
// dish names, drops rows with missing values, keeps the first row of each dish
// and keeps only rows with positive calories and non-negative macros.
func PrepareReference(r io.Reader, w io.Writer) (PrepareStats, error) {
	var stats PrepareStats
	reader := newReader(r)

	header, err := readHeader(reader, "raw nutrition")
	if err != nil {
		return stats, err
	}
	index, err := columnIndex(header, rawColumns)
	if err != nil {
		return stats, err
	}

	var kept []domain.ReferenceDish
	seen := make(map[string]bool)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("%w: row %d: %v", domain.ErrMalformedInput, stats.Read+1, err)
		}
		stats.Read++

		ref, ok := rawRecord(record, index)
		if !ok {
			stats.Missing++
			continue
		}
		if seen[ref.Dish] {
			stats.Duplicates++
			continue
		}
		seen[ref.Dish] = true

		if ref.CaloriesKcal <= 0 || ref.CarbsG < 0 || ref.ProteinG < 0 || ref.FatG < 0 {
			stats.OutOfRange++
			continue
		}
		kept = append(kept, ref)
	}

	if err := WriteReference(w, kept); err != nil {
		return stats, err
	}
	stats.Written = len(kept)
	return stats, nil
}

// rawRecord extracts a reference dish; ok is false if any value is missing
func rawRecord(record []string, index map[string]int) (domain.ReferenceDish, bool) {
	dish := strings.ToLower(field(record, index, RawColumnDish))
	if dish == "" {
		return domain.ReferenceDish{}, false
	}

	ref := domain.ReferenceDish{Dish: dish}
	for _, tgt := range []struct {
		col string
		dst *float64
	}{
		{RawColumnCalories, &ref.CaloriesKcal},
		{RawColumnCarbs, &ref.CarbsG},
		{RawColumnProtein, &ref.ProteinG},
		{RawColumnFat, &ref.FatG},
	} {
		v, err := parseNumber(0, tgt.col, field(record, index, tgt.col))
		if err != nil {
			return domain.ReferenceDish{}, false
		}
		*tgt.dst = v
	}
	return ref, true
}

// WriteReference writes dishes in the prepared reference format
func WriteReference(w io.Writer, dishes []domain.ReferenceDish) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(referenceColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, d := range dishes {
		record := []string{
			d.Dish,
			formatNumber(d.CaloriesKcal),
			formatNumber(d.CarbsG),
			formatNumber(d.ProteinG),
			formatNumber(d.FatG),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write dish %q: %w", d.Dish, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
