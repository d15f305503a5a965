package csvio

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/messlens/backend/internal/domain"
)

// Reference table columns
const (
	ColumnRefDish     = "dish"
	ColumnRefCalories = "calories_kcal"
	ColumnRefCarbs    = "carbs_g"
	ColumnRefProtein  = "protein_g"
	ColumnRefFat      = "fat_g"
)

var referenceColumns = []string{ColumnRefDish, ColumnRefCalories, ColumnRefCarbs, ColumnRefProtein, ColumnRefFat}

// LoadReference reads a prepared nutrition reference table.
// Values are per 100g and must be non-negative numbers.
func LoadReference(r io.Reader) ([]domain.ReferenceDish, error) {
	reader := newReader(r)

	header, err := readHeader(reader, "reference")
	if err != nil {
		return nil, err
	}
	index, err := columnIndex(header, referenceColumns)
	if err != nil {
		return nil, err
	}

	var dishes []domain.ReferenceDish
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrMalformedInput, row, err)
		}
		if isBlank(record) {
			continue
		}

		dish := field(record, index, ColumnRefDish)
		if dish == "" {
			return nil, &domain.InputError{Row: row, Column: ColumnRefDish, Reason: "value is missing"}
		}

		ref := domain.ReferenceDish{Dish: dish}
		targets := []struct {
			col string
			dst *float64
		}{
			{ColumnRefCalories, &ref.CaloriesKcal},
			{ColumnRefCarbs, &ref.CarbsG},
			{ColumnRefProtein, &ref.ProteinG},
			{ColumnRefFat, &ref.FatG},
		}
		for _, tgt := range targets {
			v, err := parseNumber(row, tgt.col, field(record, index, tgt.col))
			if err != nil {
				return nil, err
			}
			if v < 0 {
				return nil, &domain.InputError{Row: row, Column: tgt.col, Value: field(record, index, tgt.col), Reason: "value must not be negative"}
			}
			*tgt.dst = v
		}

		dishes = append(dishes, ref)
	}

	return dishes, nil
}

// LoadReferenceFile reads a prepared nutrition reference table from disk
func LoadReferenceFile(path string) ([]domain.ReferenceDish, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReferenceUnavailable, err)
	}
	defer f.Close()

	dishes, err := LoadReference(f)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", path, err)
	}
	if len(dishes) == 0 {
		return nil, fmt.Errorf("%w: %s has no dishes", domain.ErrReferenceUnavailable, path)
	}

	log.Printf("[REFERENCE] Loaded %d dishes from %s", len(dishes), path)
	return dishes, nil
}
