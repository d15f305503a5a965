package csvio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/messlens/backend/internal/domain"
)

// Menu log columns
const (
	ColumnDate     = "date"
	ColumnDish     = "dish"
	ColumnQuantity = "quantity_g"
)

var menuColumns = []string{ColumnDate, ColumnDish, ColumnQuantity}

// ParseMenu reads a menu log with columns date, dish and quantity_g.
// Extra columns are ignored and blank lines skipped. The first structural
// problem aborts parsing with an error wrapping domain.ErrMalformedInput.
func ParseMenu(r io.Reader) ([]domain.MenuEntry, error) {
	reader := newReader(r)

	header, err := readHeader(reader, "menu")
	if err != nil {
		return nil, err
	}
	index, err := columnIndex(header, menuColumns)
	if err != nil {
		return nil, err
	}

	var entries []domain.MenuEntry
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

		entry, err := parseMenuRecord(row, record, index)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseMenuRecord(row int, record []string, index map[string]int) (domain.MenuEntry, error) {
	rawDate := field(record, index, ColumnDate)
	if rawDate == "" {
		return domain.MenuEntry{}, &domain.InputError{Row: row, Column: ColumnDate, Reason: "value is missing"}
	}
	date, err := time.Parse(domain.DateLayout, rawDate)
	if err != nil {
		return domain.MenuEntry{}, &domain.InputError{Row: row, Column: ColumnDate, Value: rawDate, Reason: "expected YYYY-MM-DD"}
	}

	dish := field(record, index, ColumnDish)
	if dish == "" {
		return domain.MenuEntry{}, &domain.InputError{Row: row, Column: ColumnDish, Reason: "value is missing"}
	}

	quantity, err := parseNumber(row, ColumnQuantity, field(record, index, ColumnQuantity))
	if err != nil {
		return domain.MenuEntry{}, err
	}
	if quantity < 0 {
		return domain.MenuEntry{}, &domain.InputError{
			Row: row, Column: ColumnQuantity, Value: field(record, index, ColumnQuantity), Reason: "quantity must not be negative",
		}
	}

	return domain.MenuEntry{Date: date, Dish: dish, QuantityG: quantity}, nil
}
