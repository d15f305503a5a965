package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/messlens/backend/internal/domain"
)

// MatchedEntry pairs a menu entry with the reference dish it resolved to
type MatchedEntry struct {
	Entry     domain.MenuEntry
	Reference domain.ReferenceDish
}

// ResolveEntries normalizes and matches each menu entry against the reference
// table. Entries that do not match are dropped; their raw names are returned
// once each, in first-seen order.
func ResolveEntries(entries []domain.MenuEntry, table *domain.ReferenceTable, matcher DishMatcher) ([]MatchedEntry, []string) {
	keys := table.Keys()
	matched := make([]MatchedEntry, 0, len(entries))

	var unmatched []string
	seenUnmatched := make(map[string]bool)

	// Identical normalized names always resolve the same way
	resolved := make(map[string]string)
	missed := make(map[string]bool)

	for _, entry := range entries {
		norm := NormalizeDishName(entry.Dish)

		key, hit := resolved[norm]
		if !hit && !missed[norm] {
			if k, ok := matcher.Match(norm, keys); ok {
				resolved[norm] = k
				key, hit = k, true
			} else {
				missed[norm] = true
			}
		}

		var ref domain.ReferenceDish
		if hit {
			ref, hit = table.Lookup(key)
		}
		if !hit {
			name := strings.ToLower(strings.TrimSpace(entry.Dish))
			if !seenUnmatched[name] {
				seenUnmatched[name] = true
				unmatched = append(unmatched, name)
			}
			continue
		}

		matched = append(matched, MatchedEntry{Entry: entry, Reference: ref})
	}

	return matched, unmatched
}

// ScaleMacros converts per-100g reference values to the consumed quantity
func ScaleMacros(ref domain.ReferenceDish, quantityG float64) domain.DailyMacroTotals {
	factor := quantityG / 100
	return domain.DailyMacroTotals{
		CaloriesKcal: ref.CaloriesKcal * factor,
		CarbsG:       ref.CarbsG * factor,
		ProteinG:     ref.ProteinG * factor,
		FatG:         ref.FatG * factor,
	}
}

// AggregateDaily sums scaled macros per calendar date and returns one total
// per date in ascending date order.
func AggregateDaily(entries []MatchedEntry) []domain.DailyMacroTotals {
	byDate := make(map[string]*domain.DailyMacroTotals)

	for _, m := range entries {
		key := m.Entry.Date.Format(domain.DateLayout)
		day, ok := byDate[key]
		if !ok {
			y, mo, d := m.Entry.Date.Date()
			day = &domain.DailyMacroTotals{Date: dateOnly(y, mo, d)}
			byDate[key] = day
		}

		scaled := ScaleMacros(m.Reference, m.Entry.QuantityG)
		day.CaloriesKcal += scaled.CaloriesKcal
		day.CarbsG += scaled.CarbsG
		day.ProteinG += scaled.ProteinG
		day.FatG += scaled.FatG
	}

	totals := make([]domain.DailyMacroTotals, 0, len(byDate))
	for _, day := range byDate {
		totals = append(totals, *day)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Date.Before(totals[j].Date)
	})

	return totals
}

// dateOnly strips the clock and location from a calendar date
func dateOnly(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
