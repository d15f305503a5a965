package usecase

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/messlens/backend/internal/domain"
)

// Analyzer runs the matching, aggregation and risk scoring pipeline against a
// shared read-only reference table. Analyze is safe for concurrent use.
type Analyzer struct {
	table              *domain.ReferenceTable
	matcher            DishMatcher
	enableDebugLogging bool
}

// NewAnalyzer creates an analyzer. A nil matcher selects the substring matcher.
func NewAnalyzer(table *domain.ReferenceTable, matcher DishMatcher, enableDebugLogging bool) *Analyzer {
	if matcher == nil {
		matcher = NewSubstringMatcher(enableDebugLogging)
	}
	return &Analyzer{
		table:              table,
		matcher:            matcher,
		enableDebugLogging: enableDebugLogging,
	}
}

// ReferenceSize returns the number of dishes in the reference table
func (a *Analyzer) ReferenceSize() int {
	return a.table.Len()
}

// Analyze scores the most recent day of the menu log.
// window is one of day, week or month; anything else uses a 7 day window.
// Entries that match no reference dish are dropped; if none match the
// report carries domain.EmptyResult.
func (a *Analyzer) Analyze(entries []domain.MenuEntry, window string) (*domain.AnalysisReport, error) {
	if a.table == nil {
		return nil, domain.ErrReferenceUnavailable
	}
	if err := ValidateEntries(entries); err != nil {
		return nil, err
	}

	windowSize := domain.WindowSize(window)
	report := &domain.AnalysisReport{
		Window:          window,
		WindowSize:      windowSize,
		Daily:           []domain.DailyRiskRecord{},
		UnmatchedDishes: []string{},
	}

	matched, unmatched := ResolveEntries(entries, a.table, a.matcher)
	if len(unmatched) > 0 {
		log.Printf("[AGGREGATE] Unmatched dishes (skipped): %s", strings.Join(unmatched, ", "))
		report.UnmatchedDishes = unmatched
	}

	if len(matched) == 0 {
		report.Result = domain.EmptyResult()
		return report, nil
	}

	totals := AggregateDaily(matched)
	records := ScoreSeries(ComputeDeviation(totals, windowSize))
	latest := records[len(records)-1]

	if a.enableDebugLogging {
		log.Printf("[ANALYZE] %d entries, %d matched, %d days, window=%d, latest=%s dev=%.2f pressure=%.2f score=%d",
			len(entries), len(matched), len(records), windowSize,
			latest.Date.Format(domain.DateLayout), latest.DeviationScore, latest.RangePressure, latest.RiskScore)
	}

	report.Daily = records
	report.Result = resultFromRecord(latest)
	return report, nil
}

// DishResolution shows how a single dish name resolves against the reference table
type DishResolution struct {
	Dish       string                `json:"dish"`
	Normalized string                `json:"normalized"`
	Matched    bool                  `json:"matched"`
	Reference  *domain.ReferenceDish `json:"reference,omitempty"`
}

// ResolveDish normalizes and matches one dish name
func (a *Analyzer) ResolveDish(dish string) DishResolution {
	res := DishResolution{
		Dish:       dish,
		Normalized: NormalizeDishName(dish),
	}
	if a.table == nil {
		return res
	}

	key, ok := a.matcher.Match(res.Normalized, a.table.Keys())
	if !ok {
		return res
	}
	if ref, found := a.table.Lookup(key); found {
		res.Matched = true
		res.Reference = &ref
	}
	return res
}

// ValidateEntries rejects structurally invalid menu entries before any aggregation
func ValidateEntries(entries []domain.MenuEntry) error {
	for i, e := range entries {
		row := i + 1
		if e.Date.IsZero() {
			return &domain.InputError{Row: row, Column: "date", Reason: "date is required"}
		}
		if strings.TrimSpace(e.Dish) == "" {
			return &domain.InputError{Row: row, Column: "dish", Reason: "dish name is empty"}
		}
		if math.IsNaN(e.QuantityG) || math.IsInf(e.QuantityG, 0) {
			return &domain.InputError{Row: row, Column: "quantity_g", Value: fmt.Sprint(e.QuantityG), Reason: "quantity must be a finite number"}
		}
		if e.QuantityG < 0 {
			return &domain.InputError{Row: row, Column: "quantity_g", Value: fmt.Sprint(e.QuantityG), Reason: "quantity must not be negative"}
		}
	}
	return nil
}

func resultFromRecord(rec domain.DailyRiskRecord) domain.AnalysisResult {
	flags := make([]string, len(rec.Flags))
	copy(flags, rec.Flags)

	return domain.AnalysisResult{
		RiskScore: rec.RiskScore,
		RiskLevel: rec.RiskLevel,
		Flags:     flags,
		MacroPct: map[string]float64{
			domain.MacroCarbs:   roundTo(rec.CarbsPct, 1),
			domain.MacroProtein: roundTo(rec.ProteinPct, 1),
			domain.MacroFat:     roundTo(rec.FatPct, 1),
		},
		DeviationScore: roundTo(rec.DeviationScore, 2),
		Explanation:    rec.Explanation,
	}
}

// roundTo rounds half to even, so 2.125 becomes 2.12
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}
