package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by menu logs
const DateLayout = "2006-01-02"

// MenuEntry is a single parsed row of the mess-menu log
type MenuEntry struct {
	Date      time.Time `json:"date"`
	Dish      string    `json:"dish"`
	QuantityG float64   `json:"quantity_g"`
}

// ReferenceDish holds per-100g nutrition values for one dish
type ReferenceDish struct {
	Dish         string  `json:"dish"`
	CaloriesKcal float64 `json:"calories_kcal"`
	CarbsG       float64 `json:"carbs_g"`
	ProteinG     float64 `json:"protein_g"`
	FatG         float64 `json:"fat_g"`
}

// ReferenceTable is the immutable nutrition reference shared across analyses.
// Dish names are trimmed and lowercased on construction and each dish carries
// a precomputed normalized key used as the join key for matching.
type ReferenceTable struct {
	dishes []ReferenceDish
	keys   []string
	byKey  map[string]int
}

// NewReferenceTable copies dishes into a read-only table.
// normalize maps a dish name to its normalized bucket.
func NewReferenceTable(dishes []ReferenceDish, normalize func(string) string) *ReferenceTable {
	t := &ReferenceTable{
		dishes: make([]ReferenceDish, len(dishes)),
		keys:   make([]string, len(dishes)),
		byKey:  make(map[string]int, len(dishes)),
	}

	for i, d := range dishes {
		d.Dish = strings.ToLower(strings.TrimSpace(d.Dish))
		t.dishes[i] = d

		key := normalize(d.Dish)
		t.keys[i] = key
		// First dish wins when several collapse into the same bucket
		if _, exists := t.byKey[key]; !exists {
			t.byKey[key] = i
		}
	}

	return t
}

// Len returns the number of reference dishes
func (t *ReferenceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.dishes)
}

// Keys returns a copy of the normalized keys in table order
func (t *ReferenceTable) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Lookup returns the first reference dish whose normalized key equals key
func (t *ReferenceTable) Lookup(key string) (ReferenceDish, bool) {
	i, ok := t.byKey[key]
	if !ok {
		return ReferenceDish{}, false
	}
	return t.dishes[i], true
}

// Dishes returns a copy of the reference dishes in table order
func (t *ReferenceTable) Dishes() []ReferenceDish {
	out := make([]ReferenceDish, len(t.dishes))
	copy(out, t.dishes)
	return out
}

// DailyMacroTotals is the sum of scaled macros over all matched entries of a day
type DailyMacroTotals struct {
	Date         time.Time `json:"date"`
	CaloriesKcal float64   `json:"calories_kcal"`
	CarbsG       float64   `json:"carbs_g"`
	ProteinG     float64   `json:"protein_g"`
	FatG         float64   `json:"fat_g"`
}

// MacroTotal is carbs + protein + fat in grams
func (d DailyMacroTotals) MacroTotal() float64 {
	return d.CarbsG + d.ProteinG + d.FatG
}

// DailyRiskRecord is the per-day output of the deviation engine
type DailyRiskRecord struct {
	Date           time.Time `json:"date"`
	CarbsPct       float64   `json:"carbs_pct"`
	ProteinPct     float64   `json:"protein_pct"`
	FatPct         float64   `json:"fat_pct"`
	CarbsRoll      float64   `json:"carbs_roll"`
	ProteinRoll    float64   `json:"protein_roll"`
	FatRoll        float64   `json:"fat_roll"`
	DeviationScore float64   `json:"deviation_score"`
	RangePressure  float64   `json:"range_pressure"`
	RiskScore      int       `json:"risk_score"`
	RiskLevel      string    `json:"risk_level"`
	Flags          []string  `json:"flags"`
	Explanation    string    `json:"explanation"`
}
