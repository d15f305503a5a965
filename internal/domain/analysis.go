package domain

import "time"

// Risk levels
const (
	RiskLevelLow      = "Low"
	RiskLevelModerate = "Moderate"
	RiskLevelHigh     = "High"
	RiskLevelUnknown  = "Unknown"
)

// Flags attached to a scored day
const (
	FlagCarbHeavy       = "Carb-heavy"
	FlagFatHeavy        = "Fat-heavy"
	FlagProteinLow      = "Protein-low"
	FlagWithinReference = "Within reference range"
	FlagNoMatchedDishes = "No matched dishes"
)

// Macro share keys used in AnalysisResult.MacroPct
const (
	MacroCarbs   = "carbs"
	MacroProtein = "protein"
	MacroFat     = "fat"
)

// NoMatchExplanation is the explanation of the empty sentinel result
const NoMatchExplanation = "No dishes could be matched with nutrition reference data."

// Rolling window selectors
const (
	WindowDay   = "day"
	WindowWeek  = "week"
	WindowMonth = "month"

	DefaultWindowSize = 7
)

var windowSizes = map[string]int{
	WindowDay:   1,
	WindowWeek:  7,
	WindowMonth: 30,
}

// WindowSize maps a window selector to a number of days.
// Unrecognized selectors fall back to DefaultWindowSize.
func WindowSize(window string) int {
	if size, ok := windowSizes[window]; ok {
		return size
	}
	return DefaultWindowSize
}

// IsKnownWindow reports whether window is one of the enumerated selectors
func IsKnownWindow(window string) bool {
	_, ok := windowSizes[window]
	return ok
}

// AnalysisResult is the single-day risk summary for the most recent date
type AnalysisResult struct {
	RiskScore      int                `json:"risk_score"`
	RiskLevel      string             `json:"risk_level"`
	Flags          []string           `json:"flags"`
	MacroPct       map[string]float64 `json:"macro_pct"`
	DeviationScore float64            `json:"deviation_score"`
	Explanation    string             `json:"explanation"`
}

// EmptyResult is the sentinel returned when no menu entry matched the reference table
func EmptyResult() AnalysisResult {
	return AnalysisResult{
		RiskScore:      0,
		RiskLevel:      RiskLevelUnknown,
		Flags:          []string{FlagNoMatchedDishes},
		MacroPct:       map[string]float64{},
		DeviationScore: 0,
		Explanation:    NoMatchExplanation,
	}
}

// AnalysisReport wraps the result with the per-day series it was derived from
type AnalysisReport struct {
	Result          AnalysisResult    `json:"result"`
	Daily           []DailyRiskRecord `json:"daily"`
	UnmatchedDishes []string          `json:"unmatched_dishes"`
	Window          string            `json:"window"`
	WindowSize      int               `json:"window_size"`
}

// AnalysisRun is a persisted analysis
type AnalysisRun struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Window     string         `json:"window"`
	WindowSize int            `json:"window_size"`
	EntryCount int            `json:"entry_count"`
	Unmatched  []string       `json:"unmatched_dishes"`
	Result     AnalysisResult `json:"result"`
}

// AnalysisOutcome is a report together with the run it was stored under
type AnalysisOutcome struct {
	RunID  string `json:"run_id"`
	Cached bool   `json:"cached"`
	AnalysisReport
}
