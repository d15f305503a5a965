package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/messlens/backend/internal/domain"
)

// logisticSteepness controls how quickly the score saturates around raw risk 1
const logisticSteepness = 1.5

// Score thresholds
const (
	moderateRiskThreshold = 30
	highRiskThreshold     = 60
)

// Explanation sentences
const (
	explainWithinRange = "All macro-nutrient shares remain within reference ranges."
	explainDeviation   = "Menu composition deviates noticeably from its usual macro balance."
	explainNoAbnormal  = "No abnormal nutritional patterns detected."
)

// RunStats are the run-wide means the score of each day is measured against
type RunStats struct {
	MeanDeviation float64
	MeanPressure  float64
}

// NewRunStats computes the means of deviation and range pressure over all days
func NewRunStats(records []domain.DailyRiskRecord) RunStats {
	devs := make([]float64, len(records))
	pressures := make([]float64, len(records))
	for i, rec := range records {
		devs[i] = rec.DeviationScore
		pressures[i] = rec.RangePressure
	}
	return RunStats{
		MeanDeviation: Mean(devs),
		MeanPressure:  Mean(pressures),
	}
}

// RawRisk combines the two signals of a day. Range pressure amplifies the
// relative deviation instead of being added to it.
func RawRisk(rec domain.DailyRiskRecord, stats RunStats) float64 {
	avgDev := stats.MeanDeviation + epsilon
	avgPressure := stats.MeanPressure + epsilon
	return (rec.DeviationScore / avgDev) * (1 + rec.RangePressure/avgPressure)
}

// NormalizeRisk squashes a raw risk onto 0-100 with a logistic centred on 1,
// truncating toward zero.
func NormalizeRisk(raw float64) int {
	score := 100 / (1 + math.Exp(-logisticSteepness*(raw-1)))
	return int(score)
}

// RiskLevel classifies an integer risk score
func RiskLevel(score int) string {
	switch {
	case score < moderateRiskThreshold:
		return domain.RiskLevelLow
	case score < highRiskThreshold:
		return domain.RiskLevelModerate
	default:
		return domain.RiskLevelHigh
	}
}

// DayFlags lists the reference band violations of a day's smoothed shares
func DayFlags(rec domain.DailyRiskRecord) []string {
	var flags []string
	if rec.CarbsRoll > CarbsBand.Max {
		flags = append(flags, domain.FlagCarbHeavy)
	}
	if rec.FatRoll > FatBand.Max {
		flags = append(flags, domain.FlagFatHeavy)
	}
	if rec.ProteinRoll < ProteinBand.Min {
		flags = append(flags, domain.FlagProteinLow)
	}
	if len(flags) == 0 {
		return []string{domain.FlagWithinReference}
	}
	return flags
}

// Explain builds the human-readable explanation of a scored day
func Explain(rec domain.DailyRiskRecord, stats RunStats) string {
	var sentences []string

	deviates := rec.DeviationScore > stats.MeanDeviation

	// A balanced day that also tracks its usual mix gets the plain fallback instead
	if rec.RangePressure == 0 && deviates {
		sentences = append(sentences, explainWithinRange)
	}
	if rec.CarbsRoll > CarbsBand.Max {
		sentences = append(sentences, fmt.Sprintf(
			"Carbohydrate share (%.1f%%) exceeds the recommended maximum of %.0f%%.", rec.CarbsRoll, CarbsBand.Max))
	}
	if rec.ProteinRoll < ProteinBand.Min {
		sentences = append(sentences, fmt.Sprintf(
			"Protein share (%.1f%%) is below the recommended minimum of %.0f%%.", rec.ProteinRoll, ProteinBand.Min))
	}
	if rec.FatRoll > FatBand.Max {
		sentences = append(sentences, fmt.Sprintf(
			"Fat share (%.1f%%) exceeds the recommended maximum of %.0f%%.", rec.FatRoll, FatBand.Max))
	}
	if deviates {
		sentences = append(sentences, explainDeviation)
	}

	if len(sentences) == 0 {
		return explainNoAbnormal
	}
	return strings.Join(sentences, " ")
}

// ScoreSeries fills score, level, flags and explanation on every record.
// Each record is scored against the means of the whole series.
func ScoreSeries(records []domain.DailyRiskRecord) []domain.DailyRiskRecord {
	stats := NewRunStats(records)

	out := make([]domain.DailyRiskRecord, len(records))
	for i, rec := range records {
		rec.RiskScore = NormalizeRisk(RawRisk(rec, stats))
		rec.RiskLevel = RiskLevel(rec.RiskScore)
		rec.Flags = DayFlags(rec)
		rec.Explanation = Explain(rec, stats)
		out[i] = rec
	}
	return out
}
