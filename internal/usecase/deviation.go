package usecase

import (
	"math"

	"github.com/messlens/backend/internal/domain"
)

// epsilon replaces zero denominators
const epsilon = 1e-6

// ReferenceBand is an inclusive acceptable macro share range in percent
type ReferenceBand struct {
	Min float64
	Max float64
}

// Reference bands as shares of total macro grams
var (
	CarbsBand   = ReferenceBand{Min: 45, Max: 65}
	ProteinBand = ReferenceBand{Min: 10, Max: 35}
	FatBand     = ReferenceBand{Min: 20, Max: 35}
)

// MacroShares returns carbs, protein and fat as percentages of the day's
// macro grams. A zero total is replaced by epsilon so the shares are all zero.
func MacroShares(day domain.DailyMacroTotals) (carbs, protein, fat float64) {
	total := day.MacroTotal()
	if total == 0 {
		total = epsilon
	}
	return day.CarbsG / total * 100, day.ProteinG / total * 100, day.FatG / total * 100
}

// RollingMean is a trailing simple moving average over window values that
// degrades to the available history at the start of the series.
func RollingMean(series []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	out := make([]float64, len(series))
	for i := range series {
		start := max(0, i-window+1)
		out[i] = Mean(series[start : i+1])
	}
	return out
}

// Mean is the arithmetic mean; zero for an empty series
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// RangePressure sums how far the smoothed shares of a day violate the
// reference band: carbs above max, protein below min, fat above max.
func RangePressure(rec domain.DailyRiskRecord) float64 {
	var p float64
	p += math.Max(0, rec.CarbsRoll-CarbsBand.Max)
	p += math.Max(0, ProteinBand.Min-rec.ProteinRoll)
	p += math.Max(0, rec.FatRoll-FatBand.Max)
	return p
}

// DeviationScore is the L1 distance of the smoothed shares from the baseline
func DeviationScore(rec domain.DailyRiskRecord, baseline MacroBaseline) float64 {
	return math.Abs(rec.CarbsRoll-baseline.Carbs) +
		math.Abs(rec.ProteinRoll-baseline.Protein) +
		math.Abs(rec.FatRoll-baseline.Fat)
}

// MacroBaseline holds the mean unsmoothed shares over a run
type MacroBaseline struct {
	Carbs   float64
	Protein float64
	Fat     float64
}

// ComputeDeviation turns date-ordered daily totals into per-day records with
// shares, rolling shares, deviation from the run baseline and range pressure.
func ComputeDeviation(totals []domain.DailyMacroTotals, windowSize int) []domain.DailyRiskRecord {
	n := len(totals)
	carbs := make([]float64, n)
	protein := make([]float64, n)
	fat := make([]float64, n)

	for i, day := range totals {
		carbs[i], protein[i], fat[i] = MacroShares(day)
	}

	carbsRoll := RollingMean(carbs, windowSize)
	proteinRoll := RollingMean(protein, windowSize)
	fatRoll := RollingMean(fat, windowSize)

	baseline := MacroBaseline{
		Carbs:   Mean(carbs),
		Protein: Mean(protein),
		Fat:     Mean(fat),
	}

	records := make([]domain.DailyRiskRecord, n)
	for i, day := range totals {
		rec := domain.DailyRiskRecord{
			Date:        day.Date,
			CarbsPct:    carbs[i],
			ProteinPct:  protein[i],
			FatPct:      fat[i],
			CarbsRoll:   carbsRoll[i],
			ProteinRoll: proteinRoll[i],
			FatRoll:     fatRoll[i],
		}
		rec.DeviationScore = DeviationScore(rec, baseline)
		rec.RangePressure = RangePressure(rec)
		records[i] = rec
	}

	return records
}
