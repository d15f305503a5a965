package usecase

import (
	"math"
	"testing"

	"github.com/messlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRisk(t *testing.T) {
	assert.Equal(t, 50, NormalizeRisk(1))
	assert.Equal(t, 18, NormalizeRisk(0))
	assert.Equal(t, 81, NormalizeRisk(2))
	assert.Equal(t, 100, NormalizeRisk(1e6))

	for raw := 0.0; raw < 50; raw += 0.37 {
		s := NormalizeRisk(raw)
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, domain.RiskLevelLow},
		{29, domain.RiskLevelLow},
		{30, domain.RiskLevelModerate},
		{59, domain.RiskLevelModerate},
		{60, domain.RiskLevelHigh},
		{100, domain.RiskLevelHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.score), "score %d", tt.score)
	}
}

func TestRawRisk(t *testing.T) {
	t.Run("all balanced days use epsilon guard", func(t *testing.T) {
		rec := domain.DailyRiskRecord{}
		raw := RawRisk(rec, RunStats{})
		assert.Equal(t, 0.0, raw)
		assert.False(t, math.IsNaN(raw))
	})

	t.Run("range pressure amplifies deviation", func(t *testing.T) {
		stats := RunStats{MeanDeviation: 10, MeanPressure: 5}
		calm := RawRisk(domain.DailyRiskRecord{DeviationScore: 10}, stats)
		pressured := RawRisk(domain.DailyRiskRecord{DeviationScore: 10, RangePressure: 5}, stats)

		assert.InDelta(t, 1, calm, 1e-6)
		assert.InDelta(t, 2, pressured, 1e-6)
	})
}

func TestDayFlags(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.DailyRiskRecord
		want []string
	}{
		{
			name: "within range",
			rec:  domain.DailyRiskRecord{CarbsRoll: 55, ProteinRoll: 20, FatRoll: 25},
			want: []string{domain.FlagWithinReference},
		},
		{
			name: "fat heavy only",
			rec:  domain.DailyRiskRecord{CarbsRoll: 13.6, ProteinRoll: 40.9, FatRoll: 45.5},
			want: []string{domain.FlagFatHeavy},
		},
		{
			name: "carb heavy and protein low in fixed order",
			rec:  domain.DailyRiskRecord{CarbsRoll: 90, ProteinRoll: 9, FatRoll: 1},
			want: []string{domain.FlagCarbHeavy, domain.FlagProteinLow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayFlags(tt.rec))
		})
	}
}

func TestExplain(t *testing.T) {
	t.Run("within range and not deviating falls back to no abnormal patterns", func(t *testing.T) {
		rec := domain.DailyRiskRecord{CarbsRoll: 55, ProteinRoll: 20, FatRoll: 25}
		assert.Equal(t, explainNoAbnormal, Explain(rec, RunStats{}))
	})

	t.Run("within range below mean deviation omits the within range sentence", func(t *testing.T) {
		rec := domain.DailyRiskRecord{CarbsRoll: 55, ProteinRoll: 20, FatRoll: 25, DeviationScore: 2}
		assert.Equal(t, explainNoAbnormal, Explain(rec, RunStats{MeanDeviation: 4}))
	})

	t.Run("within range sentence only appears when the day deviates", func(t *testing.T) {
		rec := domain.DailyRiskRecord{CarbsRoll: 55, ProteinRoll: 20, FatRoll: 25, DeviationScore: 12}
		got := Explain(rec, RunStats{MeanDeviation: 4})
		assert.Equal(t, explainWithinRange+" "+explainDeviation, got)
	})

	t.Run("violations listed in order", func(t *testing.T) {
		rec := domain.DailyRiskRecord{CarbsRoll: 80, ProteinRoll: 5, FatRoll: 40, RangePressure: 25}
		got := Explain(rec, RunStats{MeanDeviation: 1})
		assert.Equal(t,
			"Carbohydrate share (80.0%) exceeds the recommended maximum of 65%. "+
				"Protein share (5.0%) is below the recommended minimum of 10%. "+
				"Fat share (40.0%) exceeds the recommended maximum of 35%.",
			got)
	})
}

func TestScoreSeries(t *testing.T) {
	// Two balanced dal days followed by a rice-only day
	totals := []domain.DailyMacroTotals{
		{Date: day(t, "2024-01-01"), CarbsG: 15, ProteinG: 7, FatG: 4},
		{Date: day(t, "2024-01-02"), CarbsG: 15, ProteinG: 7, FatG: 4},
		{Date: day(t, "2024-01-03"), CarbsG: 28, ProteinG: 3, FatG: 0},
	}

	records := ScoreSeries(ComputeDeviation(totals, 1))
	require.Len(t, records, 3)

	latest := records[2]
	assert.Equal(t, 99, latest.RiskScore)
	assert.Equal(t, domain.RiskLevelHigh, latest.RiskLevel)
	assert.Equal(t, []string{domain.FlagCarbHeavy, domain.FlagProteinLow}, latest.Flags)
	assert.Contains(t, latest.Explanation, explainDeviation)

	assert.Equal(t, []string{domain.FlagWithinReference}, records[0].Flags)
	assert.Equal(t, 40, records[0].RiskScore)
	assert.Equal(t, domain.RiskLevelModerate, records[0].RiskLevel)
}
