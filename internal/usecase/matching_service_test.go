package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDishMatcher(t *testing.T) {
	t.Run("defaults to substring strategy", func(t *testing.T) {
		m, err := NewDishMatcher(MatchConfig{})
		require.NoError(t, err)
		assert.IsType(t, &SubstringMatcher{}, m)
	})

	t.Run("builds token matcher", func(t *testing.T) {
		m, err := NewDishMatcher(MatchConfig{Strategy: StrategyToken})
		require.NoError(t, err)
		assert.IsType(t, &TokenMatcher{}, m)
	})

	t.Run("rejects unknown strategy", func(t *testing.T) {
		_, err := NewDishMatcher(MatchConfig{Strategy: "cosine"})
		assert.Error(t, err)
	})
}

func TestSubstringMatcher_Match(t *testing.T) {
	m := NewSubstringMatcher(false)

	tests := []struct {
		name       string
		dish       string
		candidates []string
		want       string
		wantOK     bool
	}{
		{
			name:       "exact match preferred over earlier containment",
			dish:       "aloo",
			candidates: []string{"aloo gobi", "aloo"},
			want:       "aloo",
			wantOK:     true,
		},
		{
			name:       "menu dish contained in reference",
			dish:       "sambar",
			candidates: []string{"idli", "sambar vada"},
			want:       "sambar vada",
			wantOK:     true,
		},
		{
			name:       "reference contained in menu dish",
			dish:       "mixed veg curry",
			candidates: []string{"poha", "mixed veg"},
			want:       "mixed veg",
			wantOK:     true,
		},
		{
			name:       "first qualifying candidate wins",
			dish:       "chole",
			candidates: []string{"chole bhature", "chole masala"},
			want:       "chole bhature",
			wantOK:     true,
		},
		{
			name:       "duplicate keys resolve to the same value",
			dish:       "paneer",
			candidates: []string{"paneer", "paneer"},
			want:       "paneer",
			wantOK:     true,
		},
		{
			name:       "no candidate qualifies",
			dish:       "pizza",
			candidates: []string{"idli", "poha"},
			wantOK:     false,
		},
		{
			name:       "empty candidate list",
			dish:       "poha",
			candidates: nil,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Match(tt.dish, tt.candidates)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubstringMatcher_Deterministic(t *testing.T) {
	m := NewSubstringMatcher(false)
	candidates := []string{"veg biryani", "biryani", "chicken biryani"}

	first, ok := m.Match("egg biryani", candidates)
	require.True(t, ok)
	for i := 0; i < 20; i++ {
		got, _ := m.Match("egg biryani", candidates)
		assert.Equal(t, first, got)
	}
	assert.Equal(t, "biryani", first)
}

func TestTokenMatcher_Match(t *testing.T) {
	m := NewTokenMatcher(MatchConfig{MinConfidenceThreshold: 40, EnableFuzzyMatching: true})

	t.Run("exact match", func(t *testing.T) {
		got, ok := m.Match("poha", []string{"upma", "poha"})
		assert.True(t, ok)
		assert.Equal(t, "poha", got)
	})

	t.Run("picks highest token overlap rather than first containment", func(t *testing.T) {
		got, ok := m.Match("aloo gobi sabzi", []string{"aloo paratha", "aloo gobi"})
		assert.True(t, ok)
		assert.Equal(t, "aloo gobi", got)
	})

	t.Run("fuzzy token tolerates a typo", func(t *testing.T) {
		got, ok := m.Match("biriyani", []string{"idli", "biryani"})
		assert.True(t, ok)
		assert.Equal(t, "biryani", got)
	})

	t.Run("rejects unrelated dish", func(t *testing.T) {
		_, ok := m.Match("pizza", []string{"idli", "sambar"})
		assert.False(t, ok)
	})
}

func TestNewTokenMatcher_Defaults(t *testing.T) {
	m := NewTokenMatcher(MatchConfig{})
	assert.Equal(t, 40.0, m.minConfidenceThreshold)
	assert.Equal(t, 1, m.fuzzyEditDistance)
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"dal", "", 3},
		{"", "dal", 3},
		{"biryani", "biriyani", 1},
		{"kitten", "sitting", 3},
		{"idli", "idli", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshteinDistance(tt.s1, tt.s2), "%q vs %q", tt.s1, tt.s2)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"aloo", "gobi"}, tokenize("Aloo-Gobi (1 plate)"))
	assert.Empty(t, tokenize("250 g"))
}
