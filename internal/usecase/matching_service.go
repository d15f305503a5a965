package usecase

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

// Matching strategies selectable through configuration
const (
	StrategySubstring = "substring"
	StrategyToken     = "token"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Scoring weights for the token strategy
const (
	productCoverageWeight   = 0.60
	referenceCoverageWeight = 0.20
	jaccardWeight           = 0.20
	substringMatchBonus     = 10.0
	fuzzyWeightFactor       = 0.8 // Fuzzy token hits count 80% of an exact hit
)

// dishStopWords are serving and filler words that carry no dish identity
var dishStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "with": true, "on": true, "style": true,
	"plate": true, "bowl": true, "cup": true, "glass": true, "piece": true,
	"pieces": true, "serving": true, "portion": true, "extra": true,
	"g": true, "gm": true, "gms": true, "gram": true, "grams": true, "ml": true,
}

// DishMatcher resolves a normalized menu dish to one of the normalized
// reference keys. ok is false when nothing qualifies.
type DishMatcher interface {
	Match(dish string, candidates []string) (match string, ok bool)
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	Strategy               string
	MinConfidenceThreshold float64
	EnableFuzzyMatching    bool
	FuzzyEditDistance      int
	EnableDebugLogging     bool
}

// NewDishMatcher builds the matcher selected by config.Strategy.
// An empty strategy selects the substring matcher.
func NewDishMatcher(config MatchConfig) (DishMatcher, error) {
	switch config.Strategy {
	case "", StrategySubstring:
		return NewSubstringMatcher(config.EnableDebugLogging), nil
	case StrategyToken:
		return NewTokenMatcher(config), nil
	default:
		return nil, fmt.Errorf("unknown matching strategy: %q", config.Strategy)
	}
}

// SubstringMatcher returns an exact match if one exists, otherwise the first
// candidate in table order where either string contains the other.
type SubstringMatcher struct {
	enableDebugLogging bool
}

// NewSubstringMatcher creates the default order-sensitive matcher
func NewSubstringMatcher(enableDebugLogging bool) *SubstringMatcher {
	return &SubstringMatcher{enableDebugLogging: enableDebugLogging}
}

// Match implements DishMatcher
func (m *SubstringMatcher) Match(dish string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if c == dish {
			if m.enableDebugLogging {
				log.Printf("[MATCH] %q: exact", dish)
			}
			return c, true
		}
	}

	for _, c := range candidates {
		if strings.Contains(c, dish) || strings.Contains(dish, c) {
			if m.enableDebugLogging {
				log.Printf("[MATCH] %q: contained in/contains %q", dish, c)
			}
			return c, true
		}
	}

	if m.enableDebugLogging {
		log.Printf("[MATCH] %q: no candidate", dish)
	}
	return "", false
}

// TokenMatcher ranks candidates by weighted token overlap and returns the
// highest scoring one above the confidence threshold. Ties keep table order.
type TokenMatcher struct {
	minConfidenceThreshold float64
	enableFuzzyMatching    bool
	fuzzyEditDistance      int
	enableDebugLogging     bool
}

// NewTokenMatcher creates a token matcher with the given configuration
func NewTokenMatcher(config MatchConfig) *TokenMatcher {
	threshold := config.MinConfidenceThreshold
	if threshold <= 0 {
		threshold = 40.0 // Default 40% threshold
	}

	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1
	}

	return &TokenMatcher{
		minConfidenceThreshold: threshold,
		enableFuzzyMatching:    config.EnableFuzzyMatching,
		fuzzyEditDistance:      fuzzyDist,
		enableDebugLogging:     config.EnableDebugLogging,
	}
}

// Match implements DishMatcher
func (m *TokenMatcher) Match(dish string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if c == dish {
			return c, true
		}
	}

	best := ""
	highestScore := -1.0

	for _, c := range candidates {
		score := m.calculateMatchScore(dish, c)
		if m.enableDebugLogging {
			log.Printf("[MATCH] %q vs %q: %.1f", dish, c, score)
		}
		if score > highestScore {
			highestScore = score
			best = c
		}
	}

	if best == "" || highestScore < m.minConfidenceThreshold {
		if m.enableDebugLogging {
			log.Printf("[MATCH] %q: best %q below threshold (%.1f < %.1f)", dish, best, highestScore, m.minConfidenceThreshold)
		}
		return "", false
	}

	return best, true
}

// calculateMatchScore computes a 0-100 similarity between a menu dish and a
// reference key. Dish token coverage carries most of the weight, reference
// coverage and Jaccard overlap the rest, plus a bonus for substring containment.
func (m *TokenMatcher) calculateMatchScore(dish, reference string) float64 {
	dishTokens := tokenize(dish)
	refTokens := tokenize(reference)

	if len(dishTokens) == 0 || len(refTokens) == 0 {
		return 0
	}

	dishMatched := m.weightedIntersection(dishTokens, refTokens)
	refMatched := m.weightedIntersection(refTokens, dishTokens)

	dishCoverage := dishMatched / float64(len(dishTokens))
	refCoverage := refMatched / float64(len(refTokens))
	jaccard := dishMatched / float64(findUnion(dishTokens, refTokens))

	score := (dishCoverage*productCoverageWeight + refCoverage*referenceCoverageWeight + jaccard*jaccardWeight) * 100

	if len(dish) > 3 && (strings.Contains(reference, dish) || strings.Contains(dish, reference)) {
		score += substringMatchBonus
	}

	if score > 100 {
		score = 100
	}
	return score
}

// weightedIntersection counts tokens of a found in b; fuzzy hits count partially
func (m *TokenMatcher) weightedIntersection(a, b []string) float64 {
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[t] = true
	}

	seen := make(map[string]bool)
	var total float64
	for _, t := range a {
		if seen[t] {
			continue
		}
		seen[t] = true

		if set[t] {
			total++
			continue
		}
		if !m.enableFuzzyMatching {
			continue
		}
		for _, other := range b {
			if fuzzyTokenMatch(t, other, m.fuzzyEditDistance) {
				total += fuzzyWeightFactor
				break
			}
		}
	}
	return total
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words, and pure numeric tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 {
			continue
		}
		if dishStopWords[word] {
			continue
		}
		if isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens >= 4 chars to avoid false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two rows instead of the full matrix
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
