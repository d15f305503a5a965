package usecase

import "strings"

// dishKeywords are the canonical buckets a dish name collapses into.
// Order matters: the first keyword contained in the name wins.
var dishKeywords = []string{
	"roti", "chapati",
	"rice",
	"dal", "lentil",
	"rajma",
	"paneer",
	"curd", "yogurt",
	"tea", "coffee",
}

// NormalizeDishName lowercases and trims a dish name and maps it to the first
// keyword bucket it contains. Names without a keyword are returned cleaned but
// otherwise unchanged.
func NormalizeDishName(dish string) string {
	cleaned := strings.ToLower(strings.TrimSpace(dish))
	for _, key := range dishKeywords {
		if strings.Contains(cleaned, key) {
			return key
		}
	}
	return cleaned
}
