package usecase

import (
	"testing"
	"time"

	"github.com/messlens/backend/internal/domain"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func entry(t *testing.T, date, dish string, qty float64) domain.MenuEntry {
	t.Helper()
	return domain.MenuEntry{Date: day(t, date), Dish: dish, QuantityG: qty}
}

func testReferenceTable() *domain.ReferenceTable {
	return domain.NewReferenceTable([]domain.ReferenceDish{
		{Dish: "Paneer Butter Masala", CaloriesKcal: 265, CarbsG: 6, ProteinG: 18, FatG: 20},
		{Dish: "Plain Rice", CaloriesKcal: 130, CarbsG: 28, ProteinG: 3, FatG: 0},
		{Dish: "Dal Tadka", CaloriesKcal: 120, CarbsG: 15, ProteinG: 7, FatG: 4},
		{Dish: "Chapati", CaloriesKcal: 300, CarbsG: 50, ProteinG: 10, FatG: 6},
		{Dish: "Aloo Gobi", CaloriesKcal: 90, CarbsG: 12, ProteinG: 2, FatG: 4},
	}, NormalizeDishName)
}
