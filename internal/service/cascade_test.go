package service

import (
	"testing"

	"floatwatch/internal/domain"
)

func stageLabels(stages []CascadeStage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = s.Label
	}
	return out
}

func TestCascade(t *testing.T) {
	ft := domain.WearFieldTested.Range()
	tests := []struct {
		name     string
		category int
		wear     *domain.FloatRange
		want     []string
	}{
		{"all filters", 2, &ft, []string{StageStrict, StageNoWear, StageNoCat, StageNameOnly}},
		{"category only", 1, nil, []string{StageStrict, StageNoCat, StageNameOnly}},
		{"wear only", 0, &ft, []string{StageStrict, StageNoWear, StageNameOnly}},
		{"no filters", 0, nil, []string{StageStrict, StageNameOnly}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages := Cascade(tt.category, tt.wear)
			got := stageLabels(stages)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
			for _, s := range stages {
				if s.SortBy != "lowest_price" {
					t.Fatalf("stage %s sorts by %q", s.Label, s.SortBy)
				}
			}
		})
	}
}

func TestCascadeStageFilters(t *testing.T) {
	ft := domain.WearFieldTested.Range()
	stages := Cascade(2, &ft)
	if stages[0].Category != 2 || stages[0].Wear != &ft {
		t.Fatalf("strict stage should keep both filters: %+v", stages[0])
	}
	if stages[1].Category != 2 || stages[1].Wear != nil {
		t.Fatalf("no_wear stage should drop wear: %+v", stages[1])
	}
	if stages[2].Category != domain.CategoryAny || stages[2].Wear != &ft {
		t.Fatalf("no_cat stage should keep wear: %+v", stages[2])
	}
	if stages[3].Category != domain.CategoryAny || stages[3].Wear != nil {
		t.Fatalf("name_only stage should drop both: %+v", stages[3])
	}
}

func TestHighestBid(t *testing.T) {
	price, qty, ok := HighestBid([]domain.BuyOrder{
		{PriceCents: 500, Qty: 1, Valid: true},
		{PriceCents: 700, Qty: 2, Valid: true},
		{PriceCents: 700, Qty: 4, Valid: true},
		{PriceCents: 900, Qty: 9, Valid: false},
	})
	if !ok || price != 7 || qty != 6 {
		t.Fatalf("got %v %d %v", price, qty, ok)
	}

	if _, _, ok := HighestBid(nil); ok {
		t.Fatal("no orders should yield no bid")
	}
	if _, _, ok := HighestBid([]domain.BuyOrder{{PriceCents: 100}}); ok {
		t.Fatal("invalid orders should yield no bid")
	}
}

func TestMedianAndTrimmedMean(t *testing.T) {
	if Median(nil) != 0 || TrimmedMean(nil, 0.1) != 0 {
		t.Fatal("empty input should give zero")
	}
	if got := Median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("odd median = %v", got)
	}
	if got := Median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Fatalf("even median = %v", got)
	}
	if got := TrimmedMean([]float64{1, 2, 3}, 0.1); got != 2 {
		t.Fatalf("small input keeps all values, got %v", got)
	}
	xs := []float64{100, 1, 2, 3, 4, 5, 6, 7, 8, 0}
	if got := TrimmedMean(xs, 0.1); got != 4.5 {
		t.Fatalf("trimmed mean = %v", got)
	}
	if xs[0] != 100 {
		t.Fatal("input must not be reordered")
	}
}
