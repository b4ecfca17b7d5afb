package models

import "testing"

func TestLatestClose(t *testing.T) {
	r := &AnalysisResult{}
	if _, ok := r.LatestClose(); ok {
		t.Error("expected no close for empty price data")
	}

	r.PriceData = []PricePoint{
		{Date: "2026-01-05", Close: 101.5},
		{Date: "2026-01-06", Close: 99.25},
	}
	close, ok := r.LatestClose()
	if !ok || close != 99.25 {
		t.Errorf("LatestClose() = %v, %v, want 99.25, true", close, ok)
	}
}

func TestPriceChangePct(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single point", []float64{100}, 0},
		{"drop", []float64{200, 190, 180}, -10},
		{"gain", []float64{50, 60}, 20},
		{"zero first close", []float64{0, 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &AnalysisResult{}
			for _, c := range tt.closes {
				r.PriceData = append(r.PriceData, PricePoint{Close: c})
			}
			if got := r.PriceChangePct(); got != tt.want {
				t.Errorf("PriceChangePct() = %v, want %v", got, tt.want)
			}
		})
	}
}
