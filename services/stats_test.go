package services

import "testing"

func TestSummarizeKnownSet(t *testing.T) {
	s := Summarize([]float64{100, 200, 200, 300})

	if !s.HasData() {
		t.Fatal("expected data in summary")
	}
	if s.Min != 100.00 {
		t.Errorf("Min: got %.2f, want 100.00", s.Min)
	}
	if s.Average != 200.00 {
		t.Errorf("Average: got %.2f, want 200.00", s.Average)
	}
	if s.Median != 200.00 {
		t.Errorf("Median: got %.2f, want 200.00", s.Median)
	}
	if s.Mode != 200.00 {
		t.Errorf("Mode: got %.2f, want 200.00", s.Mode)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.HasData() {
		t.Error("empty input must yield the no-data sentinel")
	}
	if s.Count != 0 {
		t.Errorf("Count: got %d, want 0", s.Count)
	}
}

func TestSummarizeOddMedian(t *testing.T) {
	s := Summarize([]float64{30, 10, 20})
	if s.Median != 20 {
		t.Errorf("Median: got %.2f, want 20", s.Median)
	}
}

func TestSummarizeModeTieBreaksToSmallest(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{"all unique", []float64{3, 1, 2}, 1},
		{"two tied pairs", []float64{2, 2, 1, 1, 3}, 1},
		{"clear winner beats earlier tie", []float64{1, 1, 2, 2, 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.prices).Mode; got != tt.want {
				t.Errorf("Mode(%v): got %.2f, want %.2f", tt.prices, got, tt.want)
			}
		})
	}
}

func TestSummarizeRoundsToTwoPlaces(t *testing.T) {
	s := Summarize([]float64{1.234, 5.678})
	if s.Min != 1.23 {
		t.Errorf("Min: got %v, want 1.23", s.Min)
	}
	if s.Average != 3.46 {
		t.Errorf("Average: got %v, want 3.46", s.Average)
	}
}
