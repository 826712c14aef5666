package services

import (
	"math"
	"testing"
)

func testMarginBook() *MarginBook {
	book := NewMarginBook()
	book.Categories["smartphones and mobile"] = Category{Name: "Smartphones and Mobile", BaseMargin: 0.40}
	book.Rules["smartphones and mobile"] = []MarginRule{
		{RuleType: "manufacturer", MatchValue: "Apple", Adjustment: -0.05, Active: true},
		{RuleType: "model", MatchValue: "iPhone 12", Adjustment: -0.02, Active: true},
		{RuleType: "model", MatchValue: "iPhone 4", Adjustment: 0.10, Active: false},
	}
	return book
}

func TestEffectiveMarginBaseOnly(t *testing.T) {
	book := testMarginBook()

	margin, matches := book.EffectiveMargin("Smartphones and Mobile", "", "", "")
	if margin != 0.40 {
		t.Errorf("margin: got %v, want 0.40", margin)
	}
	if len(matches) != 0 {
		t.Errorf("matches: got %d, want 0", len(matches))
	}
}

func TestEffectiveMarginAppliesRules(t *testing.T) {
	book := testMarginBook()

	margin, matches := book.EffectiveMargin("smartphones and mobile", "", "apple", "iphone 12")
	want := 0.40 - 0.05 - 0.02
	if math.Abs(margin-want) > 1e-12 {
		t.Errorf("margin: got %v, want %v", margin, want)
	}
	if len(matches) != 2 {
		t.Errorf("matches: got %d, want 2", len(matches))
	}
}

func TestEffectiveMarginIgnoresInactiveRules(t *testing.T) {
	book := testMarginBook()

	margin, matches := book.EffectiveMargin("smartphones and mobile", "", "", "iPhone 4")
	if margin != 0.40 {
		t.Errorf("margin: got %v, want 0.40 (inactive rule must not apply)", margin)
	}
	if len(matches) != 0 {
		t.Errorf("matches: got %d, want 0", len(matches))
	}
}

func TestEffectiveMarginUnknownCategory(t *testing.T) {
	book := testMarginBook()

	margin, matches := book.EffectiveMargin("garden furniture", "", "", "")
	if margin != DefaultBaseMargin {
		t.Errorf("margin: got %v, want default %v", margin, DefaultBaseMargin)
	}
	if matches != nil {
		t.Errorf("matches: got %v, want nil", matches)
	}
}

func TestSuggestedOffer(t *testing.T) {
	if got := SuggestedOffer(100, 0.40); got != 60 {
		t.Errorf("SuggestedOffer(100, 0.40): got %v, want 60", got)
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{3, 45},
		{6, 90},
		{7, 100},
		{50, 100},
	}

	for _, tt := range tests {
		if got := Confidence(tt.count); got != tt.want {
			t.Errorf("Confidence(%d): got %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestBuildSearchTerm(t *testing.T) {
	tests := []struct {
		name     string
		item     string
		category string
		attrs    map[string]string
		want     string
	}{
		{"known category with attribute", "iPhone 12", "Smartphones and Mobile",
			map[string]string{"storage": "128GB"}, "iPhone 12 128GB"},
		{"known category missing attribute", "iPhone 12", "smartphones and mobile",
			nil, "iPhone 12"},
		{"unknown category", "Garden Gnome", "garden",
			map[string]string{"storage": "128GB"}, "Garden Gnome"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSearchTerm(tt.item, tt.category, tt.attrs); got != tt.want {
				t.Errorf("BuildSearchTerm: got %q, want %q", got, tt.want)
			}
		})
	}
}
