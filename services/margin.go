package services

import (
	"strings"

	"github.com/allendavis-developer/cashgensuite/models"
)

// DefaultBaseMargin is the store margin applied when a category carries no
// margin of its own.
const DefaultBaseMargin = 0.40

// confidencePerListing scales the cleaned-listing count into a 0–100
// confidence score.
const confidencePerListing = 15

// Category is a product category with a base store margin (0.40 for 40%).
type Category struct {
	Name       string
	BaseMargin float64
}

// MarginRule adjusts a category's base margin when its match value equals
// the item's subcategory, manufacturer or model (case-insensitive).
type MarginRule struct {
	RuleType   string // "subcategory", "manufacturer" or "model"
	MatchValue string
	Adjustment float64
	Active     bool
}

// MarginBook holds the margin configuration for all categories.
type MarginBook struct {
	Categories map[string]Category
	Rules      map[string][]MarginRule // keyed by category name
}

// NewMarginBook creates an empty MarginBook.
func NewMarginBook() *MarginBook {
	return &MarginBook{
		Categories: make(map[string]Category),
		Rules:      make(map[string][]MarginRule),
	}
}

// EffectiveMargin computes the margin for an item: the category base margin
// plus the adjustment of the first active rule matching each of the
// subcategory, manufacturer and model. An unknown category falls back to
// DefaultBaseMargin with no rules applied.
func (b *MarginBook) EffectiveMargin(category, subcategory, manufacturer, model string) (float64, []models.MarginMatch) {
	cat, known := b.Categories[strings.ToLower(category)]
	if !known {
		return DefaultBaseMargin, nil
	}

	margin := cat.BaseMargin
	var matches []models.MarginMatch

	rules := b.Rules[strings.ToLower(category)]
	for _, pair := range []struct {
		ruleType string
		value    string
	}{
		{"subcategory", subcategory},
		{"manufacturer", manufacturer},
		{"model", model},
	} {
		if pair.value == "" {
			continue
		}
		for _, r := range rules {
			if !r.Active || r.RuleType != pair.ruleType {
				continue
			}
			if strings.EqualFold(r.MatchValue, pair.value) {
				margin += r.Adjustment
				matches = append(matches, models.MarginMatch{
					RuleType:   r.RuleType,
					MatchValue: r.MatchValue,
					Adjustment: r.Adjustment,
				})
				break
			}
		}
	}

	return margin, matches
}

// SuggestedOffer derives the buy offer from a market estimate and margin.
func SuggestedOffer(estimate, margin float64) float64 {
	return round2(estimate * (1 - margin))
}

// Confidence scores an analysis from the amount of competitor evidence
// behind it, capped at 100.
func Confidence(competitorCount int) int {
	score := competitorCount * confidencePerListing
	if score > 100 {
		return 100
	}
	return score
}
