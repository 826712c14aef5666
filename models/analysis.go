package models

import "time"

// StatSummary holds the descriptive statistics over a price set. Count == 0
// is the "no data" sentinel: the four values are meaningless and callers
// should render them as unavailable rather than as zeros.
type StatSummary struct {
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Mode    float64 `json:"mode"`
}

// HasData reports whether the summary was computed from at least one price.
func (s StatSummary) HasData() bool {
	return s.Count > 0
}

// HistogramBin is one interval [Start, End) of the price distribution; the
// final bin is closed on both sides so the maximum price is counted.
type HistogramBin struct {
	Start float64 `json:"binStart"`
	End   float64 `json:"binEnd"`
	Count int     `json:"count"`
}

// Histogram is the binned price distribution used for the terminal report
// and the extension's distribution chart.
type Histogram struct {
	Bins     []HistogramBin `json:"bins"`
	BinWidth float64        `json:"binWidth"`
}

// MarginMatch records one margin rule that applied to an item.
type MarginMatch struct {
	RuleType   string  `json:"type"`
	MatchValue string  `json:"match"`
	Adjustment float64 `json:"adjustment"`
}

// PriceAnalysis is the full output of one pipeline run for an item.
type PriceAnalysis struct {
	ID              int64         `json:"-"`
	ItemName        string        `json:"itemName"`
	SearchTerm      string        `json:"searchTerm"`
	TotalListings   int           `json:"totalListings"`
	CleanedListings int           `json:"cleanedListings"`
	AnomalyCount    int           `json:"anomalyCount"`
	Stats           StatSummary   `json:"stats"`
	Estimate        float64       `json:"estimate"`
	HasEstimate     bool          `json:"hasEstimate"`
	Histogram       Histogram     `json:"histogram"`
	EffectiveMargin float64       `json:"effectiveMargin"`
	SuggestedOffer  float64       `json:"suggestedOffer"`
	Confidence      int           `json:"confidence"`
	RulesApplied    []MarginMatch `json:"rulesApplied,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}
