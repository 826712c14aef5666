package services

import (
	"math"
	"sort"

	"github.com/allendavis-developer/cashgensuite/models"
	"github.com/allendavis-developer/cashgensuite/utils"
)

// Tuning constants for the outlier filter. These values are part of the
// observable contract of the pipeline — do not re-derive them.
const (
	// minSampleForFilter is the smallest number of positive-priced listings
	// for which filtering is attempted at all.
	minSampleForFilter = 4

	// semanticFloorRatio: listings priced below this fraction of the median
	// are almost always accessories or mis-scraped junk, not the item itself.
	semanticFloorRatio = 0.25

	// Asymmetric IQR fence multipliers in log-price space. The cheap side is
	// fenced tighter than the expensive side: very cheap listings are usually
	// data errors, very expensive ones are often legitimate premium variants.
	lowerIQRMultiplier = 1.5
	upperIQRMultiplier = 3.0
)

// OutlierFilter separates plausible sale prices from accessories, mispriced
// junk and extreme high-side outliers. It never mutates its input: excluded
// listings are reported through the IsAnomalous flag on the returned copies.
type OutlierFilter struct {
	logger *utils.Logger
}

// NewOutlierFilter creates an OutlierFilter with the given logger.
func NewOutlierFilter(logger *utils.Logger) *OutlierFilter {
	return &OutlierFilter{logger: logger}
}

// Filter returns the cleaned subset of listings. Every input listing is
// echoed in the second return value with its IsAnomalous flag set (true iff
// the listing was excluded by the floor or the IQR fences). Listings with a
// non-positive price are invalid rather than anomalous: they never enter the
// cleaned subset and are never flagged.
//
// With fewer than minSampleForFilter positive-priced listings the input is
// returned unchanged — there is not enough data to estimate spread reliably.
func (f *OutlierFilter) Filter(listings []*models.Listing) (cleaned, flagged []*models.Listing) {
	flagged = make([]*models.Listing, 0, len(listings))
	valid := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		c := *l
		c.IsAnomalous = false
		flagged = append(flagged, &c)
		if c.Price > 0 {
			valid = append(valid, &c)
		}
	}

	if len(valid) < minSampleForFilter {
		f.logger.Debug("[outliers] Only %d valid listings — skipping filter", len(valid))
		return flagged, flagged
	}

	// Semantic floor: drop listings far below the median price.
	med := medianOf(pricesOf(valid))
	floor := semanticFloorRatio * med

	floored := make([]*models.Listing, 0, len(valid))
	for _, l := range valid {
		if l.Price < floor {
			l.IsAnomalous = true
			continue
		}
		floored = append(floored, l)
	}

	if len(floored) < minSampleForFilter {
		// Over-pruned: keep the floored set rather than fencing a tiny sample.
		f.logger.Debug("[outliers] Floor left %d listings — skipping IQR fences", len(floored))
		return floored, flagged
	}

	// Interpolated quartiles over log-prices, with asymmetric fences.
	logs := make([]float64, len(floored))
	for i, l := range floored {
		logs[i] = math.Log(l.Price)
	}
	sort.Float64s(logs)

	q1 := percentile(logs, 0.25)
	q3 := percentile(logs, 0.75)
	iqr := q3 - q1
	lo := q1 - lowerIQRMultiplier*iqr
	hi := q3 + upperIQRMultiplier*iqr

	cleaned = make([]*models.Listing, 0, len(floored))
	for _, l := range floored {
		lp := math.Log(l.Price)
		if lp < lo || lp > hi {
			l.IsAnomalous = true
			continue
		}
		cleaned = append(cleaned, l)
	}

	f.logger.Info("[outliers] Filtered %d → %d listings (floor %.2f, fences [%.4f, %.4f] in log space)",
		len(listings), len(cleaned), floor, lo, hi)
	return cleaned, flagged
}

func pricesOf(listings []*models.Listing) []float64 {
	prices := make([]float64, len(listings))
	for i, l := range listings {
		prices[i] = l.Price
	}
	return prices
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentile computes the interpolated percentile of an already sorted slice:
// index = (n−1)·p, linearly interpolated between the surrounding values.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	idx := float64(n-1) * p
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
