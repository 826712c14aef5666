package services

import (
	"math"
	"sort"

	"github.com/allendavis-developer/cashgensuite/models"
)

// ComputeHistogram bins a price set for the distribution display. The bin
// width follows the Freedman–Diaconis rule when there are at least four
// prices with a positive IQR, and falls back to Sturges' rule otherwise.
// The width is then rounded down to a "nice" number (1, 2 or 5 times a power
// of ten) for readability. A price sitting exactly on the final bin's upper
// boundary is counted in the last bin, so the frequencies always sum to the
// number of input prices.
func ComputeHistogram(prices []float64) models.Histogram {
	if len(prices) == 0 {
		return models.Histogram{}
	}

	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)
	min := sorted[0]
	max := sorted[len(sorted)-1]
	n := len(sorted)

	var width float64
	iqr := percentile(sorted, 0.75) - percentile(sorted, 0.25)
	if n >= 4 && iqr > 0 {
		width = 2 * iqr / math.Cbrt(float64(n))
	} else {
		numBins := math.Ceil(1 + math.Log2(float64(n)))
		width = (max - min) / numBins
	}

	width = niceWidth(width)
	if width <= 0 {
		// All prices identical (or numerically indistinguishable).
		width = 1
	}

	start := math.Floor(min/width) * width
	numBins := int(math.Ceil((max - start) / width))
	if numBins < 1 {
		numBins = 1
	}

	bins := make([]models.HistogramBin, numBins)
	for i := range bins {
		bins[i].Start = start + float64(i)*width
		bins[i].End = start + float64(i+1)*width
	}

	for _, p := range sorted {
		idx := int((p - start) / width)
		if idx >= numBins {
			idx = numBins - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}

	return models.Histogram{Bins: bins, BinWidth: width}
}

// niceWidth rounds w down to the largest value of the form {1,2,5}·10^k that
// does not exceed it.
func niceWidth(w float64) float64 {
	if w <= 0 {
		return 0
	}
	base := math.Pow(10, math.Floor(math.Log10(w)))
	frac := w / base
	switch {
	case frac >= 5:
		return 5 * base
	case frac >= 2:
		return 2 * base
	default:
		return base
	}
}
