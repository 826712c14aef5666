package services

import (
	"sort"

	"github.com/allendavis-developer/cashgensuite/models"
)

// Summarize computes min/average/median/mode over a price set. The empty
// input yields the zero-count sentinel summary rather than an error. All
// four values are rounded to 2 decimal places at output time only; internal
// computation keeps full precision.
func Summarize(prices []float64) models.StatSummary {
	if len(prices) == 0 {
		return models.StatSummary{}
	}

	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)

	min := sorted[0]
	var sum float64
	for _, p := range sorted {
		sum += p
	}
	avg := sum / float64(len(sorted))

	n := len(sorted)
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return models.StatSummary{
		Count:   n,
		Min:     round2(min),
		Average: round2(avg),
		Median:  round2(median),
		Mode:    round2(modeOf(sorted)),
	}
}

// modeOf returns the most frequent value in a sorted slice. Ties break to
// the smallest tied value: the scan proceeds in ascending order and the
// running mode is replaced only on a strictly higher count.
func modeOf(sorted []float64) float64 {
	mode := sorted[0]
	bestCount := 0
	runValue := sorted[0]
	runCount := 0

	for _, v := range sorted {
		if v == runValue {
			runCount++
		} else {
			runValue = v
			runCount = 1
		}
		if runCount > bestCount {
			bestCount = runCount
			mode = runValue
		}
	}
	return mode
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
