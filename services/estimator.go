package services

import (
	"math"
	"sort"
	"time"

	"github.com/allendavis-developer/cashgensuite/models"
	"github.com/allendavis-developer/cashgensuite/utils"
)

// minPairGapDays is the smallest gap, in days, between two consecutive sales
// for the pair to contribute to the volatility estimate. Sales closer
// together are treated as simultaneous — their price jitter says nothing
// about how fast the market moves and would blow up the per-day rate.
const minPairGapDays = 0.25

// Estimator produces a single representative price that privileges recent,
// low-volatility sale evidence over stale or noisy evidence. Only listings
// with a positive price and a parseable sale date participate.
//
// The strategy depends on sample size: with one observation it is taken as
// is; with two or three, the newest sale is trusted outright when it sits
// below the geometric center of the sample and blended with the center when
// it sits above; with four or more, the median per-day log-price-change rate
// sets an exponential decay on listing age, and the estimate is the decay-
// weighted average.
type Estimator struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewEstimator creates an Estimator using the wall clock for listing ages.
func NewEstimator(logger *utils.Logger) *Estimator {
	return &Estimator{logger: logger, now: time.Now}
}

// Estimate returns the time-weighted price estimate. ok is false only when
// no listing carries both a positive price and a sale date.
func (e *Estimator) Estimate(listings []*models.Listing) (estimate float64, ok bool) {
	dated := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Price > 0 && l.HasSoldDate() {
			dated = append(dated, l)
		}
	}

	switch n := len(dated); {
	case n == 0:
		return 0, false
	case n == 1:
		return dated[0].Price, true
	case n <= 3:
		return e.geometricCenterEstimate(dated), true
	default:
		return e.volatilityWeightedEstimate(dated), true
	}
}

// geometricCenterEstimate handles the 2–3 sample case. A recent price drop
// is taken at face value: the market is assumed to be moving down and the
// newest data point reflects that. A newest price at or above the geometric
// center is blended with it instead, so a single high recent sale cannot
// drag the estimate up on its own.
func (e *Estimator) geometricCenterEstimate(dated []*models.Listing) float64 {
	var logSum float64
	for _, l := range dated {
		logSum += math.Log(l.Price)
	}
	center := math.Exp(logSum / float64(len(dated)))

	newest := dated[0]
	for _, l := range dated[1:] {
		if l.SoldDate.After(newest.SoldDate) {
			newest = l
		}
	}

	if newest.Price < center {
		e.logger.Debug("[estimator] Newest price %.2f below geometric center %.2f — trusting newest",
			newest.Price, center)
		return newest.Price
	}
	return (center + newest.Price) / 2
}

// volatilityWeightedEstimate handles the n >= 4 case: the observed market
// turbulence sets the memory horizon instead of a fixed decay constant.
func (e *Estimator) volatilityWeightedEstimate(dated []*models.Listing) float64 {
	sorted := append([]*models.Listing(nil), dated...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SoldDate.Before(sorted[j].SoldDate)
	})

	var rates []float64
	for i := 1; i < len(sorted); i++ {
		gapDays := sorted[i].SoldDate.Sub(sorted[i-1].SoldDate).Hours() / 24
		if gapDays <= minPairGapDays {
			continue
		}
		rate := math.Abs(math.Log(sorted[i].Price)-math.Log(sorted[i-1].Price)) / gapDays
		rates = append(rates, rate)
	}

	if len(rates) == 0 {
		// Every sale landed on the same day: no usable volatility signal,
		// fall back to the plain arithmetic mean.
		var sum float64
		for _, l := range sorted {
			sum += l.Price
		}
		return sum / float64(len(sorted))
	}

	v := medianOf(rates)
	now := e.now()

	var weightedSum, weightSum float64
	for _, l := range sorted {
		ageDays := now.Sub(l.SoldDate).Hours() / 24
		w := math.Exp(-v * ageDays)
		weightedSum += l.Price * w
		weightSum += w
	}

	e.logger.Debug("[estimator] Volatility %.6f/day over %d pairs, weight mass %.4f",
		v, len(rates), weightSum)
	return weightedSum / weightSum
}
