package services

import (
	"math"
	"testing"
	"time"

	"github.com/allendavis-developer/cashgensuite/models"
)

func day(d string) time.Time {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		panic(err)
	}
	return t
}

func soldListing(price float64, soldDate time.Time) *models.Listing {
	return &models.Listing{Title: "item", Price: price, SoldDate: soldDate}
}

func fixedEstimator(now time.Time) *Estimator {
	e := NewEstimator(newTestLogger())
	e.now = func() time.Time { return now }
	return e
}

func TestEstimateNoData(t *testing.T) {
	e := fixedEstimator(day("2025-08-20"))

	if _, ok := e.Estimate(nil); ok {
		t.Error("empty input must yield no estimate")
	}

	// Priced but undated listings cannot feed the estimator either.
	undated := []*models.Listing{{Price: 100}, {Price: 200}}
	if _, ok := e.Estimate(undated); ok {
		t.Error("undated listings must yield no estimate")
	}
}

func TestEstimateSingleObservation(t *testing.T) {
	e := fixedEstimator(day("2025-08-20"))

	got, ok := e.Estimate([]*models.Listing{soldListing(150, day("2025-08-01"))})
	if !ok {
		t.Fatal("expected an estimate")
	}
	if got != 150 {
		t.Errorf("estimate: got %v, want exactly 150", got)
	}
}

func TestEstimateTwoPointDirectionalTrust(t *testing.T) {
	e := fixedEstimator(day("2025-08-20"))

	// Newest price below the geometric center: trust it outright.
	listings := []*models.Listing{
		soldListing(200, day("2025-08-01")),
		soldListing(100, day("2025-08-10")),
	}
	got, ok := e.Estimate(listings)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if got != 100 {
		t.Errorf("estimate: got %v, want exactly 100 (trust newest)", got)
	}

	// Newest price at or above the center: blend with it instead.
	listings = []*models.Listing{
		soldListing(100, day("2025-08-01")),
		soldListing(200, day("2025-08-10")),
	}
	got, ok = e.Estimate(listings)
	if !ok {
		t.Fatal("expected an estimate")
	}
	want := (math.Sqrt(100*200) + 200) / 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("estimate: got %v, want %v (blend with geometric center)", got, want)
	}
}

func TestEstimateSameDaySalesFallBackToMean(t *testing.T) {
	e := fixedEstimator(day("2025-08-20"))

	// Four sales on one day: every consecutive pair is discarded, so the
	// estimator falls back to the plain arithmetic mean.
	d := day("2025-08-10")
	listings := []*models.Listing{
		soldListing(100, d),
		soldListing(200, d),
		soldListing(300, d),
		soldListing(400, d),
	}
	got, ok := e.Estimate(listings)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if got != 250 {
		t.Errorf("estimate: got %v, want 250 (arithmetic mean)", got)
	}
}

func TestEstimateVolatilityWeighted(t *testing.T) {
	now := day("2025-08-20")
	e := fixedEstimator(now)

	// Alternating prices ten days apart: every pair has rate ln2/10, so the
	// median volatility is ln2/10 and the weight of a listing halves every
	// ten days of age.
	listings := []*models.Listing{
		soldListing(100, day("2025-07-21")),
		soldListing(200, day("2025-07-31")),
		soldListing(100, day("2025-08-10")),
		soldListing(200, day("2025-08-20")),
	}
	got, ok := e.Estimate(listings)
	if !ok {
		t.Fatal("expected an estimate")
	}

	v := math.Log(2) / 10
	var weightedSum, weightSum float64
	for _, l := range listings {
		w := math.Exp(-v * now.Sub(l.SoldDate).Hours() / 24)
		weightedSum += l.Price * w
		weightSum += w
	}
	want := weightedSum / weightSum

	if math.Abs(got-want) > 1e-9 {
		t.Errorf("estimate: got %v, want %v", got, want)
	}
	// Recent evidence dominates: the estimate sits above the plain mean.
	if got <= 150 {
		t.Errorf("estimate %v should exceed the unweighted mean 150", got)
	}
}

func TestEstimateZeroMedianVolatilityWeighsEvenly(t *testing.T) {
	e := fixedEstimator(day("2025-08-20"))

	// Three of four gaps carry zero price change, so the median rate is
	// zero: all weights collapse to 1 and the estimate is the plain mean.
	listings := []*models.Listing{
		soldListing(100, day("2025-07-11")),
		soldListing(100, day("2025-07-21")),
		soldListing(100, day("2025-07-31")),
		soldListing(200, day("2025-08-10")),
	}
	got, ok := e.Estimate(listings)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if math.Abs(got-125) > 1e-9 {
		t.Errorf("estimate: got %v, want 125", got)
	}
}

func TestEstimateIgnoresUndatedAndUnpriced(t *testing.T) {
	e := fixedEstimator(day("2025-08-20"))

	listings := []*models.Listing{
		soldListing(150, day("2025-08-01")),
		{Price: 9999},               // no sale date
		soldListing(0, day("2025-08-05")), // no price
	}
	got, ok := e.Estimate(listings)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if got != 150 {
		t.Errorf("estimate: got %v, want 150 (single valid observation)", got)
	}
}
