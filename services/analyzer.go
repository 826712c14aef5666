package services

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/allendavis-developer/cashgensuite/models"
	"github.com/allendavis-developer/cashgensuite/utils"
)

// Analyzer runs the full pricing pipeline for an item: clean the raw
// records, drop outliers, summarize the cleaned prices, estimate the market
// price, bin the distribution and derive a buying range from the margin
// configuration. Results are cached per item so repeated bridge requests do
// not recompute for the same scrape.
type Analyzer struct {
	logger    *utils.Logger
	cleaner   *Cleaner
	filter    *OutlierFilter
	estimator *Estimator
	margins   *MarginBook
	cache     *ristretto.Cache
	cacheTTL  time.Duration
}

// NewAnalyzer creates an Analyzer with an in-memory result cache.
func NewAnalyzer(logger *utils.Logger, margins *MarginBook, cacheTTL time.Duration) (*Analyzer, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 22, // 4MB of cached analyses
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzer: create cache: %w", err)
	}

	return &Analyzer{
		logger:    logger,
		cleaner:   NewCleaner(logger),
		filter:    NewOutlierFilter(logger),
		estimator: NewEstimator(logger),
		margins:   margins,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}, nil
}

// AnalyzeRequest carries one item through the pipeline.
type AnalyzeRequest struct {
	ItemName     string
	Category     string
	Subcategory  string
	Manufacturer string
	Model        string
	Attributes   map[string]string
	Raw          []*models.RawListing
}

// Analyze runs the pipeline for req and returns the analysis. A cached
// result is returned when the same item was analyzed within the cache TTL;
// pass fresh=true to bypass the cache.
func (a *Analyzer) Analyze(req AnalyzeRequest, fresh bool) *models.PriceAnalysis {
	analysis, _ := a.AnalyzeWithListings(req, fresh)
	return analysis
}

// AnalyzeWithListings is Analyze plus the flagged per-listing results, for
// callers that persist the listings alongside the analysis. The listings are
// nil on a cache hit.
func (a *Analyzer) AnalyzeWithListings(req AnalyzeRequest, fresh bool) (*models.PriceAnalysis, []*models.Listing) {
	cacheKey := req.ItemName + "|" + req.Category
	if !fresh {
		if v, found := a.cache.Get(cacheKey); found {
			if cached, ok := v.(*models.PriceAnalysis); ok {
				a.logger.Debug("[analyzer] Cache hit for %q", req.ItemName)
				return cached, nil
			}
		}
	}

	cleaned := a.cleaner.Clean(req.Raw)
	kept, flagged := a.filter.Filter(cleaned)

	anomalies := 0
	for _, l := range flagged {
		if l.IsAnomalous {
			anomalies++
		}
	}

	prices := pricesOf(kept)
	stats := Summarize(prices)
	estimate, hasEstimate := a.estimator.Estimate(kept)
	hist := ComputeHistogram(prices)

	margin, matches := a.margins.EffectiveMargin(req.Category, req.Subcategory, req.Manufacturer, req.Model)

	analysis := &models.PriceAnalysis{
		ItemName:        req.ItemName,
		SearchTerm:      BuildSearchTerm(req.ItemName, req.Category, req.Attributes),
		TotalListings:   len(req.Raw),
		CleanedListings: len(kept),
		AnomalyCount:    anomalies,
		Stats:           stats,
		Estimate:        round2(estimate),
		HasEstimate:     hasEstimate,
		Histogram:       hist,
		EffectiveMargin: margin,
		Confidence:      Confidence(len(kept)),
		RulesApplied:    matches,
		CreatedAt:       time.Now(),
	}
	if hasEstimate {
		analysis.SuggestedOffer = SuggestedOffer(estimate, margin)
	}

	a.cache.SetWithTTL(cacheKey, analysis, 1, a.cacheTTL)

	a.logger.Info("[analyzer] %q: %d raw → %d cleaned (%d anomalous), estimate %.2f, offer %.2f (margin %.0f%%)",
		req.ItemName, len(req.Raw), len(kept), anomalies,
		analysis.Estimate, analysis.SuggestedOffer, margin*100)
	return analysis, flagged
}
