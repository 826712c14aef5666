package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/allendavis-developer/cashgensuite/config"
	"github.com/allendavis-developer/cashgensuite/models"
	"github.com/allendavis-developer/cashgensuite/utils"
)

const (
	searchURLFormat = "https://www.ebay.co.uk/sch/i.html?_nkw=%s&LH_Sold=1&LH_Complete=1&_pgn=%d"
	source          = "ebay-scraper"
	userAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// rawResult mirrors the object shape produced by the in-page extraction script.
type rawResult struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	SoldText string `json:"soldText"`
	URL      string `json:"url"`
}

// Scraper collects sold-listing records from eBay completed-listing search
// pages. It only produces raw records; all cleaning and pricing happens in
// the services layer.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	pool    *utils.WorkerPool
	seenURL *utils.SeenSet
	retry   *utils.RetryConfig

	mu       sync.Mutex
	listings []*models.RawListing
}

// New creates a ready-to-use eBay Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		seenURL: utils.NewSeenSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		listings: make([]*models.RawListing, 0),
	}
}

// ScrapeSold fetches sold listings for a search term across the configured
// number of result pages.
func (s *Scraper) ScrapeSold(searchTerm string) ([]*models.RawListing, error) {
	s.logger.Info("[ebay] Starting sold-listings scrape for %q — %d pages",
		searchTerm, s.cfg.PagesToScrape)

	chromeBin := s.cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	s.logger.Info("[ebay] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()

	for page := 1; page <= s.cfg.PagesToScrape; page++ {
		page := page
		s.pool.Submit(func() {
			pageListings, err := s.scrapePage(silentCtx, searchTerm, page)
			if err != nil {
				s.logger.Error("[ebay] Page %d failed: %v", page, err)
				return
			}

			s.mu.Lock()
			s.listings = append(s.listings, pageListings...)
			total := len(s.listings)
			s.mu.Unlock()

			s.logger.Info("[ebay] Page %d done — %d listings so far", page, total)
		})
	}
	s.pool.Wait()

	if len(s.listings) == 0 {
		return nil, fmt.Errorf("no sold listings found for %q", searchTerm)
	}

	s.logger.Info("[ebay] Scrape complete — total raw listings: %d", len(s.listings))
	return s.listings, nil
}

// scrapePage loads one result page and extracts every sold-listing card.
func (s *Scraper) scrapePage(allocCtx context.Context, searchTerm string, page int) ([]*models.RawListing, error) {
	pageURL := fmt.Sprintf(searchURLFormat, url.QueryEscape(searchTerm), page)

	var resultsJSON string
	err := s.retry.Do(fmt.Sprintf("scrape-page-%d", page), func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		return chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.WaitReady("body"),
			chromedp.Sleep(3*time.Second),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var cards = document.querySelectorAll('li.s-item, div.s-item');
					for (var i = 0; i < cards.length; i++) {
						var card = cards[i];
						var titleEl = card.querySelector('.s-item__title');
						var priceEl = card.querySelector('.s-item__price');
						var linkEl = card.querySelector('a.s-item__link');
						if (!titleEl || !priceEl || !linkEl) continue;

						var title = titleEl.textContent.trim();
						if (!title || title.toLowerCase() === 'shop on ebay') continue;

						var soldEl = card.querySelector('.s-item__caption .POSITIVE') ||
						             card.querySelector('.s-item__title--tagblock .POSITIVE') ||
						             card.querySelector('.s-item__caption--signal');
						results.push({
							title: title,
							price: priceEl.textContent.trim(),
							soldText: soldEl ? soldEl.textContent.trim() : '',
							url: linkEl.href.split('?')[0]
						});
					}
					return JSON.stringify(results);
				})()
			`, &resultsJSON),
		)
	})
	if err != nil {
		return nil, err
	}

	var results []rawResult
	if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
		return nil, fmt.Errorf("parse page %d results: %w", page, err)
	}

	listings := make([]*models.RawListing, 0, len(results))
	for _, r := range results {
		if r.URL == "" || !s.seenURL.Add(r.URL) {
			continue
		}
		listings = append(listings, &models.RawListing{
			Source:    source,
			Title:     r.Title,
			RawPrice:  r.Price,
			SoldText:  r.SoldText,
			URL:       r.URL,
			ScrapedAt: time.Now(),
		})
	}

	s.logger.Debug("[ebay] Page %d: %d cards → %d new listings", page, len(results), len(listings))
	return listings, nil
}

// findChromeBinary locates a usable Chrome/Chromium binary on PATH.
func findChromeBinary() string {
	candidates := []string{
		"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome",
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
