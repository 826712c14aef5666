package models

import "time"

// RawListing holds one unprocessed sold-listing record, either straight from
// the eBay scraper or pushed over the extension bridge. It is written to CSV
// before any cleaning or transformation.
type RawListing struct {
	Source    string // "ebay-scraper" or "extension"
	Title     string
	RawPrice  string // e.g. "£1,234.56"
	SoldText  string // e.g. "Sold 12 Aug 2025"; empty when still active
	URL       string
	Condition string
	ScrapedAt time.Time
}

// Listing is one cleaned marketplace observation: a positive price plus an
// optional sale date. SoldDate.IsZero() means the listing is still active
// (or its date could not be parsed) — it is then excluded from the
// time-weighted estimator but still usable for descriptive statistics.
type Listing struct {
	ID          int64
	Title       string
	Price       float64
	SoldDate    time.Time
	URL         string
	Condition   string
	IsAnomalous bool
	CreatedAt   time.Time
}

// HasSoldDate reports whether the listing carries a usable sale date.
func (l *Listing) HasSoldDate() bool {
	return !l.SoldDate.IsZero()
}
