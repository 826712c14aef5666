package storage

import "github.com/allendavis-developer/cashgensuite/models"

// ListingWriter is the interface any storage backend must satisfy.
type ListingWriter interface {
	WriteListings(item string, listings []*models.Listing) error
	Close() error
}

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}

// AnalysisWriter persists completed price analyses.
type AnalysisWriter interface {
	WriteAnalysis(a *models.PriceAnalysis) error
	Close() error
}
