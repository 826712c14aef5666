package services

import (
	"testing"
	"time"

	"github.com/allendavis-developer/cashgensuite/models"
)

func TestCleanerParsePrice(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw  string
		want float64
	}{
		{"£150.00", 150},
		{"£1,234.56", 1234.56},
		{"GBP 99", 99},
		{"", 0},
		{"Free postage", 0},
		{"£120 to £140", 120},
	}

	for _, tt := range tests {
		got := c.parsePrice(tt.raw)
		if got != tt.want {
			t.Errorf("parsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestCleanerParseSoldDate(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw  string
		want time.Time
	}{
		{"Sold 12 Aug 2025", time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)},
		{"12 Aug 2025", time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)},
		{"3 December 2024", time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC)},
		{"2025-08-12", time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"not a date", time.Time{}},
	}

	for _, tt := range tests {
		got := c.parseSoldDate(tt.raw)
		if !got.Equal(tt.want) {
			t.Errorf("parseSoldDate(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCleanerDropsUnusablePrices(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{Title: "Good", RawPrice: "£100", URL: "https://ebay.co.uk/itm/1", ScrapedAt: time.Now()},
		{Title: "Priceless", RawPrice: "Contact seller", URL: "https://ebay.co.uk/itm/2", ScrapedAt: time.Now()},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing after dropping unusable price, got %d", len(cleaned))
	}
	if cleaned[0].Price != 100 {
		t.Errorf("surviving listing price: got %.2f, want 100", cleaned[0].Price)
	}
}

func TestCleanerDeduplicatesURL(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{Title: "A", RawPrice: "£100", URL: "https://ebay.co.uk/itm/1", ScrapedAt: time.Now()},
		{Title: "B", RawPrice: "£110", URL: "https://ebay.co.uk/itm/1", ScrapedAt: time.Now()},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Errorf("expected 1 listing after deduplication, got %d", len(cleaned))
	}
}

func TestCleanerKeepsUndatedListings(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{Title: "Active", RawPrice: "£100", SoldText: "", URL: "https://ebay.co.uk/itm/1", ScrapedAt: time.Now()},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("undated listing should survive cleaning, got %d listings", len(cleaned))
	}
	if cleaned[0].HasSoldDate() {
		t.Error("listing without sold text must have no sale date")
	}
}
