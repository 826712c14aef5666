package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/allendavis-developer/cashgensuite/models"
	"github.com/allendavis-developer/cashgensuite/utils"
)

var (
	// priceRegexp captures numeric price values
	priceRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
)

// soldDateLayouts are tried in order against the sold-date text once the
// "Sold" prefix is stripped. The "<day> <month-name> <year>" forms marketplace
// result pages use come first; generic layouts are the fallback. Text that
// matches none of them leaves the sale date absent rather than failing the
// listing.
var soldDateLayouts = []string{
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
}

// Cleaner transforms RawListings into clean, validated Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw listings and returns cleaned records. Listings with a
// non-positive or unparseable price are dropped here — they are invalid for
// pricing purposes, which is different from being flagged as outliers later.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	seen := make(map[string]struct{})
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty URL: %s", r.Title)
			continue
		}

		if _, dup := seen[url]; dup {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}
		seen[url] = struct{}{}

		price := c.parsePrice(r.RawPrice)
		if price <= 0 {
			c.logger.Debug("[cleaner] Dropping listing with unusable price %q: %s", r.RawPrice, r.Title)
			continue
		}

		result = append(result, &models.Listing{
			Title:     normaliseText(r.Title),
			Price:     price,
			SoldDate:  c.parseSoldDate(r.SoldText),
			URL:       url,
			Condition: normaliseText(r.Condition),
			CreatedAt: time.Now(),
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parsePrice extracts the first numeric value from a raw price string.
// Examples:
//
//	"£150.00" → 150
//	"£1,234.56" → 1234.56
//	"Free postage" → 0 (invalid)
func (c *Cleaner) parsePrice(raw string) float64 {
	cleaned := strings.ReplaceAll(strings.ToLower(raw), ",", "")
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return price
}

// parseSoldDate extracts the sale date from text like "Sold 12 Aug 2025".
// The zero time means the date is absent or unparseable; such listings still
// count for descriptive statistics but not for the time-weighted estimate.
func (c *Cleaner) parseSoldDate(raw string) time.Time {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}
	}

	text = strings.TrimSpace(strings.TrimPrefix(text, "Sold"))
	text = strings.TrimSpace(strings.TrimPrefix(text, "Item sold"))

	for _, layout := range soldDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}

	c.logger.Debug("[cleaner] Unparseable sold date %q — treating as absent", raw)
	return time.Time{}
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
