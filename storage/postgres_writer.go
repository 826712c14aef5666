package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/allendavis-developer/cashgensuite/models"
)

// PostgresWriter persists cleaned listings and price analyses to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_items (
			id         SERIAL PRIMARY KEY,
			title      TEXT        UNIQUE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS listings (
			id             SERIAL PRIMARY KEY,
			market_item_id INT           NOT NULL REFERENCES market_items(id) ON DELETE CASCADE,
			title          TEXT          NOT NULL,
			price          NUMERIC(10,2) NOT NULL,
			sold_date      DATE,
			condition      TEXT          NOT NULL DEFAULT '',
			is_anomalous   BOOLEAN       NOT NULL DEFAULT FALSE,
			url            TEXT          NOT NULL,
			created_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			UNIQUE (market_item_id, url)
		);

		CREATE TABLE IF NOT EXISTS price_analyses (
			id               SERIAL PRIMARY KEY,
			market_item_id   INT           NOT NULL REFERENCES market_items(id) ON DELETE CASCADE,
			search_term      TEXT          NOT NULL DEFAULT '',
			total_listings   INT           NOT NULL,
			cleaned_listings INT           NOT NULL,
			anomaly_count    INT           NOT NULL,
			min_price        NUMERIC(10,2),
			avg_price        NUMERIC(10,2),
			median_price     NUMERIC(10,2),
			mode_price       NUMERIC(10,2),
			estimate         NUMERIC(10,2),
			effective_margin NUMERIC(5,4)  NOT NULL,
			suggested_offer  NUMERIC(10,2),
			confidence       INT           NOT NULL,
			created_at       TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_item      ON listings(market_item_id);
		CREATE INDEX IF NOT EXISTS idx_listings_sold_date ON listings(sold_date);
		CREATE INDEX IF NOT EXISTS idx_analyses_item      ON price_analyses(market_item_id);
	`)
	return err
}

// upsertItem finds or creates the market item row for a title.
func (pw *PostgresWriter) upsertItem(title string) (int64, error) {
	var id int64
	err := pw.db.QueryRow(`
		INSERT INTO market_items (title)
		VALUES ($1)
		ON CONFLICT (title) DO UPDATE SET title = EXCLUDED.title
		RETURNING id
	`, title).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: upsert item %q: %w", title, err)
	}
	return id, nil
}

// WriteListings replaces the stored listings for an item with the given set.
func (pw *PostgresWriter) WriteListings(item string, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	itemID, err := pw.upsertItem(item)
	if err != nil {
		return err
	}

	if _, err := pw.db.Exec(
		"DELETE FROM listings WHERE market_item_id = $1", itemID); err != nil {
		return fmt.Errorf("postgres: clear listings: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(itemID, listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(itemID int64, batch []*models.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*7)

	for idx, l := range batch {
		base := idx * 7
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))

		var soldDate interface{}
		if l.HasSoldDate() {
			soldDate = l.SoldDate
		}
		valueArgs = append(valueArgs,
			itemID, l.Title, l.Price, soldDate, l.Condition, l.IsAnomalous, l.URL)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (market_item_id, title, price, sold_date, condition, is_anomalous, url)
		VALUES %s
		ON CONFLICT (market_item_id, url) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// WriteAnalysis stores one completed analysis row.
func (pw *PostgresWriter) WriteAnalysis(a *models.PriceAnalysis) error {
	itemID, err := pw.upsertItem(a.ItemName)
	if err != nil {
		return err
	}

	var estimate, offer interface{}
	if a.HasEstimate {
		estimate = a.Estimate
		offer = a.SuggestedOffer
	}

	var minP, avgP, medP, modeP interface{}
	if a.Stats.HasData() {
		minP, avgP, medP, modeP = a.Stats.Min, a.Stats.Average, a.Stats.Median, a.Stats.Mode
	}

	_, err = pw.db.Exec(`
		INSERT INTO price_analyses (
			market_item_id, search_term, total_listings, cleaned_listings, anomaly_count,
			min_price, avg_price, median_price, mode_price,
			estimate, effective_margin, suggested_offer, confidence
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, itemID, a.SearchTerm, a.TotalListings, a.CleanedListings, a.AnomalyCount,
		minP, avgP, medP, modeP, estimate, a.EffectiveMargin, offer, a.Confidence)
	if err != nil {
		return fmt.Errorf("postgres: insert analysis: %w", err)
	}
	return nil
}

// FetchListings retrieves the stored listings for an item — used to re-run
// the pipeline over persisted data.
func (pw *PostgresWriter) FetchListings(item string) ([]*models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT l.id, l.title, l.price, l.sold_date, l.condition, l.is_anomalous, l.url, l.created_at
		FROM listings l
		JOIN market_items m ON m.id = l.market_item_id
		WHERE m.title = $1
		ORDER BY l.id
	`, item)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var soldDate sql.NullTime
		if err := rows.Scan(
			&l.ID, &l.Title, &l.Price, &soldDate, &l.Condition,
			&l.IsAnomalous, &l.URL, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if soldDate.Valid {
			l.SoldDate = soldDate.Time
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Close closes the database handle.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
