package database

import (
	"fmt"
)

var _ TickerRepository = (*TickerRepo)(nil)

// KnownIndices is the fixed set of index columns in
// indices_constituents. Index names select a column, so they are
// validated against this list instead of being parameterized.
var KnownIndices = []string{"nifty_50", "nifty_100", "nifty_200", "nifty_500"}

func ValidIndex(index string) bool {
	for _, known := range KnownIndices {
		if index == known {
			return true
		}
	}
	return false
}

// TickerRepo handles database operations for ticker metadata and index
// membership.
type TickerRepo struct {
	db *DB
}

func NewTickerRepo(db *DB) *TickerRepo {
	return &TickerRepo{db: db}
}

// InsertTickerMetadata replaces metadata per ticker, one upsert per
// row, so a failure mid-batch leaves unrelated tickers intact.
func (r *TickerRepo) InsertTickerMetadata(rows []TickerMeta) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO ticker_meta (ticker, sector, industry, market_cap, company_name)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare metadata upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.Ticker, row.Sector, row.Industry, row.MarketCap, row.CompanyName); err != nil {
			return fmt.Errorf("failed to upsert metadata for %s: %w", row.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metadata batch: %w", err)
	}

	return nil
}

// GetTickerMetadata returns metadata rows, optionally filtered by index
// membership or by a single ticker. The filters are mutually
// exclusive; supplying both is rejected rather than silently picking
// one.
func (r *TickerRepo) GetTickerMetadata(index, ticker string) ([]TickerMeta, error) {
	if index != "" && ticker != "" {
		return nil, fmt.Errorf("index and ticker filters are mutually exclusive")
	}

	query := `
		SELECT ticker, COALESCE(sector, ''), COALESCE(industry, ''),
		       COALESCE(market_cap, 0), COALESCE(company_name, '')
		FROM ticker_meta`
	var args []interface{}

	switch {
	case ticker != "":
		query += " WHERE ticker = ?"
		args = append(args, ticker)
	case index != "":
		if !ValidIndex(index) {
			return nil, fmt.Errorf("unknown index: %s", index)
		}
		query += fmt.Sprintf(" WHERE ticker IN (SELECT ticker FROM indices_constituents WHERE %s = TRUE)", index)
	}

	query += " ORDER BY ticker"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker metadata: %w", err)
	}
	defer rows.Close()

	var metadata []TickerMeta
	for rows.Next() {
		var m TickerMeta
		if err := rows.Scan(&m.Ticker, &m.Sector, &m.Industry, &m.MarketCap, &m.CompanyName); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		metadata = append(metadata, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metadata rows: %w", err)
	}

	return metadata, nil
}

// GetIndexConstituents returns the ticker symbols belonging to a named
// index.
func (r *TickerRepo) GetIndexConstituents(index string) ([]string, error) {
	if !ValidIndex(index) {
		return nil, fmt.Errorf("unknown index: %s", index)
	}

	rows, err := r.db.Query(fmt.Sprintf(
		"SELECT ticker FROM indices_constituents WHERE %s = TRUE ORDER BY ticker", index))
	if err != nil {
		return nil, fmt.Errorf("failed to get index constituents: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan constituent row: %w", err)
		}
		tickers = append(tickers, ticker)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating constituent rows: %w", err)
	}

	return tickers, nil
}

// UpsertIndexConstituents refreshes membership of one index: every
// ticker's flag for that index is reset, then set for the given
// members. Membership in other indices is untouched.
func (r *TickerRepo) UpsertIndexConstituents(index string, tickers []string) error {
	if !ValidIndex(index) {
		return fmt.Errorf("unknown index: %s", index)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("UPDATE indices_constituents SET %s = FALSE", index)); err != nil {
		return fmt.Errorf("failed to reset index membership: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO indices_constituents (ticker, %s) VALUES (?, TRUE)
		ON CONFLICT (ticker) DO UPDATE SET %s = TRUE
	`, index, index))
	if err != nil {
		return fmt.Errorf("failed to prepare constituent upsert: %w", err)
	}
	defer stmt.Close()

	for _, ticker := range tickers {
		if _, err := stmt.Exec(ticker); err != nil {
			return fmt.Errorf("failed to upsert constituent %s: %w", ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit constituent batch: %w", err)
	}

	return nil
}
