package universe

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"

	"github.com/tickerpulse/tickerpulse/app/scraper"
)

// Updater refreshes index constituent lists from the index provider's
// CSV downloads.
type Updater struct {
	fetcher *scraper.Fetcher
	indices map[string]string
}

func NewUpdater(fetcher *scraper.Fetcher, indices map[string]string) *Updater {
	if len(indices) == 0 {
		indices = DefaultIndices
	}
	return &Updater{fetcher: fetcher, indices: indices}
}

// Indices returns the configured index names.
func (u *Updater) Indices() []string {
	names := make([]string, 0, len(u.indices))
	for name := range u.indices {
		names = append(names, name)
	}
	return names
}

// FetchConstituents downloads and parses the constituent CSV for one
// index, returning its ticker symbols.
func (u *Updater) FetchConstituents(ctx context.Context, index string) ([]string, error) {
	url, ok := u.indices[index]
	if !ok {
		return nil, fmt.Errorf("no constituent URL configured for index %s", index)
	}

	data, err := u.fetcher.Get(ctx, url, false)
	if err != nil {
		return nil, fmt.Errorf("failed to download constituents for %s: %w", index, err)
	}

	tickers, err := parseConstituentCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse constituents for %s: %w", index, err)
	}

	slog.Info("Fetched index constituents", "index", index, "count", len(tickers))
	return tickers, nil
}

// parseConstituentCSV extracts the Symbol column from an index
// provider CSV.
func parseConstituentCSV(data []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("CSV has no data rows")
	}

	symbolCol := -1
	for i, header := range records[0] {
		if header == "Symbol" {
			symbolCol = i
			break
		}
	}
	if symbolCol < 0 {
		return nil, fmt.Errorf("CSV has no Symbol column")
	}

	var tickers []string
	for _, record := range records[1:] {
		if symbolCol >= len(record) || record[symbolCol] == "" {
			continue
		}
		tickers = append(tickers, record[symbolCol])
	}

	return tickers, nil
}
