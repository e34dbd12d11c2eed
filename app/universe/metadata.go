package universe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/scraper"
)

// MetadataFetcher pulls sector, industry, market cap and company name
// for a ticker from the exchange's quote API.
type MetadataFetcher struct {
	fetcher *scraper.Fetcher
	baseURL string
}

func NewMetadataFetcher(fetcher *scraper.Fetcher) *MetadataFetcher {
	return &MetadataFetcher{
		fetcher: fetcher,
		baseURL: "https://www.nseindia.com/api/quote-equity",
	}
}

type quoteResponse struct {
	Info struct {
		CompanyName string `json:"companyName"`
	} `json:"info"`
	IndustryInfo struct {
		Macro    string `json:"macro"`
		Industry string `json:"industry"`
	} `json:"industryInfo"`
	PriceInfo struct {
		PreviousClose float64 `json:"previousClose"`
	} `json:"priceInfo"`
	SecurityInfo struct {
		IssuedSize float64 `json:"issuedSize"`
	} `json:"securityInfo"`
}

// Fetch returns the metadata snapshot for one ticker. Market cap is
// previous close times issued size, in billions, rounded to two
// decimals.
func (m *MetadataFetcher) Fetch(ctx context.Context, ticker string) (*database.TickerMeta, error) {
	url := fmt.Sprintf("%s?symbol=%s", m.baseURL, ticker)

	data, err := m.fetcher.Get(ctx, url, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", ticker, err)
	}

	var quote quoteResponse
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("failed to decode quote for %s: %w", ticker, err)
	}

	if quote.Info.CompanyName == "" || quote.IndustryInfo.Industry == "" {
		return nil, fmt.Errorf("incomplete quote data for %s", ticker)
	}

	marketCap := math.Round(quote.PriceInfo.PreviousClose*quote.SecurityInfo.IssuedSize/1e9*100) / 100

	meta := &database.TickerMeta{
		Ticker:      ticker,
		Sector:      quote.IndustryInfo.Macro,
		Industry:    quote.IndustryInfo.Industry,
		MarketCap:   marketCap,
		CompanyName: quote.Info.CompanyName,
	}

	slog.Debug("Fetched ticker metadata", "ticker", ticker, "sector", meta.Sector, "market_cap", meta.MarketCap)
	return meta, nil
}
