package scraper

import (
	"context"
	"log/slog"
)

// Collector runs every registered source for one ticker and
// concatenates the results. Sources run in registration order and are
// isolated from each other: a failing or panicking adapter is logged
// and skipped. Deduplication is deliberately not done here: the
// natural key spans re-fetches over time, so it belongs to the store.
type Collector struct {
	sources []Source
}

func NewCollector(sources ...Source) *Collector {
	return &Collector{sources: sources}
}

func (c *Collector) Sources() []Source {
	return c.sources
}

// Run collects articles for a single ticker from all sources.
func (c *Collector) Run(ctx context.Context, ticker string) []Article {
	var articles []Article

	for _, source := range c.sources {
		slog.Debug("Fetching articles", "source", source.Name(), "ticker", ticker)

		fetched := c.collectFrom(ctx, source, ticker)

		slog.Debug("Fetched articles", "source", source.Name(), "ticker", ticker, "count", len(fetched))
		articles = append(articles, fetched...)
	}

	slog.Info("Collected articles", "ticker", ticker, "total", len(articles))
	return articles
}

func (c *Collector) collectFrom(ctx context.Context, source Source, ticker string) (articles []Article) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Source adapter panicked", "source", source.Name(), "ticker", ticker, "panic", r)
			articles = nil
		}
	}()

	return source.Articles(ctx, ticker)
}
