package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/universe"
)

// RefreshMetadataTask re-fetches the exchange metadata snapshot for
// every constituent of the configured universe. Each ticker's row is
// replaced wholesale; tickers with incomplete quote data are skipped.
type RefreshMetadataTask struct {
	Task
	fetcher    *universe.MetadataFetcher
	tickerRepo database.TickerRepository
}

func NewRefreshMetadataTask(universeName string, fetcher *universe.MetadataFetcher,
	tickerRepo database.TickerRepository) *RefreshMetadataTask {
	return &RefreshMetadataTask{
		Task:       NewTask(TaskTypeRefreshMetadata, universeName),
		fetcher:    fetcher,
		tickerRepo: tickerRepo,
	}
}

func (t *RefreshMetadataTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	tickers, err := t.tickerRepo.GetIndexConstituents(t.Scope)
	if err != nil {
		return fmt.Errorf("failed to get constituents for %s: %w", t.Scope, err)
	}
	if len(tickers) == 0 {
		slog.Warn("No constituents known for universe, skipping metadata refresh", "universe", t.Scope)
		return nil
	}

	rows := make([]database.TickerMeta, 0, len(tickers))
	skipped := 0

	for _, ticker := range tickers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		meta, err := t.fetcher.Fetch(ctx, ticker)
		if err != nil {
			slog.Warn("Failed to fetch ticker metadata", "ticker", ticker, "error", err)
			skipped++
			continue
		}
		rows = append(rows, *meta)
	}

	if err := t.tickerRepo.InsertTickerMetadata(rows); err != nil {
		return fmt.Errorf("failed to store ticker metadata: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"universe", t.Scope,
		"duration", t.GetDuration(),
		"updated", len(rows),
		"skipped", skipped)

	return nil
}
