package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/universe"
)

// RefreshUniverseTask re-downloads constituent lists for every
// configured index and replaces each index's membership flags. Runs on
// a slower cadence than news collection.
type RefreshUniverseTask struct {
	Task
	updater    *universe.Updater
	tickerRepo database.TickerRepository
}

func NewRefreshUniverseTask(updater *universe.Updater, tickerRepo database.TickerRepository) *RefreshUniverseTask {
	return &RefreshUniverseTask{
		Task:       NewTask(TaskTypeRefreshUniverse, "all"),
		updater:    updater,
		tickerRepo: tickerRepo,
	}
}

func (t *RefreshUniverseTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	refreshed := 0
	var lastErr error

	for _, index := range t.updater.Indices() {
		if !database.ValidIndex(index) {
			slog.Warn("Ignoring unknown index in universe config", "index", index)
			continue
		}

		tickers, err := t.updater.FetchConstituents(ctx, index)
		if err != nil {
			slog.Warn("Failed to refresh index constituents", "index", index, "error", err)
			lastErr = err
			continue
		}
		if len(tickers) == 0 {
			slog.Warn("Index constituent list came back empty, keeping previous membership", "index", index)
			continue
		}

		if err := t.tickerRepo.UpsertIndexConstituents(index, tickers); err != nil {
			slog.Warn("Failed to store index constituents", "index", index, "error", err)
			lastErr = err
			continue
		}

		refreshed++
	}

	if refreshed == 0 && lastErr != nil {
		return fmt.Errorf("failed to refresh any index: %w", lastErr)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"indices", refreshed)

	return nil
}
