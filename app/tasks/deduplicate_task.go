package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tickerpulse/tickerpulse/app/database"
)

// DeduplicateTask is idempotent maintenance: rows sharing a
// (ticker, headline) key beyond the earliest-created one are deleted.
// Running it on a clean table is a no-op.
type DeduplicateTask struct {
	Task
	articleRepo database.ArticleRepository
}

func NewDeduplicateTask(articleRepo database.ArticleRepository) *DeduplicateTask {
	return &DeduplicateTask{
		Task:        NewTask(TaskTypeDeduplicate, "articles"),
		articleRepo: articleRepo,
	}
}

func (t *DeduplicateTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	duplicates, err := t.articleRepo.QueryDuplicates()
	if err != nil {
		return fmt.Errorf("failed to query duplicates: %w", err)
	}

	if len(duplicates) == 0 {
		slog.Info("No duplicates found in database")
		return nil
	}

	slog.Info("Duplicates found in database", "count", len(duplicates))

	deleted, err := t.articleRepo.DeduplicateDB()
	if err != nil {
		return fmt.Errorf("failed to delete duplicates: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"deleted", deleted)

	return nil
}
