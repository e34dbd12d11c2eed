package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/sentiment"
)

// ScoreArticlesTask backfills sentiment for unscored articles. It
// fetches unscored batches newest first, scores each batch in one
// model call, and writes the scores back through the same
// upsert-by-natural-key path, so an unscored article becomes scored
// without a separate update path. A batch whose result count does not
// match its headline count is discarded wholesale; those articles stay
// unscored and are retried on the next run.
type ScoreArticlesTask struct {
	Task
	client      *sentiment.Client
	articleRepo database.ArticleRepository
	batchSize   int
}

func NewScoreArticlesTask(client *sentiment.Client, articleRepo database.ArticleRepository, batchSize int) *ScoreArticlesTask {
	return &ScoreArticlesTask{
		Task:        NewTask(TaskTypeScoreArticles, "backfill"),
		client:      client,
		articleRepo: articleRepo,
		batchSize:   batchSize,
	}
}

func (t *ScoreArticlesTask) Execute(ctx context.Context) error {
	scored := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := t.articleRepo.GetArticles(t.batchSize, true, false, "")
		if err != nil {
			return fmt.Errorf("failed to fetch unscored articles: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		headlines := make([]string, len(batch))
		for i, article := range batch {
			headlines[i] = article.Headline
		}

		scores, err := t.client.Analyze(ctx, headlines)
		if err != nil {
			slog.Warn("Discarding sentiment batch", "size", len(batch), "error", err)
			return fmt.Errorf("sentiment batch failed: %w", err)
		}

		for i := range batch {
			s := scores[i]
			compound := s.Compound()
			batch[i].Negative = &s.Negative
			batch[i].Positive = &s.Positive
			batch[i].Neutral = &s.Neutral
			batch[i].Compound = &compound
		}

		if err := t.articleRepo.InsertArticles(batch, true); err != nil {
			return fmt.Errorf("failed to write back sentiment scores: %w", err)
		}

		scored += len(batch)
	}

	if scored == 0 {
		slog.Info("No articles without sentiment scores found")
		return nil
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"scored", scored)

	return nil
}
