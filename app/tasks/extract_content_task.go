package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/scraper"
)

// ExtractContentTask fetches pending articles' pages and stores the
// readable body text. Finology "links" point back at the company page
// rather than an article, so those rows are marked skipped instead of
// fetched.
type ExtractContentTask struct {
	Task
	fetcher     *scraper.Fetcher
	extractor   *scraper.ContentExtractor
	articleRepo database.ArticleRepository
	limit       int
}

func NewExtractContentTask(fetcher *scraper.Fetcher, extractor *scraper.ContentExtractor,
	articleRepo database.ArticleRepository, limit int) *ExtractContentTask {
	return &ExtractContentTask{
		Task:        NewTask(TaskTypeExtractContent, "pending"),
		fetcher:     fetcher,
		extractor:   extractor,
		articleRepo: articleRepo,
		limit:       limit,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	refs, err := t.articleRepo.GetArticlesForExtraction(t.limit)
	if err != nil {
		return fmt.Errorf("failed to get articles for content extraction: %w", err)
	}

	if len(refs) == 0 {
		slog.Debug("No articles need content extraction")
		return nil
	}

	successCount := 0
	errorCount := 0
	skippedCount := 0

	for _, ref := range refs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if ref.Source == "Finology" {
			if err := t.articleRepo.UpdateArticleContent(ref.Ticker, ref.Headline, "", "skipped"); err != nil {
				slog.Error("Failed to mark article skipped", "ticker", ref.Ticker, "error", err)
			}
			skippedCount++
			continue
		}

		if err := t.extractContentFor(ctx, ref); err != nil {
			slog.Warn("Failed to extract article content", "ticker", ref.Ticker, "url", ref.ArticleLink, "error", err)
			errorCount++

			if err := t.articleRepo.UpdateArticleContent(ref.Ticker, ref.Headline, "", "failed"); err != nil {
				slog.Error("Failed to update extraction status", "ticker", ref.Ticker, "error", err)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount,
		"skipped", skippedCount)

	return nil
}

func (t *ExtractContentTask) extractContentFor(ctx context.Context, ref database.ArticleRef) error {
	data, err := t.fetcher.Get(ctx, ref.ArticleLink, false)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	content, err := t.extractor.Run(data, ref.ArticleLink)
	if err != nil {
		return err
	}

	if err := t.articleRepo.UpdateArticleContent(ref.Ticker, ref.Headline, content, "success"); err != nil {
		return fmt.Errorf("failed to store extracted content: %w", err)
	}

	return nil
}
