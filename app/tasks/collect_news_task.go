package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/scraper"
)

// CollectNewsTask runs one collection pass over a universe: fan out
// across tickers, drop rows without a headline, then hand the merged
// batch to the store in a single unscored insert. The write happens
// only after the parallel phase has fully joined, so collection
// workers never contend with the database.
type CollectNewsTask struct {
	Task
	dispatcher  *Dispatcher
	articleRepo database.ArticleRepository
	tickerRepo  database.TickerRepository
	sequential  bool
}

func NewCollectNewsTask(universe string, dispatcher *Dispatcher,
	articleRepo database.ArticleRepository, tickerRepo database.TickerRepository,
	sequential bool) *CollectNewsTask {
	return &CollectNewsTask{
		Task:        NewTask(TaskTypeCollectNews, universe),
		dispatcher:  dispatcher,
		articleRepo: articleRepo,
		tickerRepo:  tickerRepo,
		sequential:  sequential,
	}
}

func (t *CollectNewsTask) Execute(ctx context.Context) error {
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
		slog.Warn("No constituents known for universe, skipping collection", "universe", t.Scope)
		return nil
	}

	result := t.dispatcher.Run(ctx, tickers, t.sequential)

	articles := dropEmptyHeadlines(result.Articles)

	if len(articles) == 0 {
		slog.Warn("No news articles found for any ticker", "universe", t.Scope, "tickers", result.Processed)
		return nil
	}

	if err := t.articleRepo.InsertArticles(toRecords(articles), false); err != nil {
		return fmt.Errorf("failed to insert articles: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"universe", t.Scope,
		"duration", t.GetDuration(),
		"tickers", result.Processed,
		"articles", len(articles),
		"unavailable", len(result.Unavailable))
	if len(result.Unavailable) > 0 {
		slog.Warn("Tickers with no articles", "universe", t.Scope, "tickers", result.Unavailable)
	}

	return nil
}

func dropEmptyHeadlines(articles []scraper.Article) []scraper.Article {
	kept := make([]scraper.Article, 0, len(articles))
	for _, article := range articles {
		if article.Headline == "" {
			continue
		}
		kept = append(kept, article)
	}
	return kept
}

func toRecords(articles []scraper.Article) []database.Article {
	records := make([]database.Article, len(articles))
	for i, a := range articles {
		records[i] = database.Article{
			Ticker:      a.Ticker,
			Headline:    a.Headline,
			DatePosted:  a.DatePosted,
			Source:      a.Source,
			ArticleLink: a.ArticleLink,
		}
	}
	return records
}
