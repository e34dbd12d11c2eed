package tasks

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/tickerpulse/tickerpulse/app/scraper"
)

// perTickerTimeout bounds one ticker's collection across all of its
// source adapters. A hung provider costs one worker slot for at most
// this long instead of stalling the whole batch.
const perTickerTimeout = 2 * time.Minute

// DispatchResult aggregates a collection pass over the ticker
// universe. Unavailable lists tickers that yielded no articles at all,
// whether from provider failures or a genuinely quiet news day.
type DispatchResult struct {
	Articles    []scraper.Article
	Processed   int
	Unavailable []string
}

// Dispatcher fans ticker collection out over a fixed-size worker pool.
// Workers share no mutable state: each collects into its own slice and
// results are merged by the dispatcher (results arrive in completion
// order, which is fine because downstream aggregation groups by
// ticker). Per-ticker failures are isolated; a panic or timeout for
// one ticker never aborts the batch.
type Dispatcher struct {
	collector   *scraper.Collector
	workerCount int
}

func NewDispatcher(collector *scraper.Collector, workerCount int) *Dispatcher {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &Dispatcher{
		collector:   collector,
		workerCount: workerCount,
	}
}

type tickerResult struct {
	ticker   string
	articles []scraper.Article
}

// Run collects news for every ticker, in parallel unless sequential is
// requested.
func (d *Dispatcher) Run(ctx context.Context, tickers []string, sequential bool) DispatchResult {
	if sequential {
		return d.runSequential(ctx, tickers)
	}
	return d.runParallel(ctx, tickers)
}

func (d *Dispatcher) runSequential(ctx context.Context, tickers []string) DispatchResult {
	slog.Info("Processing tickers sequentially", "count", len(tickers))

	result := DispatchResult{Processed: len(tickers)}
	for _, ticker := range tickers {
		articles := d.collectTicker(ctx, ticker)
		if len(articles) == 0 {
			result.Unavailable = append(result.Unavailable, ticker)
			continue
		}
		result.Articles = append(result.Articles, articles...)
	}

	return result
}

func (d *Dispatcher) runParallel(ctx context.Context, tickers []string) DispatchResult {
	workers := d.workerCount
	if workers > len(tickers) {
		workers = len(tickers)
	}

	slog.Info("Processing tickers in parallel", "count", len(tickers), "workers", workers)

	tickerChan := make(chan string)
	resultChan := make(chan tickerResult, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range tickerChan {
				resultChan <- tickerResult{
					ticker:   ticker,
					articles: d.collectTicker(ctx, ticker),
				}
			}
		}()
	}

	go func() {
		defer close(tickerChan)
		for _, ticker := range tickers {
			select {
			case tickerChan <- ticker:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	result := DispatchResult{}
	for res := range resultChan {
		result.Processed++
		if len(res.articles) == 0 {
			result.Unavailable = append(result.Unavailable, res.ticker)
			continue
		}
		result.Articles = append(result.Articles, res.articles...)
	}

	return result
}

// collectTicker runs one ticker's collection under its own deadline
// and panic boundary.
func (d *Dispatcher) collectTicker(ctx context.Context, ticker string) (articles []scraper.Article) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Ticker collection panicked", "ticker", ticker, "panic", r)
			articles = nil
		}
	}()

	tickerCtx, cancel := context.WithTimeout(ctx, perTickerTimeout)
	defer cancel()

	return d.collector.Run(tickerCtx, ticker)
}
