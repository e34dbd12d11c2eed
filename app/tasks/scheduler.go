package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tickerpulse/tickerpulse/app/cfg"
	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/scraper"
	"github.com/tickerpulse/tickerpulse/app/sentiment"
	"github.com/tickerpulse/tickerpulse/app/universe"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// taskWorkerCount is deliberately 1: pipeline phases (collect, dedup,
// score, extract, metadata) must run as sequential writers against the
// store. Parallelism lives inside the dispatcher's ticker pool, not in
// the task queue.
const taskWorkerCount = 1

type Scheduler struct {
	articleRepo     database.ArticleRepository
	tickerRepo      database.TickerRepository
	dispatcher      *Dispatcher
	sentimentClient *sentiment.Client
	fetcher         *scraper.Fetcher
	extractor       *scraper.ContentExtractor
	updater         *universe.Updater
	metadataFetcher *universe.MetadataFetcher

	universeName     string
	interval         time.Duration
	universeInterval time.Duration
	batchSize        int
	sequential       bool
	extractContent   bool

	lastUniverseRefresh time.Time
	ctx                 context.Context
	cancel              context.CancelFunc
	wg                  sync.WaitGroup
	taskQueue           chan TaskInterface
}

func NewScheduler(articleRepo database.ArticleRepository, tickerRepo database.TickerRepository,
	dispatcher *Dispatcher, sentimentClient *sentiment.Client,
	fetcher *scraper.Fetcher, extractor *scraper.ContentExtractor,
	updater *universe.Updater, metadataFetcher *universe.MetadataFetcher) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	return &Scheduler{
		articleRepo:      articleRepo,
		tickerRepo:       tickerRepo,
		dispatcher:       dispatcher,
		sentimentClient:  sentimentClient,
		fetcher:          fetcher,
		extractor:        extractor,
		updater:          updater,
		metadataFetcher:  metadataFetcher,
		universeName:     c.Universe,
		interval:         time.Duration(c.SchedulerInterval) * time.Second,
		universeInterval: time.Duration(c.UniverseInterval) * time.Second,
		batchSize:        c.BatchSize,
		sequential:       c.Sequential,
		extractContent:   c.ExtractContent,
		ctx:              ctx,
		cancel:           cancel,
		taskQueue:        make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < taskWorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueuePipeline()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	s.enqueueUniverseRefresh()
	s.enqueuePipeline()
}

// enqueuePipeline queues one pipeline invocation. The single task
// worker drains the queue in order, so the phases execute
// sequentially: collect, dedup, score, extract, metadata.
func (s *Scheduler) enqueuePipeline() {
	if time.Since(s.lastUniverseRefresh) >= s.universeInterval {
		s.enqueueUniverseRefresh()
	}

	tasks := []TaskInterface{
		NewCollectNewsTask(s.universeName, s.dispatcher, s.articleRepo, s.tickerRepo, s.sequential),
		NewDeduplicateTask(s.articleRepo),
	}

	if s.sentimentClient != nil {
		tasks = append(tasks, NewScoreArticlesTask(s.sentimentClient, s.articleRepo, s.batchSize))
	}
	if s.extractContent {
		tasks = append(tasks, NewExtractContentTask(s.fetcher, s.extractor, s.articleRepo, s.batchSize))
	}

	for _, task := range tasks {
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "error", err)
		}
	}
}

func (s *Scheduler) enqueueUniverseRefresh() {
	if err := s.EnqueueTask(NewRefreshUniverseTask(s.updater, s.tickerRepo)); err != nil {
		slog.Warn("Failed to enqueue RefreshUniverseTask", "error", err)
		return
	}
	if err := s.EnqueueTask(NewRefreshMetadataTask(s.universeName, s.metadataFetcher, s.tickerRepo)); err != nil {
		slog.Warn("Failed to enqueue RefreshMetadataTask", "error", err)
	}
	s.lastUniverseRefresh = time.Now()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 30*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "scope", task.GetScope(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
