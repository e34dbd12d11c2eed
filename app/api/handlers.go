package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tickerpulse/tickerpulse/app/cfg"
	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/tasks"
)

func NewHandler(articleRepo database.ArticleRepository, tickerRepo database.TickerRepository,
	dispatcher *tasks.Dispatcher, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		articleRepo: articleRepo,
		tickerRepo:  tickerRepo,
		dispatcher:  dispatcher,
		scheduler:   scheduler,
	}
}

// GetArticles serves filtered article queries for the dashboard.
// Query parameters: limit (default 20), order (latest|oldest),
// scored (true|false, omit for all), after (date lower bound).
func (h *Handler) GetArticles(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	latest := c.DefaultQuery("order", "latest") != "oldest"

	// hasSentiment=false narrows to unscored rows; anything else
	// returns all rows, which the scored=true case filters below.
	hasSentiment := c.Query("scored") != "false"

	articles, err := h.articleRepo.GetArticles(limit, latest, hasSentiment, c.Query("after"))
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	onlyScored := c.Query("scored") == "true"

	response := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		if onlyScored && !a.Scored() {
			continue
		}
		response = append(response, toArticleResponse(a))
	}

	c.JSON(http.StatusOK, response)
}

// GetTickers serves ticker metadata, optionally scoped to one index
// via ?index=.
func (h *Handler) GetTickers(c *gin.Context) {
	index := c.Query("index")

	metadata, err := h.tickerRepo.GetTickerMetadata(index, "")
	if err != nil {
		slog.Error("Database error", "operation", "get_ticker_metadata", "index", index, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toTickerResponses(metadata))
}

// GetTicker serves metadata for a single ticker.
func (h *Handler) GetTicker(c *gin.Context) {
	ticker := c.Param("ticker")

	metadata, err := h.tickerRepo.GetTickerMetadata("", ticker)
	if err != nil {
		slog.Error("Database error", "operation", "get_ticker_metadata", "ticker", ticker, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if len(metadata) == 0 {
		c.Status(http.StatusNotFound)
		return
	}

	c.JSON(http.StatusOK, toTickerResponses(metadata)[0])
}

// GetIndexConstituents serves the ticker set for a named index.
func (h *Handler) GetIndexConstituents(c *gin.Context) {
	index := c.Param("index")

	tickers, err := h.tickerRepo.GetIndexConstituents(index)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"index": index, "tickers": tickers, "count": len(tickers)})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	if count, err := h.articleRepo.GetArticleCount(); err == nil {
		health["articles"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	total, scored, unscored, err := h.articleRepo.GetArticleStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_article_stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": gin.H{
			"total":    total,
			"scored":   scored,
			"unscored": unscored,
		},
	})
}

// APICollect queues a collection pass for the configured universe.
func (h *Handler) APICollect(c *gin.Context) {
	appCfg := cfg.Get()

	task := tasks.NewCollectNewsTask(appCfg.Universe, h.dispatcher, h.articleRepo, h.tickerRepo, appCfg.Sequential)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue collection task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"queued": string(task.GetType()), "universe": appCfg.Universe})
}

// APIDeduplicate queues dedup maintenance.
func (h *Handler) APIDeduplicate(c *gin.Context) {
	task := tasks.NewDeduplicateTask(h.articleRepo)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue dedup task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"queued": string(task.GetType())})
}

func toArticleResponse(a database.Article) ArticleResponse {
	createdAt := ""
	if !a.CreatedAt.IsZero() {
		createdAt = a.CreatedAt.Format(time.RFC3339)
	}

	return ArticleResponse{
		Ticker:      a.Ticker,
		Headline:    a.Headline,
		DatePosted:  a.DatePosted,
		Source:      a.Source,
		ArticleLink: a.ArticleLink,
		Negative:    a.Negative,
		Positive:    a.Positive,
		Neutral:     a.Neutral,
		Compound:    a.Compound,
		CreatedAt:   createdAt,
	}
}

func toTickerResponses(metadata []database.TickerMeta) []TickerMetaResponse {
	response := make([]TickerMetaResponse, len(metadata))
	for i, m := range metadata {
		response[i] = TickerMetaResponse{
			Ticker:      m.Ticker,
			Sector:      m.Sector,
			Industry:    m.Industry,
			MarketCap:   m.MarketCap,
			CompanyName: m.CompanyName,
		}
	}
	return response
}
