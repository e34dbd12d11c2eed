package api

import (
	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/tasks"
)

type Handler struct {
	articleRepo database.ArticleRepository
	tickerRepo  database.TickerRepository
	dispatcher  *tasks.Dispatcher
	scheduler   tasks.TaskSchedulerInterface
}

// ArticleResponse is the JSON shape served to the dashboard. Sentiment
// fields are nil until the article has been scored.
type ArticleResponse struct {
	Ticker      string   `json:"ticker"`
	Headline    string   `json:"headline"`
	DatePosted  string   `json:"date_posted,omitempty"`
	Source      string   `json:"source"`
	ArticleLink string   `json:"article_link"`
	Negative    *float64 `json:"negative_sentiment"`
	Positive    *float64 `json:"positive_sentiment"`
	Neutral     *float64 `json:"neutral_sentiment"`
	Compound    *float64 `json:"compound_sentiment"`
	CreatedAt   string   `json:"created_at"`
}

type TickerMetaResponse struct {
	Ticker      string  `json:"ticker"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	MarketCap   float64 `json:"market_cap"`
	CompanyName string  `json:"company_name"`
}
