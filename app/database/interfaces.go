package database

type ArticleRepository interface {
	InsertArticles(articles []Article, hasSentiment bool) error
	GetArticles(n int, latest bool, hasSentiment bool, afterDate string) ([]Article, error)
	GetArticleCount() (int, error)
	GetArticleStats() (total, scored, unscored int, err error)

	QueryDuplicates() ([]DuplicateRow, error)
	DeduplicateDB() (int64, error)

	GetArticlesForExtraction(limit int) ([]ArticleRef, error)
	UpdateArticleContent(ticker, headline, content, status string) error
}

type TickerRepository interface {
	InsertTickerMetadata(rows []TickerMeta) error
	GetTickerMetadata(index, ticker string) ([]TickerMeta, error)

	GetIndexConstituents(index string) ([]string, error)
	UpsertIndexConstituents(index string, tickers []string) error
}
