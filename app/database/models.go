package database

import (
	"time"
)

// Article is a stored news record. The natural key is
// (ticker, headline); sentiment columns stay NULL until the article is
// scored, and scoring writes all four together.
type Article struct {
	Ticker        string
	Headline      string
	DatePosted    string // "2006-01-02 15:04:05", empty when unresolved
	Source        string
	ArticleLink   string
	Content       string
	ContentStatus string // pending, success, failed, skipped
	Negative      *float64
	Positive      *float64
	Neutral       *float64
	Compound      *float64
	CreatedAt     time.Time
}

// Scored reports whether all four sentiment columns are set.
func (a Article) Scored() bool {
	return a.Negative != nil && a.Positive != nil && a.Neutral != nil && a.Compound != nil
}

// TickerMeta is a derived snapshot of exchange metadata for one
// ticker, fully replaced on each refresh.
type TickerMeta struct {
	Ticker      string
	Sector      string
	Industry    string
	MarketCap   float64
	CompanyName string
}

// DuplicateRow describes a redundant article row found by dedup
// maintenance: a row sharing its (ticker, headline) key with an
// earlier-created row.
type DuplicateRow struct {
	Rank        int
	Ticker      string
	Headline    string
	DatePosted  string
	ArticleLink string
	CreatedAt   time.Time
}

// ArticleRef identifies an article pending content extraction.
type ArticleRef struct {
	Ticker      string
	Headline    string
	Source      string
	ArticleLink string
}
