package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RSSFeed is one configured market-news RSS feed.
type RSSFeed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DefaultRSSFeeds lists Indian financial market feeds consulted for
// every ticker.
var DefaultRSSFeeds = []RSSFeed{
	{Name: "Moneycontrol", URL: "https://www.moneycontrol.com/rss/marketreports.xml"},
	{Name: "Economic Times Markets", URL: "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms"},
	{Name: "LiveMint Markets", URL: "https://www.livemint.com/rss/markets"},
	{Name: "Business Standard Markets", URL: "https://www.business-standard.com/rss/markets-106.rss"},
}

// RSSSource surfaces articles for a ticker from broad market RSS feeds
// by keyword match against the headline. Unlike the page scrapers it
// gets absolute publication dates straight from the feed.
type RSSSource struct {
	fetcher *Fetcher
	parser  *gofeed.Parser
	feeds   []RSSFeed
}

func NewRSSSource(fetcher *Fetcher, feeds []RSSFeed) *RSSSource {
	if len(feeds) == 0 {
		feeds = DefaultRSSFeeds
	}
	return &RSSSource{
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
		feeds:   feeds,
	}
}

func (s *RSSSource) Name() string {
	return "MarketRSS"
}

func (s *RSSSource) Articles(ctx context.Context, ticker string) []Article {
	var articles []Article

	for _, feed := range s.feeds {
		data, err := s.fetcher.Get(ctx, feed.URL, false)
		if err != nil {
			slog.Warn("Failed to fetch RSS feed", "feed", feed.Name, "ticker", ticker, "error", err)
			continue
		}

		parsed, err := s.parser.Parse(bytes.NewReader(data))
		if err != nil {
			slog.Warn("Failed to parse RSS feed", "feed", feed.Name, "ticker", ticker, "error", err)
			continue
		}

		articles = append(articles, s.matchItems(parsed.Items, ticker, feed.Name)...)
	}

	return articles
}

func (s *RSSSource) matchItems(items []*gofeed.Item, ticker, feedName string) []Article {
	var articles []Article

	for _, item := range items {
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}
		if !mentionsTicker(item.Title, ticker) {
			continue
		}

		datePosted := ""
		if item.PublishedParsed != nil {
			datePosted = item.PublishedParsed.Local().Format(TimestampLayout)
		}

		articles = append(articles, Article{
			Ticker:      ticker,
			Headline:    NormalizeHeadline(item.Title),
			DatePosted:  datePosted,
			Source:      feedName,
			ArticleLink: item.Link,
		})
	}

	return articles
}

// mentionsTicker reports whether the headline references the symbol as
// a whole word. Symbols are uppercase alphanumerics, so a plain
// substring check would match inside unrelated words.
func mentionsTicker(headline, ticker string) bool {
	upper := strings.ToUpper(headline)
	symbol := strings.ToUpper(ticker)

	idx := 0
	for {
		i := strings.Index(upper[idx:], symbol)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(symbol)

		beforeOK := start == 0 || !isWordChar(upper[start-1])
		afterOK := end == len(upper) || !isWordChar(upper[end])
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isWordChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
