package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// YahooFinanceSource scrapes the Yahoo Finance news tab for NSE-listed
// symbols (".NS" suffix). The publisher and relative time share one
// footer element separated by a bullet, so the footer is split-parsed;
// a missing footer is tolerated and attributed to Yahoo Finance itself.
type YahooFinanceSource struct {
	fetcher *Fetcher

	baseURL          string
	articleSelector  string
	headlineSelector string
	footerSelector   string
	linkSelector     string
}

func NewYahooFinanceSource(fetcher *Fetcher) *YahooFinanceSource {
	return &YahooFinanceSource{
		fetcher:          fetcher,
		baseURL:          "https://finance.yahoo.com/quote",
		articleSelector:  "div.content.yf-1y7058a",
		headlineSelector: "a h3",
		footerSelector:   "div.publishing.yf-1weyqlp",
		linkSelector:     "a",
	}
}

func (s *YahooFinanceSource) Name() string {
	return "YahooFinance"
}

func (s *YahooFinanceSource) Articles(ctx context.Context, ticker string) []Article {
	url := fmt.Sprintf("%s/%s.NS/news/", s.baseURL, ticker)

	data, err := s.fetcher.Get(ctx, url, false)
	if err != nil {
		slog.Warn("Failed to fetch Yahoo Finance page", "ticker", ticker, "error", err)
		return nil
	}

	return s.parse(data, ticker, time.Now())
}

func (s *YahooFinanceSource) parse(data []byte, ticker string, now time.Time) []Article {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to parse Yahoo Finance markup", "ticker", ticker, "error", err)
		return nil
	}

	var articles []Article

	doc.Find(s.articleSelector).Each(func(_ int, sel *goquery.Selection) {
		linkTag := sel.Find(s.linkSelector)
		headlineTag := sel.Find(s.headlineSelector)

		if linkTag.Length() == 0 || headlineTag.Length() == 0 {
			slog.Warn("Missing link or headline in Yahoo Finance article", "ticker", ticker)
			return
		}

		link, _ := linkTag.First().Attr("href")
		if link == "" {
			slog.Warn("Missing article link in Yahoo Finance article", "ticker", ticker)
			return
		}
		if !strings.HasPrefix(link, "http") {
			link = "https://finance.yahoo.com" + link
		}

		// The footer is optional; without it the article keeps the
		// default attribution and an unresolved date.
		source := "Yahoo Finance"
		timeStr := ""
		if footerTag := sel.Find(s.footerSelector); footerTag.Length() > 0 {
			parts := strings.Split(strings.TrimSpace(footerTag.First().Text()), "•")
			if len(parts) > 0 {
				source = strings.TrimSpace(parts[0])
			}
			if len(parts) > 1 {
				timeStr = strings.TrimSpace(parts[1])
			}
		}

		articles = append(articles, Article{
			Ticker:      ticker,
			Headline:    NormalizeHeadline(headlineTag.First().Text()),
			DatePosted:  ResolveRelative(timeStr, now),
			Source:      source,
			ArticleLink: link,
		})
	})

	return articles
}
