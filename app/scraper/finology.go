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

// FinologyDateLayout matches Finology's day/month/time format, which
// omits the year ("2 Jan, 3:04 PM"). The year is inferred by
// ResolveAbsolute.
const FinologyDateLayout = "2 Jan, 3:04 PM"

// FinologySource scrapes the Finology Ticker company page. Articles on
// the page have no individual links, so the company page URL stands in
// as the article link.
type FinologySource struct {
	fetcher *Fetcher

	baseURL          string
	articleSelector  string
	headlineSelector string
	dateSelector     string
}

func NewFinologySource(fetcher *Fetcher) *FinologySource {
	return &FinologySource{
		fetcher:          fetcher,
		baseURL:          "https://ticker.finology.in/company",
		articleSelector:  "div#newsarticles a#btnDetails.newslink",
		headlineSelector: "span",
		dateSelector:     "small",
	}
}

func (s *FinologySource) Name() string {
	return "Finology"
}

func (s *FinologySource) Articles(ctx context.Context, ticker string) []Article {
	url := fmt.Sprintf("%s/%s", s.baseURL, ticker)

	// Finology rejects requests carrying the full browser header set.
	data, err := s.fetcher.Get(ctx, url, true)
	if err != nil {
		slog.Warn("Failed to fetch Finology page", "ticker", ticker, "error", err)
		return nil
	}

	return s.parse(data, ticker, url, time.Now())
}

func (s *FinologySource) parse(data []byte, ticker, pageURL string, now time.Time) []Article {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to parse Finology markup", "ticker", ticker, "error", err)
		return nil
	}

	var articles []Article

	doc.Find(s.articleSelector).Each(func(_ int, sel *goquery.Selection) {
		headlineTag := sel.Find(s.headlineSelector)
		dateTag := sel.Find(s.dateSelector)

		if headlineTag.Length() == 0 || dateTag.Length() == 0 {
			slog.Warn("Missing elements in Finology article", "ticker", ticker)
			return
		}

		datePosted, err := ResolveAbsolute(strings.TrimSpace(dateTag.First().Text()), FinologyDateLayout, now)
		if err != nil {
			slog.Error("Finology date layout misconfigured", "ticker", ticker, "error", err)
			return
		}

		articles = append(articles, Article{
			Ticker:      ticker,
			Headline:    NormalizeHeadline(headlineTag.First().Text()),
			DatePosted:  datePosted,
			Source:      "Finology",
			ArticleLink: pageURL,
		})
	})

	return articles
}
