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

// GoogleFinanceSource scrapes per-ticker news from the Google Finance
// quote page for NSE-listed symbols. Dates are relative phrases
// ("2 hours ago") resolved against the time of the fetch.
type GoogleFinanceSource struct {
	fetcher *Fetcher

	baseURL          string
	articleSelector  string
	headlineSelector string
	dateSelector     string
	sourceSelector   string
	linkSelector     string
}

func NewGoogleFinanceSource(fetcher *Fetcher) *GoogleFinanceSource {
	return &GoogleFinanceSource{
		fetcher:          fetcher,
		baseURL:          "https://www.google.com/finance/quote",
		articleSelector:  "div.z4rs2b",
		headlineSelector: "div.Yfwt5",
		dateSelector:     "div.Adak",
		sourceSelector:   "div.sfyJob",
		linkSelector:     "a",
	}
}

func (s *GoogleFinanceSource) Name() string {
	return "GoogleFinance"
}

func (s *GoogleFinanceSource) Articles(ctx context.Context, ticker string) []Article {
	url := fmt.Sprintf("%s/%s:NSE", s.baseURL, ticker)

	data, err := s.fetcher.Get(ctx, url, false)
	if err != nil {
		slog.Warn("Failed to fetch Google Finance page", "ticker", ticker, "error", err)
		return nil
	}

	return s.parse(data, ticker, time.Now())
}

func (s *GoogleFinanceSource) parse(data []byte, ticker string, now time.Time) []Article {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to parse Google Finance markup", "ticker", ticker, "error", err)
		return nil
	}

	var articles []Article

	doc.Find(s.articleSelector).Each(func(_ int, sel *goquery.Selection) {
		headlineTag := sel.Find(s.headlineSelector)
		dateTag := sel.Find(s.dateSelector)
		sourceTag := sel.Find(s.sourceSelector)
		linkTag := sel.Find(s.linkSelector)

		if headlineTag.Length() == 0 || dateTag.Length() == 0 ||
			sourceTag.Length() == 0 || linkTag.Length() == 0 {
			slog.Warn("Missing elements in Google Finance article", "ticker", ticker)
			return
		}

		link, _ := linkTag.First().Attr("href")
		if link == "" {
			slog.Warn("Missing article link in Google Finance article", "ticker", ticker)
			return
		}

		headline := NormalizeHeadline(strings.ReplaceAll(headlineTag.First().Text(), "\n", " "))

		articles = append(articles, Article{
			Ticker:      ticker,
			Headline:    headline,
			DatePosted:  ResolveRelative(strings.TrimSpace(dateTag.First().Text()), now),
			Source:      strings.TrimSpace(sourceTag.First().Text()),
			ArticleLink: link,
		})
	})

	return articles
}
