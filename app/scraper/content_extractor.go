package scraper

import (
	"bytes"
	"fmt"
	"log/slog"

	"codeberg.org/readeck/go-readability"
)

// ContentExtractor distills a fetched article page into readable text
// for storage alongside the headline.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (e *ContentExtractor) Run(data []byte, pageURL string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.TextContent == "" {
		return "", fmt.Errorf("no content extracted from %s", pageURL)
	}

	slog.Debug("Content extracted successfully",
		"url", pageURL,
		"content_length", len(article.TextContent))

	return article.TextContent, nil
}
