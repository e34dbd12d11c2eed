package scraper

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Article is a normalized news record produced by a source adapter.
// DatePosted is an absolute "2006-01-02 15:04:05" timestamp string, or
// empty when the provider's date could not be resolved.
type Article struct {
	Ticker      string
	Headline    string
	DatePosted  string
	Source      string
	ArticleLink string
}

// Source is a single news provider. Articles never returns an error:
// provider failures are handled inside the adapter and yield an empty
// slice, so one broken provider cannot take down a collection pass.
type Source interface {
	Name() string
	Articles(ctx context.Context, ticker string) []Article
}

// NormalizeHeadline canonicalizes a headline before it is used as part
// of the (ticker, headline) natural key. Providers disagree on unicode
// composition and stray whitespace for the same story.
func NormalizeHeadline(headline string) string {
	headline = norm.NFC.String(headline)
	headline = strings.Join(strings.Fields(headline), " ")
	return strings.TrimSpace(headline)
}
