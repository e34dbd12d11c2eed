package universe

import (
	"github.com/tickerpulse/tickerpulse/app/scraper"
)

// Config declares the index universes to track and the market RSS
// feeds consulted by the RSS source adapter.
type Config struct {
	Indices  map[string]string `yaml:"indices"` // index name -> constituent CSV URL
	RSSFeeds []scraper.RSSFeed `yaml:"rss_feeds"`
}

// DefaultIndices maps the supported NSE indices to their official
// constituent CSV downloads.
var DefaultIndices = map[string]string{
	"nifty_50":  "https://www.niftyindices.com/IndexConstituent/ind_nifty50list.csv",
	"nifty_100": "https://www.niftyindices.com/IndexConstituent/ind_nifty100list.csv",
	"nifty_200": "https://www.niftyindices.com/IndexConstituent/ind_nifty200list.csv",
	"nifty_500": "https://www.niftyindices.com/IndexConstituent/ind_nifty500list.csv",
}
