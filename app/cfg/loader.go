package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/ticker_data.db" description:"Path to the SQLite database file"`

	// Application configuration
	ConfigFile        string `long:"config-file" env:"CONFIG_FILE" default:"./universes.yml" description:"Path to the universe configuration file"`
	Universe          string `long:"universe" env:"UNIVERSE" default:"nifty_50" description:"Index universe to collect news for"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"0" description:"Number of collection workers (0 = number of CPUs)"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"3600" description:"Collection interval in seconds"`
	UniverseInterval  int    `long:"universe-interval" env:"UNIVERSE_INTERVAL" default:"86400" description:"Universe refresh interval in seconds"`
	BatchSize         int    `long:"batch-size" env:"BATCH_SIZE" default:"200" description:"Number of articles scored per sentiment batch"`
	Sequential        bool   `long:"sequential" env:"SEQUENTIAL" description:"Collect tickers sequentially instead of in parallel"`
	ExtractContent    bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch article pages and extract readable content"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`

	// Sentiment model configuration
	SentimentURL   string `long:"sentiment-url" env:"SENTIMENT_URL" default:"https://api-inference.huggingface.co/models/yiyanghkust/finbert-tone" description:"Sentiment inference endpoint"`
	SentimentToken string `long:"sentiment-token" env:"SENTIMENT_TOKEN" description:"Bearer token for the sentiment inference endpoint"`

	// Application metadata
	UserAgent      string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36" description:"User agent string for HTTP requests"`
	RequestTimeout int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"10" description:"Timeout in seconds for provider HTTP requests"`
	Timezone       string `long:"timezone" env:"TZ" default:"Asia/Kolkata" description:"Timezone for timestamps (e.g., UTC, Asia/Kolkata)"`
	Debug          bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		ConfigFile:        raw.ConfigFile,
		Universe:          raw.Universe,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		UniverseInterval:  raw.UniverseInterval,
		BatchSize:         raw.BatchSize,
		Sequential:        raw.Sequential,
		ExtractContent:    raw.ExtractContent,
		APIAccessKey:      raw.APIAccessKey,
		SentimentURL:      raw.SentimentURL,
		SentimentToken:    raw.SentimentToken,
		UserAgent:         raw.UserAgent,
		RequestTimeout:    raw.RequestTimeout,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
