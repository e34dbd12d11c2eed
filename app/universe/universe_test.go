package universe

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseConstituentCSV(t *testing.T) {
	csvData := []byte(`Company Name,Industry,Symbol,Series,ISIN Code
State Bank of India,Financial Services,SBIN,EQ,INE062A01020
Tata Consultancy Services Ltd.,Information Technology,TCS,EQ,INE467B01029
Infosys Ltd.,Information Technology,INFY,EQ,INE009A01021
`)

	tickers, err := parseConstituentCSV(csvData)
	if err != nil {
		t.Fatalf("parseConstituentCSV: %v", err)
	}
	want := []string{"SBIN", "TCS", "INFY"}
	if len(tickers) != len(want) {
		t.Fatalf("expected %d tickers, got %d: %v", len(want), len(tickers), tickers)
	}
	for i, ticker := range want {
		if tickers[i] != ticker {
			t.Errorf("position %d: got %s, want %s", i, tickers[i], ticker)
		}
	}
}

func TestParseConstituentCSVSkipsBlankSymbols(t *testing.T) {
	csvData := []byte(`Symbol,Series
SBIN,EQ
,EQ
TCS,EQ
`)

	tickers, err := parseConstituentCSV(csvData)
	if err != nil {
		t.Fatalf("parseConstituentCSV: %v", err)
	}
	if len(tickers) != 2 {
		t.Errorf("expected blank symbol skipped, got %v", tickers)
	}
}

func TestParseConstituentCSVErrors(t *testing.T) {
	if _, err := parseConstituentCSV([]byte("Symbol,Series\n")); err == nil {
		t.Error("expected error for CSV with no data rows")
	}
	if _, err := parseConstituentCSV([]byte("Name,Series\nSBI,EQ\n")); err == nil {
		t.Error("expected error for CSV without Symbol column")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadConfig with missing file: %v", err)
	}
	if len(config.Indices) != len(DefaultIndices) {
		t.Errorf("expected default indices, got %v", config.Indices)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universes.yml")
	content := `indices:
  nifty_50: https://example.com/nifty50.csv
rss_feeds:
  - name: Moneycontrol
    url: https://example.com/feed.xml
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.Indices["nifty_50"] != "https://example.com/nifty50.csv" {
		t.Errorf("unexpected indices: %v", config.Indices)
	}
	if len(config.RSSFeeds) != 1 || config.RSSFeeds[0].Name != "Moneycontrol" {
		t.Errorf("unexpected rss feeds: %v", config.RSSFeeds)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universes.yml")
	if err := os.WriteFile(path, []byte("indices: [not: a: map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
