package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/tickerpulse/tickerpulse/app/cfg"
	"github.com/tickerpulse/tickerpulse/app/database"
	"github.com/tickerpulse/tickerpulse/app/tasks"
)

type stubArticleRepo struct {
	articles []database.Article
}

func (r *stubArticleRepo) InsertArticles(articles []database.Article, hasSentiment bool) error {
	return nil
}

func (r *stubArticleRepo) GetArticles(n int, latest bool, hasSentiment bool, afterDate string) ([]database.Article, error) {
	var out []database.Article
	for _, a := range r.articles {
		if !hasSentiment && a.Scored() {
			continue
		}
		out = append(out, a)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

func (r *stubArticleRepo) GetArticleCount() (int, error) { return len(r.articles), nil }

func (r *stubArticleRepo) GetArticleStats() (int, int, int, error) {
	scored := 0
	for _, a := range r.articles {
		if a.Scored() {
			scored++
		}
	}
	return len(r.articles), scored, len(r.articles) - scored, nil
}

func (r *stubArticleRepo) QueryDuplicates() ([]database.DuplicateRow, error) { return nil, nil }
func (r *stubArticleRepo) DeduplicateDB() (int64, error)                     { return 0, nil }
func (r *stubArticleRepo) GetArticlesForExtraction(limit int) ([]database.ArticleRef, error) {
	return nil, nil
}
func (r *stubArticleRepo) UpdateArticleContent(ticker, headline, content, status string) error {
	return nil
}

type stubTickerRepo struct {
	metadata     []database.TickerMeta
	constituents map[string][]string
}

func (r *stubTickerRepo) InsertTickerMetadata(rows []database.TickerMeta) error { return nil }

func (r *stubTickerRepo) GetTickerMetadata(index, ticker string) ([]database.TickerMeta, error) {
	if index != "" && ticker != "" {
		return nil, errors.New("index and ticker filters are mutually exclusive")
	}
	if ticker != "" {
		for _, m := range r.metadata {
			if m.Ticker == ticker {
				return []database.TickerMeta{m}, nil
			}
		}
		return nil, nil
	}
	return r.metadata, nil
}

func (r *stubTickerRepo) GetIndexConstituents(index string) ([]string, error) {
	tickers, ok := r.constituents[index]
	if !ok {
		return nil, errors.New("unknown index: " + index)
	}
	return tickers, nil
}

func (r *stubTickerRepo) UpsertIndexConstituents(index string, tickers []string) error { return nil }

type stagingScheduler struct {
	queued []tasks.TaskInterface
	err    error
}

func (s *stagingScheduler) Start() {}
func (s *stagingScheduler) Stop()  {}
func (s *stagingScheduler) EnqueueTask(task tasks.TaskInterface) error {
	if s.err != nil {
		return s.err
	}
	s.queued = append(s.queued, task)
	return nil
}

func loadTestCfg(t *testing.T) {
	t.Helper()
	oldArgs := os.Args
	os.Args = []string{"tickerpulse"}
	t.Cleanup(func() { os.Args = oldArgs })
	if _, err := cfg.Load(); err != nil {
		t.Fatalf("cfg.Load: %v", err)
	}
}

func newTestServer(t *testing.T, articleRepo *stubArticleRepo, tickerRepo *stubTickerRepo,
	scheduler *stagingScheduler, apiKey string) http.Handler {
	t.Helper()
	loadTestCfg(t)
	handler := NewHandler(articleRepo, tickerRepo, nil, scheduler)
	return NewServer(handler, apiKey)
}

func doRequest(server http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func scoredArticle(ticker, headline string, compound float64) database.Article {
	score := 0.5
	return database.Article{
		Ticker: ticker, Headline: headline,
		Negative: &score, Positive: &score, Neutral: &score, Compound: &compound,
	}
}

func TestGetArticlesEndpoint(t *testing.T) {
	articleRepo := &stubArticleRepo{
		articles: []database.Article{
			scoredArticle("SBIN", "SBI posts record profit", 0.8),
			{Ticker: "TCS", Headline: "TCS wins large deal"},
		},
	}
	server := newTestServer(t, articleRepo, &stubTickerRepo{}, &stagingScheduler{}, "")

	w := doRequest(server, http.MethodGet, "/articles", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var response []ArticleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(response))
	}

	// scored=true drops the unscored row.
	w = doRequest(server, http.MethodGet, "/articles?scored=true", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response) != 1 || response[0].Ticker != "SBIN" {
		t.Errorf("unexpected scored filter result: %+v", response)
	}

	// scored=false returns only unscored rows.
	w = doRequest(server, http.MethodGet, "/articles?scored=false", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response) != 1 || response[0].Ticker != "TCS" {
		t.Errorf("unexpected unscored filter result: %+v", response)
	}

	w = doRequest(server, http.MethodGet, "/articles?limit=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid limit, got %d", w.Code)
	}
}

func TestTickerEndpoints(t *testing.T) {
	tickerRepo := &stubTickerRepo{
		metadata: []database.TickerMeta{
			{Ticker: "SBIN", Sector: "Financial Services", CompanyName: "State Bank of India"},
		},
		constituents: map[string][]string{"nifty_50": {"SBIN", "TCS"}},
	}
	server := newTestServer(t, &stubArticleRepo{}, tickerRepo, &stagingScheduler{}, "")

	w := doRequest(server, http.MethodGet, "/tickers/SBIN", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var meta TickerMetaResponse
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if meta.CompanyName != "State Bank of India" {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	if w := doRequest(server, http.MethodGet, "/tickers/UNKNOWN", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown ticker, got %d", w.Code)
	}

	w = doRequest(server, http.MethodGet, "/indices/nifty_50", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	if w := doRequest(server, http.MethodGet, "/indices/nifty_9000", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown index, got %d", w.Code)
	}
}

func TestStatsAndHealthEndpoints(t *testing.T) {
	articleRepo := &stubArticleRepo{
		articles: []database.Article{
			scoredArticle("SBIN", "scored story", 0.5),
			{Ticker: "TCS", Headline: "unscored story"},
		},
	}
	server := newTestServer(t, articleRepo, &stubTickerRepo{}, &stagingScheduler{}, "")

	w := doRequest(server, http.MethodGet, "/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var stats struct {
		Articles struct {
			Total    int `json:"total"`
			Scored   int `json:"scored"`
			Unscored int `json:"unscored"`
		} `json:"articles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Articles.Total != 2 || stats.Articles.Scored != 1 || stats.Articles.Unscored != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if w := doRequest(server, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("unexpected health status: %d", w.Code)
	}
}

func TestMutatingEndpointsRequireKey(t *testing.T) {
	scheduler := &stagingScheduler{}
	server := newTestServer(t, &stubArticleRepo{}, &stubTickerRepo{}, scheduler, "secret")

	if w := doRequest(server, http.MethodPost, "/api/collect", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", w.Code)
	}

	headers := map[string]string{"X-API-Key": "secret"}
	if w := doRequest(server, http.MethodPost, "/api/collect", headers); w.Code != http.StatusAccepted {
		t.Errorf("expected 202 with key, got %d", w.Code)
	}
	if w := doRequest(server, http.MethodPost, "/api/deduplicate", headers); w.Code != http.StatusAccepted {
		t.Errorf("expected 202 with key, got %d", w.Code)
	}

	if len(scheduler.queued) != 2 {
		t.Fatalf("expected 2 queued tasks, got %d", len(scheduler.queued))
	}
	if scheduler.queued[0].GetType() != tasks.TaskTypeCollectNews {
		t.Errorf("unexpected first task type: %s", scheduler.queued[0].GetType())
	}
}

func TestMutatingEndpointsDisabledWithoutKey(t *testing.T) {
	server := newTestServer(t, &stubArticleRepo{}, &stubTickerRepo{}, &stagingScheduler{}, "")

	if w := doRequest(server, http.MethodPost, "/api/collect", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 when mutating API disabled, got %d", w.Code)
	}
}
