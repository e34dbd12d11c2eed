package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompound(t *testing.T) {
	tests := []struct {
		name     string
		scores   Scores
		expected float64
	}{
		{"positive dominates", Scores{Negative: 0.1, Positive: 0.8, Neutral: 0.1}, 0.8},
		{"negative dominates", Scores{Negative: 0.7, Positive: 0.2, Neutral: 0.1}, -0.7},
		{"tie goes negative", Scores{Negative: 0.4, Positive: 0.4, Neutral: 0.2}, -0.4},
		{"all zero", Scores{}, 0},
		{"rounded to four places", Scores{Negative: 0.123456, Positive: 0.01}, -0.1235},
		{"neutral ignored", Scores{Negative: 0.05, Positive: 0.03, Neutral: 0.92}, -0.05},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.scores.Compound(); got != tc.expected {
				t.Errorf("Compound() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(http.DefaultClient, "", "token"); err == nil {
		t.Error("expected error for missing endpoint")
	}
	if _, err := NewClient(http.DefaultClient, "https://inference.example.com", ""); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := NewClient(http.DefaultClient, "https://inference.example.com", "token"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %q", got)
		}

		var req inferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		results := make([][]labelScore, len(req.Inputs))
		for i := range req.Inputs {
			results[i] = []labelScore{
				{Label: "Positive", Score: 0.7},
				{Label: "Negative", Score: 0.2},
				{Label: "Neutral", Score: 0.1},
			}
		}
		json.NewEncoder(w).Encode(results)
	}))
	defer server.Close()

	client, err := NewClient(server.Client(), server.URL, "test-token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	scores, err := client.Analyze(context.Background(), []string{"headline one", "headline two"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 score sets, got %d", len(scores))
	}
	// Labels match case-insensitively.
	if scores[0].Positive != 0.7 || scores[0].Negative != 0.2 || scores[0].Neutral != 0.1 {
		t.Errorf("unexpected scores: %+v", scores[0])
	}
}

func TestAnalyzeCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]labelScore{
			{{Label: "positive", Score: 0.9}},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.Client(), server.URL, "test-token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Analyze(context.Background(), []string{"one", "two", "three"}); err == nil {
		t.Error("expected error when result count does not match input count")
	}
}

func TestAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(server.Client(), server.URL, "test-token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Analyze(context.Background(), []string{"one"}); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestAnalyzeEmptyBatch(t *testing.T) {
	client, err := NewClient(http.DefaultClient, "https://inference.example.com", "token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	scores, err := client.Analyze(context.Background(), nil)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if scores != nil {
		t.Errorf("expected nil scores for empty batch, got %v", scores)
	}
}
