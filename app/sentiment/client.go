package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls an HTTP inference endpoint that scores a list of texts
// and returns per-label scores for each, in input order (FinBERT-style
// financial sentiment labels: positive, negative, neutral).
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	timeout    time.Duration
}

type inferenceRequest struct {
	Inputs []string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func NewClient(httpClient *http.Client, endpoint, token string) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("sentiment endpoint is required")
	}
	if token == "" {
		return nil, fmt.Errorf("sentiment token is required (set SENTIMENT_TOKEN)")
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		token:      token,
		timeout:    60 * time.Second,
	}, nil
}

// Analyze scores a batch of headlines in one call. The response must
// contain exactly one score set per input headline; any other count is
// an error so the caller can discard the batch instead of misaligning
// scores to the wrong headline.
func (c *Client) Analyze(ctx context.Context, headlines []string) ([]Scores, error) {
	if len(headlines) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(inferenceRequest{Inputs: headlines})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inference request: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference endpoint returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var results [][]labelScore
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}

	if len(results) != len(headlines) {
		return nil, fmt.Errorf("inference returned %d results for %d headlines", len(results), len(headlines))
	}

	scores := make([]Scores, len(results))
	for i, labels := range results {
		scores[i] = flattenLabels(labels)
	}

	return scores, nil
}

// flattenLabels maps the model's label list onto Scores. Labels match
// case-insensitively; a missing label scores 0.
func flattenLabels(labels []labelScore) Scores {
	var s Scores
	for _, l := range labels {
		switch strings.ToLower(l.Label) {
		case "negative":
			s.Negative = l.Score
		case "positive":
			s.Positive = l.Score
		case "neutral":
			s.Neutral = l.Score
		}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
