// Package scoring provides an HTTP client for the external sentiment/topic
// scoring service. The service's model internals are opaque to this client;
// only the label/confidence contract matters here.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/config"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/enrich"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
)

// Client calls the scoring service over HTTP. It implements both
// enrich.SentimentScorer and enrich.TopicClassifier.
type Client struct {
	serviceURL string
	httpClient *http.Client
}

// NewClient creates a scoring client.
func NewClient(cfg config.ScoringConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		serviceURL: strings.TrimRight(cfg.ServiceURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type scoreRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

type topicResponse struct {
	Topic string `json:"topic"`
}

// Score requests a sentiment label and confidence for the text. Labels
// outside the known set are mapped to neutral.
func (c *Client) Score(ctx context.Context, text string) (enrich.SentimentResult, error) {
	var resp sentimentResponse
	if err := c.post(ctx, "/sentiment", text, &resp); err != nil {
		return enrich.SentimentResult{}, err
	}

	label := strings.ToLower(resp.Sentiment)
	switch label {
	case models.SentimentPositive, models.SentimentNegative:
	default:
		label = models.SentimentNeutral
	}

	confidence := resp.Confidence
	if confidence < 0 || confidence > 1 {
		return enrich.SentimentResult{}, fmt.Errorf("scoring service returned confidence out of range: %f", confidence)
	}

	return enrich.SentimentResult{Label: label, Confidence: confidence}, nil
}

// Classify requests a topic label for the text.
func (c *Client) Classify(ctx context.Context, text string) (string, error) {
	var resp topicResponse
	if err := c.post(ctx, "/topic", text, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Topic), nil
}

func (c *Client) post(ctx context.Context, path, text string, out interface{}) error {
	payload, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal scoring request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create scoring request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("scoring request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scoring service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode scoring response: %w", err)
	}
	return nil
}
