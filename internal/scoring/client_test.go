package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/config"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.ScoringConfig{ServiceURL: server.URL, Timeout: 5 * time.Second})
}

func TestScore(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sentiment" {
			t.Errorf("Expected path /sentiment, got %s", r.URL.Path)
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Text != "acme is great" {
			t.Errorf("Expected request text, got %q", req.Text)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sentiment": "POSITIVE", "confidence": 0.93}`))
	}))

	res, err := client.Score(context.Background(), "acme is great")
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if res.Label != models.SentimentPositive {
		t.Errorf("Expected lowercased positive label, got %s", res.Label)
	}
	if res.Confidence != 0.93 {
		t.Errorf("Expected confidence 0.93, got %f", res.Confidence)
	}
}

func TestScore_UnknownLabelMapsToNeutral(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sentiment": "mixed", "confidence": 0.4}`))
	}))

	res, err := client.Score(context.Background(), "meh")
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if res.Label != models.SentimentNeutral {
		t.Errorf("Expected unknown label mapped to neutral, got %s", res.Label)
	}
}

func TestScore_ConfidenceOutOfRange(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sentiment": "positive", "confidence": 1.7}`))
	}))

	if _, err := client.Score(context.Background(), "text"); err == nil {
		t.Error("Expected error for out-of-range confidence, got nil")
	}
}

func TestScore_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	if _, err := client.Score(context.Background(), "text"); err == nil {
		t.Error("Expected error for server failure, got nil")
	}
}

func TestClassify(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/topic" {
			t.Errorf("Expected path /topic, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"topic": "  customer support  "}`))
	}))

	topic, err := client.Classify(context.Background(), "my ticket is still open")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if topic != "customer support" {
		t.Errorf("Expected trimmed topic, got %q", topic)
	}
}

func TestClassify_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if _, err := client.Classify(context.Background(), "text"); err == nil {
		t.Error("Expected error for server failure, got nil")
	}
}
