// Package enrich turns aggregated candidates into persistable mentions by
// attaching sentiment and topic labels from external scoring collaborators.
//
// Scoring failures are per-item and non-fatal: a failed item falls back to
// neutral sentiment at 0.5 confidence and the "uncategorized" topic, so no
// single bad item blocks ingestion of the rest.
package enrich

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/logger"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
)

// maxScoringChars bounds the text length sent to the scoring collaborators.
const maxScoringChars = 512

// SentimentResult is the sentiment scorer's output contract.
type SentimentResult struct {
	Label      string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// SentimentScorer assigns a sentiment label and confidence to a text.
type SentimentScorer interface {
	Score(ctx context.Context, text string) (SentimentResult, error)
}

// TopicClassifier assigns a topic label to a text.
type TopicClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Enricher scores candidates with bounded concurrency and merges the results
// into mentions. Output order matches input order.
type Enricher struct {
	sentiment   SentimentScorer
	topics      TopicClassifier
	concurrency int
}

// New creates an Enricher. Concurrency values below 1 are raised to 1.
func New(sentiment SentimentScorer, topics TopicClassifier, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		sentiment:   sentiment,
		topics:      topics,
		concurrency: concurrency,
	}
}

// Enrich scores each candidate and builds a mention per candidate with
// non-empty content. Candidates without an origin timestamp get the current
// UTC time. Enrich never fails; degraded scoring shows up only in the labels.
func (e *Enricher) Enrich(ctx context.Context, candidates []models.Candidate) []models.Mention {
	if len(candidates) == 0 {
		return nil
	}

	results := make([]*models.Mention, len(candidates))
	sem := make(chan struct{}, e.concurrency)

	var wg sync.WaitGroup
	for i, cand := range candidates {
		if strings.TrimSpace(cand.Content) == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, cand models.Candidate) {
			defer wg.Done()
			defer func() { <-sem }()
			m := e.enrichOne(ctx, cand)
			results[i] = &m
		}(i, cand)
	}
	wg.Wait()

	mentions := make([]models.Mention, 0, len(candidates))
	for _, m := range results {
		if m != nil {
			mentions = append(mentions, *m)
		}
	}

	logger.Info("Enriched %d of %d candidates", len(mentions), len(candidates))
	return mentions
}

func (e *Enricher) enrichOne(ctx context.Context, cand models.Candidate) models.Mention {
	text := truncate(cand.Content, maxScoringChars)

	sentiment := models.SentimentNeutral
	confidence := 0.5
	if res, err := e.sentiment.Score(ctx, text); err != nil {
		logger.Warn("Sentiment scoring failed, falling back to neutral: %v", err)
	} else {
		sentiment = res.Label
		confidence = res.Confidence
	}

	topic := models.TopicUncategorized
	if t, err := e.topics.Classify(ctx, text); err != nil {
		logger.Warn("Topic classification failed, falling back to uncategorized: %v", err)
	} else if t != "" {
		topic = t
	}

	createdAt := time.Now().UTC()
	if cand.PublishedAt != nil {
		createdAt = cand.PublishedAt.UTC()
	}

	author := cand.Author
	if author == "" {
		author = "Unknown"
	}

	return models.Mention{
		ID:             uuid.New().String(),
		Source:         cand.Source,
		URL:            cand.URL,
		Author:         author,
		Content:        cand.Content,
		Sentiment:      sentiment,
		SentimentScore: confidence,
		Topic:          topic,
		CreatedAt:      createdAt,
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
