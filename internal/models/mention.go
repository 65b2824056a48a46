// Package models defines the core domain entities for the brand mention tracker.
// These models represent raw mention candidates pulled from external sources,
// enriched persisted mentions, detector findings, and the alert records derived
// from them. Persisted models include built-in validation to ensure data
// integrity throughout the pipeline.
//
// Terminology:
//   - Candidate: a normalized but unscored item fetched from one source. It has
//     no identity and is discarded after enrichment.
//   - Mention: a single persisted observation of the tracked brand, carrying a
//     sentiment label, a confidence score, and a topic label.
package models

import (
	"errors"
	"time"
)

// Known source identifiers. The set is extensible; adapters register
// additional sources by using a new identifier.
const (
	SourceNews    = "news"
	SourceTwitter = "twitter"
	SourceReddit  = "reddit"
	SourceRSS     = "rss"
)

// Sentiment labels assigned by the enricher.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// TopicUncategorized is the fallback topic when the classifier is
// unavailable or fails for an item.
const TopicUncategorized = "uncategorized"

// Candidate is a normalized mention fetched from a single source, before
// enrichment. PublishedAt is nil when the source supplied no timestamp or one
// that could not be parsed; the pipeline substitutes ingestion time.
type Candidate struct {
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	Author      string     `json:"author"`
	Content     string     `json:"content"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Mention is a persisted, enriched observation of the tracked brand.
// Sentiment and SentimentScore are always set together.
type Mention struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	Source         string    `json:"source" gorm:"index;size:50"`
	URL            string    `json:"url"`
	Author         string    `json:"author" gorm:"size:100"`
	Content        string    `json:"content"`
	Sentiment      string    `json:"sentiment" gorm:"index;size:20"`
	SentimentScore float64   `json:"sentiment_score"`
	Topic          string    `json:"topic" gorm:"index;size:100"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

// TopicCount is one row of a topic distribution query.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Validate checks that all mention fields are valid.
func (m *Mention) Validate() error {
	if m.ID == "" {
		return errors.New("mention ID must not be empty")
	}
	if m.Source == "" {
		return errors.New("mention source must not be empty")
	}
	if m.Content == "" {
		return errors.New("mention content must not be empty")
	}
	switch m.Sentiment {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
	default:
		return errors.New("sentiment must be one of: positive, negative, neutral")
	}
	if m.SentimentScore < 0.0 || m.SentimentScore > 1.0 {
		return errors.New("sentiment score must be between 0.0 and 1.0")
	}
	if m.Topic == "" {
		return errors.New("mention topic must not be empty")
	}
	if m.CreatedAt.IsZero() {
		return errors.New("mention created at must be set")
	}
	return nil
}
