package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/config"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/logger"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
)

// NewsAdapter fetches article mentions from NewsAPI. Articles are normalized
// by concatenating title, description, and body into a single content string.
type NewsAdapter struct {
	cfg    config.NewsSourceConfig
	client *http.Client
}

// NewNewsAdapter creates a NewsAPI adapter.
func NewNewsAdapter(cfg config.NewsSourceConfig) *NewsAdapter {
	return &NewsAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the source identifier for this adapter.
func (a *NewsAdapter) Name() string { return models.SourceNews }

type newsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type newsResponse struct {
	Articles []newsArticle `json:"articles"`
}

// Fetch retrieves recent articles mentioning the query.
func (a *NewsAdapter) Fetch(ctx context.Context, query string) []models.Candidate {
	if a.cfg.APIKey == "" {
		logger.Info("News API key is not configured; skipping news aggregation")
		return nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprintf("%d", a.cfg.PageSize))
	params.Set("apiKey", a.cfg.APIKey)

	searchURL := fmt.Sprintf("%s/everything?%s", a.cfg.APIBaseURL, params.Encode())
	logger.Info("Fetching news articles from NewsAPI for query: %s", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		logger.Error("Failed to create NewsAPI request: %v", err)
		return nil
	}

	resp, err := a.client.Do(req)
	if err != nil {
		logger.Error("Error while fetching from NewsAPI: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("NewsAPI returned status %d", resp.StatusCode)
		return nil
	}

	var data newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logger.Error("Failed to decode NewsAPI response: %v", err)
		return nil
	}

	var candidates []models.Candidate
	for _, art := range data.Articles {
		var parts []string
		for _, part := range []string{art.Title, art.Description, art.Content} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		content := strings.TrimSpace(strings.Join(parts, " "))
		if content == "" {
			continue
		}

		author := art.Author
		if author == "" {
			author = art.Source.Name
		}

		candidates = append(candidates, models.Candidate{
			Source:      models.SourceNews,
			URL:         art.URL,
			Author:      author,
			Content:     content,
			PublishedAt: parseISOTimestamp(art.PublishedAt),
		})
	}

	logger.Info("Fetched %d news articles from NewsAPI", len(candidates))
	return candidates
}

// parseISOTimestamp parses an RFC 3339 timestamp, returning nil for absent or
// unparseable values so the pipeline substitutes ingestion time.
func parseISOTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
