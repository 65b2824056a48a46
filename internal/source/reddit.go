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

// RedditAdapter fetches post mentions via Reddit's OAuth API. Posts use the
// selftext body when present, falling back to the title.
type RedditAdapter struct {
	cfg    config.RedditSourceConfig
	client *http.Client
}

// NewRedditAdapter creates a Reddit adapter.
func NewRedditAdapter(cfg config.RedditSourceConfig) *RedditAdapter {
	return &RedditAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the source identifier for this adapter.
func (a *RedditAdapter) Name() string { return models.SourceReddit }

type redditPost struct {
	Title      string   `json:"title"`
	Selftext   string   `json:"selftext"`
	Author     string   `json:"author"`
	Permalink  string   `json:"permalink"`
	CreatedUTC *float64 `json:"created_utc"`
}

type redditSearchResponse struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch retrieves recent posts mentioning the query.
func (a *RedditAdapter) Fetch(ctx context.Context, query string) []models.Candidate {
	if a.cfg.ClientID == "" || a.cfg.ClientSecret == "" {
		logger.Info("Reddit API credentials not configured; skipping Reddit aggregation")
		return nil
	}

	logger.Info("Aggregating from Reddit for query: %s", query)

	token, err := fetchAccessToken(ctx, a.client, a.cfg.AuthURL, a.cfg.ClientID, a.cfg.ClientSecret, a.cfg.UserAgent)
	if err != nil {
		logger.Error("Error obtaining Reddit access token: %v", err)
		return nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", a.cfg.Limit))
	params.Set("sort", "new")
	params.Set("t", "week")

	searchURL := fmt.Sprintf("%s/search?%s", a.cfg.APIBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		logger.Error("Failed to create Reddit search request: %v", err)
		return nil
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		logger.Error("Error while fetching from Reddit API: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("Reddit API returned status %d", resp.StatusCode)
		return nil
	}

	var data redditSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logger.Error("Failed to decode Reddit response: %v", err)
		return nil
	}

	var candidates []models.Candidate
	for _, child := range data.Data.Children {
		post := child.Data

		text := strings.TrimSpace(post.Selftext)
		if text == "" {
			text = strings.TrimSpace(post.Title)
		}
		if text == "" {
			continue
		}

		var created *time.Time
		if post.CreatedUTC != nil {
			t := time.Unix(int64(*post.CreatedUTC), 0).UTC()
			created = &t
		}

		candidates = append(candidates, models.Candidate{
			Source:      models.SourceReddit,
			URL:         "https://www.reddit.com" + post.Permalink,
			Author:      post.Author,
			Content:     text,
			PublishedAt: created,
		})
	}

	logger.Info("Fetched %d posts from Reddit", len(candidates))
	return candidates
}
