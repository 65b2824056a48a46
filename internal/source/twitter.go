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

// twitterTimeLayout is Twitter's created_at format, e.g.
// "Wed Aug 27 13:08:45 +0000 2008".
const twitterTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// TwitterAdapter fetches tweet mentions using application-only auth: a bearer
// token is obtained with the configured key/secret, then the recent-search
// endpoint is queried.
type TwitterAdapter struct {
	cfg    config.TwitterSourceConfig
	client *http.Client
}

// NewTwitterAdapter creates a Twitter adapter.
func NewTwitterAdapter(cfg config.TwitterSourceConfig) *TwitterAdapter {
	return &TwitterAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the source identifier for this adapter.
func (a *TwitterAdapter) Name() string { return models.SourceTwitter }

type tweet struct {
	IDStr     string `json:"id_str"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	User      struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
}

type twitterSearchResponse struct {
	Statuses []tweet `json:"statuses"`
}

// Fetch retrieves recent tweets mentioning the query.
func (a *TwitterAdapter) Fetch(ctx context.Context, query string) []models.Candidate {
	if a.cfg.APIKey == "" || a.cfg.APISecret == "" {
		logger.Info("Twitter API credentials not configured; skipping Twitter aggregation")
		return nil
	}

	logger.Info("Aggregating from Twitter for query: %s", query)

	tokenURL := a.cfg.APIBaseURL + "/oauth2/token"
	bearer, err := fetchAccessToken(ctx, a.client, tokenURL, a.cfg.APIKey, a.cfg.APISecret, "")
	if err != nil {
		logger.Error("Error obtaining Twitter bearer token: %v", err)
		return nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", "en")
	params.Set("result_type", "recent")
	params.Set("count", fmt.Sprintf("%d", a.cfg.MaxResults))

	searchURL := fmt.Sprintf("%s/1.1/search/tweets.json?%s", a.cfg.APIBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		logger.Error("Failed to create Twitter search request: %v", err)
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := a.client.Do(req)
	if err != nil {
		logger.Error("Error while fetching from Twitter API: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("Twitter API returned status %d", resp.StatusCode)
		return nil
	}

	var data twitterSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logger.Error("Failed to decode Twitter response: %v", err)
		return nil
	}

	var candidates []models.Candidate
	for _, tw := range data.Statuses {
		text := strings.TrimSpace(tw.Text)
		if text == "" {
			continue
		}

		var tweetURL string
		if tw.IDStr != "" {
			tweetURL = "https://twitter.com/i/web/status/" + tw.IDStr
		}

		candidates = append(candidates, models.Candidate{
			Source:      models.SourceTwitter,
			URL:         tweetURL,
			Author:      tw.User.ScreenName,
			Content:     text,
			PublishedAt: parseTwitterTimestamp(tw.CreatedAt),
		})
	}

	logger.Info("Fetched %d tweets from Twitter", len(candidates))
	return candidates
}

func parseTwitterTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(twitterTimeLayout, value)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
