package source

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/config"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/logger"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// RSSAdapter fetches blog mentions from configured RSS/Atom feeds. Feed items
// are matched against the query case-insensitively, since feeds have no
// server-side search.
type RSSAdapter struct {
	cfg    config.RSSSourceConfig
	client *http.Client
	parser *gofeed.Parser
}

// NewRSSAdapter creates an RSS adapter. Feed URLs without an http(s) scheme
// are dropped at construction time.
func NewRSSAdapter(cfg config.RSSSourceConfig) *RSSAdapter {
	validFeeds := make([]string, 0, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		if strings.HasPrefix(feed, "http://") || strings.HasPrefix(feed, "https://") {
			validFeeds = append(validFeeds, feed)
		}
	}
	cfg.Feeds = validFeeds

	return &RSSAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		parser: gofeed.NewParser(),
	}
}

// Name returns the source identifier for this adapter.
func (a *RSSAdapter) Name() string { return models.SourceRSS }

// Fetch retrieves feed items mentioning the query from all configured feeds.
func (a *RSSAdapter) Fetch(ctx context.Context, query string) []models.Candidate {
	if len(a.cfg.Feeds) == 0 {
		logger.Info("No RSS feeds configured; skipping blog aggregation")
		return nil
	}

	logger.Info("Aggregating from %d RSS feeds for query: %s", len(a.cfg.Feeds), query)

	queryLower := strings.ToLower(query)
	var candidates []models.Candidate

	for _, feedURL := range a.cfg.Feeds {
		items := a.fetchFeed(ctx, feedURL)
		for _, item := range items {
			if !strings.Contains(strings.ToLower(item.Content), queryLower) {
				continue
			}
			candidates = append(candidates, item)
		}
	}

	logger.Info("Fetched %d feed items matching query", len(candidates))
	return candidates
}

// fetchFeed downloads and normalizes one feed. Failures are logged and yield
// an empty slice so one broken feed does not suppress the others.
func (a *RSSAdapter) fetchFeed(ctx context.Context, feedURL string) []models.Candidate {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		logger.Error("Failed to create feed request for %s: %v", feedURL, err)
		return nil
	}

	resp, err := a.client.Do(req)
	if err != nil {
		logger.Error("Failed to fetch feed %s: %v", feedURL, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("Feed %s returned status %d", feedURL, resp.StatusCode)
		return nil
	}

	feed, err := a.parser.Parse(resp.Body)
	if err != nil {
		logger.Error("Failed to parse feed %s: %v", feedURL, err)
		return nil
	}

	var candidates []models.Candidate
	for _, item := range feed.Items {
		title := stripHTML(item.Title)
		description := stripHTML(item.Description)
		content := strings.TrimSpace(strings.Join(nonEmpty(title, description), " "))
		if content == "" {
			continue
		}

		author := ""
		if item.Author != nil {
			author = item.Author.Name
		}
		if author == "" {
			author = feed.Title
		}

		candidates = append(candidates, models.Candidate{
			Source:      models.SourceRSS,
			URL:         item.Link,
			Author:      author,
			Content:     content,
			PublishedAt: item.PublishedParsed,
		})
	}
	return candidates
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
