// Package source contains one adapter per external mention source. Each
// adapter authenticates with configured credentials where the source requires
// it, runs a search for the query, and normalizes results into candidates.
//
// Adapters never fail aggregation: missing credentials skip the source with an
// informational log, and any network, authentication, or parse error is logged
// and surfaced only as an empty result. Every outbound call carries the
// adapter's configured timeout.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
)

// Adapter fetches and normalizes mentions of a query from one source.
// Implementations recover from their own failures and return an empty slice
// instead of an error.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, query string) []models.Candidate
}

// tokenResponse is the common OAuth2 client-credentials response shape used
// by the Twitter and Reddit adapters.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// fetchAccessToken performs an OAuth2 client-credentials exchange using HTTP
// basic auth, returning the bearer token.
func fetchAccessToken(ctx context.Context, client *http.Client, tokenURL, id, secret, userAgent string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(id, secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("auth succeeded but no access_token was returned")
	}
	return tr.AccessToken, nil
}
