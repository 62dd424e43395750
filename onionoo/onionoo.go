// Package onionoo fetches relay candidates from the Tor Project's Onionoo
// network status API.
package onionoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/synqronlabs/aroi"
)

// DefaultBaseURL is the public Onionoo details endpoint.
const DefaultBaseURL = "https://onionoo.torproject.org/details"

// DefaultUserAgent identifies the validator to the Onionoo service.
const DefaultUserAgent = "AROIValidator/1.0"

// relayFields restricts the response to the fields the validator consumes.
const relayFields = "nickname,fingerprint,contact"

// Client fetches relay data from Onionoo.
type Client struct {
	// BaseURL is the details endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient performs the requests. Defaults to a client with a
	// 30 second timeout.
	HTTPClient *http.Client

	// UserAgent overrides the request user agent.
	UserAgent string
}

// NewClient creates a Client with default settings.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		UserAgent:  DefaultUserAgent,
	}
}

type detailsResponse struct {
	Relays []aroi.Candidate `json:"relays"`
}

// Relays fetches running relay candidates. A limit of 0 fetches all relays.
func (c *Client) Relays(ctx context.Context, limit int) ([]aroi.Candidate, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	endpoint, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("onionoo: invalid base URL: %w", err)
	}
	query := endpoint.Query()
	query.Set("type", "relay")
	query.Set("fields", relayFields)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("onionoo: building request: %w", err)
	}
	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("onionoo: fetching relay data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("onionoo: unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	var details detailsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 256<<20)).Decode(&details); err != nil {
		return nil, fmt.Errorf("onionoo: decoding response: %w", err)
	}

	relays := details.Relays
	if limit > 0 && limit < len(relays) {
		relays = relays[:limit]
	}
	return relays, nil
}
