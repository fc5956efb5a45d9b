package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

// fetchBatch is the page size the 1.0 issues endpoint requires fetching in.
const fetchBatch = 25

// Client fetches issues from a Bitbucket 1.0 API endpoint.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	logger   *slog.Logger
}

// NewClient constructs a Bitbucket client. A nil httpClient gets a default
// with a 30 second timeout.
func NewClient(baseURL, username, password string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   httpClient,
		logger:   logger.With("component", "bitbucket"),
	}
}

type issuePage struct {
	Count  int     `json:"count"`
	Issues []Issue `json:"issues"`
}

// FetchAllIssues retrieves every issue for owner/slug, draining the
// paginated endpoint in batches until the reported count is reached.
func (c *Client) FetchAllIssues(ctx context.Context, owner, slug string) ([]Issue, error) {
	var all []Issue
	start := 0
	count := fetchBatch
	for start < count {
		page, err := c.fetchPage(ctx, owner, slug, start)
		if err != nil {
			return nil, fmt.Errorf("fetching issues for %s/%s: %w", owner, slug, err)
		}
		all = append(all, page.Issues...)
		count = page.Count
		start += fetchBatch
	}
	c.logger.Debug("fetched issues", "owner", owner, "slug", slug, "count", len(all))
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, owner, slug string, start int) (*issuePage, error) {
	endpoint := fmt.Sprintf("%s/repositories/%s/%s/issues?start=%d&limit=%d",
		c.baseURL,
		neturl.PathEscape(owner),
		neturl.PathEscape(slug),
		start,
		fetchBatch,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build issue request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("issue request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("issue request failed: status %d (%s)", resp.StatusCode, compactOutput(out))
	}

	var page issuePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode issue response: %w", err)
	}
	return &page, nil
}

func compactOutput(out []byte) string {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return "no output"
	}
	const maxLen = 280
	if len(trimmed) <= maxLen {
		return trimmed
	}
	return trimmed[:maxLen] + "..."
}
