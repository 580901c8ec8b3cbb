package revenue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single revenue request
const DefaultTimeout = 15 * time.Second

// Fetcher loads every revenue record of an organization
type Fetcher interface {
	FetchRecords(ctx context.Context, orgID string) ([]Record, error)
}

// Client fetches records from the remote revenue endpoint at <baseURL>/<orgID>
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchRecords calls GET <baseURL>/<orgID> and decodes the JSON array
func (c *Client) FetchRecords(ctx context.Context, orgID string) ([]Record, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(orgID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling revenue API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("revenue API error (status %d): %s", resp.StatusCode, string(body))
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return records, nil
}
