// Package publisher is the Facebook Graph API client used for scheduled
// page publishing.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the Graph API endpoint version the portal targets.
const DefaultBaseURL = "https://graph.facebook.com/v17.0"

// Config carries the page credentials. Credentials are injected at
// process start; they are never embedded in the client itself.
type Config struct {
	BaseURL string
	PageID  string
	Token   string
	Timeout time.Duration
}

// GraphClient issues scheduled-publish calls against a Facebook page.
type GraphClient struct {
	httpClient *http.Client
	baseURL    string
	pageID     string
	token      string
}

// NewGraphClient creates a Graph API client with pooled connections.
func NewGraphClient(cfg Config) *GraphClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &GraphClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   100,
				MaxConnsPerHost:       100,
				IdleConnTimeout:       90 * time.Second,
				ForceAttemptHTTP2:     true,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		pageID:  cfg.PageID,
		token:   cfg.Token,
	}
}

// Configured reports whether page credentials are present.
func (c *GraphClient) Configured() bool {
	return c.pageID != "" && c.token != ""
}

// ScheduleVideo schedules a video post on the page. The video is
// referenced by URL; the Graph API fetches it server-side.
func (c *GraphClient) ScheduleVideo(ctx context.Context, description, fileURL string, publishAt time.Time) (json.RawMessage, error) {
	form := url.Values{}
	form.Set("description", description)
	form.Set("file_url", fileURL)
	return c.post(ctx, "/videos", form, publishAt)
}

// SchedulePost schedules a link post (used for images) on the page feed.
func (c *GraphClient) SchedulePost(ctx context.Context, message, link string, publishAt time.Time) (json.RawMessage, error) {
	form := url.Values{}
	form.Set("message", message)
	form.Set("link", link)
	return c.post(ctx, "/feed", form, publishAt)
}

// post issues one form-urlencoded publish call. The raw response body
// is returned verbatim in both the success and the error case so
// callers can record it per item without schema validation.
func (c *GraphClient) post(ctx context.Context, path string, form url.Values, publishAt time.Time) (json.RawMessage, error) {
	form.Set("published", "false")
	form.Set("scheduled_publish_time", strconv.FormatInt(publishAt.Unix(), 10))
	form.Set("access_token", c.token)

	endpoint := fmt.Sprintf("%s/%s%s", c.baseURL, c.pageID, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph api request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read graph api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return json.RawMessage(body), fmt.Errorf("graph api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.RawMessage(body), nil
}
