// Package remote pulls timesheet documents and asset rates from the
// document store's export API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/plantbill/internal/timesheet"
)

const (
	defaultPageSize = 500
	maxRetries      = 3
)

type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	httpClient *http.Client
	cache      *AssetCache
	logger     *slog.Logger
	backoff    func(attempt int) time.Duration
}

func NewClient(apiKey string, baseURL string, cacheTTL time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: defaultPageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:   NewAssetCache(cacheTTL),
		logger:  logger,
		backoff: backoff,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("remote URL is empty, set remote.url in config or PLANTBILL_REMOTE_URL")
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	c.logger.Debug("remote API request", "path", path, "query", query.Encode())

	var resp *http.Response
	requestStart := time.Now()
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries || ctx.Err() != nil {
				c.logger.Error("API request transport error", "path", path, "error", err, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("sending request: %w", err)
			}
			c.logger.Debug("API request transport error, retrying", "path", path, "attempt", attempt+1, "error", err)
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				c.logger.Error("API request failed after retries", "path", path, "status", resp.StatusCode, "attempts", maxRetries+1, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("API returned status %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.logger.Debug("API request retryable error", "path", path, "status", resp.StatusCode, "attempt", attempt+1)
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("remote API response", "path", path, "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(requestStart))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("API request failed", "path", path, "status", resp.StatusCode, "response", truncate(string(respBody), 200))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	return respBody, nil
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	t := time.NewTimer(c.backoff(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// FetchTimesheets pages through the timesheet documents of entityID dated
// from..to (YYYY-MM-DD). An empty entityID fetches every entity.
func (c *Client) FetchTimesheets(ctx context.Context, entityID, from, to string) ([]timesheet.Document, error) {
	var all []timesheet.Document
	page := 1

	for {
		q := url.Values{}
		q.Set("from", from)
		q.Set("to", to)
		q.Set("page", strconv.Itoa(page))
		q.Set("page-size", strconv.Itoa(c.pageSize))
		if entityID != "" {
			q.Set("entityId", entityID)
		}

		data, err := c.doRequest(ctx, "/timesheets", q)
		if err != nil {
			return nil, fmt.Errorf("fetching timesheets: %w", err)
		}

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var docs []timesheet.Document
		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("parsing timesheets response: %w", err)
		}

		all = append(all, docs...)
		if len(docs) < c.pageSize {
			break
		}
		page++
	}

	c.logger.Info("fetched timesheets", "entity", entityID, "from", from, "to", to, "count", len(all))
	return all, nil
}

// FetchAssets returns every asset with its rates, served from the cache
// while it is fresh.
func (c *Client) FetchAssets(ctx context.Context) ([]Asset, error) {
	if cached := c.cache.Get(); cached != nil {
		return cached, nil
	}

	data, err := c.doRequest(ctx, "/assets", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching assets: %w", err)
	}

	var assets []Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("parsing assets response: %w", err)
	}
	if assets == nil {
		assets = []Asset{}
	}

	c.cache.Set(assets)
	return assets, nil
}

// InvalidateAssets drops the cached asset list.
func (c *Client) InvalidateAssets() {
	c.cache.Invalidate()
}
