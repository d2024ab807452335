package collectors

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	contentType      = "application/json"
	contentEncoding  = "gzip"
	defaultUserAgent = "job-finder/1.0"
	// maxPages stops a misbehaving feed from paging forever.
	maxPages = 10
)

// Item is a single raw record of a feed or catalog.
type Item map[string]any

// ItemResponse is one page of a platform feed.
type ItemResponse struct {
	Items   []Item `json:"items"`
	Found   int    `json:"found"`
	Pages   int    `json:"pages"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// FeedClient reads paginated JSON feeds.
type FeedClient struct {
	HTTPClient *http.Client
	UserAgent  string
	logger     *zap.Logger
}

func NewFeedClient(userAgent string, logger *zap.Logger) *FeedClient {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedClient{
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
		logger:    logger,
	}
}

// GetItems requests the feed and returns items from all pages.
func (c *FeedClient) GetItems(ctx context.Context, feedURL string, q url.Values) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	query := req.URL.Query()
	for key, values := range q {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	req.URL.RawQuery = query.Encode()

	response, err := c.fetch(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response from feed", zap.Int("pages", response.Pages), zap.Int("found", response.Found))

	items := append([]Item(nil), response.Items...)

	for fetched := 1; response.Page < response.Pages-1; fetched++ {
		if fetched >= maxPages {
			c.logger.Warn("feed page limit reached", zap.Int("pages", response.Pages), zap.Int("limit", maxPages))
			break
		}

		c.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", response.Page+1, response.Pages),
		))

		response, err = c.fetch(addPage(req, response.Page+1))
		if err != nil {
			return nil, err
		}

		items = append(items, response.Items...)
	}

	return items, nil
}

func (c *FeedClient) fetch(req *http.Request) (*ItemResponse, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	var response ItemResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	return &response, nil
}

// addPage sets the page parameter on a request URL.
func addPage(req *http.Request, page int) *http.Request {
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	return req
}
