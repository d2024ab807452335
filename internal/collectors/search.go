package collectors

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-finder/internal/jobs"
)

// maxResults caps the postings returned by a single platform.
const maxResults = 10

//go:embed catalog/*.json
var catalogs embed.FS

type platformCollector struct {
	platform
	feedURL string
	client  *FeedClient
	logger  *zap.Logger
}

func (c *platformCollector) Name() string {
	return c.name
}

// Search reads the platform feed when one is configured and falls back to the
// bundled catalog when the feed is unset, fails or has nothing.
func (c *platformCollector) Search(ctx context.Context, criteria jobs.Criteria) ([]jobs.Posting, error) {
	items, err := c.items(ctx, criteria)
	if err != nil {
		return nil, err
	}

	words := strings.Fields(strings.ToLower(criteria.Position))
	postings := make([]jobs.Posting, 0, maxResults)
	for _, item := range items {
		posting, err := c.decode(item)
		if err != nil {
			c.logger.Debug("skipping malformed record", zap.Error(err))
			continue
		}
		if posting.Title == "" || !titleMatches(posting.Title, words) {
			continue
		}

		posting.Source = c.source
		postings = append(postings, posting)
		if len(postings) == maxResults {
			break
		}
	}

	c.logger.Info("collected postings", zap.Int("count", len(postings)))
	return postings, nil
}

func (c *platformCollector) items(ctx context.Context, criteria jobs.Criteria) ([]Item, error) {
	if c.feedURL != "" {
		items, err := c.client.GetItems(ctx, c.feedURL, feedQuery(criteria))
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("feed request failed, using bundled catalog", zap.Error(err))
		case len(items) == 0:
			c.logger.Info("feed returned nothing, using bundled catalog")
		default:
			return items, nil
		}
	}

	return loadCatalog(c.name)
}

func feedQuery(criteria jobs.Criteria) url.Values {
	q := url.Values{}
	q.Set("q", criteria.Position)
	if criteria.Location != "" {
		q.Set("location", criteria.Location)
	}
	if criteria.Experience != "" {
		q.Set("experience", criteria.Experience)
	}
	if criteria.WorkArrangement != "" {
		q.Set("job_nature", criteria.WorkArrangement)
	}
	return q
}

func loadCatalog(name string) ([]Item, error) {
	raw, err := catalogs.ReadFile("catalog/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("read %s catalog: %w", name, err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s catalog: %w", name, err)
	}
	return items, nil
}

// titleMatches reports whether any position word occurs in the title. No words matches everything.
func titleMatches(title string, words []string) bool {
	if len(words) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
