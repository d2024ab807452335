package collectors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-finder/internal/jobs"
)

// DefaultTimeout bounds a single collector call.
const DefaultTimeout = 30 * time.Second

// ErrUnknownPlatform is returned when criteria name a platform that is not registered.
var ErrUnknownPlatform = errors.New("unknown platform")

// Collector fetches postings for criteria from one job platform.
type Collector interface {
	Name() string
	Search(ctx context.Context, criteria jobs.Criteria) ([]jobs.Posting, error)
}

// Config holds collector settings. Feeds maps a collector name to an optional JSON feed URL.
type Config struct {
	Timeout   time.Duration     `mapstructure:"timeout"`
	UserAgent string            `mapstructure:"user-agent"`
	Feeds     map[string]string `mapstructure:"feeds"`
}

// Names lists the registered collectors in registry order.
func Names() []string {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, p.name)
	}
	return names
}

// Registry builds every registered collector.
func Registry(cfg *Config, logger *zap.Logger) []Collector {
	if cfg == nil {
		cfg = &Config{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := NewFeedClient(cfg.UserAgent, logger)
	collectors := make([]Collector, 0, len(platforms))
	for _, p := range platforms {
		collectors = append(collectors, &platformCollector{
			platform: p,
			feedURL:  cfg.Feeds[p.name],
			client:   client,
			logger:   logger.With(zap.String("collector", p.name)),
		})
	}
	return collectors
}

// Select returns the collectors named in names, in registry order, or all of them
// when names is empty.
func Select(all []Collector, names []string) ([]Collector, error) {
	if len(names) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[strings.ToLower(strings.TrimSpace(name))] = true
	}

	selected := make([]Collector, 0, len(wanted))
	for _, c := range all {
		if wanted[c.Name()] {
			selected = append(selected, c)
			delete(wanted, c.Name())
		}
	}

	for _, name := range names {
		if wanted[strings.ToLower(strings.TrimSpace(name))] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
		}
	}
	return selected, nil
}
