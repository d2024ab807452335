package collectors

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-finder/internal/jobs"
)

// Service fans a search out to the platform collectors.
type Service struct {
	collectors []Collector
	timeout    time.Duration
	logger     *zap.Logger
}

func NewService(collectors []Collector, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		collectors: collectors,
		timeout:    timeout,
		logger:     logger,
	}
}

// Platforms lists the available collector names.
func (s *Service) Platforms() []string {
	names := make([]string, 0, len(s.collectors))
	for _, c := range s.collectors {
		names = append(names, c.Name())
	}
	return names
}

// Search queries the collectors selected by criteria.Platforms concurrently. A failing or
// slow collector is logged and skipped. Results keep the collector order and every
// posting has a canonical work arrangement.
func (s *Service) Search(ctx context.Context, criteria jobs.Criteria) ([]jobs.Posting, error) {
	selected, err := Select(s.collectors, criteria.Platforms)
	if err != nil {
		return nil, err
	}

	results := make([][]jobs.Posting, len(selected))
	var g errgroup.Group
	for i, c := range selected {
		g.Go(func() error {
			results[i] = s.searchOne(ctx, c, criteria)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var postings []jobs.Posting
	for _, r := range results {
		postings = append(postings, r...)
	}

	s.logger.Info("search finished",
		zap.String("position", criteria.Position),
		zap.Int("collectors", len(selected)),
		zap.Int("postings", len(postings)),
	)

	return jobs.NormalizeAll(postings), nil
}

type outcome struct {
	postings []jobs.Posting
	err      error
}

func (s *Service) searchOne(ctx context.Context, c Collector, criteria jobs.Criteria) []jobs.Posting {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("collector panicked: %v", rec)}
			}
		}()
		postings, err := c.Search(ctx, criteria)
		done <- outcome{postings: postings, err: err}
	}()

	var result outcome
	select {
	case result = <-done:
	case <-ctx.Done():
		result.err = ctx.Err()
	}

	if result.err != nil {
		s.logger.Warn("collector failed",
			zap.String("collector", c.Name()),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(result.err),
		)
		return nil
	}
	return result.postings
}
