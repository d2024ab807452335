package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-finder/internal/cache"
	"github.com/spigell/job-finder/internal/jobs"
	"github.com/spigell/job-finder/internal/logger"
	"github.com/spigell/job-finder/internal/ranking"
)

const (
	// DefaultBatchSize bounds the number of concurrent model calls.
	DefaultBatchSize = 3

	mismatchCeiling = 30.0
	mismatchFactor  = 0.3
	mismatchSuffix  = " (Score reduced for job nature mismatch)"

	parseFailureExplanation = "Used rule-based scoring due to parsing failure"
)

// BatchScorer scores postings with a language model in small concurrent batches,
// caching assessments and falling back to the rule scorer per posting.
type BatchScorer struct {
	evaluator Evaluator
	cache     cache.Cache
	batchSize int
	logger    *zap.Logger
}

// NewBatchScorer creates a scorer. A nil store gets a fresh in-memory cache.
func NewBatchScorer(evaluator Evaluator, store cache.Cache, batchSize int, logger *zap.Logger) *BatchScorer {
	if store == nil {
		store = cache.NewMemory(cache.DefaultOptions())
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BatchScorer{
		evaluator: evaluator,
		cache:     store,
		batchSize: batchSize,
		logger:    logger,
	}
}

// ScoreBatch returns the postings whose score meets the threshold, annotated and
// ordered by descending score. Postings are sent in groups of batchSize; every call
// of a group finishes before the next group starts. Failures of single postings are
// absorbed, an error means the whole batch could not be scored.
func (s *BatchScorer) ScoreBatch(ctx context.Context, postings []jobs.Posting, criteria jobs.Criteria, threshold float64) ([]jobs.Posting, error) {
	if s == nil || s.evaluator == nil {
		return nil, errors.New("ai scorer is not configured")
	}

	scored := make([]jobs.Posting, 0, len(postings))
	for start := 0; start < len(postings); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scoring interrupted: %w", err)
		}

		batch := postings[start:min(start+s.batchSize, len(postings))]
		results := make([]jobs.Posting, len(batch))

		var g errgroup.Group
		for i, posting := range batch {
			g.Go(func() error {
				results[i] = s.scoreOne(ctx, posting, criteria)
				return nil
			})
		}
		_ = g.Wait()

		for _, p := range results {
			if p.Score() >= threshold {
				scored = append(scored, p)
			}
		}
	}

	ranking.SortByScore(scored)
	return scored, nil
}

// Close drops every cached assessment and releases the cache.
func (s *BatchScorer) Close() error {
	if s == nil || s.cache == nil {
		return nil
	}
	if err := s.cache.Clear(context.Background()); err != nil && !errors.Is(err, cache.ErrClosed) {
		return fmt.Errorf("clear score cache: %w", err)
	}
	return s.cache.Close()
}

func (s *BatchScorer) scoreOne(ctx context.Context, p jobs.Posting, c jobs.Criteria) jobs.Posting {
	key := CacheKey(c, p)
	log := s.logger.With(logger.PostingFields(p.Title, p.Source, p.WorkArrangement)...)

	var cached Assessment
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		log.Debug("using cached score", zap.Float64("score", cached.Score))
		return p.WithPercentScore(cached.Score)
	case !errors.Is(err, cache.ErrNotFound):
		log.Warn("reading score cache", zap.Error(err))
	}

	assessment, err := s.assess(ctx, p, c)
	if err != nil {
		scored := p.WithScore(ranking.RuleScore(p, c))
		log.Warn("ai scoring failed, using rule-based score",
			zap.String("score", scored.RelevancePercentage),
			zap.Error(err),
		)
		return scored
	}

	if err := s.cache.Set(ctx, key, assessment, 0); err != nil {
		log.Warn("writing score cache", zap.Error(err))
	}

	scored := p.WithPercentScore(assessment.Score)
	log.Info("ai scored posting",
		zap.String("score", scored.RelevancePercentage),
		zap.String("explanation", assessment.Explanation),
	)
	return scored
}

func (s *BatchScorer) assess(ctx context.Context, p jobs.Posting, c jobs.Criteria) (assessment Assessment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluator panicked: %v", r)
		}
	}()

	raw, err := s.evaluator.Evaluate(ctx, c, p)
	if err != nil {
		return Assessment{}, err
	}

	assessment, err = ParseScore(raw)
	if errors.Is(err, ErrUnparseable) {
		s.logger.Debug("model answer has no score", zap.String("title", p.Title))
		return Assessment{
			Score:       ranking.RuleScore(p, c) * 100,
			Explanation: parseFailureExplanation,
		}, nil
	}
	if err != nil {
		return Assessment{}, err
	}

	return GuardArrangement(assessment, c, p), nil
}

// GuardArrangement caps the score of a posting whose work arrangement differs from the
// requested one when the model did not already score it at 30 or below.
func GuardArrangement(a Assessment, c jobs.Criteria, p jobs.Posting) Assessment {
	if !jobs.ArrangementMismatch(c.WorkArrangement, p.WorkArrangement) || a.Score <= mismatchCeiling {
		return a
	}
	a.Score = min(mismatchCeiling, a.Score*mismatchFactor)
	a.Explanation += mismatchSuffix
	return a
}

// CacheKey identifies an assessment by the request fields and the posting fields
// the model sees as most significant.
func CacheKey(c jobs.Criteria, p jobs.Posting) string {
	return strings.Join([]string{
		c.Position, c.Location, c.WorkArrangement, c.Experience,
		p.Title, p.Company, p.WorkArrangement,
	}, "_")
}
