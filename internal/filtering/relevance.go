package filtering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-finder/internal/jobs"
	"github.com/spigell/job-finder/internal/ranking"
)

// Relevance turns a list of collected postings into the ordered, thresholded list
// returned to the user. It never fails: every error degrades to a cheaper scorer.
type Relevance struct {
	scorer     Scorer
	strategy   string
	minResults int
	logger     *zap.Logger
}

// NewRelevance creates the orchestrator. A nil scorer means no language model is
// available and the configured strategy is used for everything.
func NewRelevance(cfg *Config, scorer Scorer, logger *zap.Logger) *Relevance {
	if cfg == nil {
		cfg = &Config{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	strategy := strings.ToLower(strings.TrimSpace(cfg.Strategy))
	if strategy != StrategyVector {
		strategy = StrategyRules
	}

	minResults := cfg.StrictMinResults
	if minResults <= 0 {
		minResults = DefaultStrictMinResults
	}

	return &Relevance{
		scorer:     scorer,
		strategy:   strategy,
		minResults: minResults,
		logger:     logger,
	}
}

// AIEnabled reports whether postings are scored by a language model.
func (r *Relevance) AIEnabled() bool {
	return r.scorer != nil
}

// Filter scores the postings against the criteria and returns those meeting the
// threshold, ordered by descending relevance. Postings with the requested work
// arrangement are scored first; the others are only considered when too few
// matches qualify, and then always rank below the matches.
func (r *Relevance) Filter(ctx context.Context, postings []jobs.Posting, criteria jobs.Criteria, threshold float64) []jobs.Posting {
	if len(postings) == 0 {
		return []jobs.Posting{}
	}

	normalized := jobs.NormalizeAll(postings)

	result, err := r.filter(ctx, normalized, criteria, threshold)
	if err != nil {
		r.logger.Error("ai scoring failed, falling back to rule-based scoring",
			zap.Int("postings", len(normalized)),
			zap.Error(err),
		)
		result = ranking.ScoreWithRules(normalized, criteria, threshold)
		ranking.PrioritizeArrangement(result, criteria.WorkArrangement)
		logStep(r.logger, "rules_fallback", len(normalized), len(result))
	}

	return result
}

func (r *Relevance) filter(ctx context.Context, postings []jobs.Posting, criteria jobs.Criteria, threshold float64) (result []jobs.Posting, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scorer panicked: %v", rec)
		}
	}()

	matching, nonMatching := partition(postings, criteria.WorkArrangement)
	if criteria.HasArrangement() {
		if len(matching) == 0 {
			r.logger.Warn("no postings match the requested job nature", zap.String("job_nature", criteria.WorkArrangement))
		} else {
			r.logger.Info("postings match the requested job nature",
				zap.String("job_nature", criteria.WorkArrangement),
				zap.Int("count", len(matching)),
			)
		}
	}

	scoredMatching, err := r.score(ctx, matching, criteria, threshold)
	if err != nil {
		return nil, err
	}
	logStep(r.logger, "matching_job_nature", len(matching), len(scoredMatching))

	if len(scoredMatching) >= r.minResults || len(nonMatching) == 0 {
		return scoredMatching, nil
	}

	r.logger.Info("too few postings match the requested job nature, scoring the rest",
		zap.String("job_nature", criteria.WorkArrangement),
		zap.Int("matching", len(scoredMatching)),
		zap.Int("others", len(nonMatching)),
	)

	scoredOthers, err := r.score(ctx, nonMatching, criteria, threshold)
	if err != nil {
		return nil, err
	}
	logStep(r.logger, "other_job_nature", len(nonMatching), len(scoredOthers))

	combined := make([]jobs.Posting, 0, len(scoredMatching)+len(scoredOthers))
	combined = append(combined, scoredMatching...)
	combined = append(combined, scoredOthers...)
	ranking.SortByScore(combined)
	ranking.PrioritizeArrangement(combined, criteria.WorkArrangement)

	return combined, nil
}

func (r *Relevance) score(ctx context.Context, postings []jobs.Posting, criteria jobs.Criteria, threshold float64) ([]jobs.Posting, error) {
	if len(postings) == 0 {
		return []jobs.Posting{}, nil
	}

	if r.scorer != nil {
		scored, err := r.scorer.ScoreBatch(ctx, postings, criteria, threshold)
		if err != nil {
			return nil, err
		}
		if scored == nil {
			return nil, errors.New("scorer returned no result")
		}
		return scored, nil
	}

	if r.strategy == StrategyVector {
		return ranking.ScoreWithVectors(postings, criteria, threshold), nil
	}
	return ranking.ScoreWithRules(postings, criteria, threshold), nil
}

// Close releases the scorer and its cache.
func (r *Relevance) Close() error {
	if r.scorer == nil {
		return nil
	}
	return r.scorer.Close()
}

func partition(postings []jobs.Posting, arrangement string) (matching, nonMatching []jobs.Posting) {
	if strings.TrimSpace(arrangement) == "" {
		return postings, nil
	}

	for _, p := range postings {
		if jobs.SameArrangement(p.WorkArrangement, arrangement) {
			matching = append(matching, p)
		} else {
			nonMatching = append(nonMatching, p)
		}
	}
	return matching, nonMatching
}
