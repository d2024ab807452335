package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/job-finder/internal/jobs"
)

const (
	StrategyRules  = "rules"
	StrategyVector = "vector"

	// DefaultThreshold is the minimum relevance a posting needs to be returned.
	DefaultThreshold = 0.2
	// DefaultStrictMinResults is how many arrangement matches make the rest unnecessary.
	DefaultStrictMinResults = 5
)

// Scorer is a model-backed scorer. It returns the postings meeting the threshold,
// annotated and ordered by descending score.
type Scorer interface {
	ScoreBatch(ctx context.Context, postings []jobs.Posting, criteria jobs.Criteria, threshold float64) ([]jobs.Posting, error)
	Close() error
}

// Config contains the settings of the relevance orchestrator.
type Config struct {
	// Strategy is used when no Scorer is configured or it fails: "rules" or "vector".
	Strategy         string
	StrictMinResults int
}

func logStep(logger *zap.Logger, name string, initial, left int) {
	logger.Info("filter step",
		zap.String("name", name),
		zap.Int("initial", initial),
		zap.Int("dropped", initial-left),
		zap.Int("left", left),
	)
}
