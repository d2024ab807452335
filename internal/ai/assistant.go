package ai

import (
	"context"
	"encoding/json"

	"github.com/spigell/job-finder/internal/jobs"
)

// Assessment is a relevance judgement on a 0-100 scale.
type Assessment struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// MarshalBinary lets assessments be stored in a cache.Cache.
func (a Assessment) MarshalBinary() ([]byte, error) {
	return json.Marshal(a)
}

func (a *Assessment) UnmarshalBinary(raw []byte) error {
	return json.Unmarshal(raw, a)
}

// Evaluator asks a language model how well a posting fits the criteria and returns
// the model's raw text answer.
type Evaluator interface {
	Evaluate(ctx context.Context, criteria jobs.Criteria, posting jobs.Posting) (string, error)
}
