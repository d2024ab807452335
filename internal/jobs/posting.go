package jobs

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Posting is a single job listing produced by a collector.
type Posting struct {
	Title           string `json:"job_title"`
	Company         string `json:"company"`
	Experience      string `json:"experience"`
	WorkArrangement string `json:"jobNature"`
	Location        string `json:"location"`
	Salary          string `json:"salary"`
	ApplyLink       string `json:"apply_link"`
	Description     string `json:"description"`
	Source          string `json:"source"`

	// Set only by the scoring subsystem.
	RelevanceScore      *float64 `json:"relevance_score,omitempty"`
	RelevancePercentage string   `json:"relevance_percentage,omitempty"`
}

// WithScore returns a copy of the posting annotated with the given score.
// The score is clamped to [0, 1].
func (p Posting) WithScore(score float64) Posting {
	score = Clamp(score)
	p.RelevanceScore = &score
	p.RelevancePercentage = Percentage(score)
	return p
}

// WithPercentScore annotates the posting with a 0-100 score, as returned by language models.
func (p Posting) WithPercentScore(score float64) Posting {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	relevance := score / 100
	p.RelevanceScore = &relevance
	p.RelevancePercentage = fmt.Sprintf("%d%%", int(score))
	return p
}

// Score returns the relevance score or 0 when the posting has not been scored.
func (p Posting) Score() float64 {
	if p.RelevanceScore == nil {
		return 0
	}
	return *p.RelevanceScore
}

// Scored reports whether the posting carries a relevance score.
func (p Posting) Scored() bool {
	return p.RelevanceScore != nil
}

// Clamp bounds a relevance score to [0, 1].
func Clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Min(1, math.Max(0, score))
}

// Percentage renders a [0, 1] score as a whole percent, truncating like int(score*100).
func Percentage(score float64) string {
	// The epsilon keeps 0.3 from rendering as 29%.
	return fmt.Sprintf("%d%%", int(math.Floor(Clamp(score)*100+1e-9)))
}

// DumpToTmpFile writes the postings as indented JSON into a temporary file.
func DumpToTmpFile(postings []Posting) (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(postings); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportBySource groups postings by their source platform.
func ReportBySource(postings []Posting) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, p := range postings {
		entry := map[string]string{
			"title":     p.Title,
			"company":   p.Company,
			"location":  p.Location,
			"jobNature": p.WorkArrangement,
			"url":       p.ApplyLink,
		}
		if p.Scored() {
			entry["relevance"] = p.RelevancePercentage
		}
		report[p.Source] = append(report[p.Source], entry)
	}
	return report
}
