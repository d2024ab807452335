package ranking

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/job-finder/internal/jobs"
)

const (
	baseScore         = 0.30
	arrangementBonus  = 0.40
	arrangementMalus  = 0.20
	mismatchCeiling   = 0.30
	exactTitleBonus   = 0.30
	partialTitleBonus = 0.15
	skillsWeight      = 0.20
	locationBonus     = 0.10
	experienceBonus   = 0.10
)

var yearsPattern = regexp.MustCompile(`\b(\d+)\+?\s*(?:year|yr)s?\b`)

// RuleScore is the deterministic heuristic relevance of a posting for the criteria, in [0, 1].
func RuleScore(p jobs.Posting, c jobs.Criteria) float64 {
	score := baseScore

	mismatch := jobs.ArrangementMismatch(c.WorkArrangement, p.WorkArrangement)
	switch {
	case mismatch:
		score -= arrangementMalus
		score = min(score, mismatchCeiling)
	case jobs.SameArrangement(c.WorkArrangement, p.WorkArrangement):
		score += arrangementBonus
	}

	position := strings.ToLower(c.Position)
	title := strings.ToLower(p.Title)
	if strings.Contains(title, position) {
		score += exactTitleBonus
	} else if slices.ContainsFunc(strings.Fields(position), func(word string) bool {
		return strings.Contains(title, word)
	}) {
		score += partialTitleBonus
	}

	if skills := c.SkillList(); len(skills) > 0 && p.Description != "" {
		description := strings.ToLower(p.Description)
		matched := 0
		for _, skill := range skills {
			if strings.Contains(description, strings.ToLower(skill)) {
				matched++
			}
		}
		score += skillsWeight * float64(matched) / float64(len(skills))
	}

	if c.Location != "" && p.Location != "" {
		location := strings.ToLower(p.Location)
		for _, part := range strings.Split(strings.ToLower(c.Location), ",") {
			if strings.Contains(location, strings.TrimSpace(part)) {
				score += locationBonus
				break
			}
		}
	}

	if wanted, ok := ExtractYears(c.Experience); ok {
		if required, ok := ExtractYears(p.Experience); ok && required <= wanted {
			score += experienceBonus
		}
	}

	if mismatch {
		score = min(score, mismatchCeiling)
	}

	return jobs.Clamp(score)
}

// ExtractYears pulls the first "N years" figure out of an experience string.
func ExtractYears(experience string) (int, bool) {
	match := yearsPattern.FindStringSubmatch(strings.ToLower(experience))
	if match == nil {
		return 0, false
	}
	years, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return years, true
}

// ScoreWithRules scores each posting individually, keeps those meeting the threshold
// and returns them ordered by descending score.
func ScoreWithRules(postings []jobs.Posting, c jobs.Criteria, threshold float64) []jobs.Posting {
	scored := make([]jobs.Posting, 0, len(postings))
	for _, p := range postings {
		p = p.WithScore(RuleScore(p, c))
		if p.Score() >= threshold {
			scored = append(scored, p)
		}
	}
	SortByScore(scored)
	return scored
}

// SortByScore orders postings by descending relevance, keeping input order for ties.
func SortByScore(postings []jobs.Posting) {
	slices.SortStableFunc(postings, func(a, b jobs.Posting) int {
		return cmp.Compare(b.Score(), a.Score())
	})
}

// PrioritizeArrangement moves postings matching the requested arrangement ahead of the
// rest, ordering each group by descending score.
func PrioritizeArrangement(postings []jobs.Posting, arrangement string) {
	if strings.TrimSpace(arrangement) == "" {
		return
	}
	slices.SortStableFunc(postings, func(a, b jobs.Posting) int {
		am, bm := jobs.SameArrangement(a.WorkArrangement, arrangement), jobs.SameArrangement(b.WorkArrangement, arrangement)
		if am != bm {
			if am {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.Score(), a.Score())
	})
}
