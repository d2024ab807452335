package jobs

import "strings"

// Criteria is the structured search request. It is never modified once a search starts.
type Criteria struct {
	Position        string `json:"position" binding:"required" mapstructure:"position"`
	Location        string `json:"location,omitempty" mapstructure:"location"`
	Experience      string `json:"experience,omitempty" mapstructure:"experience"`
	WorkArrangement string `json:"jobNature,omitempty" mapstructure:"job-nature"`
	Salary          string `json:"salary,omitempty" mapstructure:"salary"`
	Skills          string `json:"skills,omitempty" mapstructure:"skills"`

	// Platforms restricts the search to the named collectors. Empty means all.
	Platforms []string `json:"platforms,omitempty" mapstructure:"platforms"`
}

// HasArrangement reports whether a work arrangement was requested.
func (c Criteria) HasArrangement() bool {
	return strings.TrimSpace(c.WorkArrangement) != ""
}

// SkillList splits the comma separated skills, dropping blank entries.
func (c Criteria) SkillList() []string {
	var skills []string
	for _, s := range strings.Split(c.Skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
