package jobs

import "strings"

// Canonical work arrangements. No other value leaves Normalize.
const (
	Remote       = "Remote"
	Onsite       = "Onsite"
	Hybrid       = "Hybrid"
	NotSpecified = "Not specified"
)

var arrangementKeywords = []struct {
	arrangement string
	keywords    []string
}{
	{Remote, []string{"remote", "work from home", "wfh", "virtual"}},
	{Hybrid, []string{"hybrid", "flexible", "part remote"}},
	{Onsite, []string{"onsite", "on-site", "in office", "on location", "in-person"}},
}

// Normalize returns a copy of the posting with a canonical work arrangement.
// The title is trusted first, then the explicit field, then the description.
func Normalize(p Posting) Posting {
	for _, text := range []string{p.Title, p.WorkArrangement, p.Description} {
		if arrangement, ok := DetectArrangement(text); ok {
			p.WorkArrangement = arrangement
			return p
		}
	}
	p.WorkArrangement = NotSpecified
	return p
}

// NormalizeAll normalizes every posting into a new slice.
func NormalizeAll(postings []Posting) []Posting {
	out := make([]Posting, len(postings))
	for i, p := range postings {
		out[i] = Normalize(p)
	}
	return out
}

// DetectArrangement looks for arrangement keywords in free text.
func DetectArrangement(text string) (string, bool) {
	lower := strings.ToLower(text)
	if lower == "" {
		return "", false
	}
	for _, group := range arrangementKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(lower, keyword) {
				return group.arrangement, true
			}
		}
	}
	return "", false
}

// SameArrangement compares two arrangements case-insensitively. Blank values never match.
func SameArrangement(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// ArrangementMismatch reports whether both arrangements are set and differ.
func ArrangementMismatch(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	return !SameArrangement(a, b)
}
