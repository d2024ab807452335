package ranking

import (
	"strings"
	"unicode"

	"github.com/spigell/job-finder/internal/jobs"
)

// QueryDocument flattens the search criteria into a bag-of-words document.
func QueryDocument(c jobs.Criteria) string {
	return buildDocument(c.Position, c.Skills, c.Location, c.WorkArrangement, c.Experience)
}

// PostingDocument flattens a posting into a bag-of-words document.
func PostingDocument(p jobs.Posting) string {
	return buildDocument(p.Title, p.Company, p.Location, p.WorkArrangement, p.Experience, p.Description)
}

func buildDocument(parts ...string) string {
	present := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			present = append(present, part)
		}
	}

	cleaned := strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		// Replaced rather than dropped so that "node.js" does not become "nodejs".
		return ' '
	}, strings.Join(present, " "))

	return strings.Join(strings.Fields(cleaned), " ")
}
