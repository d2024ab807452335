package ai

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const (
	noExplanation        = "No explanation provided"
	extractedExplanation = "Extracted from AI response"
)

// ErrUnparseable is returned when no score can be found in a model answer.
var ErrUnparseable = errors.New("no score found in model response")

var (
	scoreLine       = regexp.MustCompile(`SCORE:\s*(\d+)`)
	explanationLine = regexp.MustCompile(`EXPLANATION:\s*(.+?)(?:\n|$)`)

	// Tried in order of appearance in the text: "N/100", "N%", "score ... N", "N point".
	looseScore       = regexp.MustCompile(`(?i)(\d+)/100|(\d+)%|score.*?(\d+)|(\d+)\s*point`)
	looseExplanation = regexp.MustCompile(`(?i)\b(?:because|since|explanation:?)\s+([^.\n]+)`)
)

// ParseScore extracts a score and explanation from free text. The strict
// "SCORE: N" / "EXPLANATION: text" format is tried first, then looser numeric hints.
func ParseScore(text string) (Assessment, error) {
	if match := scoreLine.FindStringSubmatch(text); match != nil {
		score, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return Assessment{}, ErrUnparseable
		}

		explanation := noExplanation
		if m := explanationLine.FindStringSubmatch(text); m != nil {
			if trimmed := strings.TrimSpace(m[1]); trimmed != "" {
				explanation = trimmed
			}
		}
		return Assessment{Score: score, Explanation: explanation}, nil
	}

	match := looseScore.FindStringSubmatch(text)
	if match == nil {
		return Assessment{}, ErrUnparseable
	}

	var digits string
	for _, group := range match[1:] {
		if group != "" {
			digits = group
			break
		}
	}

	score, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return Assessment{}, ErrUnparseable
	}

	explanation := extractedExplanation
	if m := looseExplanation.FindStringSubmatch(text); m != nil {
		if trimmed := strings.TrimSpace(m[1]); trimmed != "" {
			explanation = trimmed
		}
	}

	return Assessment{Score: score, Explanation: explanation}, nil
}
