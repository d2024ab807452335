package gemini

import (
	"context"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/job-finder/internal/jobs"
	"github.com/spigell/job-finder/internal/logger"
	"github.com/spigell/job-finder/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed system_prompt.md
var systemPrompt string

//go:embed human_prompt.md
var humanPromptTemplate string

const (
	defaultMaxLogLength = 200

	notSpecified  = "Not specified"
	noDescription = "No description available"
)

// Evaluator renders the relevance prompt for a posting and asks Gemini to score it.
type Evaluator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewEvaluator(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Evaluator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Evaluator{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Evaluate returns the raw model answer for the posting.
func (e *Evaluator) Evaluate(ctx context.Context, criteria jobs.Criteria, posting jobs.Posting) (string, error) {
	prompt := buildPrompt(criteria, posting)

	log := e.logger.With(logger.PostingFields(posting.Title, posting.Source, posting.WorkArrangement)...)
	log.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return "", err
	}

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	return raw, nil
}

func buildPrompt(c jobs.Criteria, p jobs.Posting) string {
	description := p.Description
	if strings.TrimSpace(description) == "" {
		description = noDescription
	}

	replacer := strings.NewReplacer(
		"{{POSITION}}", c.Position,
		"{{SKILLS}}", orNotSpecified(c.Skills),
		"{{EXPERIENCE}}", orNotSpecified(c.Experience),
		"{{JOB_NATURE}}", orNotSpecified(c.WorkArrangement),
		"{{LOCATION}}", orNotSpecified(c.Location),
		"{{JOB_TITLE}}", p.Title,
		"{{JOB_COMPANY}}", p.Company,
		"{{JOB_JOB_NATURE}}", orNotSpecified(p.WorkArrangement),
		"{{JOB_EXPERIENCE}}", orNotSpecified(p.Experience),
		"{{JOB_LOCATION}}", orNotSpecified(p.Location),
		"{{JOB_DESCRIPTION}}", description,
	)
	return replacer.Replace(humanPromptTemplate)
}

func orNotSpecified(value string) string {
	if strings.TrimSpace(value) == "" {
		return notSpecified
	}
	return value
}
