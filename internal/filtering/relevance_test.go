package filtering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-finder/internal/ai"
	"github.com/spigell/job-finder/internal/jobs"
	"github.com/spigell/job-finder/internal/ranking"
)

// stubScorer scores by title prefix and records which postings it saw.
type stubScorer struct {
	scores map[string]float64
	err    error
	panics bool
	closed bool
	seen   [][]string
}

func (s *stubScorer) ScoreBatch(_ context.Context, postings []jobs.Posting, _ jobs.Criteria, threshold float64) ([]jobs.Posting, error) {
	if s.panics {
		panic("scorer exploded")
	}
	if s.err != nil {
		return nil, s.err
	}

	titles := make([]string, 0, len(postings))
	out := make([]jobs.Posting, 0, len(postings))
	for _, p := range postings {
		titles = append(titles, p.Title)
		score := s.scores[p.Title]
		if score >= threshold {
			out = append(out, p.WithScore(score))
		}
	}
	s.seen = append(s.seen, titles)
	ranking.SortByScore(out)
	return out, nil
}

func (s *stubScorer) Close() error {
	s.closed = true
	return nil
}

func titles(postings []jobs.Posting) string {
	names := make([]string, 0, len(postings))
	for _, p := range postings {
		names = append(names, p.Title)
	}
	return strings.Join(names, ",")
}

func TestFilterEmptyInput(t *testing.T) {
	r := NewRelevance(nil, &stubScorer{}, zap.NewNop())

	got := r.Filter(context.Background(), nil, jobs.Criteria{Position: "x"}, DefaultThreshold)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", got)
	}
}

func TestFilterEnoughMatchesSkipsOthers(t *testing.T) {
	scorer := &stubScorer{scores: map[string]float64{}}
	var postings []jobs.Posting
	for i := 0; i < 10; i++ {
		arrangement := "Onsite"
		if i < 6 {
			arrangement = "Remote"
		}
		title := fmt.Sprintf("%s-%d", strings.ToLower(arrangement), i)
		// Non matching postings would outrank every match on raw score.
		scorer.scores[title] = 0.5 + float64(i)/100
		postings = append(postings, jobs.Posting{Title: title, WorkArrangement: arrangement})
	}

	r := NewRelevance(nil, scorer, zap.NewNop())
	got := r.Filter(context.Background(), postings, jobs.Criteria{Position: "x", WorkArrangement: "remote"}, 0.2)

	if len(got) != 6 {
		t.Fatalf("expected 6 postings, got %d (%s)", len(got), titles(got))
	}
	for _, p := range got {
		if p.WorkArrangement != jobs.Remote {
			t.Fatalf("unexpected non matching posting %q", p.Title)
		}
	}
	if len(scorer.seen) != 1 {
		t.Fatalf("non matching postings must not be scored, scorer called %d times", len(scorer.seen))
	}
}

func TestFilterMatchesAlwaysRankFirst(t *testing.T) {
	scorer := &stubScorer{scores: map[string]float64{
		"remote-a": 0.4,
		"remote-b": 0.6,
		"remote-c": 0.1,
		"onsite-a": 0.99,
		"hybrid-a": 0.95,
		"onsite-b": 0.3,
	}}
	postings := []jobs.Posting{
		{Title: "onsite-a", WorkArrangement: "Onsite"},
		{Title: "remote-a", WorkArrangement: "Remote"},
		{Title: "hybrid-a", WorkArrangement: "Hybrid"},
		{Title: "remote-b", WorkArrangement: "Remote"},
		{Title: "onsite-b", WorkArrangement: "Onsite"},
		{Title: "remote-c", WorkArrangement: "Remote"},
	}

	r := NewRelevance(nil, scorer, zap.NewNop())
	got := r.Filter(context.Background(), postings, jobs.Criteria{Position: "x", WorkArrangement: "Remote"}, 0.2)

	if order := titles(got); order != "remote-b,remote-a,onsite-a,hybrid-a,onsite-b" {
		t.Fatalf("unexpected order %q", order)
	}
	if len(scorer.seen) != 2 {
		t.Fatalf("expected two scoring rounds, got %d", len(scorer.seen))
	}
}

func TestFilterWithoutArrangementScoresEverything(t *testing.T) {
	scorer := &stubScorer{scores: map[string]float64{"a": 0.3, "b": 0.9, "c": 0.1}}
	postings := []jobs.Posting{{Title: "a"}, {Title: "b", WorkArrangement: "Remote"}, {Title: "c"}}

	r := NewRelevance(nil, scorer, zap.NewNop())
	got := r.Filter(context.Background(), postings, jobs.Criteria{Position: "x"}, 0.2)

	if order := titles(got); order != "b,a" {
		t.Fatalf("unexpected order %q", order)
	}
	if len(scorer.seen) != 1 || len(scorer.seen[0]) != 3 {
		t.Fatalf("expected a single round over all postings, got %v", scorer.seen)
	}
}

func TestFilterFallsBackToRulesOnWholeFailure(t *testing.T) {
	criteria := jobs.Criteria{Position: "Go Developer", WorkArrangement: "Remote"}
	postings := []jobs.Posting{
		{Title: "Go Developer", WorkArrangement: "Onsite", Source: "Indeed"},
		{Title: "Go Developer", WorkArrangement: "Remote", Source: "LinkedIn"},
	}

	for name, scorer := range map[string]*stubScorer{
		"error": {err: errors.New("model offline")},
		"panic": {panics: true},
	} {
		t.Run(name, func(t *testing.T) {
			core, observed := observer.New(zapcore.ErrorLevel)
			r := NewRelevance(nil, scorer, zap.New(core))

			got := r.Filter(context.Background(), postings, criteria, 0.2)

			if len(got) != 2 {
				t.Fatalf("expected rules over the whole input, got %d", len(got))
			}
			if got[0].Source != "LinkedIn" || got[0].RelevancePercentage != "100%" {
				t.Fatalf("unexpected first posting %+v", got[0])
			}
			if got[1].Source != "Indeed" || got[1].RelevancePercentage != "30%" {
				t.Fatalf("unexpected second posting %+v", got[1])
			}
			if observed.Len() != 1 {
				t.Fatalf("expected one error log, got %d", observed.Len())
			}
		})
	}
}

func TestFilterRulesWithoutScorer(t *testing.T) {
	criteria := jobs.Criteria{Position: "Full Stack Engineer", WorkArrangement: "onsite", Skills: "Node.js, React.js"}
	postings := []jobs.Posting{
		{Title: "Full Stack Engineer", WorkArrangement: "Remote", Source: "Indeed"},
		{Title: "Stack Engineer II", WorkArrangement: "onsite", Source: "Glassdoor"},
		{Title: "Full Stack Engineer", WorkArrangement: "onsite", Source: "LinkedIn"},
	}

	r := NewRelevance(&Config{Strategy: StrategyRules}, nil, zap.NewNop())
	if r.AIEnabled() {
		t.Fatal("expected ai to be disabled")
	}

	got := r.Filter(context.Background(), postings, criteria, 0.2)
	if len(got) != 3 {
		t.Fatalf("expected 3 postings, got %d", len(got))
	}
	if got[0].Source != "LinkedIn" || got[1].Source != "Glassdoor" || got[2].Source != "Indeed" {
		t.Fatalf("unexpected order %s", titles(got))
	}
	if got[2].Score() > 0.3 {
		t.Fatalf("mismatched posting must be capped, got %v", got[2].Score())
	}

	for _, p := range postings {
		if p.Scored() {
			t.Fatal("input postings must stay untouched")
		}
	}
}

func TestFilterVectorStrategy(t *testing.T) {
	criteria := jobs.Criteria{Position: "Go Developer"}
	postings := []jobs.Posting{
		{Title: "Pastry Chef", Description: "bread"},
		{Title: "Go Developer", Description: "go developer"},
	}

	r := NewRelevance(&Config{Strategy: "Vector"}, nil, zap.NewNop())
	got := r.Filter(context.Background(), postings, criteria, 0.2)

	if len(got) != 1 || got[0].Title != "Go Developer" {
		t.Fatalf("unexpected result %s", titles(got))
	}
}

func TestFilterNormalizesArrangement(t *testing.T) {
	scorer := &stubScorer{scores: map[string]float64{"Remote Go Developer": 0.9, "Go Developer": 0.9}}
	postings := []jobs.Posting{
		{Title: "Remote Go Developer", WorkArrangement: "Onsite"},
		{Title: "Go Developer", Description: "work from home"},
	}

	r := NewRelevance(&Config{StrictMinResults: 2}, scorer, zap.NewNop())
	got := r.Filter(context.Background(), postings, jobs.Criteria{Position: "Go", WorkArrangement: "remote"}, 0.2)

	if len(got) != 2 {
		t.Fatalf("expected both postings to match, got %d", len(got))
	}
	for _, p := range got {
		if p.WorkArrangement != jobs.Remote {
			t.Fatalf("expected normalized arrangement, got %q", p.WorkArrangement)
		}
	}
	if len(scorer.seen) != 1 {
		t.Fatalf("expected a single scoring round, got %d", len(scorer.seen))
	}
}

type natureAwareEvaluator struct{}

func (natureAwareEvaluator) Evaluate(_ context.Context, c jobs.Criteria, p jobs.Posting) (string, error) {
	switch {
	case !strings.EqualFold(c.WorkArrangement, p.WorkArrangement):
		return "SCORE: 15\nEXPLANATION: job nature differs", nil
	case strings.EqualFold(c.Position, p.Title):
		return "SCORE: 95\nEXPLANATION: exact title", nil
	default:
		return "SCORE: 70\nEXPLANATION: related title", nil
	}
}

func TestFilterEndToEndWithModel(t *testing.T) {
	criteria := jobs.Criteria{Position: "Full Stack Engineer", WorkArrangement: "onsite", Skills: "Node.js, React.js"}
	postings := []jobs.Posting{
		{Title: "Full Stack Engineer", Company: "B", WorkArrangement: "remote", Source: "Indeed"},
		{Title: "Full Stack Developer", Company: "C", WorkArrangement: "onsite", Source: "Glassdoor"},
		{Title: "Full Stack Engineer", Company: "A", WorkArrangement: "onsite", Source: "LinkedIn"},
	}

	scorer := ai.NewBatchScorer(natureAwareEvaluator{}, nil, ai.DefaultBatchSize, zap.NewNop())
	r := NewRelevance(nil, scorer, zap.NewNop())
	defer r.Close()

	got := r.Filter(context.Background(), postings, criteria, 0.2)

	if len(got) != 2 {
		t.Fatalf("expected 2 postings, got %d (%s)", len(got), titles(got))
	}
	if got[0].Source != "LinkedIn" || got[1].Source != "Glassdoor" {
		t.Fatalf("unexpected order %s / %s", got[0].Source, got[1].Source)
	}
	if got[0].RelevancePercentage != "95%" || got[1].RelevancePercentage != "70%" {
		t.Fatalf("unexpected percentages %q %q", got[0].RelevancePercentage, got[1].RelevancePercentage)
	}
}

func TestCloseReleasesScorer(t *testing.T) {
	scorer := &stubScorer{}
	if err := NewRelevance(nil, scorer, nil).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !scorer.closed {
		t.Fatal("expected scorer to be closed")
	}

	if err := NewRelevance(nil, nil, nil).Close(); err != nil {
		t.Fatalf("close without scorer: %v", err)
	}
}
