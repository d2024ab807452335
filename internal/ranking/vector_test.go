package ranking

import (
	"math"
	"testing"

	"github.com/spigell/job-finder/internal/jobs"
)

func TestScoreAllEmpty(t *testing.T) {
	scores := ScoreAll(nil, jobs.Criteria{Position: "Go Developer"})
	if scores == nil || len(scores) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", scores)
	}
}

func TestScoreAllIdenticalDocument(t *testing.T) {
	c := jobs.Criteria{Position: "Go Developer", Skills: "Kubernetes"}
	postings := []jobs.Posting{
		{Title: "Pastry Chef", Company: "Bakery", Description: "croissants and bread"},
		{Title: "Go Developer", Company: "Kubernetes"},
		{},
	}

	if QueryDocument(c) != PostingDocument(postings[1]) {
		t.Fatalf("fixture documents must be identical")
	}

	scores := ScoreAll(postings, c)
	if len(scores) != len(postings) {
		t.Fatalf("expected %d scores, got %d", len(postings), len(scores))
	}
	if math.Abs(scores[1]-1) > 1e-6 {
		t.Fatalf("expected similarity ~1, got %v", scores[1])
	}
	if scores[0] != 0 {
		t.Fatalf("unrelated posting should not be similar, got %v", scores[0])
	}
	if scores[2] != 0 {
		t.Fatalf("empty posting should score 0, got %v", scores[2])
	}
}

func TestScoreAllRanksOverlap(t *testing.T) {
	c := jobs.Criteria{Position: "Python Engineer", Skills: "Django, PostgreSQL"}
	postings := []jobs.Posting{
		{Title: "Java Engineer", Description: "Spring and Oracle"},
		{Title: "Python Engineer", Description: "Django services on PostgreSQL"},
		{Title: "Python Tutor", Description: "teach kids"},
	}

	scores := ScoreAll(postings, c)
	if !(scores[1] > scores[2] && scores[1] > scores[0]) {
		t.Fatalf("expected the python/django posting to rank first: %v", scores)
	}
}

func TestScoreAllEmptyQuery(t *testing.T) {
	scores := ScoreAll([]jobs.Posting{{Title: "Go Developer"}}, jobs.Criteria{})
	if scores[0] != 0 {
		t.Fatalf("empty query should yield 0, got %v", scores[0])
	}
}

func TestScoreWithVectors(t *testing.T) {
	c := jobs.Criteria{Position: "Go Developer"}
	postings := []jobs.Posting{
		{Title: "Pastry Chef", Source: "Indeed"},
		{Title: "Go Developer", Source: "LinkedIn"},
	}

	got := ScoreWithVectors(postings, c, 0.2)
	if len(got) != 1 || got[0].Source != "LinkedIn" {
		t.Fatalf("unexpected result %+v", got)
	}
	if !got[0].Scored() {
		t.Fatalf("expected result to be scored")
	}
}
