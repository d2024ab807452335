package jobs

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestWithScoreClampsAndFormats(t *testing.T) {
	p := Posting{Title: "Go Developer", Source: "Indeed"}

	scored := p.WithScore(1.3)
	if scored.Score() != 1 {
		t.Fatalf("expected clamp to 1, got %v", scored.Score())
	}
	if scored.RelevancePercentage != "100%" {
		t.Fatalf("unexpected percentage %q", scored.RelevancePercentage)
	}

	if p.Scored() {
		t.Fatalf("original posting must stay unscored")
	}

	if got := p.WithScore(0.3).RelevancePercentage; got != "30%" {
		t.Fatalf("expected 30%%, got %q", got)
	}
	if got := p.WithScore(-1).Score(); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}

func TestWithPercentScore(t *testing.T) {
	scored := Posting{}.WithPercentScore(25.5)
	if scored.Score() != 0.255 {
		t.Fatalf("unexpected score %v", scored.Score())
	}
	if scored.RelevancePercentage != "25%" {
		t.Fatalf("unexpected percentage %q", scored.RelevancePercentage)
	}
}

func TestPostingJSONOmitsUnsetScore(t *testing.T) {
	raw, err := json.Marshal(Posting{Title: "Go Developer", Company: "Acme", Source: "LinkedIn"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if strings.Contains(body, "relevance_score") || strings.Contains(body, "relevance_percentage") {
		t.Fatalf("unset score must be omitted: %s", body)
	}
	for _, key := range []string{`"job_title"`, `"jobNature"`, `"apply_link"`, `"source"`} {
		if !strings.Contains(body, key) {
			t.Fatalf("missing %s in %s", key, body)
		}
	}
}

func TestSkillList(t *testing.T) {
	c := Criteria{Skills: " Node.js, React.js ,, "}
	skills := c.SkillList()
	if len(skills) != 2 || skills[0] != "Node.js" || skills[1] != "React.js" {
		t.Fatalf("unexpected skills %v", skills)
	}
}

func TestReportBySource(t *testing.T) {
	report := ReportBySource([]Posting{
		{Title: "A", Source: "LinkedIn"},
		Posting{Title: "B", Source: "LinkedIn"}.WithScore(0.5),
		{Title: "C", Source: "Indeed"},
	})

	if len(report["LinkedIn"]) != 2 || len(report["Indeed"]) != 1 {
		t.Fatalf("unexpected report %v", report)
	}
	if report["LinkedIn"][1]["relevance"] != "50%" {
		t.Fatalf("expected relevance in report, got %v", report["LinkedIn"][1])
	}
	if _, ok := report["Indeed"][0]["relevance"]; ok {
		t.Fatalf("unscored posting must not report relevance")
	}
}
