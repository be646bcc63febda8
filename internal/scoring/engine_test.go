package scoring

import (
	"errors"
	"testing"
)

func evalConfig() Configuration {
	return Configuration{
		Type:    ConfigProposalEvaluation,
		Version: 3,
		Criteria: map[string]Criterion{
			"technical": {Weight: 60},
			"financial": {Weight: 40},
		},
	}
}

func TestEvaluate_WeightedTotal(t *testing.T) {
	cfg := evalConfig()

	a, err := Evaluate(cfg, map[string]float64{"technical": 0.8, "financial": 0.9}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.TotalScore != 84 {
		t.Fatalf("expected A total 84, got %v", a.TotalScore)
	}

	b, err := Evaluate(cfg, map[string]float64{"technical": 0.9, "financial": 0.7}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if b.TotalScore != 82 {
		t.Fatalf("expected B total 82, got %v", b.TotalScore)
	}

	if len(a.Breakdown) != 2 {
		t.Fatalf("expected per-criterion breakdown, got %d rows", len(a.Breakdown))
	}
	if a.ConfigVersion != 3 {
		t.Fatalf("expected config version recorded, got %d", a.ConfigVersion)
	}
}

func TestEvaluate_MissingCriterionIsAllOrNothing(t *testing.T) {
	cfg := evalConfig()
	cfg.Criteria["experience"] = Criterion{Weight: 0}

	_, err := Evaluate(cfg, map[string]float64{"technical": 0.5, "financial": 0.5}, nil)
	var inc *IncompleteScoreError
	if !errors.As(err, &inc) {
		t.Fatalf("expected IncompleteScoreError, got %v", err)
	}
	if len(inc.Missing) != 1 || inc.Missing[0] != "experience" {
		t.Fatalf("expected missing [experience], got %v", inc.Missing)
	}
}

func TestEvaluate_RejectsDraftAndBadWeightSum(t *testing.T) {
	cfg := evalConfig()
	cfg.Draft = true
	var vErr *ValidationError
	if _, err := Evaluate(cfg, map[string]float64{"technical": 1, "financial": 1}, nil); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for draft, got %v", err)
	}

	cfg = evalConfig()
	cfg.Criteria["financial"] = Criterion{Weight: 50}
	if _, err := Evaluate(cfg, map[string]float64{"technical": 1, "financial": 1}, nil); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for sum != 100, got %v", err)
	}
}

func TestEvaluate_RejectsOutOfRangeNormalizedValue(t *testing.T) {
	cfg := evalConfig()
	if _, err := Evaluate(cfg, map[string]float64{"technical": 1.2, "financial": 0.5}, nil); err == nil {
		t.Fatalf("expected error for value outside [0,1]")
	}
}

func TestEvaluate_ExtraValuesIgnored(t *testing.T) {
	cfg := evalConfig()
	got, err := Evaluate(cfg, map[string]float64{"technical": 1, "financial": 1, "unrelated": 1}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.TotalScore != 100 {
		t.Fatalf("expected 100, got %v", got.TotalScore)
	}
}

func TestRank_ScoreThenPriceThenSubmissionOrder(t *testing.T) {
	ranked := Rank([]Candidate{
		{ID: "b", TotalScore: 82, PriceSAR: 900, SubmissionOrder: 2},
		{ID: "a", TotalScore: 84, PriceSAR: 1000, SubmissionOrder: 1},
		{ID: "c", TotalScore: 82, PriceSAR: 800, SubmissionOrder: 3},
		{ID: "d", TotalScore: 82, PriceSAR: 800, SubmissionOrder: 1},
	})

	want := []string{"a", "d", "c", "b"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Fatalf("position %d: expected %q, got %q (full: %+v)", i, id, ranked[i].ID, ranked)
		}
	}
}
