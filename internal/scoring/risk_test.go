package scoring

import "testing"

func TestLevelForScore_Bands(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0, RiskLow},
		{39, RiskLow},
		{40, RiskMedium},
		{69, RiskMedium},
		{70, RiskHigh},
		{100, RiskHigh},
	}
	for _, c := range cases {
		if got := LevelForScore(c.score); got != c.want {
			t.Fatalf("score %v: expected %q, got %q", c.score, c.want, got)
		}
	}
}

func TestAssessRisk_OverridesAreMonotonic(t *testing.T) {
	policy := RiskPolicy{HighRiskCountries: map[string]struct{}{"XX": {}}}

	signalSets := []RiskSignals{
		{OwnershipTransparent: true},
		{VendorCountry: "XX", OwnershipTransparent: true},
		{SanctionsExposure: true, OwnershipTransparent: true},
		{OwnershipTransparent: false},
		{VendorCountry: "XX", SanctionsExposure: true, OwnershipTransparent: false},
	}
	scores := []float64{10, 50, 90}

	for _, score := range scores {
		base := LevelForScore(score)
		for _, sig := range signalSets {
			got := AssessRisk(Evaluation{TotalScore: score}, sig, policy)
			if levelRank(got.RiskLevel) < levelRank(base) {
				t.Fatalf("override lowered level: score=%v signals=%+v got=%q base=%q", score, sig, got.RiskLevel, base)
			}
		}
	}
}

func TestAssessRisk_CountryOverrideFloorsHigh(t *testing.T) {
	policy := RiskPolicy{HighRiskCountries: map[string]struct{}{"XX": {}}}
	got := AssessRisk(Evaluation{TotalScore: 10}, RiskSignals{VendorCountry: "XX", OwnershipTransparent: true}, policy)
	if got.RiskLevel != RiskHigh {
		t.Fatalf("expected high floor, got %q", got.RiskLevel)
	}
}

func TestAssessRisk_SanctionsAddsDriverWithoutFloorChange(t *testing.T) {
	got := AssessRisk(Evaluation{TotalScore: 10}, RiskSignals{SanctionsExposure: true, OwnershipTransparent: true}, RiskPolicy{})
	if got.RiskLevel != RiskLow {
		t.Fatalf("sanctions must not change the floor, got %q", got.RiskLevel)
	}
	found := false
	for _, d := range got.TopRiskDrivers {
		if d.Factor == "sanctions_exposure" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sanctions_exposure driver, got %+v", got.TopRiskDrivers)
	}
}

func TestAssessRisk_WeakOwnershipFloorsMedium(t *testing.T) {
	got := AssessRisk(Evaluation{TotalScore: 10}, RiskSignals{OwnershipTransparent: false}, RiskPolicy{})
	if got.RiskLevel != RiskMedium {
		t.Fatalf("expected medium floor, got %q", got.RiskLevel)
	}

	// Already-high stays high.
	got = AssessRisk(Evaluation{TotalScore: 90}, RiskSignals{OwnershipTransparent: false}, RiskPolicy{})
	if got.RiskLevel != RiskHigh {
		t.Fatalf("expected high to remain, got %q", got.RiskLevel)
	}
}

func TestAssessRisk_TopDriversOrderedByContribution(t *testing.T) {
	eval := Evaluation{
		TotalScore: 50,
		Breakdown: []CriterionScore{
			{Key: "small", Contribution: 5},
			{Key: "big", Contribution: 30},
			{Key: "mid", Contribution: 15},
		},
	}
	got := AssessRisk(eval, RiskSignals{OwnershipTransparent: true}, RiskPolicy{})
	if len(got.TopRiskDrivers) < 3 {
		t.Fatalf("expected 3 drivers, got %+v", got.TopRiskDrivers)
	}
	if got.TopRiskDrivers[0].Factor != "big" || got.TopRiskDrivers[1].Factor != "mid" {
		t.Fatalf("expected contribution ordering, got %+v", got.TopRiskDrivers)
	}
}
