package scoring

// RiskLevel classifies a risk score into fixed bands.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func levelRank(l RiskLevel) int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return -1
	}
}

// LevelForScore maps a risk score to its band: 0-39 low, 40-69 medium,
// 70-100 high.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 70:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RiskDriver is one contributing factor, largest contributions first.
type RiskDriver struct {
	Factor             string  `json:"factor"`
	WeightContribution float64 `json:"weight_contribution"`
	Reason             string  `json:"reason"`
}

// RiskAssessment is a derived field on contracts/vendors; recomputed on
// demand, never hand-edited.
type RiskAssessment struct {
	RiskScore      float64      `json:"risk_score"`
	RiskLevel      RiskLevel    `json:"risk_level"`
	TopRiskDrivers []RiskDriver `json:"top_risk_drivers"`
}

func (r RiskAssessment) Clone() RiskAssessment {
	out := r
	out.TopRiskDrivers = append([]RiskDriver(nil), r.TopRiskDrivers...)
	return out
}

// RiskSignals are the boolean/categorical inputs the override rules consume.
type RiskSignals struct {
	VendorCountry        string
	SanctionsExposure    bool
	OwnershipTransparent bool
}

// RiskPolicy holds the configured override inputs.
type RiskPolicy struct {
	HighRiskCountries map[string]struct{}
}

// NewRiskPolicy builds a policy from ISO country codes.
func NewRiskPolicy(highRiskCountries []string) RiskPolicy {
	set := make(map[string]struct{}, len(highRiskCountries))
	for _, c := range highRiskCountries {
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return RiskPolicy{HighRiskCountries: set}
}

func (p RiskPolicy) isHighRiskCountry(code string) bool {
	if code == "" {
		return false
	}
	_, ok := p.HighRiskCountries[code]
	return ok
}

// AssessRisk derives the risk level from the score bands, then applies the
// override rules in fixed priority order. Each override can only raise the
// floor, never lower it; applying one to an already-higher level is a no-op.
//
// Order:
//  1. vendor headquartered in a configured high-risk country → floor high
//  2. sanctions exposure → recorded as a critical driver, no floor change
//  3. weak ownership transparency → floor medium
func AssessRisk(eval Evaluation, signals RiskSignals, policy RiskPolicy) RiskAssessment {
	out := RiskAssessment{
		RiskScore: eval.TotalScore,
		RiskLevel: LevelForScore(eval.TotalScore),
	}

	for _, cs := range topDrivers(eval.Breakdown, 3) {
		out.TopRiskDrivers = append(out.TopRiskDrivers, RiskDriver{
			Factor:             cs.Key,
			WeightContribution: cs.Contribution,
			Reason:             "weighted criterion contribution",
		})
	}

	if policy.isHighRiskCountry(signals.VendorCountry) {
		out.RiskLevel = raiseTo(out.RiskLevel, RiskHigh)
		out.TopRiskDrivers = append(out.TopRiskDrivers, RiskDriver{
			Factor: "high_risk_country",
			Reason: "vendor headquartered in " + signals.VendorCountry,
		})
	}

	if signals.SanctionsExposure {
		out.TopRiskDrivers = append(out.TopRiskDrivers, RiskDriver{
			Factor: "sanctions_exposure",
			Reason: "vendor has sanctions exposure",
		})
	}

	if !signals.OwnershipTransparent {
		out.RiskLevel = raiseTo(out.RiskLevel, RiskMedium)
		out.TopRiskDrivers = append(out.TopRiskDrivers, RiskDriver{
			Factor: "ownership_transparency",
			Reason: "vendor ownership structure not transparent",
		})
	}

	return out
}

func raiseTo(cur, floor RiskLevel) RiskLevel {
	if levelRank(floor) > levelRank(cur) {
		return floor
	}
	return cur
}

func topDrivers(breakdown []CriterionScore, n int) []CriterionScore {
	out := append([]CriterionScore(nil), breakdown...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Contribution > out[j-1].Contribution; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
