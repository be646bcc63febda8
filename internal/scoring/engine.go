package scoring

import (
	"fmt"
	"sort"
)

// Normalizer maps a raw criterion value to [0,1]. Normalization rules are
// entity-type-specific and supplied by the caller; the engine only does
// weighted aggregation.
type Normalizer func(key string, raw float64) (float64, error)

// UnitNormalizer accepts values that are already in [0,1].
func UnitNormalizer(key string, raw float64) (float64, error) {
	if raw < 0 || raw > 1 {
		return 0, &ValidationError{Problems: []string{fmt.Sprintf("criterion %q value %.4f outside [0,1]", key, raw)}}
	}
	return raw, nil
}

// CriterionScore is one row of the per-criterion breakdown.
type CriterionScore struct {
	Key          string  `json:"key"`
	Weight       float64 `json:"weight"`
	Raw          float64 `json:"raw"`
	Normalized   float64 `json:"normalized"`
	Contribution float64 `json:"contribution"`
}

// Evaluation is the output of a weighted scoring run.
type Evaluation struct {
	ConfigType    ConfigType       `json:"config_type"`
	ConfigVersion int              `json:"config_version"`
	TotalScore    float64          `json:"total_score"`
	Breakdown     []CriterionScore `json:"breakdown"`
}

func (e Evaluation) Clone() Evaluation {
	out := e
	out.Breakdown = append([]CriterionScore(nil), e.Breakdown...)
	return out
}

// Evaluate computes the weighted score of values against cfg.
//
// Every criterion in cfg must have a value; a missing one fails with
// IncompleteScoreError listing all missing keys. Values without a matching
// criterion are ignored. Draft or invariant-violating configurations are
// rejected up front.
func Evaluate(cfg Configuration, values map[string]float64, normalize Normalizer) (Evaluation, error) {
	if cfg.Draft {
		return Evaluation{}, &ValidationError{Problems: []string{"configuration is a draft"}}
	}
	if err := cfg.Validate(); err != nil {
		return Evaluation{}, err
	}
	if normalize == nil {
		normalize = UnitNormalizer
	}

	keys := sortedKeys(cfg.Criteria)

	var missing []string
	for _, k := range keys {
		if _, ok := values[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Evaluation{}, &IncompleteScoreError{Missing: missing}
	}

	out := Evaluation{
		ConfigType:    cfg.Type,
		ConfigVersion: cfg.Version,
		Breakdown:     make([]CriterionScore, 0, len(keys)),
	}
	for _, k := range keys {
		raw := values[k]
		norm, err := normalize(k, raw)
		if err != nil {
			return Evaluation{}, err
		}
		contribution := cfg.Criteria[k].Weight * norm
		out.Breakdown = append(out.Breakdown, CriterionScore{
			Key:          k,
			Weight:       cfg.Criteria[k].Weight,
			Raw:          raw,
			Normalized:   norm,
			Contribution: contribution,
		})
		out.TotalScore += contribution
	}

	out.TotalScore = clamp(out.TotalScore, 0, 100)
	return out, nil
}

// Candidate is one scored entrant in a ranking (e.g., a proposal).
// SubmissionOrder is the tie-break of last resort: earliest first.
type Candidate struct {
	ID              string
	TotalScore      float64
	PriceSAR        float64
	SubmissionOrder int
}

// Rank orders candidates deterministically: total score descending, then
// lower submitted price, then earliest submission.
func Rank(candidates []Candidate) []Candidate {
	out := append([]Candidate(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		if out[i].PriceSAR != out[j].PriceSAR {
			return out[i].PriceSAR < out[j].PriceSAR
		}
		return out[i].SubmissionOrder < out[j].SubmissionOrder
	})
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
