package scoring

import (
	"fmt"
	"sort"
)

// ConfigType names a versioned weight set.
type ConfigType string

const (
	ConfigProposalEvaluation ConfigType = "proposal_evaluation"
	ConfigVendorRegistration ConfigType = "vendor_registration"
	ConfigVendorRisk         ConfigType = "vendor_risk"
)

func ValidConfigType(t ConfigType) bool {
	switch t {
	case ConfigProposalEvaluation, ConfigVendorRegistration, ConfigVendorRisk:
		return true
	default:
		return false
	}
}

// Criterion is one weighted evaluation axis.
type Criterion struct {
	Weight      float64 `json:"weight"` // 0..100
	Description string  `json:"description,omitempty"`
}

// Configuration is a versioned, named weight set.
//
// Invariant: weights must sum to exactly 100 before the configuration is
// usable for evaluation. A configuration failing the invariant may be stored
// as a draft but is rejected by Evaluate.
type Configuration struct {
	Type     ConfigType           `json:"config_type"`
	Version  int                  `json:"version"`
	Draft    bool                 `json:"draft,omitempty"`
	Criteria map[string]Criterion `json:"criteria"`
}

// clone returns a copy with its own Criteria map, so a caller mutating the
// returned configuration cannot reach stored state.
func (c Configuration) clone() Configuration {
	out := c
	out.Criteria = make(map[string]Criterion, len(c.Criteria))
	for k, v := range c.Criteria {
		out.Criteria[k] = v
	}
	return out
}

func (c Configuration) WeightSum() float64 {
	var sum float64
	for _, cr := range c.Criteria {
		sum += cr.Weight
	}
	return sum
}

// Validate checks the stored-configuration invariants.
// Weight range is always enforced; the sum==100 invariant is skipped for
// drafts so incomplete weight sets can be saved while being edited.
func (c Configuration) Validate() error {
	if !ValidConfigType(c.Type) {
		return &ValidationError{Problems: []string{fmt.Sprintf("unknown config_type %q", c.Type)}}
	}
	if len(c.Criteria) == 0 {
		return &ValidationError{Problems: []string{"at least one criterion is required"}}
	}

	var problems []string
	for _, key := range sortedKeys(c.Criteria) {
		w := c.Criteria[key].Weight
		if w < 0 || w > 100 {
			problems = append(problems, fmt.Sprintf("criterion %q weight %.2f outside [0,100]", key, w))
		}
	}
	if !c.Draft {
		if sum := c.WeightSum(); sum != 100 {
			problems = append(problems, fmt.Sprintf("weights sum to %.2f, must equal 100", sum))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func sortedKeys(m map[string]Criterion) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Defaults returns the built-in weight sets. Reset restores these.
func Defaults() map[ConfigType]Configuration {
	return map[ConfigType]Configuration{
		ConfigProposalEvaluation: {
			Type:    ConfigProposalEvaluation,
			Version: 1,
			Criteria: map[string]Criterion{
				"technical":  {Weight: 40, Description: "technical fit and approach"},
				"financial":  {Weight: 30, Description: "price competitiveness"},
				"experience": {Weight: 20, Description: "relevant delivery track record"},
				"timeline":   {Weight: 10, Description: "delivery schedule fit"},
			},
		},
		ConfigVendorRegistration: {
			Type:    ConfigVendorRegistration,
			Version: 1,
			Criteria: map[string]Criterion{
				"financial_standing": {Weight: 30, Description: "audited financials strength"},
				"certifications":     {Weight: 20, Description: "required certifications held"},
				"track_record":       {Weight: 30, Description: "references and past awards"},
				"local_presence":     {Weight: 20, Description: "in-kingdom presence and support"},
			},
		},
		ConfigVendorRisk: {
			Type:    ConfigVendorRisk,
			Version: 1,
			Criteria: map[string]Criterion{
				"country_risk":        {Weight: 30, Description: "headquarters jurisdiction risk"},
				"financial_stability": {Weight: 25, Description: "solvency and concentration"},
				"data_sensitivity":    {Weight: 25, Description: "access to sensitive data"},
				"dependency":          {Weight: 20, Description: "substitutability of the service"},
			},
		},
	}
}
