package classify

import (
	"fmt"
	"strings"
)

// ConfigurationError indicates an invariant violation in stored
// configuration. Defensive: it points at data corruption upstream, not at
// caller input.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("classify: invalid configuration: %s", strings.Join(e.Problems, "; "))
}

// Band is one contract-value band. The interval convention is closed-open,
// [Min, Max): a value on two adjacent bands' shared boundary falls into
// exactly one band. A nil Min is the catch-all low end, a nil Max the
// catch-all high end.
type Band struct {
	Level       string   `json:"level"`
	Min         *float64 `json:"min"`
	Max         *float64 `json:"max"`
	Description string   `json:"description,omitempty"`
}

func (b Band) contains(v float64) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v >= *b.Max {
		return false
	}
	return true
}

// ThresholdSet is an ordered list of contiguous, non-overlapping value bands
// plus the due-diligence floor: contracts at or above the floor band require
// contract due diligence regardless of classification.
type ThresholdSet struct {
	Bands             []Band `json:"bands"`
	DueDiligenceFloor string `json:"due_diligence_floor"`
}

// Validate checks band contiguity and the open-end rules.
func (t ThresholdSet) Validate() error {
	var problems []string

	if len(t.Bands) == 0 {
		return &ConfigurationError{Problems: []string{"at least one band is required"}}
	}

	for i, b := range t.Bands {
		if b.Level == "" {
			problems = append(problems, fmt.Sprintf("band %d: level is required", i))
		}
		if i > 0 && b.Min == nil {
			problems = append(problems, fmt.Sprintf("band %q: only the first band may have min=null", b.Level))
		}
		if i < len(t.Bands)-1 && b.Max == nil {
			problems = append(problems, fmt.Sprintf("band %q: only the last band may have max=null", b.Level))
		}
		if b.Min != nil && b.Max != nil && *b.Min >= *b.Max {
			problems = append(problems, fmt.Sprintf("band %q: min %.2f >= max %.2f", b.Level, *b.Min, *b.Max))
		}
		if i > 0 {
			prev := t.Bands[i-1]
			if prev.Max == nil || b.Min == nil {
				continue // already reported above
			}
			if *prev.Max != *b.Min {
				problems = append(problems, fmt.Sprintf("bands %q and %q are not contiguous (%.2f vs %.2f)", prev.Level, b.Level, *prev.Max, *b.Min))
			}
		}
	}

	if t.DueDiligenceFloor != "" {
		if _, ok := t.levelIndex(t.DueDiligenceFloor); !ok {
			problems = append(problems, fmt.Sprintf("due_diligence_floor %q does not name a band", t.DueDiligenceFloor))
		}
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

// BandFor finds the unique band containing v.
func (t ThresholdSet) BandFor(v float64) (Band, int, error) {
	if err := t.Validate(); err != nil {
		return Band{}, 0, err
	}
	for i, b := range t.Bands {
		if b.contains(v) {
			return b, i, nil
		}
	}
	return Band{}, 0, &ConfigurationError{Problems: []string{fmt.Sprintf("no band contains value %.2f", v)}}
}

func (t ThresholdSet) levelIndex(level string) (int, bool) {
	for i, b := range t.Bands {
		if b.Level == level {
			return i, true
		}
	}
	return 0, false
}

func ptr(v float64) *float64 { return &v }

// DefaultThresholds returns the built-in SAR value bands.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		Bands: []Band{
			{Level: "low", Min: nil, Max: ptr(100_000), Description: "below 100k SAR"},
			{Level: "medium", Min: ptr(100_000), Max: ptr(1_000_000), Description: "100k to 1M SAR"},
			{Level: "high", Min: ptr(1_000_000), Max: ptr(10_000_000), Description: "1M to 10M SAR"},
			{Level: "critical", Min: ptr(10_000_000), Max: nil, Description: "10M SAR and above"},
		},
		DueDiligenceFloor: "high",
	}
}
