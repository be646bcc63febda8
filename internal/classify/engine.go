package classify

import "fmt"

// Classification categories, driving compliance requirements.
const (
	ClassOutsourcing     = "outsourcing"
	ClassCloudComputing  = "cloud_computing"
	ClassStandardService = "standard_service"
)

// ContractAttributes is the projection of a contract the engine evaluates.
type ContractAttributes struct {
	ValueSAR       float64 `json:"value_sar"`
	DurationMonths int     `json:"duration_months"`
	CloudHosted    bool    `json:"cloud_hosted"`
	DataLocation   string  `json:"data_location"`
	OnsitePresence bool    `json:"onsite_presence"`
	CoreFunction   bool    `json:"core_function"`
}

// Result is a derived, recomputable classification. It is never hand-edited,
// only regenerated from current attributes and the active configuration.
type Result struct {
	Classification  string   `json:"classification"`
	Reason          string   `json:"reason"`
	Confidence      *float64 `json:"confidence,omitempty"`
	IndicatorsFound []string `json:"indicators_found"`
	ValueBand       string   `json:"value_band"`

	RequiresSAMANOC    bool `json:"requires_sama_noc"`
	RequiresContractDD bool `json:"requires_contract_dd"`

	// AdvisoryHint is surfaced to the human decision-maker alongside the
	// deterministic result. It never changes the classification.
	AdvisoryHint *Hint `json:"advisory_hint,omitempty"`
}

func (r Result) Clone() Result {
	out := r
	out.IndicatorsFound = append([]string(nil), r.IndicatorsFound...)
	if r.Confidence != nil {
		c := *r.Confidence
		out.Confidence = &c
	}
	if r.AdvisoryHint != nil {
		h := *r.AdvisoryHint
		out.AdvisoryHint = &h
	}
	return out
}

// Classify derives the outsourcing classification and its compliance flags.
//
// Decision order:
//  1. any fired rule with triggers_material_outsourcing → outsourcing
//  2. else any fired cloud indicator → cloud_computing
//  3. else → standard_service
//
// requires_sama_noc: outsourcing AND any fired SAMA trigger.
// requires_contract_dd: outsourcing OR value band at/above the DD floor.
//
// Pure function of its inputs; always safe to call again.
func Classify(attrs ContractAttributes, thresholds ThresholdSet, rules []IndicatorRule, predicate PredicateFunc) (Result, error) {
	if predicate == nil {
		predicate = DefaultPredicate
	}

	band, bandIdx, err := thresholds.BandFor(attrs.ValueSAR)
	if err != nil {
		return Result{}, err
	}

	var (
		fired         []string
		material      bool
		materialKey   string
		cloud         bool
		samaTriggered bool
	)
	for _, rule := range rules {
		ok, err := predicate(rule, attrs)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			continue
		}
		fired = append(fired, rule.Key)
		if rule.TriggersMaterialOutsourcing && !material {
			material = true
			materialKey = rule.Key
		}
		if rule.CloudIndicator {
			cloud = true
		}
		if rule.SAMATrigger {
			samaTriggered = true
		}
	}

	out := Result{
		IndicatorsFound: fired,
		ValueBand:       band.Level,
	}

	switch {
	case material:
		out.Classification = ClassOutsourcing
		out.Reason = fmt.Sprintf("material outsourcing indicator %q fired", materialKey)
	case cloud:
		out.Classification = ClassCloudComputing
		out.Reason = "cloud-hosting indicator fired without material outsourcing"
	default:
		out.Classification = ClassStandardService
		out.Reason = fmt.Sprintf("no outsourcing or cloud indicators; value band %q", band.Level)
	}

	out.RequiresSAMANOC = out.Classification == ClassOutsourcing && samaTriggered

	ddFloorIdx, hasFloor := thresholds.levelIndex(thresholds.DueDiligenceFloor)
	out.RequiresContractDD = out.Classification == ClassOutsourcing || (hasFloor && bandIdx >= ddFloorIdx)

	return out, nil
}
