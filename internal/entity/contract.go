package entity

import (
	"procurement-platform/internal/classify"
	"procurement-platform/internal/scoring"
)

// Contract is a vendor contract moving through the approval lifecycle:
// draft → under_review → pending_due_diligence → pending_sama_noc →
// pending_hop_approval → approved → active → expired, with rejected
// reachable from any pre-approved state.
//
// Classification and RiskAssessment are derived fields: recomputed on demand
// by the classification/scoring engines, never hand-edited.
type Contract struct {
	Record

	Title    string `json:"title"`
	VendorID string `json:"vendor_id"`

	// VendorCountry is the vendor's headquarters country code; feeds the
	// high-risk-country override.
	VendorCountry string `json:"vendor_country"`

	ValueSAR       float64 `json:"value_sar"`
	DurationMonths int     `json:"duration_months"`

	// Attributes consumed by indicator predicates.
	CloudHosted    bool   `json:"cloud_hosted"`
	DataLocation   string `json:"data_location"` // onshore | offshore
	OnsitePresence bool   `json:"onsite_presence"`
	CoreFunction   bool   `json:"core_function"` // supports a core regulated function

	// Risk signal inputs (vendor due diligence data).
	SanctionsExposure    bool `json:"sanctions_exposure"`
	OwnershipTransparent bool `json:"ownership_transparent"`

	// RiskInputs are the normalized [0,1] criterion values for the
	// vendor_risk scoring configuration, keyed by criterion key.
	RiskInputs map[string]float64 `json:"risk_inputs,omitempty"`

	// Attachments required before HoP submission.
	SOWAttached bool `json:"sow_attached"`
	SLAAttached bool `json:"sla_attached"`

	Classification *classify.Result        `json:"classification,omitempty"`
	Risk           *scoring.RiskAssessment `json:"risk,omitempty"`
}

func (c *Contract) Clone() Workflowable {
	out := *c
	out.Record = c.Record.cloneRecord()
	if c.Classification != nil {
		cl := c.Classification.Clone()
		out.Classification = &cl
	}
	if c.Risk != nil {
		r := c.Risk.Clone()
		out.Risk = &r
	}
	if c.RiskInputs != nil {
		out.RiskInputs = make(map[string]float64, len(c.RiskInputs))
		for k, v := range c.RiskInputs {
			out.RiskInputs[k] = v
		}
	}
	return &out
}

// ClassificationAttributes projects the contract fields the classification
// engine evaluates. Pure data; recomputation is always safe.
func (c *Contract) ClassificationAttributes() classify.ContractAttributes {
	return classify.ContractAttributes{
		ValueSAR:       c.ValueSAR,
		DurationMonths: c.DurationMonths,
		CloudHosted:    c.CloudHosted,
		DataLocation:   c.DataLocation,
		OnsitePresence: c.OnsitePresence,
		CoreFunction:   c.CoreFunction,
	}
}

// RiskSignals projects the contract fields the risk override rules consume.
func (c *Contract) RiskSignals() scoring.RiskSignals {
	return scoring.RiskSignals{
		VendorCountry:        c.VendorCountry,
		SanctionsExposure:    c.SanctionsExposure,
		OwnershipTransparent: c.OwnershipTransparent,
	}
}
