package entity

import (
	"time"

	"procurement-platform/internal/scoring"
)

// Proposal is a vendor proposal submitted against a business request.
// CriterionValues are normalized [0,1] values keyed by the criterion keys of
// the proposal_evaluation scoring configuration.
type Proposal struct {
	ID              string             `json:"id"`
	VendorID        string             `json:"vendor_id"`
	PriceSAR        float64            `json:"price_sar"`
	CriterionValues map[string]float64 `json:"criterion_values"`
	SubmittedAt     time.Time          `json:"submitted_at"`

	Score *scoring.Evaluation `json:"score,omitempty"`
}

// BusinessRequest is a tender/business request. Its lifecycle adds the
// optional additional-approver step: from evaluation_complete an officer may
// insert exactly one ad-hoc approver before the fixed HoP approval. That
// approver's decision is gated to the assigned user id, not a role.
type BusinessRequest struct {
	Record

	Title              string  `json:"title"`
	Description        string  `json:"description,omitempty"`
	RequesterID        string  `json:"requester_id"`
	EstimatedBudgetSAR float64 `json:"estimated_budget_sar"`

	Proposals []Proposal `json:"proposals,omitempty"`

	// Ranking is proposal IDs best-first, set when evaluation runs.
	Ranking []string `json:"ranking,omitempty"`

	// AdditionalApproverID is set when an ad-hoc approver is inserted.
	AdditionalApproverID string `json:"additional_approver_id,omitempty"`
}

func (b *BusinessRequest) Clone() Workflowable {
	out := *b
	out.Record = b.Record.cloneRecord()
	out.Proposals = make([]Proposal, len(b.Proposals))
	for i, p := range b.Proposals {
		cp := p
		cp.CriterionValues = make(map[string]float64, len(p.CriterionValues))
		for k, v := range p.CriterionValues {
			cp.CriterionValues[k] = v
		}
		if p.Score != nil {
			sc := p.Score.Clone()
			cp.Score = &sc
		}
		out.Proposals[i] = cp
	}
	out.Ranking = append([]string(nil), b.Ranking...)
	return &out
}

// Scored reports whether every proposal has an evaluation attached.
func (b *BusinessRequest) Scored() bool {
	if len(b.Proposals) == 0 {
		return false
	}
	for _, p := range b.Proposals {
		if p.Score == nil {
			return false
		}
	}
	return true
}
