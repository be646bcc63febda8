package entity

import "time"

// Asset is a procured asset tracked from registration to retirement.
type Asset struct {
	Record

	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	OwnerID    string  `json:"owner_id"`
	CostSAR    float64 `json:"cost_sar"`
	ContractID string  `json:"contract_id,omitempty"`
}

func (a *Asset) Clone() Workflowable {
	out := *a
	out.Record = a.Record.cloneRecord()
	return &out
}

// Deliverable is a contract deliverable reviewed for acceptance.
// Rejection is retryable: a rejected deliverable can be reworked and
// resubmitted.
type Deliverable struct {
	Record

	ContractID  string     `json:"contract_id"`
	Title       string     `json:"title"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	SubmittedBy string     `json:"submitted_by,omitempty"`
	EvidenceURL string     `json:"evidence_url,omitempty"`
}

func (d *Deliverable) Clone() Workflowable {
	out := *d
	out.Record = d.Record.cloneRecord()
	if d.DueAt != nil {
		t := *d.DueAt
		out.DueAt = &t
	}
	return &out
}

// Resource is an outsourced/contracted person onboarded under a contract.
type Resource struct {
	Record

	ContractID string `json:"contract_id"`
	FullName   string `json:"full_name"`
	RoleTitle  string `json:"role_title,omitempty"`
	VendorID   string `json:"vendor_id"`
}

func (r *Resource) Clone() Workflowable {
	out := *r
	out.Record = r.Record.cloneRecord()
	return &out
}
