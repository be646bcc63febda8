package workflow

import (
	"context"
	"fmt"

	"procurement-platform/internal/classify"
	"procurement-platform/internal/entity"
	"procurement-platform/internal/rbac"
	"procurement-platform/internal/scoring"
)

// Deps are the collaborators wired into transition side effects.
type Deps struct {
	ScoringConfigs scoring.ConfigStore
	RiskPolicy     scoring.RiskPolicy

	Thresholds classify.ThresholdSet
	Rules      []classify.IndicatorRule
	Predicate  classify.PredicateFunc
}

// Tables builds the per-entity-type transition tables.
//
// Transitions, gates, and effects are declared here in one place; the engine
// only interprets them. Rejection is terminal for every entity except
// deliverables, which can be reworked and resubmitted.
func Tables(deps Deps) map[entity.Type]Table {
	return map[entity.Type]Table{
		entity.TypeContract:        contractTable(deps),
		entity.TypeBusinessRequest: businessRequestTable(),
		entity.TypeAsset:           assetTable(),
		entity.TypeDeliverable:     deliverableTable(),
		entity.TypeResource:        resourceTable(),
	}
}

func contractTable(deps Deps) Table {
	officerRoles := []string{rbac.RoleProcurementOfficer, rbac.RoleVendorManager}

	return Table{
		entity.StatusDraft: {
			{
				Name:   "submit_for_review",
				Target: entity.StatusUnderReview,
				Roles:  officerRoles,
				Data: []DataPrecondition{
					requireContractCore,
				},
				SideEffects: []SideEffect{
					recomputeContractGovernance(deps),
				},
			},
			rejectTransition(rbac.RoleProcurementOfficer, rbac.RoleVendorManager),
		},
		entity.StatusUnderReview: {
			{
				Name:   "advance_to_due_diligence",
				Target: entity.StatusPendingDueDiligence,
				Roles:  []string{rbac.RoleProcurementOfficer},
				Data: []DataPrecondition{
					requireClassification,
				},
			},
			rejectTransition(rbac.RoleProcurementOfficer, rbac.RoleComplianceOfficer, rbac.RoleHeadOfProcurement),
		},
		entity.StatusPendingDueDiligence: {
			{
				Name:   "advance_to_sama_noc",
				Target: entity.StatusPendingSAMANOC,
				Roles:  []string{rbac.RoleComplianceOfficer},
				Data: []DataPrecondition{
					requireRiskAssessment,
					requireSAMANOCNeeded,
				},
			},
			{
				Name:   "advance_to_hop_approval",
				Target: entity.StatusPendingHOPApproval,
				Roles:  []string{rbac.RoleComplianceOfficer},
				Data: []DataPrecondition{
					requireRiskAssessment,
					requireNoSAMANOC,
					requireContractAttachments,
				},
			},
			rejectTransition(rbac.RoleComplianceOfficer),
		},
		entity.StatusPendingSAMANOC: {
			{
				Name:   "record_sama_noc",
				Target: entity.StatusPendingHOPApproval,
				Roles:  []string{rbac.RoleComplianceOfficer},
				Data: []DataPrecondition{
					requireContractAttachments,
				},
			},
			rejectTransition(rbac.RoleComplianceOfficer),
		},
		entity.StatusPendingHOPApproval: {
			{
				Name:   "approve",
				Target: entity.StatusApproved,
				Roles:  []string{rbac.RoleHeadOfProcurement},
			},
			rejectTransition(rbac.RoleHeadOfProcurement),
		},
		entity.StatusApproved: {
			{
				Name:   "activate",
				Target: entity.StatusActive,
				Roles:  officerRoles,
			},
		},
		entity.StatusActive: {
			{
				Name:   "expire",
				Target: entity.StatusExpired,
				Roles:  []string{rbac.RoleProcurementOfficer, rbac.RoleHeadOfProcurement},
			},
		},
	}
}

func businessRequestTable() Table {
	return Table{
		entity.StatusDraft: {
			{
				Name:   "submit_for_review",
				Target: entity.StatusUnderReview,
				Roles:  []string{rbac.RoleRequester, rbac.RoleProcurementOfficer},
				Data: []DataPrecondition{
					requireBusinessRequestCore,
				},
			},
			rejectTransition(rbac.RoleRequester, rbac.RoleProcurementOfficer),
		},
		entity.StatusUnderReview: {
			{
				Name:   "complete_evaluation",
				Target: entity.StatusEvaluationComplete,
				Roles:  []string{rbac.RoleProcurementOfficer},
				Data: []DataPrecondition{
					requireEvaluatedProposals,
				},
			},
			rejectTransition(rbac.RoleProcurementOfficer, rbac.RoleHeadOfProcurement),
		},
		entity.StatusEvaluationComplete: {
			{
				Name:   "request_additional_approval",
				Target: entity.StatusPendingAdditionalApproval,
				Roles:  []string{rbac.RoleProcurementOfficer},
				Data: []DataPrecondition{
					requireAdditionalApprover,
				},
			},
			{
				Name:   "submit_for_approval",
				Target: entity.StatusPendingHOPApproval,
				Roles:  []string{rbac.RoleProcurementOfficer},
			},
			rejectTransition(rbac.RoleProcurementOfficer, rbac.RoleHeadOfProcurement),
		},
		entity.StatusPendingAdditionalApproval: {
			{
				Name:          "additional_approve",
				Target:        entity.StatusPendingHOPApproval,
				AssignedActor: additionalApprover,
			},
			{
				Name:          "additional_reject",
				Target:        entity.StatusRejected,
				AssignedActor: additionalApprover,
			},
		},
		entity.StatusPendingHOPApproval: {
			{
				Name:   "approve",
				Target: entity.StatusApproved,
				Roles:  []string{rbac.RoleHeadOfProcurement},
			},
			rejectTransition(rbac.RoleHeadOfProcurement),
		},
	}
}

func assetTable() Table {
	return Table{
		entity.StatusDraft: {
			{
				Name:   "submit",
				Target: entity.StatusPendingReview,
				Roles:  []string{rbac.RoleRequester, rbac.RoleProcurementOfficer},
				Data: []DataPrecondition{
					requireAssetCore,
				},
			},
		},
		entity.StatusPendingReview: {
			{
				Name:   "advance_to_approval",
				Target: entity.StatusPendingApproval,
				Roles:  []string{rbac.RoleProcurementOfficer},
			},
			rejectTransition(rbac.RoleProcurementOfficer),
		},
		entity.StatusPendingApproval: {
			{
				Name:   "approve",
				Target: entity.StatusApproved,
				Roles:  []string{rbac.RoleFinanceOfficer, rbac.RoleHeadOfProcurement},
			},
			rejectTransition(rbac.RoleFinanceOfficer, rbac.RoleHeadOfProcurement),
		},
		entity.StatusApproved: {
			{
				Name:   "commission",
				Target: entity.StatusInService,
				Roles:  []string{rbac.RoleProcurementOfficer},
			},
		},
		entity.StatusInService: {
			{
				Name:   "retire",
				Target: entity.StatusRetired,
				Roles:  []string{rbac.RoleProcurementOfficer, rbac.RoleFinanceOfficer},
			},
		},
	}
}

func deliverableTable() Table {
	return Table{
		entity.StatusDraft: {
			{
				Name:   "submit",
				Target: entity.StatusSubmitted,
				Roles:  []string{rbac.RoleVendorManager},
				Data: []DataPrecondition{
					requireDeliverableCore,
				},
			},
		},
		entity.StatusSubmitted: {
			{
				Name:   "start_review",
				Target: entity.StatusUnderReview,
				Roles:  []string{rbac.RoleProcurementOfficer},
			},
		},
		entity.StatusUnderReview: {
			{
				Name:   "accept",
				Target: entity.StatusAccepted,
				Roles:  []string{rbac.RoleProcurementOfficer},
			},
			rejectTransition(rbac.RoleProcurementOfficer),
		},
		// Deliverable rejection is retryable: rework returns it to draft so
		// the vendor can resubmit.
		entity.StatusRejected: {
			{
				Name:   "rework",
				Target: entity.StatusDraft,
				Roles:  []string{rbac.RoleVendorManager},
			},
		},
	}
}

func resourceTable() Table {
	return Table{
		entity.StatusRequested: {
			{
				Name:   "screen",
				Target: entity.StatusUnderReview,
				Roles:  []string{rbac.RoleVendorManager},
				Data: []DataPrecondition{
					requireResourceCore,
				},
			},
		},
		entity.StatusUnderReview: {
			{
				Name:   "advance_to_approval",
				Target: entity.StatusPendingHOPApproval,
				Roles:  []string{rbac.RoleComplianceOfficer},
			},
			rejectTransition(rbac.RoleComplianceOfficer, rbac.RoleVendorManager),
		},
		entity.StatusPendingHOPApproval: {
			{
				Name:   "onboard",
				Target: entity.StatusOnboarded,
				Roles:  []string{rbac.RoleHeadOfProcurement},
			},
			rejectTransition(rbac.RoleHeadOfProcurement),
		},
		entity.StatusOnboarded: {
			{
				Name:   "offboard",
				Target: entity.StatusOffboarded,
				Roles:  []string{rbac.RoleVendorManager, rbac.RoleProcurementOfficer},
			},
		},
	}
}

func rejectTransition(roles ...string) Transition {
	return Transition{Name: "reject", Target: entity.StatusRejected, Roles: roles}
}

// ---- data preconditions ----

func requireContractCore(w entity.Workflowable) []string {
	c, ok := w.(*entity.Contract)
	if !ok {
		return []string{"not a contract"}
	}
	var missing []string
	if c.Title == "" {
		missing = append(missing, "title")
	}
	if c.VendorID == "" {
		missing = append(missing, "vendor")
	}
	if c.ValueSAR <= 0 {
		missing = append(missing, "contract value")
	}
	if c.DurationMonths <= 0 {
		missing = append(missing, "duration")
	}
	if len(c.RiskInputs) == 0 {
		missing = append(missing, "risk assessment inputs")
	}
	return missing
}

func requireClassification(w entity.Workflowable) []string {
	if c, ok := w.(*entity.Contract); !ok || c.Classification == nil {
		return []string{"classification"}
	}
	return nil
}

func requireRiskAssessment(w entity.Workflowable) []string {
	if c, ok := w.(*entity.Contract); !ok || c.Risk == nil {
		return []string{"risk assessment"}
	}
	return nil
}

func requireSAMANOCNeeded(w entity.Workflowable) []string {
	c, ok := w.(*entity.Contract)
	if !ok || c.Classification == nil {
		return []string{"classification"}
	}
	if !c.Classification.RequiresSAMANOC {
		return []string{"SAMA NOC not required for this classification"}
	}
	return nil
}

func requireNoSAMANOC(w entity.Workflowable) []string {
	c, ok := w.(*entity.Contract)
	if !ok || c.Classification == nil {
		return []string{"classification"}
	}
	if c.Classification.RequiresSAMANOC {
		return []string{"SAMA NOC clearance"}
	}
	return nil
}

func requireContractAttachments(w entity.Workflowable) []string {
	c, ok := w.(*entity.Contract)
	if !ok {
		return []string{"not a contract"}
	}
	var missing []string
	if !c.SOWAttached {
		missing = append(missing, "SOW")
	}
	if !c.SLAAttached {
		missing = append(missing, "SLA")
	}
	return missing
}

func requireBusinessRequestCore(w entity.Workflowable) []string {
	b, ok := w.(*entity.BusinessRequest)
	if !ok {
		return []string{"not a business request"}
	}
	var missing []string
	if b.Title == "" {
		missing = append(missing, "title")
	}
	if b.RequesterID == "" {
		missing = append(missing, "requester")
	}
	if b.EstimatedBudgetSAR <= 0 {
		missing = append(missing, "estimated budget")
	}
	return missing
}

func requireEvaluatedProposals(w entity.Workflowable) []string {
	b, ok := w.(*entity.BusinessRequest)
	if !ok {
		return []string{"not a business request"}
	}
	var missing []string
	if !b.Scored() {
		missing = append(missing, "proposal scores")
	}
	if len(b.Ranking) == 0 {
		missing = append(missing, "proposal ranking")
	}
	return missing
}

func requireAdditionalApprover(w entity.Workflowable) []string {
	if b, ok := w.(*entity.BusinessRequest); !ok || b.AdditionalApproverID == "" {
		return []string{"additional approver assignment"}
	}
	return nil
}

func additionalApprover(w entity.Workflowable) string {
	if b, ok := w.(*entity.BusinessRequest); ok {
		return b.AdditionalApproverID
	}
	return ""
}

func requireAssetCore(w entity.Workflowable) []string {
	a, ok := w.(*entity.Asset)
	if !ok {
		return []string{"not an asset"}
	}
	var missing []string
	if a.Name == "" {
		missing = append(missing, "name")
	}
	if a.OwnerID == "" {
		missing = append(missing, "owner")
	}
	if a.CostSAR <= 0 {
		missing = append(missing, "cost")
	}
	return missing
}

func requireDeliverableCore(w entity.Workflowable) []string {
	d, ok := w.(*entity.Deliverable)
	if !ok {
		return []string{"not a deliverable"}
	}
	var missing []string
	if d.ContractID == "" {
		missing = append(missing, "contract")
	}
	if d.Title == "" {
		missing = append(missing, "title")
	}
	return missing
}

func requireResourceCore(w entity.Workflowable) []string {
	r, ok := w.(*entity.Resource)
	if !ok {
		return []string{"not a resource"}
	}
	var missing []string
	if r.FullName == "" {
		missing = append(missing, "full name")
	}
	if r.ContractID == "" {
		missing = append(missing, "contract")
	}
	if r.VendorID == "" {
		missing = append(missing, "vendor")
	}
	return missing
}

// ---- side effects ----

// recomputeContractGovernance regenerates the contract's derived
// classification and risk assessment from its current attributes. Runs on
// submission so reviewers always see values matching the submitted data.
func recomputeContractGovernance(deps Deps) SideEffect {
	return func(ctx context.Context, w entity.Workflowable) error {
		c, ok := w.(*entity.Contract)
		if !ok {
			return fmt.Errorf("recompute governance: expected contract, got %T", w)
		}

		result, err := classify.Classify(c.ClassificationAttributes(), deps.Thresholds, deps.Rules, deps.Predicate)
		if err != nil {
			return fmt.Errorf("classify contract: %w", err)
		}
		c.Classification = &result

		cfg, err := deps.ScoringConfigs.Get(ctx, scoring.ConfigVendorRisk)
		if err != nil {
			return fmt.Errorf("load risk configuration: %w", err)
		}
		eval, err := scoring.Evaluate(cfg, c.RiskInputs, scoring.UnitNormalizer)
		if err != nil {
			return fmt.Errorf("score vendor risk: %w", err)
		}
		risk := scoring.AssessRisk(eval, c.RiskSignals(), deps.RiskPolicy)
		c.Risk = &risk
		return nil
	}
}
