package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"procurement-platform/internal/entity"
	"procurement-platform/internal/rbac"
	"procurement-platform/internal/scoring"
)

func mustApply(t *testing.T, eng *Engine, et entity.Type, id, transition string, actor Actor) entity.Workflowable {
	t.Helper()
	w, err := eng.Apply(context.Background(), et, id, transition, actor, "")
	if err != nil {
		t.Fatalf("apply %s as %s: %v", transition, actor.Role, err)
	}
	return w
}

func TestContractFullLifecycleWithSAMANOC(t *testing.T) {
	repo := entity.NewMemoryRepo()
	eng, auditRepo := testEngine(t, repo)
	ctx := context.Background()

	c := newDraftContract("c-1")
	c.DataLocation = "offshore" // material outsourcing + SAMA trigger
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	officer := Actor{ID: "po-1", Role: rbac.RoleProcurementOfficer}
	compliance := Actor{ID: "co-1", Role: rbac.RoleComplianceOfficer}
	hop := Actor{ID: "hop-1", Role: rbac.RoleHeadOfProcurement}

	w := mustApply(t, eng, entity.TypeContract, "c-1", "submit_for_review", officer)
	got := w.(*entity.Contract)
	if !got.Classification.RequiresSAMANOC {
		t.Fatal("offshore data contract should require SAMA NOC")
	}

	mustApply(t, eng, entity.TypeContract, "c-1", "advance_to_due_diligence", officer)

	// The NOC-free path must be blocked when the classification demands NOC.
	_, err := eng.Apply(ctx, entity.TypeContract, "c-1", "advance_to_hop_approval", compliance, "")
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError for missing NOC clearance", err)
	}

	mustApply(t, eng, entity.TypeContract, "c-1", "advance_to_sama_noc", compliance)
	mustApply(t, eng, entity.TypeContract, "c-1", "record_sama_noc", compliance)
	mustApply(t, eng, entity.TypeContract, "c-1", "approve", hop)
	mustApply(t, eng, entity.TypeContract, "c-1", "activate", officer)
	w = mustApply(t, eng, entity.TypeContract, "c-1", "expire", officer)

	if w.CurrentStatus() != entity.StatusExpired {
		t.Fatalf("final status = %q, want expired", w.CurrentStatus())
	}
	if w.Version() != 7 {
		t.Fatalf("version = %d, want 7 applied transitions", w.Version())
	}
	if n := len(auditRepo.Entries()); n != 7 {
		t.Fatalf("audit entries = %d, want 7", n)
	}
}

func TestContractSkipsSAMANOCWhenNotRequired(t *testing.T) {
	repo := entity.NewMemoryRepo()
	eng, _ := testEngine(t, repo)
	ctx := context.Background()

	// Cloud-hosted, onshore data: cloud_computing, no NOC.
	if err := repo.Create(ctx, newDraftContract("c-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	officer := Actor{ID: "po-1", Role: rbac.RoleProcurementOfficer}
	compliance := Actor{ID: "co-1", Role: rbac.RoleComplianceOfficer}

	mustApply(t, eng, entity.TypeContract, "c-1", "submit_for_review", officer)
	mustApply(t, eng, entity.TypeContract, "c-1", "advance_to_due_diligence", officer)

	_, err := eng.Apply(ctx, entity.TypeContract, "c-1", "advance_to_sama_noc", compliance, "")
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError on NOC path without NOC requirement", err)
	}

	w := mustApply(t, eng, entity.TypeContract, "c-1", "advance_to_hop_approval", compliance)
	if w.CurrentStatus() != entity.StatusPendingHOPApproval {
		t.Fatalf("status = %q, want pending_hop_approval", w.CurrentStatus())
	}
}

func TestContractAttachmentsGateHOPSubmission(t *testing.T) {
	repo := entity.NewMemoryRepo()
	eng, _ := testEngine(t, repo)
	ctx := context.Background()

	c := newDraftContract("c-1")
	c.SOWAttached = false
	c.SLAAttached = false
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	officer := Actor{ID: "po-1", Role: rbac.RoleProcurementOfficer}
	compliance := Actor{ID: "co-1", Role: rbac.RoleComplianceOfficer}

	mustApply(t, eng, entity.TypeContract, "c-1", "submit_for_review", officer)
	mustApply(t, eng, entity.TypeContract, "c-1", "advance_to_due_diligence", officer)

	_, err := eng.Apply(ctx, entity.TypeContract, "c-1", "advance_to_hop_approval", compliance, "")
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
	if len(pre.Missing) != 2 {
		t.Fatalf("missing = %v, want SOW and SLA", pre.Missing)
	}
}

func newBusinessRequest(id string) *entity.BusinessRequest {
	score := scoring.Evaluation{ConfigType: scoring.ConfigProposalEvaluation, ConfigVersion: 1, TotalScore: 80}
	return &entity.BusinessRequest{
		Record: entity.Record{
			ID:     id,
			Type:   entity.TypeBusinessRequest,
			Status: entity.StatusDraft,
		},
		Title:              "Managed SOC services",
		RequesterID:        "req-1",
		EstimatedBudgetSAR: 1_200_000,
		Proposals: []entity.Proposal{
			{ID: "p-1", VendorID: "v-1", PriceSAR: 900_000, SubmittedAt: time.Now(), Score: &score},
		},
		Ranking: []string{"p-1"},
	}
}

func TestBusinessRequestAdditionalApproverIdentityGate(t *testing.T) {
	repo := entity.NewMemoryRepo()
	eng, _ := testEngine(t, repo)
	ctx := context.Background()

	br := newBusinessRequest("br-1")
	br.AdditionalApproverID = "cfo-1"
	if err := repo.Create(ctx, br); err != nil {
		t.Fatalf("create: %v", err)
	}

	requester := Actor{ID: "req-1", Role: rbac.RoleRequester}
	officer := Actor{ID: "po-1", Role: rbac.RoleProcurementOfficer}
	hop := Actor{ID: "hop-1", Role: rbac.RoleHeadOfProcurement}

	mustApply(t, eng, entity.TypeBusinessRequest, "br-1", "submit_for_review", requester)
	mustApply(t, eng, entity.TypeBusinessRequest, "br-1", "complete_evaluation", officer)
	mustApply(t, eng, entity.TypeBusinessRequest, "br-1", "request_additional_approval", officer)

	// Not even the head of procurement may act in the assigned approver's
	// place: the gate is identity, not role.
	_, err := eng.Apply(ctx, entity.TypeBusinessRequest, "br-1", "additional_approve", hop, "")
	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("err = %v, want ForbiddenError for non-assigned actor", err)
	}

	assigned := Actor{ID: "cfo-1", Role: rbac.RoleFinanceOfficer}
	w := mustApply(t, eng, entity.TypeBusinessRequest, "br-1", "additional_approve", assigned)
	if w.CurrentStatus() != entity.StatusPendingHOPApproval {
		t.Fatalf("status = %q, want pending_hop_approval", w.CurrentStatus())
	}

	w = mustApply(t, eng, entity.TypeBusinessRequest, "br-1", "approve", hop)
	if w.CurrentStatus() != entity.StatusApproved {
		t.Fatalf("status = %q, want approved", w.CurrentStatus())
	}
}

func TestBusinessRequestAdditionalApprovalRequiresAssignment(t *testing.T) {
	repo := entity.NewMemoryRepo()
	eng, _ := testEngine(t, repo)
	ctx := context.Background()

	if err := repo.Create(ctx, newBusinessRequest("br-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	requester := Actor{ID: "req-1", Role: rbac.RoleRequester}
	officer := Actor{ID: "po-1", Role: rbac.RoleProcurementOfficer}

	mustApply(t, eng, entity.TypeBusinessRequest, "br-1", "submit_for_review", requester)
	mustApply(t, eng, entity.TypeBusinessRequest, "br-1", "complete_evaluation", officer)

	_, err := eng.Apply(ctx, entity.TypeBusinessRequest, "br-1", "request_additional_approval", officer, "")
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError without an assigned approver", err)
	}
}

func TestBusinessRequestEvaluationGate(t *testing.T) {
	repo := entity.NewMemoryRepo()
	eng, _ := testEngine(t, repo)
	ctx := context.Background()

	br := newBusinessRequest("br-1")
	br.Proposals[0].Score = nil
	br.Ranking = nil
	if err := repo.Create(ctx, br); err != nil {
		t.Fatalf("create: %v", err)
	}

	requester := Actor{ID: "req-1", Role: rbac.RoleRequester}
	officer := Actor{ID: "po-1", Role: rbac.RoleProcurementOfficer}

	mustApply(t, eng, entity.TypeBusinessRequest, "br-1", "submit_for_review", requester)

	_, err := eng.Apply(ctx, entity.TypeBusinessRequest, "br-1", "complete_evaluation", officer, "")
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
	if len(pre.Missing) != 2 {
		t.Fatalf("missing = %v, want scores and ranking", pre.Missing)
	}
}

func TestAssetLifecycle(t *testing.T) {
	repo := entity.NewMemoryRepo()
	eng, _ := testEngine(t, repo)
	ctx := context.Background()

	a := &entity.Asset{
		Record:  entity.Record{ID: "a-1", Type: entity.TypeAsset, Status: entity.StatusDraft},
		Name:    "Core switch",
		OwnerID: "u-3",
		CostSAR: 150_000,
	}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	requester := Actor{ID: "u-3", Role: rbac.RoleRequester}
	officer := Actor{ID: "po-1", Role: rbac.RoleProcurementOfficer}
	finance := Actor{ID: "fo-1", Role: rbac.RoleFinanceOfficer}

	mustApply(t, eng, entity.TypeAsset, "a-1", "submit", requester)
	mustApply(t, eng, entity.TypeAsset, "a-1", "advance_to_approval", officer)
	mustApply(t, eng, entity.TypeAsset, "a-1", "approve", finance)
	mustApply(t, eng, entity.TypeAsset, "a-1", "commission", officer)
	w := mustApply(t, eng, entity.TypeAsset, "a-1", "retire", finance)

	if w.CurrentStatus() != entity.StatusRetired {
		t.Fatalf("status = %q, want retired", w.CurrentStatus())
	}
}

func TestDeliverableReworkLoop(t *testing.T) {
	repo := entity.NewMemoryRepo()
	eng, _ := testEngine(t, repo)
	ctx := context.Background()

	d := &entity.Deliverable{
		Record:     entity.Record{ID: "d-1", Type: entity.TypeDeliverable, Status: entity.StatusDraft},
		ContractID: "c-1",
		Title:      "Phase 1 report",
	}
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}

	vendor := Actor{ID: "vm-1", Role: rbac.RoleVendorManager}
	officer := Actor{ID: "po-1", Role: rbac.RoleProcurementOfficer}

	mustApply(t, eng, entity.TypeDeliverable, "d-1", "submit", vendor)
	mustApply(t, eng, entity.TypeDeliverable, "d-1", "start_review", officer)
	mustApply(t, eng, entity.TypeDeliverable, "d-1", "reject", officer)

	// A rejected deliverable goes back around, unlike the other entities.
	mustApply(t, eng, entity.TypeDeliverable, "d-1", "rework", vendor)
	mustApply(t, eng, entity.TypeDeliverable, "d-1", "submit", vendor)
	mustApply(t, eng, entity.TypeDeliverable, "d-1", "start_review", officer)
	w := mustApply(t, eng, entity.TypeDeliverable, "d-1", "accept", officer)

	if w.CurrentStatus() != entity.StatusAccepted {
		t.Fatalf("status = %q, want accepted", w.CurrentStatus())
	}
	if w.Version() != 7 {
		t.Fatalf("version = %d, want 7", w.Version())
	}
}

func TestResourceLifecycle(t *testing.T) {
	repo := entity.NewMemoryRepo()
	eng, _ := testEngine(t, repo)
	ctx := context.Background()

	r := &entity.Resource{
		Record:     entity.Record{ID: "r-1", Type: entity.TypeResource, Status: entity.StatusRequested},
		ContractID: "c-1",
		FullName:   "Sara Alvarez",
		VendorID:   "v-1",
	}
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	vendor := Actor{ID: "vm-1", Role: rbac.RoleVendorManager}
	compliance := Actor{ID: "co-1", Role: rbac.RoleComplianceOfficer}
	hop := Actor{ID: "hop-1", Role: rbac.RoleHeadOfProcurement}

	mustApply(t, eng, entity.TypeResource, "r-1", "screen", vendor)
	mustApply(t, eng, entity.TypeResource, "r-1", "advance_to_approval", compliance)
	mustApply(t, eng, entity.TypeResource, "r-1", "onboard", hop)
	w := mustApply(t, eng, entity.TypeResource, "r-1", "offboard", vendor)

	if w.CurrentStatus() != entity.StatusOffboarded {
		t.Fatalf("status = %q, want offboarded", w.CurrentStatus())
	}
}

func TestRejectedIsTerminalForContracts(t *testing.T) {
	repo := entity.NewMemoryRepo()
	eng, _ := testEngine(t, repo)
	ctx := context.Background()

	if err := repo.Create(ctx, newDraftContract("c-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	officer := Actor{ID: "po-1", Role: rbac.RoleProcurementOfficer}
	mustApply(t, eng, entity.TypeContract, "c-1", "submit_for_review", officer)
	mustApply(t, eng, entity.TypeContract, "c-1", "reject", officer)

	_, err := eng.Apply(ctx, entity.TypeContract, "c-1", "submit_for_review", officer, "")
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError from terminal rejected state", err)
	}
}
