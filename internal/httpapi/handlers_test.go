package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"procurement-platform/internal/audit"
	"procurement-platform/internal/auth"
	"procurement-platform/internal/classify"
	"procurement-platform/internal/config"
	"procurement-platform/internal/entity"
	"procurement-platform/internal/notify"
	"procurement-platform/internal/rbac"
	"procurement-platform/internal/scoring"
	"procurement-platform/internal/workflow"

	"github.com/gin-gonic/gin"
)

func testRouter(t *testing.T) (*gin.Engine, Handlers, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("auth manager: %v", err)
	}

	repo := entity.NewMemoryRepo()
	configs := scoring.NewMemoryStore()
	deps := workflow.Deps{
		ScoringConfigs: configs,
		RiskPolicy:     scoring.RiskPolicy{},
		Thresholds:     classify.DefaultThresholds(),
		Rules:          classify.DefaultIndicatorRules(),
		Predicate:      classify.DefaultPredicate,
	}
	auditRepo := audit.NewMemoryRepo()
	recorder := audit.NewRecorder(auditRepo)
	engine := workflow.NewEngine(workflow.NewMemoryStore(repo, auditRepo), notify.Nop{}, workflow.Tables(deps), nil)

	h := Handlers{
		Auth:       manager,
		Engine:     engine,
		Entities:   repo,
		Audit:      recorder,
		Configs:    configs,
		Evals:      nil, // nil cache evaluates directly
		Thresholds: deps.Thresholds,
		Rules:      deps.Rules,
		Predicate:  deps.Predicate,
	}

	r := gin.New()
	r.POST("/v1/auth/login", h.Login)
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(manager))
	{
		v1.POST("/entities/:entity_type", h.CreateEntity)
		v1.GET("/entities/:entity_type/:id", h.GetEntity)
		v1.GET("/entities/:entity_type/:id/history", h.GetHistory)
		v1.POST("/entities/:entity_type/:id/transitions", h.ApplyTransition)
		v1.GET("/entities/:entity_type/:id/audit", h.AuditTrail)
		v1.POST("/business-requests/:id/evaluate", h.EvaluateProposals)
	}
	return r, h, manager
}

func token(t *testing.T, m *auth.Manager, userID, role string) string {
	t.Helper()
	pair, err := m.IssuePair(time.Now(), userID, role)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	return pair.AccessToken
}

func doJSON(t *testing.T, r *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginAndAuthGate(t *testing.T) {
	r, _, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/auth/login", "", gin.H{"user_id": "u-1", "role": rbac.RoleProcurementOfficer})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["access_token"] == "" || resp["refresh_token"] == "" {
		t.Fatalf("missing tokens: %v", resp)
	}

	// No bearer: 401.
	w = doJSON(t, r, http.MethodGet, "/v1/entities/contract/x", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", w.Code)
	}

	// Unknown role is rejected at login.
	w = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", gin.H{"user_id": "u-1", "role": "janitor"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad role status = %d, want 400", w.Code)
	}
}

func TestCreateEntityIgnoresClientStatus(t *testing.T) {
	r, _, m := testRouter(t)
	bearer := token(t, m, "u-1", rbac.RoleProcurementOfficer)

	w := doJSON(t, r, http.MethodPost, "/v1/entities/contract", bearer, gin.H{
		"id":     "c-1",
		"title":  "Managed services",
		"status": "approved", // must be ignored
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}

	var got entity.Contract
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != entity.StatusDraft {
		t.Fatalf("status = %q, want draft regardless of request body", got.Status)
	}
	if got.Version() != 0 {
		t.Fatalf("version = %d, want 0", got.Version())
	}
}

func contractBody() gin.H {
	return gin.H{
		"id":                    "c-1",
		"title":                 "Core banking support",
		"vendor_id":             "v-1",
		"vendor_country":        "SA",
		"value_sar":             500000,
		"duration_months":       24,
		"cloud_hosted":          true,
		"data_location":         "onshore",
		"ownership_transparent": true,
		"sow_attached":          true,
		"sla_attached":          true,
		"risk_inputs": gin.H{
			"country_risk":        0.2,
			"financial_stability": 0.3,
			"data_sensitivity":    0.1,
			"dependency":          0.2,
		},
	}
}

func TestTransitionEndpointStatusMapping(t *testing.T) {
	r, _, m := testRouter(t)
	officer := token(t, m, "u-1", rbac.RoleProcurementOfficer)
	requester := token(t, m, "u-2", rbac.RoleRequester)

	if w := doJSON(t, r, http.MethodPost, "/v1/entities/contract", officer, contractBody()); w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}

	// Forbidden role → 403.
	w := doJSON(t, r, http.MethodPost, "/v1/entities/contract/c-1/transitions", requester, gin.H{"transition": "submit_for_review"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("forbidden status = %d, want 403: %s", w.Code, w.Body)
	}

	// Unavailable transition → 422 with missing detail.
	w = doJSON(t, r, http.MethodPost, "/v1/entities/contract/c-1/transitions", officer, gin.H{"transition": "approve"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unavailable status = %d, want 422: %s", w.Code, w.Body)
	}

	// Unknown entity → 404.
	w = doJSON(t, r, http.MethodPost, "/v1/entities/contract/ghost/transitions", officer, gin.H{"transition": "submit_for_review"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing entity status = %d, want 404: %s", w.Code, w.Body)
	}

	// Valid transition → 200 and audit trail grows.
	w = doJSON(t, r, http.MethodPost, "/v1/entities/contract/c-1/transitions", officer, gin.H{"transition": "submit_for_review", "notes": "ok"})
	if w.Code != http.StatusOK {
		t.Fatalf("apply status = %d: %s", w.Code, w.Body)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/entities/contract/c-1/audit", officer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("audit status = %d: %s", w.Code, w.Body)
	}
	var trail struct {
		Entries []audit.Entry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &trail); err != nil {
		t.Fatalf("decode trail: %v", err)
	}
	if len(trail.Entries) != 1 || trail.Entries[0].Action != "submit_for_review" {
		t.Fatalf("trail = %+v, want one submit_for_review entry", trail.Entries)
	}
}

func TestEvaluateProposalsRanksAndPersists(t *testing.T) {
	r, h, m := testRouter(t)
	officer := token(t, m, "u-1", rbac.RoleProcurementOfficer)
	requester := token(t, m, "req-1", rbac.RoleRequester)

	values := func(tech, fin, exp, tl float64) gin.H {
		return gin.H{"technical": tech, "financial": fin, "experience": exp, "timeline": tl}
	}
	body := gin.H{
		"id":                   "br-1",
		"title":                "SOC services",
		"requester_id":         "req-1",
		"estimated_budget_sar": 1200000,
		"proposals": []gin.H{
			{"id": "p-1", "vendor_id": "v-1", "price_sar": 900000, "criterion_values": values(0.9, 0.7, 0.9, 1.0)},
			{"id": "p-2", "vendor_id": "v-2", "price_sar": 800000, "criterion_values": values(0.8, 0.9, 0.8, 1.0)},
		},
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/entities/business_request", officer, body); w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/entities/business_request/br-1/transitions", requester, gin.H{"transition": "submit_for_review"}); w.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", w.Code, w.Body)
	}

	w := doJSON(t, r, http.MethodPost, "/v1/business-requests/br-1/evaluate", officer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("evaluate status = %d: %s", w.Code, w.Body)
	}
	var resp struct {
		Ranking []string `json:"ranking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// p-1: 40*.9+30*.7+20*.9+10*1 = 85; p-2: 40*.8+30*.9+20*.8+10*1 = 85.
	// Tie broken by lower price: p-2 first.
	want := []string{"p-2", "p-1"}
	if fmt.Sprint(resp.Ranking) != fmt.Sprint(want) {
		t.Fatalf("ranking = %v, want %v", resp.Ranking, want)
	}

	// Persisted: complete_evaluation is now unblocked.
	loaded, err := h.Entities.Load(context.Background(), entity.TypeBusinessRequest, "br-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.(*entity.BusinessRequest).Scored() {
		t.Fatal("scores not persisted")
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/entities/business_request/br-1/transitions", officer, gin.H{"transition": "complete_evaluation"}); w.Code != http.StatusOK {
		t.Fatalf("complete_evaluation: %d %s", w.Code, w.Body)
	}
}
