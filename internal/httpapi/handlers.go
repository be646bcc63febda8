package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"procurement-platform/internal/audit"
	"procurement-platform/internal/auth"
	"procurement-platform/internal/classify"
	"procurement-platform/internal/entity"
	"procurement-platform/internal/rbac"
	"procurement-platform/internal/reporting"
	"procurement-platform/internal/scoring"
	"procurement-platform/internal/workflow"
	"procurement-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth     *auth.Manager
	Engine   *workflow.Engine
	Entities entity.Repository
	Audit    *audit.Recorder
	Configs  scoring.ConfigStore
	Evals    *scoring.EvalCache
	Advisor  classify.Advisor
	Reports  *reporting.Service
	Locks    *EntityLocker

	Thresholds classify.ThresholdSet
	Rules      []classify.IndicatorRule
	Predicate  classify.PredicateFunc
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	if !rbac.Known(req.Role) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "role": role})
}

// --- Entities ---

func entityTypeParam(c *gin.Context) (entity.Type, bool) {
	t := entity.Type(c.Param("entity_type"))
	if !entity.ValidType(t) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown entity type"})
		return "", false
	}
	return t, true
}

func initialStatus(t entity.Type) entity.Status {
	if t == entity.TypeResource {
		return entity.StatusRequested
	}
	return entity.StatusDraft
}

// CreateEntity registers a new entity in its initial status. Status and
// history fields in the request body are ignored; only the workflow engine
// writes those.
func (h Handlers) CreateEntity(c *gin.Context) {
	t, ok := entityTypeParam(c)
	if !ok {
		return
	}

	w, _ := entity.New(t)
	if err := c.ShouldBindJSON(w); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	now := time.Now().UTC()
	rec := recordOf(w)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Type = t
	rec.Status = initialStatus(t)
	rec.StatusHistory = nil
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := h.Entities.Create(c.Request.Context(), w); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// recordOf exposes the embedded Record for initialization. Every concrete
// entity embeds it by construction.
func recordOf(w entity.Workflowable) *entity.Record {
	switch v := w.(type) {
	case *entity.Asset:
		return &v.Record
	case *entity.BusinessRequest:
		return &v.Record
	case *entity.Contract:
		return &v.Record
	case *entity.Deliverable:
		return &v.Record
	case *entity.Resource:
		return &v.Record
	default:
		return nil
	}
}

func (h Handlers) GetEntity(c *gin.Context) {
	t, ok := entityTypeParam(c)
	if !ok {
		return
	}
	w, err := h.Entities.Load(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h Handlers) GetHistory(c *gin.Context) {
	t, ok := entityTypeParam(c)
	if !ok {
		return
	}
	w, err := h.Entities.Load(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entity_id": w.EntityID(), "status": w.CurrentStatus(), "history": w.History()})
}

type transitionRequest struct {
	Transition string `json:"transition"`
	Notes      string `json:"notes,omitempty"`
}

// ApplyTransition is the single write path for entity status.
func (h Handlers) ApplyTransition(c *gin.Context) {
	t, ok := entityTypeParam(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Transition == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "transition required"})
		return
	}

	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	actor := workflow.Actor{ID: uid, Role: role}

	var (
		w   entity.Workflowable
		err error
	)
	apply := func() error {
		w, err = h.Engine.Apply(c.Request.Context(), t, id, req.Transition, actor, req.Notes)
		return err
	}
	if h.Locks != nil {
		if lockErr := h.Locks.WithLock(c.Request.Context(), string(t)+":"+id, apply); lockErr != nil {
			err = lockErr
		}
	} else {
		_ = apply()
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h Handlers) AuditTrail(c *gin.Context) {
	t, ok := entityTypeParam(c)
	if !ok {
		return
	}
	entries, err := h.Audit.Query(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// --- Scoring configuration ---

func (h Handlers) GetScoringConfig(c *gin.Context) {
	t := scoring.ConfigType(c.Param("config_type"))
	if !scoring.ValidConfigType(t) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown config type"})
		return
	}
	cfg, err := h.Configs.Get(c.Request.Context(), t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type putConfigRequest struct {
	Draft    bool                         `json:"draft,omitempty"`
	Criteria map[string]scoring.Criterion `json:"criteria"`
}

func (h Handlers) PutScoringConfig(c *gin.Context) {
	t := scoring.ConfigType(c.Param("config_type"))
	if !scoring.ValidConfigType(t) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown config type"})
		return
	}
	var req putConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	cfg := scoring.Configuration{Type: t, Draft: req.Draft, Criteria: req.Criteria}
	if err := h.Configs.Save(c.Request.Context(), cfg); err != nil {
		writeError(c, err)
		return
	}
	saved, err := h.Configs.Get(c.Request.Context(), t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h Handlers) ResetScoringConfigs(c *gin.Context) {
	if err := h.Configs.Reset(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// --- Proposal evaluation ---

// EvaluateProposals scores every proposal on a business request against the
// active proposal_evaluation configuration and ranks them. It writes derived
// data only; advancing the request remains a workflow transition.
func (h Handlers) EvaluateProposals(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	w, err := h.Entities.Load(ctx, entity.TypeBusinessRequest, id)
	if err != nil {
		writeError(c, err)
		return
	}
	br, ok := w.(*entity.BusinessRequest)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if br.CurrentStatus() != entity.StatusUnderReview {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "business request is not under review"})
		return
	}
	if len(br.Proposals) == 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "no proposals to evaluate"})
		return
	}

	cfg, err := h.Configs.Get(ctx, scoring.ConfigProposalEvaluation)
	if err != nil {
		writeError(c, err)
		return
	}

	candidates := make([]scoring.Candidate, 0, len(br.Proposals))
	for i := range br.Proposals {
		p := &br.Proposals[i]
		eval, err := h.Evals.Evaluate(ctx, cfg, p.CriterionValues, scoring.UnitNormalizer, "unit")
		if err != nil {
			writeError(c, err)
			return
		}
		p.Score = &eval
		candidates = append(candidates, scoring.Candidate{
			ID:              p.ID,
			TotalScore:      eval.TotalScore,
			PriceSAR:        p.PriceSAR,
			SubmissionOrder: i,
		})
	}

	ranked := scoring.Rank(candidates)
	br.Ranking = make([]string, len(ranked))
	for i, cand := range ranked {
		br.Ranking[i] = cand.ID
	}

	if err := h.Entities.Save(ctx, br, br.Version()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": br.Ranking, "proposals": br.Proposals})
}

type assignApproverRequest struct {
	UserID string `json:"user_id"`
}

// AssignAdditionalApprover records the ad-hoc approver before the
// request_additional_approval transition is applied.
func (h Handlers) AssignAdditionalApprover(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req assignApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	w, err := h.Entities.Load(ctx, entity.TypeBusinessRequest, id)
	if err != nil {
		writeError(c, err)
		return
	}
	br := w.(*entity.BusinessRequest)
	if br.CurrentStatus() != entity.StatusEvaluationComplete {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "approver can only be assigned after evaluation completes"})
		return
	}

	br.AdditionalApproverID = req.UserID
	if err := h.Entities.Save(ctx, br, br.Version()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, br)
}

// --- Classification ---

// ClassifyContract recomputes the contract's classification from its current
// attributes and persists the result. When an advisor is configured its hint
// is attached for the human reviewer; the deterministic result stands either
// way.
func (h Handlers) ClassifyContract(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	w, err := h.Entities.Load(ctx, entity.TypeContract, id)
	if err != nil {
		writeError(c, err)
		return
	}
	contract := w.(*entity.Contract)

	result, err := classify.Classify(contract.ClassificationAttributes(), h.Thresholds, h.Rules, h.Predicate)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.Advisor != nil {
		hintCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		hint, hintErr := h.Advisor.Hint(hintCtx, contract.ClassificationAttributes())
		cancel()
		if hintErr != nil {
			logger.FromGin(c).Warn("classification advisor unavailable", "contract_id", id, "err", hintErr)
		} else {
			result.AdvisoryHint = &hint
		}
	}

	contract.Classification = &result
	if err := h.Entities.Save(ctx, contract, contract.Version()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// --- Reporting ---

func (h Handlers) GovernanceSummary(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC 3339"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC 3339"})
		return
	}

	summary, err := h.Reports.Summarize(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidWindow) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
