package main

import (
	"database/sql"
	"net/http"
	"time"

	"procurement-platform/internal/httpapi"
	"procurement-platform/internal/rbac"
	"procurement-platform/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
//
// Route-level role gates are a coarse first filter; the workflow engine
// re-checks the transition's exact role set, so a route group may be wider
// than any single transition.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, db *sql.DB) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// AUTH routes (token issuance).
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		v1.GET("/me", h.Me)

		// ENTITY routes: creation, reads, and the single transition write path.
		entities := v1.Group("/entities")
		{
			entities.POST("/:entity_type", h.CreateEntity)
			entities.GET("/:entity_type/:id", h.GetEntity)
			entities.GET("/:entity_type/:id/history", h.GetHistory)
			entities.GET("/:entity_type/:id/audit", h.AuditTrail)

			// The engine enforces the per-transition role set; no route gate
			// here beyond authentication.
			entities.POST("/:entity_type/:id/transitions", h.ApplyTransition)
		}

		// BUSINESS REQUEST evaluation routes.
		requests := v1.Group("/business-requests")
		requests.Use(rbac.RequireAnyRole(rbac.RoleProcurementOfficer))
		{
			requests.POST("/:id/evaluate", h.EvaluateProposals)
			requests.POST("/:id/additional-approver", h.AssignAdditionalApprover)
		}

		// CONTRACT classification.
		contracts := v1.Group("/contracts")
		contracts.Use(rbac.RequireAnyRole(rbac.RoleProcurementOfficer, rbac.RoleComplianceOfficer))
		{
			contracts.POST("/:id/classification", h.ClassifyContract)
		}

		// SCORING configuration administration.
		scoringGroup := v1.Group("/scoring")
		scoringGroup.Use(rbac.RequireAnyRole(rbac.RoleHeadOfProcurement))
		{
			scoringGroup.GET("/configs/:config_type", h.GetScoringConfig)
			scoringGroup.PUT("/configs/:config_type", h.PutScoringConfig)
			scoringGroup.POST("/configs/reset", h.ResetScoringConfigs)
		}

		// REPORTING routes.
		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleHeadOfProcurement, rbac.RoleComplianceOfficer))
		{
			reports.GET("/summary", h.GovernanceSummary)
		}
	}
}
