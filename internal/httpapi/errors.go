package httpapi

import (
	"errors"
	"net/http"

	"procurement-platform/internal/classify"
	"procurement-platform/internal/entity"
	"procurement-platform/internal/scoring"
	"procurement-platform/internal/workflow"

	"github.com/gin-gonic/gin"
)

// writeError maps internal error types to HTTP responses in one place so
// handlers stay thin. Business rejections (403/409/422) are expected
// outcomes, not server failures.
func writeError(c *gin.Context, err error) {
	var (
		forbidden  *workflow.ForbiddenError
		pre        *workflow.PreconditionError
		conflict   *workflow.ConflictError
		notFound   *workflow.NotFoundError
		failed     *workflow.TransitionFailedError
		validation *scoring.ValidationError
		incomplete *scoring.IncompleteScoreError
		badConfig  *classify.ConfigurationError
	)

	switch {
	case errors.As(err, &forbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &pre):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "missing": pre.Missing})
	case errors.As(err, &conflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &notFound), errors.Is(err, entity.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, entity.ErrVersionConflict), errors.Is(err, entity.ErrAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &incomplete):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "missing": incomplete.Missing})
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "problems": validation.Problems})
	case errors.As(err, &badConfig):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "problems": badConfig.Problems})
	case errors.As(err, &failed):
		// A failed side effect usually traces back to bad entity data; the
		// wrapped cases above catch those first.
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, scoring.ErrConfigNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
