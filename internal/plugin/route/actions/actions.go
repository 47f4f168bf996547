// Package actions serves the mutation audit log: listing recent agent
// actions and rolling them back by id or by natural-language description.
package actions

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/innerfold/parts-service/internal/audit"
	"github.com/innerfold/parts-service/internal/model"
	"github.com/innerfold/parts-service/internal/security"
)

// MountRoutes mounts the action endpoints on the given router.
func MountRoutes(r *gin.Engine, auditLog *audit.Log) {
	g := r.Group("/v1", security.RequireUserID())

	g.GET("/actions", func(c *gin.Context) { listActions(c, auditLog) })
	g.POST("/actions/:id/rollback", func(c *gin.Context) { rollbackByID(c, auditLog) })
	g.POST("/actions/rollback", func(c *gin.Context) { rollbackByDescription(c, auditLog) })
}

type listActionsParams struct {
	Limit         int      `form:"limit"`
	Kinds         []string `form:"kinds"`
	SessionID     *string  `form:"sessionId"`
	WithinMinutes int      `form:"withinMinutes"`
}

func listActions(c *gin.Context, auditLog *audit.Log) {
	var params listActionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := audit.Query{
		Limit:     params.Limit,
		SessionID: params.SessionID,
	}
	for _, k := range params.Kinds {
		q.Kinds = append(q.Kinds, model.ActionKind(k))
	}
	if params.WithinMinutes > 0 {
		q.Within = time.Duration(params.WithinMinutes) * time.Minute
	}

	actions, err := auditLog.RecentActions(c.Request.Context(), security.UserID(c), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

type rollbackRequest struct {
	Reason string `json:"reason"`
}

func rollbackByID(c *gin.Context, auditLog *audit.Log) {
	actionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action id"})
		return
	}
	var req rollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := auditLog.RollbackAction(c.Request.Context(), security.UserID(c), actionID, req.Reason)
	security.ObserveRollback(res.Success)
	c.JSON(http.StatusOK, res)
}

type rollbackByDescriptionRequest struct {
	Description   string `json:"description" binding:"required"`
	Reason        string `json:"reason"`
	WithinMinutes int    `json:"withinMinutes"`
}

func rollbackByDescription(c *gin.Context, auditLog *audit.Log) {
	var req rollbackByDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	within := time.Duration(req.WithinMinutes) * time.Minute
	res := auditLog.RollbackByDescription(c.Request.Context(), security.UserID(c), req.Description, req.Reason, within)
	security.ObserveRollback(res.Success)
	c.JSON(http.StatusOK, res)
}
