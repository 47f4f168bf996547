// Package parts serves the structured part and relationship records. Every
// write goes through the mutation log so it can be summarized and rolled
// back later, and mirrors a change-log line into the narrative documents.
package parts

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/innerfold/parts-service/internal/audit"
	"github.com/innerfold/parts-service/internal/model"
	"github.com/innerfold/parts-service/internal/profile"
	"github.com/innerfold/parts-service/internal/registry/recordstore"
	"github.com/innerfold/parts-service/internal/security"
)

// MountRoutes mounts the part and relationship endpoints on the given router.
func MountRoutes(r *gin.Engine, auditLog *audit.Log, syncer *profile.Syncer) {
	g := r.Group("/v1", security.RequireUserID())

	g.POST("/parts", func(c *gin.Context) { createPart(c, auditLog, syncer) })
	g.PATCH("/parts/:id", func(c *gin.Context) { updatePart(c, auditLog, syncer) })
	g.POST("/relationships", func(c *gin.Context) { createRelationship(c, auditLog, syncer) })
	g.PATCH("/relationships/:id", func(c *gin.Context) { updateRelationship(c, auditLog, syncer) })
}

type createPartRequest struct {
	Name       string   `json:"name" binding:"required"`
	Category   string   `json:"category"`
	Confidence *float64 `json:"confidence"`
	Notes      string   `json:"notes"`
	SessionID  *string  `json:"sessionId,omitempty"`
}

func createPart(c *gin.Context, auditLog *audit.Log, syncer *profile.Syncer) {
	var req createPartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Category == "" {
		req.Category = model.CategoryUnknown
	}
	if !model.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid category %q", req.Category)})
		return
	}
	confidence := 0.0
	if req.Confidence != nil {
		if *req.Confidence < 0 || *req.Confidence > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "confidence must be in [0, 1]"})
			return
		}
		confidence = *req.Confidence
	}

	userID := security.UserID(c)
	now := time.Now().UTC()
	row := recordstore.Row{
		"user_id":    userID,
		"name":       req.Name,
		"category":   req.Category,
		"confidence": confidence,
		"notes":      req.Notes,
		"created_at": now,
		"updated_at": now,
	}
	meta := map[string]any{"partName": req.Name}

	created, err := auditLog.LoggedInsert(c.Request.Context(), model.PartsTable, row, userID, model.ActionCreatePart, meta, req.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	partID := fmt.Sprint(created["id"])
	syncer.RecordPartChange(c.Request.Context(), userID, partID, req.Name, req.Category,
		audit.Summarize(string(model.ActionCreatePart), meta))

	c.JSON(http.StatusCreated, created)
}

type updatePartRequest struct {
	Name       *string  `json:"name,omitempty"`
	Category   *string  `json:"category,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
	SessionID  *string  `json:"sessionId,omitempty"`
}

func updatePart(c *gin.Context, auditLog *audit.Log, syncer *profile.Syncer) {
	partID := c.Param("id")
	var req updatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Category != nil && !model.ValidCategory(*req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid category %q", *req.Category)})
		return
	}
	if req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 1) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confidence must be in [0, 1]"})
		return
	}

	userID := security.UserID(c)
	current, err := auditLog.Fetch(c.Request.Context(), model.PartsTable, partID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if current == nil || fmt.Sprint(current["user_id"]) != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "part not found"})
		return
	}

	patch := recordstore.Row{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Category != nil {
		patch["category"] = *req.Category
	}
	if req.Confidence != nil {
		patch["confidence"] = *req.Confidence
	}
	if req.Notes != nil {
		patch["notes"] = *req.Notes
	}
	if len(patch) == 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	kind, meta := classifyPartUpdate(current, req)

	updated, err := auditLog.LoggedUpdate(c.Request.Context(), model.PartsTable, partID, patch, userID, kind, meta, req.SessionID)
	if err != nil {
		var nf *recordstore.NotFoundError
		if errors.As(err, &nf) {
			c.JSON(http.StatusNotFound, gin.H{"error": "part not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	syncer.RecordPartChange(c.Request.Context(), userID, partID,
		fmt.Sprint(updated["name"]), fmt.Sprint(updated["category"]),
		audit.Summarize(string(kind), meta))

	c.JSON(http.StatusOK, updated)
}

// classifyPartUpdate decides how the audit log should describe the update.
// A lone confidence or category change gets its dedicated kind so summaries
// and rollback filtering stay precise; anything else is a generic update.
func classifyPartUpdate(current recordstore.Row, req updatePartRequest) (model.ActionKind, map[string]any) {
	name := fmt.Sprint(current["name"])
	if req.Name != nil {
		name = *req.Name
	}
	meta := map[string]any{"partName": name}

	fields := 0
	for _, set := range []bool{req.Name != nil, req.Category != nil, req.Confidence != nil, req.Notes != nil} {
		if set {
			fields++
		}
	}

	switch {
	case fields == 1 && req.Confidence != nil:
		oldConfidence := rowFloat(current, "confidence")
		meta["oldConfidence"] = oldConfidence
		meta["newConfidence"] = *req.Confidence
		meta["confidenceDelta"] = *req.Confidence - oldConfidence
		return model.ActionConfidenceChange, meta

	case fields == 1 && req.Category != nil:
		meta["oldCategory"] = fmt.Sprint(current["category"])
		meta["newCategory"] = *req.Category
		return model.ActionCategoryChange, meta

	default:
		meta["changeDescription"] = describePartUpdate(req)
		return model.ActionUpdatePart, meta
	}
}

func describePartUpdate(req updatePartRequest) string {
	var changed []string
	if req.Name != nil {
		changed = append(changed, "name")
	}
	if req.Category != nil {
		changed = append(changed, "category")
	}
	if req.Confidence != nil {
		changed = append(changed, "confidence")
	}
	if req.Notes != nil {
		changed = append(changed, "notes")
	}
	out := ""
	for i, f := range changed {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return "changed " + out
}

func rowFloat(row recordstore.Row, col string) float64 {
	switch v := row[col].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

type createRelationshipRequest struct {
	FromPartID string  `json:"fromPartId" binding:"required"`
	ToPartID   string  `json:"toPartId" binding:"required"`
	Type       string  `json:"type" binding:"required"`
	Notes      string  `json:"notes"`
	SessionID  *string `json:"sessionId,omitempty"`
}

func createRelationship(c *gin.Context, auditLog *audit.Log, syncer *profile.Syncer) {
	var req createRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, id := range []string{req.FromPartID, req.ToPartID} {
		if _, err := uuid.Parse(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid part id %q", id)})
			return
		}
	}

	userID := security.UserID(c)
	now := time.Now().UTC()
	row := recordstore.Row{
		"user_id":      userID,
		"from_part_id": req.FromPartID,
		"to_part_id":   req.ToPartID,
		"type":         req.Type,
		"notes":        req.Notes,
		"created_at":   now,
		"updated_at":   now,
	}
	meta := map[string]any{"relationshipType": req.Type}

	created, err := auditLog.LoggedInsert(c.Request.Context(), model.RelationshipsTable, row, userID, model.ActionCreateRelationship, meta, req.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	relID := fmt.Sprint(created["id"])
	syncer.RecordRelationshipChange(c.Request.Context(), userID, relID, req.Type,
		audit.Summarize(string(model.ActionCreateRelationship), meta))

	c.JSON(http.StatusCreated, created)
}

type updateRelationshipRequest struct {
	Type      *string `json:"type,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	SessionID *string `json:"sessionId,omitempty"`
}

func updateRelationship(c *gin.Context, auditLog *audit.Log, syncer *profile.Syncer) {
	relID := c.Param("id")
	var req updateRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := security.UserID(c)
	current, err := auditLog.Fetch(c.Request.Context(), model.RelationshipsTable, relID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if current == nil || fmt.Sprint(current["user_id"]) != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "relationship not found"})
		return
	}

	patch := recordstore.Row{"updated_at": time.Now().UTC()}
	var changed []string
	if req.Type != nil {
		patch["type"] = *req.Type
		changed = append(changed, "type")
	}
	if req.Notes != nil {
		patch["notes"] = *req.Notes
		changed = append(changed, "notes")
	}
	if len(changed) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	desc := "changed " + changed[0]
	if len(changed) == 2 {
		desc = "changed " + changed[0] + ", " + changed[1]
	}
	meta := map[string]any{"changeDescription": desc}

	updated, err := auditLog.LoggedUpdate(c.Request.Context(), model.RelationshipsTable, relID, patch, userID, model.ActionUpdateRelationship, meta, req.SessionID)
	if err != nil {
		var nf *recordstore.NotFoundError
		if errors.As(err, &nf) {
			c.JSON(http.StatusNotFound, gin.H{"error": "relationship not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	syncer.RecordRelationshipChange(c.Request.Context(), userID, relID, fmt.Sprint(updated["type"]),
		audit.Summarize(string(model.ActionUpdateRelationship), meta))

	c.JSON(http.StatusOK, updated)
}
