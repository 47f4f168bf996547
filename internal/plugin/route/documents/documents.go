// Package documents serves the narrative markdown documents: reads, anchored
// section patches, and lint checks.
package documents

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/innerfold/parts-service/internal/canon"
	"github.com/innerfold/parts-service/internal/markdown"
	"github.com/innerfold/parts-service/internal/profile"
	"github.com/innerfold/parts-service/internal/registry/docstore"
	"github.com/innerfold/parts-service/internal/security"
)

// MountRoutes mounts the document endpoints on the given router.
func MountRoutes(r *gin.Engine, docs docstore.DocumentStore) {
	g := r.Group("/v1", security.RequireUserID())

	g.GET("/documents", func(c *gin.Context) { getDocument(c, docs) })
	g.POST("/documents/patch", func(c *gin.Context) { patchDocument(c, docs) })
	g.POST("/documents/lint", func(c *gin.Context) { lintDocument(c, docs) })
}

// requirePath validates the path query or body field and confines callers to
// their own document tree.
func requirePath(c *gin.Context, path string) bool {
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return false
	}
	if !strings.HasPrefix(path, profile.UserPrefix(security.UserID(c))) {
		c.JSON(http.StatusForbidden, gin.H{"error": "path outside caller's document tree"})
		return false
	}
	return true
}

func getDocument(c *gin.Context, docs docstore.DocumentStore) {
	path := c.Query("path")
	if !requirePath(c, path) {
		return
	}

	text, ok, err := docs.Get(c.Request.Context(), path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path": path,
		"text": text,
		"hash": canon.Hash(text),
	})
}

type patchRequest struct {
	Path    string  `json:"path" binding:"required"`
	Anchor  string  `json:"anchor" binding:"required"`
	Replace *string `json:"replace,omitempty"`
	Append  *string `json:"append,omitempty"`

	// IfHash, when set, must match the stored document's current hash or
	// the patch is rejected with a conflict. Advisory optimistic
	// concurrency; omitting it means last write wins.
	IfHash *string `json:"ifHash,omitempty"`
}

func patchDocument(c *gin.Context, docs docstore.DocumentStore) {
	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !requirePath(c, req.Path) {
		return
	}

	doc, ok, err := docs.Get(c.Request.Context(), req.Path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		security.ObserveDocumentPatch("not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	if req.IfHash != nil {
		if current := canon.Hash(doc); current != *req.IfHash {
			security.ObserveDocumentPatch("conflict")
			c.JSON(http.StatusConflict, gin.H{
				"error":       "document changed since it was read",
				"currentHash": current,
			})
			return
		}
	}

	res, err := markdown.PatchSectionByAnchor(doc, req.Anchor, markdown.Change{
		Replace: req.Replace,
		Append:  req.Append,
	})
	if err != nil {
		var notFound *markdown.SectionNotFoundError
		var invalid *markdown.ValidationError
		switch {
		case errors.As(err, &notFound):
			security.ObserveDocumentPatch("anchor_missing")
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.As(err, &invalid):
			security.ObserveDocumentPatch("invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			security.ObserveDocumentPatch("error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if err := docs.Put(c.Request.Context(), req.Path, res.Text); err != nil {
		security.ObserveDocumentPatch("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	security.ObserveDocumentPatch("success")

	c.JSON(http.StatusOK, gin.H{
		"path":       req.Path,
		"beforeHash": res.BeforeHash,
		"afterHash":  res.AfterHash,
		"warnings":   markdown.Lint(res.Text).Warnings,
	})
}

type lintRequest struct {
	Text *string `json:"text,omitempty"`
	Path *string `json:"path,omitempty"`
}

// lintDocument lints either inline text or a stored document.
func lintDocument(c *gin.Context, docs docstore.DocumentStore) {
	var req lintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var text string
	switch {
	case req.Text != nil:
		text = *req.Text
	case req.Path != nil:
		if !requirePath(c, *req.Path) {
			return
		}
		stored, ok, err := docs.Get(c.Request.Context(), *req.Path)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		text = stored
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either text or path is required"})
		return
	}

	res := markdown.Lint(text)
	c.JSON(http.StatusOK, gin.H{
		"warnings": res.Warnings,
		"blocked":  res.Blocked,
	})
}
