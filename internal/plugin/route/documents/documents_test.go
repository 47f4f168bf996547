package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/innerfold/parts-service/internal/canon"
	"github.com/innerfold/parts-service/internal/plugin/docstore/fsstore"
	"github.com/innerfold/parts-service/internal/profile"
	"github.com/innerfold/parts-service/internal/security"
)

func newFixture(t *testing.T) (*gin.Engine, *fsstore.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docs, err := fsstore.New(t.TempDir())
	require.NoError(t, err)

	router := gin.New()
	MountRoutes(router, docs)
	return router, docs
}

func do(t *testing.T, router *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(security.UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedProfile(t *testing.T, docs *fsstore.Store, userID, partID string) string {
	t.Helper()
	path := profile.PartProfilePath(userID, partID)
	doc := profile.NewPartProfile("Guard", "manager", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, docs.Put(context.Background(), path, doc))
	return path
}

func TestGetDocument(t *testing.T) {
	router, docs := newFixture(t)
	path := seedProfile(t, docs, "u1", "p1")

	w := do(t, router, http.MethodGet, "/v1/documents?path="+path, "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Path string `json:"path"`
		Text string `json:"text"`
		Hash string `json:"hash"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, path, resp.Path)
	require.Contains(t, resp.Text, "# Part: Guard")
	require.Equal(t, canon.Hash(resp.Text), resp.Hash)
}

func TestGetDocumentMissing(t *testing.T) {
	router, _ := newFixture(t)
	w := do(t, router, http.MethodGet, "/v1/documents?path=users/u1/parts/nope/profile.md", "u1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDocumentOutsideOwnTree(t *testing.T) {
	router, docs := newFixture(t)
	path := seedProfile(t, docs, "u1", "p1")

	w := do(t, router, http.MethodGet, "/v1/documents?path="+path, "u2", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestPatchDocumentAppend(t *testing.T) {
	router, docs := newFixture(t)
	path := seedProfile(t, docs, "u1", "p1")

	w := do(t, router, http.MethodPost, "/v1/documents/patch", "u1", gin.H{
		"path":   path,
		"anchor": profile.ChangeLogAnchor,
		"append": "- 2024-01-02T00:00:00Z: note added",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		BeforeHash string   `json:"beforeHash"`
		AfterHash  string   `json:"afterHash"`
		Warnings   []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEqual(t, resp.BeforeHash, resp.AfterHash)
	require.Empty(t, resp.Warnings)

	stored, ok, err := docs.Get(context.Background(), path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, stored, "note added")
	require.Equal(t, canon.Hash(stored), resp.AfterHash)
}

func TestPatchDocumentStaleHashConflicts(t *testing.T) {
	router, docs := newFixture(t)
	path := seedProfile(t, docs, "u1", "p1")

	replace := "New role text."
	w := do(t, router, http.MethodPost, "/v1/documents/patch", "u1", gin.H{
		"path":    path,
		"anchor":  "role v1",
		"replace": replace,
		"ifHash":  "sha256:stale",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Unchanged on conflict.
	stored, _, err := docs.Get(context.Background(), path)
	require.NoError(t, err)
	require.NotContains(t, stored, replace)

	// With the right hash the same patch lands.
	w = do(t, router, http.MethodPost, "/v1/documents/patch", "u1", gin.H{
		"path":    path,
		"anchor":  "role v1",
		"replace": replace,
		"ifHash":  canon.Hash(stored),
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPatchDocumentUnknownAnchor(t *testing.T) {
	router, docs := newFixture(t)
	path := seedProfile(t, docs, "u1", "p1")

	w := do(t, router, http.MethodPost, "/v1/documents/patch", "u1", gin.H{
		"path":   path,
		"anchor": "nope v1",
		"append": "x",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchDocumentBothChangesRejected(t *testing.T) {
	router, docs := newFixture(t)
	path := seedProfile(t, docs, "u1", "p1")

	w := do(t, router, http.MethodPost, "/v1/documents/patch", "u1", gin.H{
		"path":    path,
		"anchor":  "role v1",
		"replace": "a",
		"append":  "b",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLintInlineText(t *testing.T) {
	router, _ := newFixture(t)

	w := do(t, router, http.MethodPost, "/v1/documents/lint", "u1", gin.H{
		"text": "# Doc\n\n## Unanchored\nbody\n",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Warnings []string `json:"warnings"`
		Blocked  bool     `json:"blocked"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Warnings, 1)
	require.Contains(t, resp.Warnings[0], "Missing anchor marker after H2")
	require.False(t, resp.Blocked)
}

func TestLintStoredDocument(t *testing.T) {
	router, docs := newFixture(t)
	path := seedProfile(t, docs, "u1", "p1")

	w := do(t, router, http.MethodPost, "/v1/documents/lint", "u1", gin.H{"path": path})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"warnings"`)
}
