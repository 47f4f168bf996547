package parts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/innerfold/parts-service/internal/audit"
	"github.com/innerfold/parts-service/internal/model"
	"github.com/innerfold/parts-service/internal/plugin/docstore/fsstore"
	"github.com/innerfold/parts-service/internal/plugin/recordstore/memstore"
	"github.com/innerfold/parts-service/internal/profile"
	"github.com/innerfold/parts-service/internal/security"
)

type fixture struct {
	router *gin.Engine
	audit  *audit.Log
	store  *memstore.Store
	docs   *fsstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	docs, err := fsstore.New(t.TempDir())
	require.NoError(t, err)

	auditLog := audit.New(store)
	router := gin.New()
	MountRoutes(router, auditLog, profile.NewSyncer(docs))
	return &fixture{router: router, audit: auditLog, store: store, docs: docs}
}

func (f *fixture) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
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
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreatePart(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/parts", "u1", gin.H{
		"name":       "Inner Critic",
		"category":   "manager",
		"confidence": 0.6,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode(t, w)
	partID, _ := created["id"].(string)
	require.NotEmpty(t, partID)
	require.Equal(t, "Inner Critic", created["name"])

	// The mutation was logged with a rollback-ready summary.
	actions, err := f.audit.RecentActions(context.Background(), "u1", audit.Query{})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Equal(t, string(model.ActionCreatePart), actions[0].Kind)
	require.Equal(t, `Created part "Inner Critic"`, actions[0].Summary)

	// The narrative profile was seeded and got a change-log line.
	doc, ok, err := f.docs.Get(context.Background(), profile.PartProfilePath("u1", partID))
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, doc, `Created part "Inner Critic"`)
}

func TestCreatePartRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/parts", "u1", gin.H{"name": "X", "category": "villain"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/v1/parts", "u1", gin.H{"name": "X", "confidence": 1.5})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/v1/parts", "", gin.H{"name": "X"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), security.UserIDHeader)
}

func TestUpdatePartConfidenceOnly(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/parts", "u1", gin.H{"name": "Guard", "confidence": 0.5})
	require.Equal(t, http.StatusCreated, w.Code)
	partID := decode(t, w)["id"].(string)

	w = f.do(t, http.MethodPatch, "/v1/parts/"+partID, "u1", gin.H{"confidence": 0.8})
	require.Equal(t, http.StatusOK, w.Code)
	require.InDelta(t, 0.8, decode(t, w)["confidence"], 1e-9)

	actions, err := f.audit.RecentActions(context.Background(), "u1", audit.Query{})
	require.NoError(t, err)
	require.Len(t, actions, 2)
	require.Equal(t, string(model.ActionConfidenceChange), actions[0].Kind)
	require.Equal(t, `Increased confidence for "Guard" by 0.3`, actions[0].Summary)
}

func TestUpdatePartCategoryOnly(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/parts", "u1", gin.H{"name": "Guard"})
	partID := decode(t, w)["id"].(string)

	w = f.do(t, http.MethodPatch, "/v1/parts/"+partID, "u1", gin.H{"category": "firefighter"})
	require.Equal(t, http.StatusOK, w.Code)

	actions, err := f.audit.RecentActions(context.Background(), "u1", audit.Query{})
	require.NoError(t, err)
	require.Equal(t, string(model.ActionCategoryChange), actions[0].Kind)
	require.Equal(t, `Changed category for "Guard" from unknown to firefighter`, actions[0].Summary)
}

func TestUpdatePartMultipleFieldsIsGenericUpdate(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/parts", "u1", gin.H{"name": "Guard"})
	partID := decode(t, w)["id"].(string)

	w = f.do(t, http.MethodPatch, "/v1/parts/"+partID, "u1", gin.H{
		"name":     "Gatekeeper",
		"category": "manager",
	})
	require.Equal(t, http.StatusOK, w.Code)

	actions, err := f.audit.RecentActions(context.Background(), "u1", audit.Query{})
	require.NoError(t, err)
	require.Equal(t, string(model.ActionUpdatePart), actions[0].Kind)
	require.Equal(t, `Updated part "Gatekeeper": changed name, category`, actions[0].Summary)
}

func TestUpdatePartOfOtherUserIsNotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/parts", "u1", gin.H{"name": "Guard"})
	partID := decode(t, w)["id"].(string)

	w = f.do(t, http.MethodPatch, "/v1/parts/"+partID, "u2", gin.H{"notes": "mine now"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRelationshipLifecycle(t *testing.T) {
	f := newFixture(t)

	a := decode(t, f.do(t, http.MethodPost, "/v1/parts", "u1", gin.H{"name": "A"}))["id"].(string)
	b := decode(t, f.do(t, http.MethodPost, "/v1/parts", "u1", gin.H{"name": "B"}))["id"].(string)

	w := f.do(t, http.MethodPost, "/v1/relationships", "u1", gin.H{
		"fromPartId": a,
		"toPartId":   b,
		"type":       "polarized",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	relID := decode(t, w)["id"].(string)

	w = f.do(t, http.MethodPatch, "/v1/relationships/"+relID, "u1", gin.H{"type": "allied"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "allied", decode(t, w)["type"])

	actions, err := f.audit.RecentActions(context.Background(), "u1", audit.Query{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, string(model.ActionUpdateRelationship), actions[0].Kind)
	require.Equal(t, "Created polarized relationship", actions[1].Summary)

	doc, ok, err := f.docs.Get(context.Background(), profile.RelationshipProfilePath("u1", relID))
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, doc, "Created polarized relationship")
}

func TestCreateRelationshipRejectsBadPartIDs(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/relationships", "u1", gin.H{
		"fromPartId": "not-a-uuid",
		"toPartId":   "also-not",
		"type":       "polarized",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
