package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/relgraph/internal/discovery"
	"github.com/ajitpratap0/relgraph/internal/explicit"
	"github.com/ajitpratap0/relgraph/internal/graphpattern"
	"github.com/ajitpratap0/relgraph/internal/models"
	"github.com/ajitpratap0/relgraph/internal/multihop"
	"github.com/ajitpratap0/relgraph/internal/semantic"
	"github.com/ajitpratap0/relgraph/internal/temporal"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(authToken string) *Server {
	engine := discovery.NewEngine(
		explicit.NewBuilder(explicit.DefaultRules(), nil),
		multihop.NewDiscoverer(multihop.DefaultMaxHops, nil),
		temporal.NewAnalyzer(10, 5, 0.5, 0.5, nil),
		semantic.NewMiner(semantic.DefaultPatterns(), 0, nil),
		nil,
	)
	rec := graphpattern.NewRecognizer(graphpattern.DefaultHubCentralityThreshold, graphpattern.DefaultMinCommunitySize, nil)
	miner := semantic.NewMiner(semantic.DefaultPatterns(), 0, nil)
	return NewServer(engine, rec, miner, explicit.DefaultRules(), discardLogger(), authToken)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newTestServer("").Handler(), http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestDiscover_EndToEnd(t *testing.T) {
	body := map[string]any{
		"entities": []map[string]any{
			{"id": "cust-1", "type": "customer", "attributes": map[string]any{"name": "TechCorp", "project_id": "proj-1"}},
			{"id": "proj-1", "type": "project", "attributes": map[string]any{"name": "Migration", "team_id": "team-1"}},
			{"id": "team-1", "type": "team", "attributes": map[string]any{"name": "Cloud Squad"}},
		},
	}

	rec := doJSON(t, newTestServer("").Handler(), http.MethodPost, "/v1/discover", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res discovery.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Explicit)
	assert.Equal(t, 1, res.MultiHop)
	assert.Len(t, res.Relationships, 3)
}

func TestDiscover_RequiresEntities(t *testing.T) {
	rec := doJSON(t, newTestServer("").Handler(), http.MethodPost, "/v1/discover", map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiscover_RejectsMalformedBody(t *testing.T) {
	handler := newTestServer("").Handler()
	req := httptest.NewRequest(http.MethodPost, "/v1/discover", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMine_TextRequest(t *testing.T) {
	body := map[string]any{
		"text": "Alice Johnson manages the Engineering team.",
		"entities": []map[string]any{
			{"id": "p1", "type": "person", "attributes": map[string]any{"name": "Alice Johnson"}},
			{"id": "t1", "type": "team", "attributes": map[string]any{"name": "Engineering"}},
		},
	}

	rec := doJSON(t, newTestServer("").Handler(), http.MethodPost, "/v1/mine", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Relationships []models.Relationship `json:"relationships"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Relationships, 1)
	assert.Equal(t, models.RelationManages, resp.Relationships[0].Type)
}

func TestMine_RequiresTextOrDocuments(t *testing.T) {
	body := map[string]any{
		"entities": []map[string]any{
			{"id": "p1", "type": "person"},
		},
	}
	rec := doJSON(t, newTestServer("").Handler(), http.MethodPost, "/v1/mine", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatterns_Triangle(t *testing.T) {
	body := map[string]any{
		"entities": []map[string]any{
			{"id": "a", "type": "person"},
			{"id": "b", "type": "person"},
			{"id": "c", "type": "person"},
		},
		"relationships": []map[string]any{
			{"id": "r1", "source_id": "a", "target_id": "b", "type": "WORKS_WITH", "direction": "bidirectional", "confidence": 0.8},
			{"id": "r2", "source_id": "b", "target_id": "c", "type": "WORKS_WITH", "direction": "bidirectional", "confidence": 0.8},
			{"id": "r3", "source_id": "c", "target_id": "a", "type": "WORKS_WITH", "direction": "bidirectional", "confidence": 0.8},
		},
	}

	rec := doJSON(t, newTestServer("").Handler(), http.MethodPost, "/v1/patterns", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Patterns       []models.GraphPattern         `json:"patterns"`
		Collaborations []models.CollaborationPattern `json:"collaborations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var triangles int
	for _, p := range resp.Patterns {
		if p.Type == models.PatternTriangle {
			triangles++
		}
	}
	assert.Equal(t, 1, triangles)
	require.Len(t, resp.Collaborations, 1)
	assert.InDelta(t, 0.8, resp.Collaborations[0].CollaborationStrength, 1e-9)
}

func TestRules_ListsDefaults(t *testing.T) {
	rec := doJSON(t, newTestServer("").Handler(), http.MethodGet, "/v1/rules", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]explicit.Rule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp["rules"], len(explicit.DefaultRules()))
}

// --- auth tests ---

func TestAuth_MissingToken(t *testing.T) {
	rec := doJSON(t, newTestServer("secret").Handler(), http.MethodGet, "/v1/rules", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongToken(t *testing.T) {
	rec := doJSON(t, newTestServer("secret").Handler(), http.MethodGet, "/v1/rules", nil,
		map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_CorrectToken(t *testing.T) {
	rec := doJSON(t, newTestServer("secret").Handler(), http.MethodGet, "/v1/rules", nil,
		map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_HealthzSkipsAuth(t *testing.T) {
	rec := doJSON(t, newTestServer("secret").Handler(), http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
