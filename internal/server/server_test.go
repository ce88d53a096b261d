package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/mkrasilnikov/minusflow/internal/common"
	"github.com/mkrasilnikov/minusflow/internal/engine"
	"github.com/mkrasilnikov/minusflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryHistory is an in-memory HistoryStore for handler tests.
type memoryHistory struct {
	snapshots []service.AnalysisSnapshot
}

func (m *memoryHistory) SaveAnalysis(_ context.Context, snapshot *service.AnalysisSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = "test-id"
	}
	m.snapshots = append(m.snapshots, *snapshot)
	return nil
}

func (m *memoryHistory) GetAnalysis(_ context.Context, id string) (*service.AnalysisSnapshot, error) {
	for i := range m.snapshots {
		if m.snapshots[i].ID == id {
			return &m.snapshots[i], nil
		}
	}
	return nil, fmt.Errorf("analysis %s: %w", id, common.ErrNotFound)
}

func (m *memoryHistory) ListAnalyses(_ context.Context, limit int) ([]service.AnalysisSnapshot, error) {
	if limit > 0 && limit < len(m.snapshots) {
		return m.snapshots[:limit], nil
	}
	return m.snapshots, nil
}

func (m *memoryHistory) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *memoryHistory) {
	t.Helper()
	history := &memoryHistory{}
	eng := engine.New(nil)
	return New(eng, history, nil), history
}

func postJSON(t *testing.T, s *Server, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnalyzeEndpoint(t *testing.T) {
	s, history := newTestServer(t)

	resp := postJSON(t, s, "/api/v1/analyze", map[string]any{
		"queries": []map[string]any{
			{"query": "автошкола уфа купить", "impressions": 30, "clicks": 5, "cost": 500, "conversions": 1},
			{"query": "автошкола скачать реферат", "impressions": 40, "clicks": 2, "cost": 120},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["rawQueriesCount"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), data["totalQueries"])

	summary, ok := data["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, summary["wastedCost"], summary["potentialSavings"])

	// The run was persisted.
	require.Len(t, history.snapshots, 1)
	assert.Equal(t, "test-id", body["analysisId"])
}

func TestAnalyzeEndpointRejectsEmptyCorpus(t *testing.T) {
	s, history := newTestServer(t)

	resp := postJSON(t, s, "/api/v1/analyze", map[string]any{"queries": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "queries")
	assert.Empty(t, history.snapshots)
}

func TestAnalyzeEndpointAIWithoutClassifier(t *testing.T) {
	s, _ := newTestServer(t)

	resp := postJSON(t, s, "/api/v1/analyze", map[string]any{
		"queries":             []map[string]any{{"query": "автошкола", "cost": 10}},
		"businessDescription": "автошкола",
		"useAi":               true,
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestExportEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	resp := postJSON(t, s, "/api/v1/export", map[string]any{
		"words": []string{"бесплатно", "-скачать"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "-бесплатно\n-скачать\n", string(raw))
}

func TestExportEndpointRejectsEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	resp := postJSON(t, s, "/api/v1/export", map[string]any{"words": []string{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWordFilterEndpointValidation(t *testing.T) {
	s, _ := newTestServer(t)

	resp := postJSON(t, s, "/api/v1/wordfilter", map[string]any{
		"businessDescription": "автошкола",
		"words":               []any{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistoryEndpoints(t *testing.T) {
	s, history := newTestServer(t)
	history.snapshots = []service.AnalysisSnapshot{{ID: "abc", BusinessDescription: "автошкола"}}

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses/abc", nil)
	resp, err = s.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses/missing", nil)
	resp, err = s.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAnalysesBadLimit(t *testing.T) {
	s, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/analyses?limit=abc", nil)
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
