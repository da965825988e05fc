package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukbuild/material-hunter/internal/ai"
	"github.com/ukbuild/material-hunter/internal/pipeline"
	"github.com/ukbuild/material-hunter/internal/search"
)

func newTestServer() *Server {
	svc := search.NewService(pipeline.New(pipeline.Config{}), ai.NewMockClient(), nil, nil, nil, search.Options{})
	return NewServer(svc, nil)
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleSearchAI(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodPost, "/api/search",
		`{"query": "50mm PIR insulation board", "max_results": 3}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "50mm PIR insulation board", resp.Query)
	assert.Equal(t, "ai", resp.Source)
	assert.Equal(t, len(resp.Results), resp.TotalResults)
	require.NotEmpty(t, resp.Results)
	assert.LessOrEqual(t, len(resp.Results), 3)
	for _, r := range resp.Results {
		assert.NotEmpty(t, r.Supplier)
		assert.NotEmpty(t, r.ProductName)
	}
	assert.NotEmpty(t, resp.SearchedSuppliers)
	assert.NotEmpty(t, resp.SearchTime)
}

func TestHandleSearchShortQuery(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodPost, "/api/search", `{"query": "ab"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearchBadBody(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodPost, "/api/search", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearchUnknownMode(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodPost, "/api/search",
		`{"query": "50mm insulation", "mode": "psychic"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDemo(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodGet, "/api/search/demo", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "demo", resp.Source)
	assert.NotEmpty(t, resp.Results)
}

func TestHandleListSuppliers(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodGet, "/api/suppliers", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []map[string]string `json:"items"`
		Total int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, len(resp.Items), resp.Total)
	assert.NotEmpty(t, resp.Items)
}

func TestHandleListSearchesWithoutStore(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodGet, "/api/searches", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestHandleHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleStats(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pages_fetched")
}

func TestClampMaxResults(t *testing.T) {
	assert.Equal(t, pipeline.DefaultMaxResults, clampMaxResults(0))
	assert.Equal(t, pipeline.DefaultMaxResults, clampMaxResults(-1))
	assert.Equal(t, 7, clampMaxResults(7))
	assert.Equal(t, pipeline.MaxResultsCeiling, clampMaxResults(500))
}
