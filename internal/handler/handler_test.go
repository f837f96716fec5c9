package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchain/internal/catalog"
	"medchain/internal/domain/models"
	"medchain/internal/repository/memory"
	anchormem "medchain/internal/service/anchor/memory"
	"medchain/internal/service/canonical"
	"medchain/internal/service/ledger"
	"medchain/internal/service/records"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, symptoms, notes string) (*models.Analysis, error) {
	return &models.Analysis{
		SuggestedDiagnosis: "Viral fever",
		Summary:            "Fever",
		Severity:           models.SeverityLow,
		RecommendedActions: []string{"Rest"},
	}, nil
}

type testServer struct {
	handler http.Handler
	anchor  *anchormem.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat, err := catalog.Load()
	require.NoError(t, err)

	anchor := anchormem.NewClient()
	svc, err := records.NewService(records.Dependencies{
		Ledger:        ledger.NewClient(memory.NewStore(), nil, logger),
		Canonicalizer: canonical.JSON{},
		Digester:      canonical.SHA256{},
		Anchor:        anchor,
		Anchors:       memory.NewAnchorRepository(),
		Catalog:       cat,
		Clock:         func() time.Time { return time.UnixMilli(1767225600000) },
	}, logger)
	require.NoError(t, err)

	h := NewRouter(Handlers{
		Records:  NewRecordHandler(svc, logger),
		Analysis: NewAnalysisHandler(stubAnalyzer{}, logger),
		Catalog:  NewCatalogHandler(cat),
		Health:   NewHealthHandler(nil),
	}, nil, logger)

	return &testServer{handler: h, anchor: anchor}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v))
	return v
}

const budiBody = `{"recordId":"RM-1","patientName":"Budi","symptoms":"Fever","notes":"T=38.5C"}`

func TestSubmitAndGetRecord(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/records", budiBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result := decode[models.SubmitResult](t, rec)
	assert.Equal(t, "RM-1", result.RecordID)
	assert.Equal(t, models.StateAnchored, result.Status)
	assert.Len(t, result.ContentHash, 64)

	rec = s.do(t, http.MethodGet, "/api/records/RM-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	record := decode[models.Record](t, rec)
	assert.Equal(t, "Budi", record.PatientName)
	assert.Equal(t, int64(1767225600000), record.Timestamp)
}

func TestSubmit_DegradedIsStillCreated(t *testing.T) {
	s := newTestServer(t)
	s.anchor.SetFailure(anchormem.FailUnavailable)

	rec := s.do(t, http.MethodPost, "/api/records", budiBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	result := decode[models.SubmitResult](t, rec)
	assert.Equal(t, models.StateAnchorDegraded, result.Status)
	assert.True(t, result.RetryRequired)

	// Retry after the outage
	s.anchor.SetFailure(anchormem.FailNone)
	rec = s.do(t, http.MethodPost, "/api/anchors/reconcile?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[models.ReconcileReport](t, rec)
	assert.Equal(t, 1, report.Anchored)
}

func TestSubmit_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"patientName":`, http.StatusBadRequest},
		{"unknown field", `{"patientName":"Budi","bloodType":"O"}`, http.StatusBadRequest},
		{"missing patient name", `{"symptoms":"Fever"}`, http.StatusBadRequest},
		{"unknown department", `{"patientName":"Budi","department":"Radiology"}`, http.StatusBadRequest},
		{"encrypt without cipher", `{"patientName":"Budi","isEncrypted":true}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/records", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/records/RM-404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecord_BadDecryptFlag(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/records/RM-1?decrypt=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyAndReanchor(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/records", budiBody).Code)

	rec := s.do(t, http.MethodGet, "/api/records/RM-1/verify", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[models.Verification](t, rec)
	assert.True(t, v.Matches)

	rec = s.do(t, http.MethodPost, "/api/records/RM-1/anchor", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.anchor.Calls(), 1)
}

func TestReconcile_LimitOutOfRange(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/anchors/reconcile?limit=100000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	problem := decode[map[string]interface{}](t, rec)
	assert.EqualValues(t, 500, problem["max_limit"])
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/analysis", `{"symptoms":"Fever","notes":"T=38.5C"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	analysis := decode[models.Analysis](t, rec)
	assert.Equal(t, "Viral fever", analysis.SuggestedDiagnosis)
}

func TestAnalyze_NotConfigured(t *testing.T) {
	h := NewAnalysisHandler(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	h.Analyze(rec, httptest.NewRequest(http.MethodPost, "/api/analysis", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListDepartments(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/catalog/departments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[DepartmentsResponse](t, rec)
	names := make([]string, 0, len(resp.Departments))
	for _, d := range resp.Departments {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "Poli Umum")
	assert.Contains(t, names, "IGD")
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h := NewHealthHandler(map[string]ReadinessCheck{
		"ledger": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/catalog/departments", "")

	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "medchain_http_requests_total")
}
