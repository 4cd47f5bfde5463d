package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/observability"
	"github.com/matzehuels/transfocator/pkg/pipeline"
	"github.com/matzehuels/transfocator/pkg/report"
	"github.com/matzehuels/transfocator/pkg/store"
)

func newTestServer(t *testing.T, st store.Store) (*Server, http.Handler) {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, nil, logger)
	s := New(runner, st, NewMetrics(), logger)
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func defaultBody(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(beamline.Default())
	require.NoError(t, err)
	return data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, store.NewMemoryStore())

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")

	rec = do(t, h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCalculate(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/v1/calculate?symmetry=true", defaultBody(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 10300.0, rep.Energy)
	assert.Len(t, rep.History, 4)
	assert.NotNil(t, rep.Symmetry)
}

func TestCalculateEnergyOverride(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/v1/calculate?energy=30900", defaultBody(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 30900.0, rep.Energy)
}

func TestCalculateErrors(t *testing.T) {
	_, h := newTestServer(t, nil)

	tests := []struct {
		name   string
		target string
		body   []byte
		status int
		code   string
	}{
		{"malformed body", "/v1/calculate", []byte("{"), http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown convention", "/v1/calculate?convention=hwhm", defaultBody(t), http.StatusBadRequest, "INVALID_CONVENTION"},
		{"bad symmetry flag", "/v1/calculate?symmetry=maybe", defaultBody(t), http.StatusBadRequest, "INVALID_INPUT"},
		{"bad energy", "/v1/calculate?energy=abc", defaultBody(t), http.StatusBadRequest, "INVALID_INPUT"},
		{"energy outside table", "/v1/calculate?energy=5000", defaultBody(t), http.StatusBadGateway, "LOOKUP_FAILED"},
		{"no transfocators", "/v1/calculate", []byte(`{"source":{"energy":10300,"sx":1,"sy":1,"wx":1,"wy":1},"tf":[]}`), http.StatusUnprocessableEntity, "NO_RESULTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, string(decodeError(t, rec).Code))
		})
	}
}

func TestRuns(t *testing.T) {
	_, h := newTestServer(t, store.NewMemoryStore())

	rec := do(t, h, http.MethodPost, "/v1/runs?name=reference", defaultBody(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID     string          `json:"id"`
		Report json.RawMessage `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NoError(t, store.ValidateID(created.ID))

	rec = do(t, h, http.MethodGet, "/v1/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []runSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "reference", list[0].Name)
	assert.Equal(t, "fwhm", list[0].Convention)

	rec = do(t, h, http.MethodGet, "/v1/runs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var run store.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, created.ID, run.ID)
	require.NotNil(t, run.Report)
	assert.Len(t, run.Report.History, 4)

	archived, err := beamline.Parse(run.Beamline, beamline.FormatJSON)
	require.NoError(t, err)
	assert.Len(t, archived.TFs, 2)
}

func TestRunsErrors(t *testing.T) {
	_, h := newTestServer(t, store.NewMemoryStore())

	rec := do(t, h, http.MethodGet, "/v1/runs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/runs/9b2f8a4e-3c1d-4f5e-8a7b-6c5d4e3f2a1b", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RUN_NOT_FOUND", string(decodeError(t, rec).Code))

	rec = do(t, h, http.MethodGet, "/v1/runs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunsWithoutStore(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/v1/runs", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, "UNSUPPORTED", string(decodeError(t, rec).Code))
}

func TestConstants(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/v1/constants?material=Be&energy=10300", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var c constantsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "Be", c.Material)
	assert.InDelta(t, 1.848, c.Density, 1e-9)
	assert.Greater(t, c.Delta, 0.0)
	assert.Greater(t, c.AttenuationLength, 0.0)

	rec = do(t, h, http.MethodGet, "/v1/constants?material=Be&energy=oops", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/constants?material=&energy=10300", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresetsAndVersion(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/v1/presets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var presets []beamline.Preset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &presets))
	assert.Len(t, presets, 4)

	rec = do(t, h, http.MethodGet, "/v1/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)
}

func TestMetrics(t *testing.T) {
	s, h := newTestServer(t, nil)
	s.Metrics.Install()
	t.Cleanup(observability.Reset)

	rec := do(t, h, http.MethodPost, "/v1/calculate", defaultBody(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.reports))

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "tfcalc_reports_total 1"), body)
	assert.Contains(t, body, "tfcalc_stage_duration_seconds")
	assert.Contains(t, body, `route="/v1/calculate"`)
}
