package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postEvaluate(t *testing.T, r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "/evaluate", bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.Contains(t, response, "metrics")
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response, "total_requests")
	assert.Contains(t, response, "evaluations")
}

func TestEvaluateEndpoint_MatrixPredictor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := setupRouter()

	w := postEvaluate(t, r, map[string]interface{}{
		"observations": []map[string]interface{}{
			{"time": 2, "event": true},
			{"time": 5, "event": false},
			{"time": 3, "event": true},
			{"time": 6, "event": false},
		},
		"times": []float64{1, 4},
		"probabilities": [][]float64{
			{0.9, 0.1},
			{0.9, 0.8},
			{0.9, 0.2},
			{0.9, 0.9},
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Metrics []struct {
			Time         float64 `json:"evaluation_time"`
			Metric       string  `json:"metric"`
			Estimate     float64 `json:"estimate"`
			Defined      bool    `json:"defined"`
			Contributing int     `json:"contributing"`
		} `json:"metrics"`
		IntegratedBrier struct {
			Metric  string `json:"metric"`
			Defined bool   `json:"defined"`
		} `json:"integrated_brier"`
		ROC []struct {
			Time float64 `json:"evaluation_time"`
		} `json:"roc"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Len(t, response.Metrics, 4)
	assert.Equal(t, "brier_integrated", response.IntegratedBrier.Metric)
	assert.True(t, response.IntegratedBrier.Defined)

	for _, row := range response.Metrics {
		if row.Metric == "roc_auc" && row.Time == 4 {
			assert.True(t, row.Defined)
			assert.InDelta(t, 1.0, row.Estimate, 1e-9)
			assert.Equal(t, 4, row.Contributing)
		}
	}

	// ROC table only covers the time with both classes present.
	for _, p := range response.ROC {
		assert.Equal(t, 4.0, p.Time)
	}
}

func TestEvaluateEndpoint_KaplanMeierBaseline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := setupRouter()

	w := postEvaluate(t, r, map[string]interface{}{
		"observations": []map[string]interface{}{
			{"time": 1, "event": true},
			{"time": 2, "event": false},
			{"time": 3, "event": true},
			{"time": 4, "event": true},
		},
		"times":     []float64{0.5, 2.5},
		"predictor": "kaplan_meier",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestEvaluateEndpoint_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := setupRouter()

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "missing observations",
			body: map[string]interface{}{
				"times":         []float64{1},
				"probabilities": [][]float64{{0.5}},
			},
		},
		{
			name: "missing probabilities without predictor",
			body: map[string]interface{}{
				"observations": []map[string]interface{}{{"time": 1, "event": true}},
				"times":        []float64{1},
			},
		},
		{
			name: "negative evaluation time",
			body: map[string]interface{}{
				"observations":  []map[string]interface{}{{"time": 1, "event": true}},
				"times":         []float64{-1},
				"probabilities": [][]float64{{0.5}},
			},
		},
		{
			name: "probability out of range",
			body: map[string]interface{}{
				"observations":  []map[string]interface{}{{"time": 1, "event": true}},
				"times":         []float64{1},
				"probabilities": [][]float64{{1.5}},
			},
		},
		{
			name: "non-monotone survival curve",
			body: map[string]interface{}{
				"observations":  []map[string]interface{}{{"time": 1, "event": true}},
				"times":         []float64{1, 2},
				"probabilities": [][]float64{{0.5, 0.9}},
			},
		},
		{
			name: "unknown predictor",
			body: map[string]interface{}{
				"observations": []map[string]interface{}{{"time": 1, "event": true}},
				"times":        []float64{1},
				"predictor":    "cox",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postEvaluate(t, r, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestGetEnvIntOrDefault(t *testing.T) {
	t.Setenv("EVAL_WORKERS", "8")
	assert.Equal(t, 8, getEnvIntOrDefault("EVAL_WORKERS", 4))

	t.Setenv("EVAL_WORKERS", "not-a-number")
	assert.Equal(t, 4, getEnvIntOrDefault("EVAL_WORKERS", 4))

	assert.Equal(t, 4, getEnvIntOrDefault("UNSET_KNOB", 4))
}

func TestEvaluateEndpoint_CachedResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := setupRouter()

	body := map[string]interface{}{
		"observations": []map[string]interface{}{
			{"time": 2, "event": true},
			{"time": 6, "event": false},
		},
		"times":         []float64{4},
		"probabilities": [][]float64{{0.2}, {0.9}},
	}

	first := postEvaluate(t, r, body)
	require.Equal(t, http.StatusOK, first.Code)

	second := postEvaluate(t, r, body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}
