package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/rule-search/internal/optimizer"
)

func TestHealthCheckHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter(t *testing.T) {
	status := NewStatusHandler("AAPL")
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("metrics"))
	})
	router := NewRouter(status, metrics)

	id := uuid.New()
	status.Observe(id, optimizer.GenerationStats{Gen: 3, Evaluations: 12, Max: 8.5, Mean: 2}, 9.25)

	t.Run("status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search/status", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var got SearchStatus
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, id.String(), got.RunID)
		assert.Equal(t, "AAPL", got.Ticker)
		assert.Equal(t, "search", got.Phase)
		assert.Equal(t, 3, got.Generation)
		assert.Equal(t, 9.25, got.BestFitness)
		require.NotNil(t, got.Latest)
		assert.Equal(t, 12, got.Latest.Evaluations)
	})

	t.Run("phase", func(t *testing.T) {
		status.SetPhase("done")
		assert.Equal(t, "done", status.Status().Phase)
	})

	t.Run("metrics and health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, "metrics", rec.Body.String())

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
