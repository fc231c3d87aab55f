package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/your-org/rule-search/internal/optimizer"
)

// SearchStatus is the progress of a running or finished search.
type SearchStatus struct {
	RunID       string                     `json:"run_id"`
	Ticker      string                     `json:"ticker"`
	Phase       string                     `json:"phase"`
	Generation  int                        `json:"generation"`
	BestFitness float64                    `json:"best_fitness"`
	Latest      *optimizer.GenerationStats `json:"latest,omitempty"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// StatusHandler tracks search progress and serves it as JSON.
type StatusHandler struct {
	mu     sync.RWMutex
	status SearchStatus
}

// NewStatusHandler creates a new StatusHandler for ticker.
func NewStatusHandler(ticker string) *StatusHandler {
	return &StatusHandler{status: SearchStatus{Ticker: ticker, Phase: "starting", UpdatedAt: time.Now()}}
}

// Observe has the optimizer.Observer signature.
func (h *StatusHandler) Observe(runID uuid.UUID, stats optimizer.GenerationStats, best float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.RunID = runID.String()
	h.status.Phase = "search"
	h.status.Generation = stats.Gen
	h.status.BestFitness = best
	latest := stats
	h.status.Latest = &latest
	h.status.UpdatedAt = time.Now()
}

// SetPhase records the current phase, e.g. "cross_validation" or "done".
func (h *StatusHandler) SetPhase(phase string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.Phase = phase
	h.status.UpdatedAt = time.Now()
}

// Status returns a snapshot of the current status.
func (h *StatusHandler) Status() SearchStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// RegisterRoutes registers the status routes on a chi router.
func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Get("/search/status", h.GetStatus)
}

// GetStatus writes the current status as JSON.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Status()); err != nil {
		http.Error(w, "Failed to encode status to JSON", http.StatusInternalServerError)
	}
}

// NewRouter mounts the health check, the status routes and metrics.
func NewRouter(status *StatusHandler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", HealthCheckHandler)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	if status != nil {
		status.RegisterRoutes(r)
	}
	return r
}
