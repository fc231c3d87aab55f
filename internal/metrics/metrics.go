// Package metrics exposes search progress as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/your-org/rule-search/internal/optimizer"
)

var (
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rule_search_generations_total", Help: "Generations completed by the genetic search"},
		[]string{"ticker"},
	)
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rule_search_evaluations_total", Help: "Fitness evaluations performed"},
		[]string{"ticker"},
	)
	BestFitness = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "rule_search_best_fitness", Help: "Best net profit found so far"},
		[]string{"ticker"},
	)
	MeanFitness = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "rule_search_mean_fitness", Help: "Mean net profit of the latest generation"},
		[]string{"ticker"},
	)
	CrossValidationScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "rule_search_cross_validation_mean", Help: "Mean simulated net profit per candidate"},
		[]string{"ticker", "candidate"},
	)
	PhaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rule_search_phase_duration_seconds",
			Help:    "Wall time of each search phase",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
		},
		[]string{"phase"},
	)
)

func init() {
	prometheus.MustRegister(GenerationsTotal, EvaluationsTotal, BestFitness, MeanFitness, CrossValidationScore, PhaseDuration)
}

// Observer returns an optimizer observer that records progress for ticker.
func Observer(ticker string) optimizer.Observer {
	return func(_ uuid.UUID, stats optimizer.GenerationStats, best float64) {
		GenerationsTotal.WithLabelValues(ticker).Inc()
		EvaluationsTotal.WithLabelValues(ticker).Add(float64(stats.Evaluations))
		BestFitness.WithLabelValues(ticker).Set(best)
		MeanFitness.WithLabelValues(ticker).Set(stats.Mean)
	}
}

// ObservePhase records how long a phase took since start.
func ObservePhase(phase string, start time.Time) {
	PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts an HTTP server on addr in the background. A nil handler serves
// only /metrics. Listen failures are logged, not returned.
func Serve(addr string, handler http.Handler, logger *zap.Logger) *http.Server {
	if handler == nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", Handler())
		handler = mux
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return srv
}
