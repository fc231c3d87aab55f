package handler

import (
	"net/http"
)

// HealthCheckHandler reports that the search process is up and serving its
// status and metrics routes.
func HealthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
