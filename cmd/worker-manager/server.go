package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"solar-roi-workers/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// readinessCheck reports whether a dependency can serve jobs.
type readinessCheck func(ctx context.Context) error

func newHealthServer(addr string, checks map[string]readinessCheck, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(checks, log))
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func readyHandler(checks map[string]readinessCheck, log logger.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		code, status := http.StatusOK, "ready"
		results := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				results[name] = err.Error()
				log.Warn("readiness check failed", map[string]interface{}{"check": name, "error": err.Error()})
				code, status = http.StatusServiceUnavailable, "not ready"
				continue
			}
			results[name] = "ok"
		}

		writeStatus(w, code, map[string]interface{}{
			"status": status,
			"checks": results,
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
