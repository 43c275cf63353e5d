// Package health exposes liveness and readiness HTTP handlers.
package health

import (
	"encoding/json"
	"net/http"
)

// Liveness reports process liveness unconditionally; it never touches the
// database, so it stays truthful even while the pool is exhausted.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// PingFunc is a cheap probe of the database pool, e.g. pgxpool.Pool.Ping
// bounded by its own short timeout.
type PingFunc func() error

// Readiness reports 200 {"status":"ready"} when ping succeeds and 503
// {"status":"not_ready"} otherwise.
func Readiness(ping PingFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		type resp struct {
			Status string `json:"status"`
		}
		out := resp{Status: "ready"}
		w.Header().Set("Content-Type", "application/json")
		if err := ping(); err != nil {
			out.Status = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
