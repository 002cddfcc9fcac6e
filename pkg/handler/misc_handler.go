// Handler for miscellaneous endpoints such as health check

package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

type HealthResponse struct {
	Health    string    `json:"health"`
	Timestamp time.Time `json:"timestamp"`
	Store     bool      `json:"store"`
}

func (dbctx *DBContext) HealthCheck(w http.ResponseWriter, r *http.Request) {

	response := HealthResponse{
		Health:    "ok",
		Timestamp: time.Now(),
		Store:     dbctx.Store != nil,
	}

	if dbctx.Store != nil {
		if err := dbctx.Store.DB().PingContext(r.Context()); err != nil {
			response.Health = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Line   int    `json:"line,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error, line int) {
	writeJSON(w, status, ErrorResponse{Status: "error", Error: err.Error(), Line: line})
}
