package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/gol-boards/model"
	"github.com/sheikhrachel/gol-boards/store"
	"github.com/sheikhrachel/gol-boards/utils"
	"github.com/sheikhrachel/gol-boards/validate"
)

const maxBodyBytes = 16 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return &validate.Error{Field: "body", Message: err.Error()}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine, store and validation failures onto HTTP statuses
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr    *validate.Error
		convErr *model.ConvergenceError
	)

	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation error", Details: vErr.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Board not found"})
	case errors.As(err, &convErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "Board did not converge",
			Message: fmt.Sprintf("The board did not stabilize within %d iterations", convErr.MaxIterations),
		})
	case errors.Is(err, errBusy):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Service busy"})
	default:
		utils.LoggerFromContext(r.Context()).Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// withRequestLogger attaches a request-scoped logger to the context and logs each response
func (s *Server) withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.With("method", r.Method, "path", r.URL.Path)
		r = r.WithContext(utils.WithLogger(r.Context(), logger))

		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Debug("Request handled", "status", rec.status, "duration", time.Since(started))
	})
}
