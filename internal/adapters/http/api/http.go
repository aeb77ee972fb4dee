// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/contribgrid/internal/domain/dedupe"
	"github.com/okian/contribgrid/internal/domain/types"
)

// Dependencies required by HTTP handlers. Handlers never touch the live
// model: reads come from the latest snapshot and writes go through the
// input queue.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a grab request to the frame loop. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, r types.GrabRequest) bool

	// Status returns the latest published model state.
	Status(ctx context.Context) types.Status

	// Cell returns one cell by 1-based day index.
	Cell(ctx context.Context, dayIndex int) (types.Cell, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	modelHandler  *ModelHandler
	cellsHandler  *CellsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		modelHandler:  NewModelHandler(deps),
		cellsHandler:  NewCellsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /model", MetricsMiddleware(s.modelHandler.HandleGetModel, "model"))
	mux.HandleFunc("GET /cells/{day}", MetricsMiddleware(s.cellsHandler.HandleGetCell, "cell"))
	mux.HandleFunc("POST /cells/{day}/grab", MetricsMiddleware(s.cellsHandler.HandlePostGrab, "grab"))
}

type ackResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
