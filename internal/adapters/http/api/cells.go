package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/contribgrid/internal/adapters/repository"
	"github.com/okian/contribgrid/internal/domain/dedupe"
	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/internal/domain/types"
	"github.com/okian/contribgrid/pkg/metrics"
)

const maxGrabBody = 4 << 10

// CellsDependencies defines the operations behind the cell routes.
type CellsDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, r types.GrabRequest) bool
	Cell(ctx context.Context, dayIndex int) (types.Cell, error)
}

// CellsHandler serves single cells and accepts grab requests.
type CellsHandler struct {
	deps CellsDependencies
}

// NewCellsHandler creates a new cells handler.
func NewCellsHandler(deps CellsDependencies) *CellsHandler {
	return &CellsHandler{deps: deps}
}

// grabRequest is the body of POST /cells/{day}/grab. Orientation defaults
// to identity and request_id to a fresh UUID.
type grabRequest struct {
	RequestID   string      `json:"request_id"`
	Position    *model.Vec3 `json:"position"`
	Orientation *model.Quat `json:"orientation"`
}

func (g grabRequest) pose() (model.Pose, error) {
	if g.Position == nil {
		return model.Pose{}, errors.New("missing position")
	}
	p := model.Pose{Position: *g.Position, Orientation: model.Identity}
	if g.Orientation != nil {
		p.Orientation = *g.Orientation
	}
	for _, v := range []float64{
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.X, p.Orientation.Y, p.Orientation.Z, p.Orientation.W,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.Pose{}, errors.New("pose components must be finite")
		}
	}
	q := p.Orientation
	if q.X == 0 && q.Y == 0 && q.Z == 0 && q.W == 0 {
		return model.Pose{}, errors.New("orientation must not be the zero quaternion")
	}
	return p, nil
}

// HandleGetCell handles GET /cells/{day} requests.
func (h *CellsHandler) HandleGetCell(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_cell"
	day, err := parseDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	cell, err := h.deps.Cell(r.Context(), day)
	if err != nil {
		writeCellError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, cell)
}

// HandlePostGrab handles POST /cells/{day}/grab requests. Accepted requests
// are applied by the frame loop on a later frame.
func (h *CellsHandler) HandlePostGrab(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_grab"
	day, err := parseDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	var req grabRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxGrabBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	pose, err := req.pose()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.RequestID) == "" {
		req.RequestID = uuid.NewString()
	}

	if _, err := h.deps.Cell(r.Context(), day); err != nil {
		writeCellError(w, op, err)
		return
	}

	if h.deps.SeenAndRecord(r.Context(), req.RequestID) {
		metrics.RecordGrabDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", RequestID: req.RequestID, Duplicate: true})
		return
	}

	grab := types.GrabRequest{RequestID: req.RequestID, DayIndex: day, Pose: pose}
	if ok := h.deps.Enqueue(r.Context(), grab); !ok {
		// Forget the ID so the client can retry.
		h.deps.Unrecord(r.Context(), req.RequestID)
		writeError(w, http.StatusTooManyRequests, "backpressure", wrapKind(op, ErrBackpressure, nil))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RequestID: req.RequestID})
}

func parseDay(r *http.Request) (int, error) {
	raw := r.PathValue("day")
	day, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("day %q is not an integer", raw)
	}
	return day, nil
}

func writeCellError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotReady):
		writeError(w, http.StatusConflict, "not_ready", wrapKind(op, ErrNotReady, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", wrapKind(op, ErrNotFound, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
