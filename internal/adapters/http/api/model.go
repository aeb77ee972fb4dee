package api

import (
	"context"
	"net/http"

	"github.com/okian/contribgrid/internal/domain/types"
)

// ModelDependencies defines the read operations for the whole grid.
type ModelDependencies interface {
	Status(ctx context.Context) types.Status
}

// ModelHandler serves the latest grid state.
type ModelHandler struct {
	deps ModelDependencies
}

// NewModelHandler creates a new model handler.
func NewModelHandler(deps ModelDependencies) *ModelHandler {
	return &ModelHandler{deps: deps}
}

// HandleGetModel handles GET /model requests. The state is reported with
// 200 whether loading, ready or failed; ?cells=false omits the cell list.
func (h *ModelHandler) HandleGetModel(w http.ResponseWriter, r *http.Request) {
	st := h.deps.Status(r.Context())
	if r.URL.Query().Get("cells") == "false" {
		st.Cells = nil
	}
	writeJSON(w, http.StatusOK, st)
}
