package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/curator/internal/domain/types"
)

// CuratorDependencies defines the interface for per-address lookups.
type CuratorDependencies interface {
	Index(ctx context.Context, addr string) types.CuratorIndex
}

// CuratorHandler handles curator index lookups.
type CuratorHandler struct {
	deps CuratorDependencies
}

// NewCuratorHandler creates a new curator handler.
func NewCuratorHandler(deps CuratorDependencies) *CuratorHandler {
	return &CuratorHandler{deps: deps}
}

// HandleGetCurator handles GET /curators/{address}. Unknown addresses get a
// zero index rather than 404.
func (h *CuratorHandler) HandleGetCurator(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_curator"

	addr := strings.TrimSpace(r.PathValue("address"))
	if addr == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing address")))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Index(r.Context(), addr))
}
